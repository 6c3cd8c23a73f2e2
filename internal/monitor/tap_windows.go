//go:build windows

package monitor

import (
	"fmt"
	"runtime"
	"sync"
	"sync/atomic"
	"unsafe"

	"golang.org/x/sys/windows"

	"github.com/fnrow/fnrow/internal/keymap"
)

const (
	whKeyboardLL = 13
	wmKeyDown    = 0x0100
	wmKeyUp      = 0x0101
	wmSysKeyDown = 0x0104
	wmSysKeyUp   = 0x0105
	wmQuit       = 0x0012
)

var (
	user32                  = windows.NewLazySystemDLL("user32.dll")
	procSetWindowsHookEx    = user32.NewProc("SetWindowsHookExW")
	procUnhookWindowsHookEx = user32.NewProc("UnhookWindowsHookEx")
	procCallNextHookEx      = user32.NewProc("CallNextHookEx")
	procGetMessage          = user32.NewProc("GetMessageW")
	procPostThreadMessage   = user32.NewProc("PostThreadMessageW")
)

type kbdllHookStruct struct {
	VkCode      uint32
	ScanCode    uint32
	Flags       uint32
	Time        uint32
	DwExtraInfo uintptr
}

type message struct {
	HWnd    uintptr
	Message uint32
	WParam  uintptr
	LParam  uintptr
	Time    uint32
	Pt      struct{ X, Y int32 }
}

var (
	hookToken    atomic.Uintptr
	hookProcOnce sync.Once
	hookProcPtr  uintptr
)

// hookCallback returns the shared low-level hook procedure. Windows
// callback pointers are never freed, so one is created for the process
// and reused across install cycles.
func hookCallback() uintptr {
	hookProcOnce.Do(func() {
		hookProcPtr = windows.NewCallback(hookProc)
	})
	return hookProcPtr
}

func hookProc(nCode, wParam, lParam uintptr) uintptr {
	if int32(nCode) >= 0 {
		kb := (*kbdllHookStruct)(unsafe.Pointer(lParam))
		switch wParam {
		case wmKeyDown, wmSysKeyDown:
			handleTapEvent(hookToken.Load(), keymap.KeyDown, int64(kb.VkCode))
		case wmKeyUp, wmSysKeyUp:
			handleTapEvent(hookToken.Load(), keymap.KeyUp, int64(kb.VkCode))
		}
	}
	// Listen-only: always pass the event along.
	next, _, _ := procCallNextHookEx.Call(0, nCode, wParam, lParam)
	return next
}

// windowsTap owns a WH_KEYBOARD_LL hook serviced by a dedicated message
// pump thread.
type windowsTap struct {
	threadID atomic.Uint32
	pumpDone chan struct{}
}

func newBackend() tapBackend {
	return &windowsTap{}
}

func (t *windowsTap) install(token uintptr) error {
	installed := make(chan error, 1)
	t.pumpDone = make(chan struct{})
	go t.run(token, installed)
	return <-installed
}

// run installs the hook and pumps messages on one locked OS thread; the
// low-level hook is dispatched from inside GetMessage on this thread.
func (t *windowsTap) run(token uintptr, installed chan<- error) {
	runtime.LockOSThread()
	defer runtime.UnlockOSThread()
	defer close(t.pumpDone)

	hookToken.Store(token)
	t.threadID.Store(windows.GetCurrentThreadId())

	hook, _, callErr := procSetWindowsHookEx.Call(whKeyboardLL, hookCallback(), 0, 0)
	if hook == 0 {
		installed <- fmt.Errorf("SetWindowsHookEx failed: %v", callErr)
		return
	}
	installed <- nil

	var m message
	for {
		ret, _, _ := procGetMessage.Call(uintptr(unsafe.Pointer(&m)), 0, 0, 0)
		if ret == 0 || int32(ret) == -1 {
			break
		}
	}

	procUnhookWindowsHookEx.Call(hook)
}

// remove stops the pump and waits for the hook to be unregistered; no
// callback runs after it returns.
func (t *windowsTap) remove() {
	procPostThreadMessage.Call(uintptr(t.threadID.Load()), wmQuit, 0, 0)
	<-t.pumpDone
	hookToken.Store(0)
}
