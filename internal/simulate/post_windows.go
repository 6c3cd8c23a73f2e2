//go:build windows

package simulate

import (
	"fmt"
	"unsafe"

	"golang.org/x/sys/windows"
)

const (
	inputKeyboard = 1

	keyeventfKeyUp = 0x0002
)

type keybdInput struct {
	WVk         uint16
	WScan       uint16
	DwFlags     uint32
	Time        uint32
	DwExtraInfo uintptr
}

// INPUT with the union as a 32 byte blob, matching the amd64 layout.
type winInput struct {
	Type uint32
	_    uint32
	Data [32]byte
}

var (
	user32        = windows.NewLazySystemDLL("user32.dll")
	procSendInput = user32.NewProc("SendInput")
)

type windowsPoster struct{}

func newPoster() EventPoster {
	return windowsPoster{}
}

func keyInput(vk uint16, flags uint32) winInput {
	var in winInput
	in.Type = inputKeyboard
	ki := (*keybdInput)(unsafe.Pointer(&in.Data[0]))
	ki.WVk = vk
	ki.DwFlags = flags
	return in
}

func send(inputs []winInput) error {
	if len(inputs) == 0 {
		return nil
	}
	r1, _, err := procSendInput.Call(
		uintptr(len(inputs)),
		uintptr(unsafe.Pointer(&inputs[0])),
		unsafe.Sizeof(inputs[0]),
	)
	if r1 == 0 {
		return fmt.Errorf("SendInput: %v", err)
	}
	return nil
}

// Special keys on windows are the media virtual keys; a down/up pair in
// one SendInput batch.
func (windowsPoster) PostSpecialKey(code int) error {
	vk := uint16(code)
	return send([]winInput{
		keyInput(vk, 0),
		keyInput(vk, keyeventfKeyUp),
	})
}

// Virtual entries may be a chord: press in order, release in reverse,
// all in a single batch so no real input can interleave.
func (windowsPoster) PostVirtualKey(codes []int) error {
	inputs := make([]winInput, 0, len(codes)*2)
	for _, code := range codes {
		inputs = append(inputs, keyInput(uint16(code), 0))
	}
	for i := len(codes) - 1; i >= 0; i-- {
		inputs = append(inputs, keyInput(uint16(codes[i]), keyeventfKeyUp))
	}
	return send(inputs)
}
