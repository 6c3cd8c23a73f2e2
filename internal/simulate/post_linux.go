//go:build linux

package simulate

import (
	"encoding/binary"
	"fmt"
	"log"
	"os"
	"sync"
	"time"
	"unsafe"

	"golang.org/x/sys/unix"
)

// uinput ioctl requests from linux/uinput.h.
const (
	uiSetEvBit   = 0x40045564 // UI_SET_EVBIT
	uiSetKeyBit  = 0x40045565 // UI_SET_KEYBIT
	uiDevSetup   = 0x405C5503 // UI_DEV_SETUP
	uiDevCreate  = 0x5501     // UI_DEV_CREATE
	uiDevDestroy = 0x5502     // UI_DEV_DESTROY
)

const (
	evSyn     = 0
	evKey     = 1
	synReport = 0

	busVirtual = 0x06
)

type inputID struct {
	Bustype uint16
	Vendor  uint16
	Product uint16
	Version uint16
}

type uinputSetup struct {
	ID           inputID
	Name         [80]byte
	FFEffectsMax uint32
}

// struct input_event on 64-bit.
type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// uinputPoster posts both event families through one virtual keyboard
// device. Creation is lazy and sticky: if /dev/uinput cannot be opened
// (usually missing permissions) the failure is logged once and every
// later post quietly does nothing.
type uinputPoster struct {
	mu     sync.Mutex
	device *os.File
	failed bool
}

func newPoster() EventPoster {
	return &uinputPoster{}
}

func (p *uinputPoster) ensureDevice() *os.File {
	if p.device != nil {
		return p.device
	}
	if p.failed {
		return nil
	}
	dev, err := createVirtualKeyboard()
	if err != nil {
		p.failed = true
		log.Printf("[SIM] uinput unavailable, synthetic key events disabled: %v", err)
		return nil
	}
	p.device = dev
	return dev
}

func createVirtualKeyboard() (*os.File, error) {
	f, err := os.OpenFile("/dev/uinput", os.O_WRONLY|unix.O_NONBLOCK, 0)
	if err != nil {
		return nil, fmt.Errorf("failed to open /dev/uinput: %v", err)
	}

	fd := int(f.Fd())
	if err := unix.IoctlSetInt(fd, uiSetEvBit, evKey); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to enable key events: %v", err)
	}
	for _, code := range postableCodes() {
		if err := unix.IoctlSetInt(fd, uiSetKeyBit, code); err != nil {
			f.Close()
			return nil, fmt.Errorf("failed to enable key code %d: %v", code, err)
		}
	}

	var setup uinputSetup
	setup.ID = inputID{Bustype: busVirtual, Vendor: 0x1, Product: 0x1, Version: 1}
	copy(setup.Name[:], "fnrow virtual keyboard")
	if _, _, errno := unix.Syscall(unix.SYS_IOCTL, uintptr(fd), uiDevSetup, uintptr(unsafe.Pointer(&setup))); errno != 0 {
		f.Close()
		return nil, fmt.Errorf("failed to set up uinput device: %v", errno)
	}
	if err := unix.IoctlSetInt(fd, uiDevCreate, 0); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create uinput device: %v", err)
	}

	// The kernel registers the new device asynchronously; events written
	// before consumers attach would be lost.
	time.Sleep(200 * time.Millisecond)

	return f, nil
}

// postableCodes collects every code the encoding table can emit, so the
// virtual keyboard declares exactly what it will send.
func postableCodes() []int {
	var codes []int
	for _, enc := range encodingsLinux {
		codes = append(codes, enc.Codes...)
	}
	return codes
}

func writeEvent(dev *os.File, etype uint16, code uint16, value int32) error {
	ev := inputEvent{Type: etype, Code: code, Value: value}
	return binary.Write(dev, binary.LittleEndian, &ev)
}

func writeKey(dev *os.File, code int, value int32) error {
	if err := writeEvent(dev, evKey, uint16(code), value); err != nil {
		return err
	}
	return writeEvent(dev, evSyn, synReport, 0)
}

func (p *uinputPoster) PostSpecialKey(code int) error {
	return p.postChord([]int{code})
}

func (p *uinputPoster) PostVirtualKey(codes []int) error {
	return p.postChord(codes)
}

func (p *uinputPoster) postChord(codes []int) error {
	p.mu.Lock()
	defer p.mu.Unlock()

	dev := p.ensureDevice()
	if dev == nil {
		return nil
	}
	for _, code := range codes {
		if err := writeKey(dev, code, 1); err != nil {
			return fmt.Errorf("failed to write key down: %v", err)
		}
	}
	for i := len(codes) - 1; i >= 0; i-- {
		if err := writeKey(dev, codes[i], 0); err != nil {
			return fmt.Errorf("failed to write key up: %v", err)
		}
	}
	return nil
}

func (p *uinputPoster) Close() error {
	p.mu.Lock()
	defer p.mu.Unlock()

	if p.device == nil {
		return nil
	}
	fd := int(p.device.Fd())
	if err := unix.IoctlSetInt(fd, uiDevDestroy, 0); err != nil {
		log.Printf("[SIM] Failed to destroy uinput device: %v", err)
	}
	err := p.device.Close()
	p.device = nil
	return err
}
