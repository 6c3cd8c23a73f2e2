//go:build linux

package monitor

import (
	"encoding/binary"
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"golang.org/x/sys/unix"

	"github.com/fnrow/fnrow/internal/keymap"
)

const evKey = 1

type inputEvent struct {
	Sec   int64
	Usec  int64
	Type  uint16
	Code  uint16
	Value int32
}

// linuxTap reads raw key events from every readable evdev device under
// /dev/input. Devices are opened non-blocking so a pending read can be
// interrupted by closing the file.
type linuxTap struct {
	devices []*os.File
	wg      sync.WaitGroup
}

func newBackend() tapBackend {
	return &linuxTap{}
}

func (t *linuxTap) install(token uintptr) error {
	paths, err := filepath.Glob("/dev/input/event*")
	if err != nil {
		return fmt.Errorf("failed to list input devices: %v", err)
	}
	for _, path := range paths {
		fd, err := unix.Open(path, unix.O_RDONLY|unix.O_NONBLOCK, 0)
		if err != nil {
			// Typically not a member of the input group; try the rest.
			continue
		}
		f := os.NewFile(uintptr(fd), path)
		t.devices = append(t.devices, f)
		t.wg.Add(1)
		go t.read(f, token)
	}
	if len(t.devices) == 0 {
		return ErrPermission
	}
	return nil
}

func (t *linuxTap) read(f *os.File, token uintptr) {
	defer t.wg.Done()
	var ev inputEvent
	for {
		if err := binary.Read(f, binary.LittleEndian, &ev); err != nil {
			return
		}
		if ev.Type != evKey {
			continue
		}
		switch ev.Value {
		case 1, 2:
			// Auto-repeat counts as another down, like hardware repeat.
			handleTapEvent(token, keymap.KeyDown, int64(ev.Code))
		case 0:
			handleTapEvent(token, keymap.KeyUp, int64(ev.Code))
		}
	}
}

func (t *linuxTap) remove() {
	for _, f := range t.devices {
		f.Close()
	}
	t.devices = nil
	t.wg.Wait()
}
