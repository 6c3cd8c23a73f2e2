//go:build darwin

package monitor

// This file holds only the exported callback; cgo requires the
// definitions in the tap file to live apart from any export.

/*
#include <stdint.h>
*/
import "C"

import "github.com/fnrow/fnrow/internal/keymap"

//export fnrowTapEmit
func fnrowTapEmit(token C.uintptr_t, down C.int, code C.longlong) {
	etype := keymap.KeyUp
	if down != 0 {
		etype = keymap.KeyDown
	}
	handleTapEvent(uintptr(token), etype, int64(code))
}
