package keymap

import "runtime"

// Raw key code tables per platform. The tables are plain data and are
// compiled everywhere; only the active platform's table is consulted at
// runtime. Codes absent from a table never produce a Key.

// macOS virtual key codes for the function row.
var rawDarwin = map[int64]Key{
	122: 1,  // kVK_F1
	120: 2,  // kVK_F2
	99:  3,  // kVK_F3
	118: 4,  // kVK_F4
	96:  5,  // kVK_F5
	97:  6,  // kVK_F6
	98:  7,  // kVK_F7
	100: 8,  // kVK_F8
	101: 9,  // kVK_F9
	109: 10, // kVK_F10
	103: 11, // kVK_F11
	111: 12, // kVK_F12
}

// Windows virtual key codes VK_F1..VK_F12.
var rawWindows = map[int64]Key{
	0x70: 1,
	0x71: 2,
	0x72: 3,
	0x73: 4,
	0x74: 5,
	0x75: 6,
	0x76: 7,
	0x77: 8,
	0x78: 9,
	0x79: 10,
	0x7A: 11,
	0x7B: 12,
}

// Linux evdev codes KEY_F1..KEY_F12.
var rawLinux = map[int64]Key{
	59: 1,
	60: 2,
	61: 3,
	62: 4,
	63: 5,
	64: 6,
	65: 7,
	66: 8,
	67: 9,
	68: 10,
	87: 11,
	88: 12,
}

func tableFor(goos string) map[int64]Key {
	switch goos {
	case "darwin":
		return rawDarwin
	case "windows":
		return rawWindows
	default:
		return rawLinux
	}
}

// FromRaw translates a platform raw key code to its logical key.
// Unmapped codes return ok=false and must be treated as inert.
func FromRaw(raw int64) (Key, bool) {
	k, ok := tableFor(runtime.GOOS)[raw]
	return k, ok
}

// ToRaw translates a logical key back to the current platform's raw
// code, the inverse of FromRaw.
func ToRaw(k Key) (int64, bool) {
	for raw, mapped := range tableFor(runtime.GOOS) {
		if mapped == k {
			return raw, true
		}
	}
	return 0, false
}
