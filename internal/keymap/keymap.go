package keymap

import (
	"fmt"
	"strconv"
)

// Key identifies one of the twelve function-row slots (F1..F12).
// The domain is closed: values outside [MinKey, MaxKey] are invalid
// and every consumer treats them as inert.
type Key int

const (
	KeyNone Key = 0

	MinKey Key = 1
	MaxKey Key = 12
)

// Valid reports whether k is one of the twelve function-row slots.
func (k Key) Valid() bool {
	return k >= MinKey && k <= MaxKey
}

func (k Key) String() string {
	if !k.Valid() {
		return fmt.Sprintf("Key(%d)", int(k))
	}
	return "F" + strconv.Itoa(int(k))
}

// Index returns the key's numeric slot as a string ("1".."12"), the
// form used for profile map keys.
func (k Key) Index() string {
	return strconv.Itoa(int(k))
}

// Parse converts a numeric slot string back to a Key. It accepts the
// same "1".."12" form that Index produces.
func Parse(s string) (Key, bool) {
	n, err := strconv.Atoi(s)
	if err != nil {
		return KeyNone, false
	}
	k := Key(n)
	return k, k.Valid()
}

// All returns the twelve keys in order.
func All() []Key {
	keys := make([]Key, 0, MaxKey-MinKey+1)
	for k := MinKey; k <= MaxKey; k++ {
		keys = append(keys, k)
	}
	return keys
}

// EventType distinguishes the two raw hook events the monitor cares about.
type EventType int

const (
	KeyDown EventType = iota
	KeyUp
)

func (t EventType) String() string {
	switch t {
	case KeyDown:
		return "down"
	case KeyUp:
		return "up"
	default:
		return fmt.Sprintf("EventType(%d)", int(t))
	}
}
