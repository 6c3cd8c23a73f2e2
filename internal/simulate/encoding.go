package simulate

import (
	"runtime"

	"github.com/fnrow/fnrow/internal/keymap"
)

// Family selects which of the two synthetic event mechanisms a key's
// System action uses. The OS models media/brightness keys and ordinary
// virtual keys as different event families; no single encoding covers
// both.
type Family int

const (
	FamilyNone Family = iota
	FamilySpecial
	FamilyVirtual
)

func (f Family) String() string {
	switch f {
	case FamilySpecial:
		return "special"
	case FamilyVirtual:
		return "virtual"
	default:
		return "none"
	}
}

// Encoding is one entry of the closed per-key dispatch table. Special
// entries carry exactly one code; virtual entries may carry a chord
// pressed in order and released in reverse.
type Encoding struct {
	Family Family
	Codes  []int
}

// macOS special key codes (NX_KEYTYPE_* from ev_keymap.h).
const (
	nxSoundUp          = 0
	nxSoundDown        = 1
	nxBrightnessUp     = 2
	nxBrightnessDown   = 3
	nxMute             = 7
	nxPlay             = 16
	nxFast             = 19
	nxRewind           = 20
	nxIlluminationUp   = 21
	nxIlluminationDown = 22
)

// macOS virtual key codes for the two non-special defaults.
const (
	vkMissionControl = 160
	vkLaunchpad      = 131
)

// Windows virtual key codes.
const (
	winVKTab           = 0x09
	winVKLWin          = 0x5B
	winVKVolumeMute    = 0xAD
	winVKVolumeDown    = 0xAE
	winVKVolumeUp      = 0xAF
	winVKMediaNext     = 0xB0
	winVKMediaPrev     = 0xB1
	winVKMediaPlayStop = 0xB3
)

// Linux evdev key codes.
const (
	linuxKeyMute            = 113
	linuxKeyVolumeDown      = 114
	linuxKeyVolumeUp        = 115
	linuxKeyScale           = 120
	linuxKeyNextSong        = 163
	linuxKeyPlayPause       = 164
	linuxKeyPreviousSong    = 165
	linuxKeyAllApplications = 204
	linuxKeyBrightnessDown  = 224
	linuxKeyBrightnessUp    = 225
	linuxKeyIllumDown       = 229
	linuxKeyIllumUp         = 230
)

// The default per-key layout mirrors the media function row: brightness,
// mission control, launcher, keyboard illumination, transport, volume.
// Adding or changing a key is a data change here, never a logic change.

var encodingsDarwin = map[keymap.Key]Encoding{
	1:  {FamilySpecial, []int{nxBrightnessDown}},
	2:  {FamilySpecial, []int{nxBrightnessUp}},
	3:  {FamilyVirtual, []int{vkMissionControl}},
	4:  {FamilyVirtual, []int{vkLaunchpad}},
	5:  {FamilySpecial, []int{nxIlluminationDown}},
	6:  {FamilySpecial, []int{nxIlluminationUp}},
	7:  {FamilySpecial, []int{nxRewind}},
	8:  {FamilySpecial, []int{nxPlay}},
	9:  {FamilySpecial, []int{nxFast}},
	10: {FamilySpecial, []int{nxMute}},
	11: {FamilySpecial, []int{nxSoundDown}},
	12: {FamilySpecial, []int{nxSoundUp}},
}

// Windows has no virtual key for brightness or keyboard illumination,
// so keys 1, 2, 5 and 6 have no entry and their System action is inert.
var encodingsWindows = map[keymap.Key]Encoding{
	3:  {FamilyVirtual, []int{winVKLWin, winVKTab}},
	4:  {FamilyVirtual, []int{winVKLWin}},
	7:  {FamilySpecial, []int{winVKMediaPrev}},
	8:  {FamilySpecial, []int{winVKMediaPlayStop}},
	9:  {FamilySpecial, []int{winVKMediaNext}},
	10: {FamilySpecial, []int{winVKVolumeMute}},
	11: {FamilySpecial, []int{winVKVolumeDown}},
	12: {FamilySpecial, []int{winVKVolumeUp}},
}

var encodingsLinux = map[keymap.Key]Encoding{
	1:  {FamilySpecial, []int{linuxKeyBrightnessDown}},
	2:  {FamilySpecial, []int{linuxKeyBrightnessUp}},
	3:  {FamilyVirtual, []int{linuxKeyScale}},
	4:  {FamilyVirtual, []int{linuxKeyAllApplications}},
	5:  {FamilySpecial, []int{linuxKeyIllumDown}},
	6:  {FamilySpecial, []int{linuxKeyIllumUp}},
	7:  {FamilySpecial, []int{linuxKeyPreviousSong}},
	8:  {FamilySpecial, []int{linuxKeyPlayPause}},
	9:  {FamilySpecial, []int{linuxKeyNextSong}},
	10: {FamilySpecial, []int{linuxKeyMute}},
	11: {FamilySpecial, []int{linuxKeyVolumeDown}},
	12: {FamilySpecial, []int{linuxKeyVolumeUp}},
}

// systemLabels name each key's default behavior for CLI listings and
// feed consumers. Labels are platform neutral.
var systemLabels = map[keymap.Key]string{
	1:  "brightness down",
	2:  "brightness up",
	3:  "mission control",
	4:  "launcher",
	5:  "illumination down",
	6:  "illumination up",
	7:  "previous track",
	8:  "play/pause",
	9:  "next track",
	10: "mute",
	11: "volume down",
	12: "volume up",
}

func encodingsIn(goos string) map[keymap.Key]Encoding {
	switch goos {
	case "darwin":
		return encodingsDarwin
	case "windows":
		return encodingsWindows
	default:
		return encodingsLinux
	}
}

// encodingFor looks up the current platform's System encoding for a key.
// Keys without an entry have no platform default and stay inert.
func encodingFor(k keymap.Key) (Encoding, bool) {
	enc, ok := encodingsIn(runtime.GOOS)[k]
	return enc, ok
}

// SystemLabel describes a key's default System behavior, or "none" if
// the current platform has no encoding for it.
func SystemLabel(k keymap.Key) string {
	if _, ok := encodingFor(k); !ok {
		return "none"
	}
	return systemLabels[k]
}
