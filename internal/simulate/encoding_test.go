package simulate

import (
	"testing"

	"github.com/fnrow/fnrow/internal/keymap"
)

func TestTableSizes(t *testing.T) {
	tests := []struct {
		goos string
		want int
	}{
		{"darwin", 12},
		{"windows", 8},
		{"linux", 12},
	}
	for _, tt := range tests {
		if got := len(encodingsIn(tt.goos)); got != tt.want {
			t.Errorf("%s table has %d entries, want %d", tt.goos, got, tt.want)
		}
	}
}

// Mission Control and Launchpad are ordinary keyboard keys on every
// platform; everything else rides the special-key channel.
func TestFamilySplit(t *testing.T) {
	for _, goos := range []string{"darwin", "windows", "linux"} {
		for k, enc := range encodingsIn(goos) {
			wantVirtual := k == keymap.Key(3) || k == keymap.Key(4)
			if wantVirtual && enc.Family != FamilyVirtual {
				t.Errorf("%s key %d: family %v, want virtual", goos, k, enc.Family)
			}
			if !wantVirtual && enc.Family != FamilySpecial {
				t.Errorf("%s key %d: family %v, want special", goos, k, enc.Family)
			}
			if enc.Family == FamilySpecial && len(enc.Codes) != 1 {
				t.Errorf("%s key %d: special encoding has %d codes, want 1", goos, k, len(enc.Codes))
			}
			if len(enc.Codes) == 0 {
				t.Errorf("%s key %d: empty code list", goos, k)
			}
		}
	}
}

func TestDarwinCodes(t *testing.T) {
	table := encodingsIn("darwin")
	tests := []struct {
		key  keymap.Key
		code int
	}{
		{1, nxBrightnessDown},
		{2, nxBrightnessUp},
		{3, vkMissionControl},
		{4, vkLaunchpad},
		{5, nxIlluminationDown},
		{6, nxIlluminationUp},
		{7, nxRewind},
		{8, nxPlay},
		{9, nxFast},
		{10, nxMute},
		{11, nxSoundDown},
		{12, nxSoundUp},
	}
	for _, tt := range tests {
		enc, ok := table[tt.key]
		if !ok {
			t.Errorf("darwin table missing key %d", tt.key)
			continue
		}
		if enc.Codes[0] != tt.code {
			t.Errorf("darwin key %d: code %d, want %d", tt.key, enc.Codes[0], tt.code)
		}
	}
}

func TestWindowsTaskViewChord(t *testing.T) {
	enc, ok := encodingsIn("windows")[keymap.Key(3)]
	if !ok {
		t.Fatal("windows table missing key 3")
	}
	if len(enc.Codes) != 2 || enc.Codes[0] != winVKLWin || enc.Codes[1] != winVKTab {
		t.Errorf("task view chord = %v, want [Win Tab]", enc.Codes)
	}
}

// Brightness and keyboard backlight have no generic synthetic encoding
// on Windows, so those keys stay out of the table and fall back to inert.
func TestWindowsGaps(t *testing.T) {
	table := encodingsIn("windows")
	for _, k := range []keymap.Key{1, 2, 5, 6} {
		if _, ok := table[k]; ok {
			t.Errorf("windows table should not encode key %d", k)
		}
	}
}

func TestLinuxCodes(t *testing.T) {
	table := encodingsIn("linux")
	tests := []struct {
		key  keymap.Key
		code int
	}{
		{1, linuxKeyBrightnessDown},
		{2, linuxKeyBrightnessUp},
		{3, linuxKeyScale},
		{10, linuxKeyMute},
		{12, linuxKeyVolumeUp},
	}
	for _, tt := range tests {
		enc, ok := table[tt.key]
		if !ok {
			t.Errorf("linux table missing key %d", tt.key)
			continue
		}
		if enc.Codes[0] != tt.code {
			t.Errorf("linux key %d: code %d, want %d", tt.key, enc.Codes[0], tt.code)
		}
	}
}

func TestSystemLabel(t *testing.T) {
	if got := SystemLabel(keymap.Key(12)); got != "volume up" {
		t.Errorf("SystemLabel(12) = %q, want %q", got, "volume up")
	}
	if got := SystemLabel(keymap.Key(42)); got != "none" {
		t.Errorf("SystemLabel(42) = %q, want %q", got, "none")
	}
}
