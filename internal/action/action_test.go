package action

import (
	"encoding/json"
	"testing"
)

// The four variants must survive an encode/decode cycle unchanged.
func TestRoundTrip(t *testing.T) {
	tests := []struct {
		name string
		in   Action
	}{
		{"system", System()},
		{"openApp", OpenApplication("com.apple.Safari")},
		{"openURL", OpenURL("https://example.com")},
		{"shellCommand", RunShellCommand("true")},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			data, err := json.Marshal(tt.in)
			if err != nil {
				t.Fatalf("Marshal returned error: %v", err)
			}
			var out Action
			if err := json.Unmarshal(data, &out); err != nil {
				t.Fatalf("Unmarshal returned error: %v", err)
			}
			if out != tt.in {
				t.Errorf("round trip = %+v, want %+v", out, tt.in)
			}
		})
	}
}

// The wire shape is shared with external profile editors, so the exact
// JSON matters, not just round-trip equality.
func TestWireShape(t *testing.T) {
	tests := []struct {
		in   Action
		want string
	}{
		{System(), `{"type":"system"}`},
		{OpenApplication("org.mozilla.firefox"), `{"type":"openApp","identifier":"org.mozilla.firefox"}`},
		{OpenURL("https://example.com/a?b=c"), `{"type":"openURL","url":"https://example.com/a?b=c"}`},
		{RunShellCommand("say hello"), `{"type":"shellCommand","command":"say hello"}`},
	}

	for _, tt := range tests {
		data, err := json.Marshal(tt.in)
		if err != nil {
			t.Fatalf("Marshal(%v) returned error: %v", tt.in, err)
		}
		if string(data) != tt.want {
			t.Errorf("Marshal(%v) = %s, want %s", tt.in, data, tt.want)
		}
	}
}

func TestDecodeExternalForm(t *testing.T) {
	var a Action
	if err := json.Unmarshal([]byte(`{"type":"openApp","identifier":"com.apple.Music"}`), &a); err != nil {
		t.Fatalf("Unmarshal returned error: %v", err)
	}
	if a != OpenApplication("com.apple.Music") {
		t.Errorf("decoded = %+v, want openApp(com.apple.Music)", a)
	}
}

func TestValidate(t *testing.T) {
	tests := []struct {
		name    string
		in      Action
		wantErr bool
	}{
		{"system ok", System(), false},
		{"openApp ok", OpenApplication("com.apple.Safari"), false},
		{"openURL ok", OpenURL("https://example.com"), false},
		{"shellCommand ok", RunShellCommand("true"), false},
		{"empty type", Action{}, true},
		{"unknown type", Action{Type: "reboot"}, true},
		{"openApp missing identifier", Action{Type: TypeOpenApp}, true},
		{"openURL missing url", Action{Type: TypeOpenURL}, true},
		{"shellCommand missing command", Action{Type: TypeShellCommand}, true},
		{"system with stray payload", Action{Type: TypeSystem, Command: "rm -rf"}, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.in.Validate()
			if (err != nil) != tt.wantErr {
				t.Errorf("Validate() error = %v, wantErr %v", err, tt.wantErr)
			}
		})
	}
}

func TestString(t *testing.T) {
	if got := System().String(); got != "system" {
		t.Errorf("System().String() = %q, want %q", got, "system")
	}
	if got := RunShellCommand("true").String(); got != "shellCommand(true)" {
		t.Errorf("RunShellCommand String() = %q", got)
	}
}
