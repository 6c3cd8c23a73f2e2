// Package action defines the key action value shared between the
// dispatcher and the profile store. The JSON shape is a boundary with
// external profile editors and must stay stable.
package action

import "fmt"

// Type tags the action variant.
type Type string

const (
	TypeSystem       Type = "system"
	TypeOpenApp      Type = "openApp"
	TypeOpenURL      Type = "openURL"
	TypeShellCommand Type = "shellCommand"
)

// Action is a tagged record: exactly one of the payload fields is set,
// matching Type. The zero-value payload fields are omitted on the wire
// so each variant round-trips to an identical value.
type Action struct {
	Type       Type   `json:"type"`
	Identifier string `json:"identifier,omitempty"`
	URL        string `json:"url,omitempty"`
	Command    string `json:"command,omitempty"`
}

// System is the default action: emit the key's built-in synthetic event.
func System() Action {
	return Action{Type: TypeSystem}
}

// OpenApplication activates the application with the given platform
// identifier (bundle id on macOS).
func OpenApplication(identifier string) Action {
	return Action{Type: TypeOpenApp, Identifier: identifier}
}

// OpenURL hands the URL to the OS default opener.
func OpenURL(url string) Action {
	return Action{Type: TypeOpenURL, URL: url}
}

// RunShellCommand spawns the command through a detached shell.
func RunShellCommand(command string) Action {
	return Action{Type: TypeShellCommand, Command: command}
}

// Validate checks that the type tag is known and its payload field is
// present. Payload fields belonging to other variants must be empty.
func (a Action) Validate() error {
	switch a.Type {
	case TypeSystem:
		if a.Identifier != "" || a.URL != "" || a.Command != "" {
			return fmt.Errorf("system action carries unexpected payload")
		}
	case TypeOpenApp:
		if a.Identifier == "" {
			return fmt.Errorf("openApp action requires an identifier")
		}
	case TypeOpenURL:
		if a.URL == "" {
			return fmt.Errorf("openURL action requires a url")
		}
	case TypeShellCommand:
		if a.Command == "" {
			return fmt.Errorf("shellCommand action requires a command")
		}
	default:
		return fmt.Errorf("unknown action type %q", string(a.Type))
	}
	return nil
}

func (a Action) String() string {
	switch a.Type {
	case TypeSystem:
		return "system"
	case TypeOpenApp:
		return fmt.Sprintf("openApp(%s)", a.Identifier)
	case TypeOpenURL:
		return fmt.Sprintf("openURL(%s)", a.URL)
	case TypeShellCommand:
		return fmt.Sprintf("shellCommand(%s)", a.Command)
	default:
		return fmt.Sprintf("unknown(%s)", string(a.Type))
	}
}
