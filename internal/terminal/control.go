// Package terminal renders the daemon's live status block in place
// using ANSI escapes, falling back to plain prints when stdout is piped.
package terminal

import (
	"fmt"
	"os"
)

// StatusView redraws a small block of lines over itself on each update,
// the way progress UIs do.
type StatusView struct {
	drawn int
}

// NewStatusView creates a view that has drawn nothing yet.
func NewStatusView() *StatusView {
	return &StatusView{}
}

// IsTerminal checks if output is going to a terminal
func IsTerminal() bool {
	fileInfo, err := os.Stdout.Stat()
	if err != nil {
		return false
	}

	// On Unix-like systems, check if it's a character device
	return (fileInfo.Mode() & os.ModeCharDevice) != 0
}

// Update replaces the previously drawn block with the given lines.
func (v *StatusView) Update(lines []string) {
	if !IsTerminal() {
		// Piped output: just print normally
		for _, line := range lines {
			fmt.Println(line)
		}
		return
	}

	if v.drawn > 0 {
		fmt.Printf("\033[%dA", v.drawn)
	}
	for _, line := range lines {
		fmt.Print("\033[2K\r")
		fmt.Println(line)
	}

	// A shrinking block leaves stale lines below; wipe them and move
	// back up.
	if len(lines) < v.drawn {
		extra := v.drawn - len(lines)
		for i := 0; i < extra; i++ {
			fmt.Print("\033[2K\r\n")
		}
		fmt.Printf("\033[%dA", extra)
	}

	v.drawn = len(lines)
}

// HideCursor hides the terminal cursor while the view is live
func (v *StatusView) HideCursor() {
	if IsTerminal() {
		fmt.Print("\033[?25l")
	}
}

// ShowCursor shows the terminal cursor again
func (v *StatusView) ShowCursor() {
	if IsTerminal() {
		fmt.Print("\033[?25h")
	}
}
