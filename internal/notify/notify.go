// Package notify shows desktop notifications for daemon events that
// need the user's attention, like a missing input monitoring permission.
package notify

import (
	"fmt"
	"log"
	"os/exec"
	"runtime"

	"github.com/gen2brain/beeep"
)

// Send shows a desktop notification
func Send(title, message string) {
	err := beeep.Notify(title, message, "")
	if err == nil {
		return
	}

	// Fallback to the platform notifier command
	if runtime.GOOS == "darwin" {
		script := fmt.Sprintf("display notification %q with title %q", message, title)
		if err := exec.Command("osascript", "-e", script).Run(); err == nil {
			return
		}
	}

	log.Printf("[NOTIFY] Failed to show notification: %v", err)
}
