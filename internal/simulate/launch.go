package simulate

import (
	"fmt"
	"os/exec"
	"runtime"
)

// systemLauncher shells out to the platform's own openers. Commands are
// started detached with their streams discarded and are never waited on
// by the caller; a background goroutine reaps each child.
type systemLauncher struct{}

func newLauncher() Launcher {
	return systemLauncher{}
}

func (systemLauncher) OpenApplication(identifier string) error {
	switch runtime.GOOS {
	case "darwin":
		// Resolve by bundle identifier, the same lookup Launch Services
		// uses.
		return startDetached(exec.Command("open", "-b", identifier))
	case "windows":
		return startDetached(exec.Command("cmd", "/C", "start", "", identifier))
	default:
		// Desktop entry id, e.g. org.mozilla.firefox.
		return startDetached(exec.Command("gtk-launch", identifier))
	}
}

func (systemLauncher) OpenURL(url string) error {
	switch runtime.GOOS {
	case "darwin":
		return startDetached(exec.Command("open", url))
	case "windows":
		return startDetached(exec.Command("cmd", "/C", "start", "", url))
	default:
		return startDetached(exec.Command("xdg-open", url))
	}
}

func (systemLauncher) RunShellCommand(command string) error {
	if runtime.GOOS == "windows" {
		return startDetached(exec.Command("cmd", "/C", command))
	}
	return startDetached(exec.Command("sh", "-c", command))
}

// startDetached launches cmd without waiting for it. Leaving the stream
// fields nil connects the child to the null device.
func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return fmt.Errorf("failed to start %s: %v", cmd.Path, err)
	}
	go func() {
		// Reap the child so it never lingers as a zombie.
		_ = cmd.Wait()
	}()
	return nil
}
