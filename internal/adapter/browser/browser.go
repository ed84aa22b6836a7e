// Package browser opens rendered maps in the desktop's default browser.
package browser

import (
	"fmt"
	"os/exec"
	"runtime"
)

// Opener launches the platform URL handler.
type Opener struct {
	goos  string
	start func(*exec.Cmd) error
}

// New returns an Opener for the running platform.
func New() *Opener {
	return &Opener{goos: runtime.GOOS, start: startDetached}
}

// Open hands target (a URL or a file path) to the platform handler without
// waiting for the browser to exit.
func (o *Opener) Open(target string) error {
	name, args := command(o.goos, target)
	if err := o.start(exec.Command(name, args...)); err != nil {
		return fmt.Errorf("open browser: %w", err)
	}
	return nil
}

func command(goos, target string) (string, []string) {
	switch goos {
	case "windows":
		return "rundll32", []string{"url.dll,FileProtocolHandler", target}
	case "darwin":
		return "open", []string{target}
	default: // "linux", "freebsd", "openbsd", "netbsd"
		return "xdg-open", []string{target}
	}
}

func startDetached(cmd *exec.Cmd) error {
	if err := cmd.Start(); err != nil {
		return err
	}
	go func() { _ = cmd.Wait() }()
	return nil
}
