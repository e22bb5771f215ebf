package execboard

import (
	"fmt"
	"os/exec"
	"runtime"
)

// KeystrokePaster sends the platform paste shortcut to the focused window.
type KeystrokePaster struct {
	// run executes a command; replaced in tests.
	run func(name string, args ...string) error
}

// NewPaster returns a paster backed by xdotool (Linux) or osascript (macOS).
func NewPaster() *KeystrokePaster {
	return &KeystrokePaster{
		run: func(name string, args ...string) error {
			return exec.Command(name, args...).Run()
		},
	}
}

// Paste sends ctrl+v (cmd+v on macOS).
func (p *KeystrokePaster) Paste() error {
	name, args, err := pasteCommand(runtime.GOOS)
	if err != nil {
		return err
	}
	if err := p.run(name, args...); err != nil {
		return fmt.Errorf("failed to run %s: %w", name, err)
	}
	return nil
}

func pasteCommand(goos string) (string, []string, error) {
	switch goos {
	case "linux":
		return "xdotool", []string{"key", "--clearmodifiers", "ctrl+v"}, nil
	case "darwin":
		return "osascript", []string{"-e", `tell application "System Events" to keystroke "v" using command down`}, nil
	default:
		return "", nil, fmt.Errorf("paste keystroke not supported on %s", goos)
	}
}
