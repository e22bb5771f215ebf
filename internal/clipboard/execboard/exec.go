// Package execboard implements a text-only clipboard using platform
// commands: pbcopy/pbpaste on macOS, xclip or xsel as a fallback on Linux.
// It also provides the paste keystroke through xdotool or osascript.
package execboard

import (
	"bytes"
	"fmt"
	"io"
	"os/exec"
	"runtime"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/history"
)

// ExecClipboard implements clipboard.Clipboard using system commands.
// Images are not supported.
type ExecClipboard struct{}

// New creates a new ExecClipboard instance
func New() *ExecClipboard {
	return &ExecClipboard{}
}

// Name returns the backend name.
func (s *ExecClipboard) Name() string {
	return "command-line clipboard (" + runtime.GOOS + ")"
}

// IsSupported returns true if clipboard commands are available on this system
func (s *ExecClipboard) IsSupported() bool {
	switch runtime.GOOS {
	case "darwin":
		return hasCommand("pbcopy") && hasCommand("pbpaste")
	case "linux":
		return hasCommand("xclip") || hasCommand("xsel")
	default:
		return false
	}
}

// Snapshot reads the clipboard text. An empty clipboard yields an empty snapshot.
func (s *ExecClipboard) Snapshot() (clipboard.Snapshot, error) {
	var (
		data []byte
		err  error
	)
	switch runtime.GOOS {
	case "darwin":
		data, err = readWithCommand("pbpaste")
	case "linux":
		data, err = readLinux()
	default:
		return clipboard.Snapshot{}, fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
	if err != nil {
		return clipboard.Snapshot{}, err
	}
	if len(data) == 0 {
		return clipboard.Snapshot{}, nil
	}
	return clipboard.Snapshot{Kind: history.KindText, Data: data}, nil
}

// Write replaces the clipboard text.
func (s *ExecClipboard) Write(kind history.Kind, data []byte) error {
	if kind != history.KindText {
		return fmt.Errorf("%w: %s", clipboard.ErrUnsupportedKind, kind)
	}

	switch runtime.GOOS {
	case "darwin":
		if err := writeWithCommand(bytes.NewReader(data), "pbcopy"); err != nil {
			return fmt.Errorf("failed to run pbcopy: %w", err)
		}
		return nil
	case "linux":
		return writeLinux(bytes.NewReader(data))
	default:
		return fmt.Errorf("clipboard operations not supported on %s", runtime.GOOS)
	}
}

// readLinux reads from clipboard on Linux using xclip or xsel
func readLinux() ([]byte, error) {
	// Try xclip first
	if data, err := readWithCommand("xclip", "-selection", "clipboard", "-o"); err == nil {
		return data, nil
	}

	// Fall back to xsel
	data, err := readWithCommand("xsel", "--clipboard", "--output")
	if err != nil {
		return nil, fmt.Errorf("failed to read clipboard (tried xclip and xsel): %w", err)
	}
	return data, nil
}

// writeLinux writes to clipboard on Linux using xclip or xsel
func writeLinux(r *bytes.Reader) error {
	// Try xclip first
	if err := writeWithCommand(r, "xclip", "-selection", "clipboard"); err == nil {
		return nil
	}

	// Fall back to xsel
	if _, err := r.Seek(0, io.SeekStart); err != nil {
		return err
	}
	if err := writeWithCommand(r, "xsel", "--clipboard", "--input"); err != nil {
		return fmt.Errorf("failed to write clipboard (tried xclip and xsel): %w", err)
	}
	return nil
}

// readWithCommand executes a command and returns its output
func readWithCommand(name string, args ...string) ([]byte, error) {
	cmd := exec.Command(name, args...)
	var out bytes.Buffer
	cmd.Stdout = &out

	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return out.Bytes(), nil
}

// writeWithCommand executes a command with r as stdin
func writeWithCommand(r io.Reader, name string, args ...string) error {
	cmd := exec.Command(name, args...)
	cmd.Stdin = r
	return cmd.Run()
}

func hasCommand(name string) bool {
	_, err := exec.LookPath(name)
	return err == nil
}
