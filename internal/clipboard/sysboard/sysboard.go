// Package sysboard reads and writes the system clipboard through
// golang.design/x/clipboard. It supports both text and PNG images.
package sysboard

import (
	"fmt"
	"runtime"
	"sync"

	xclip "golang.design/x/clipboard"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/history"
)

var (
	initOnce sync.Once
	initErr  error
)

// SystemClipboard is the native clipboard backend.
type SystemClipboard struct{}

// New initializes the native clipboard. It fails when no display is
// available, e.g. on a headless server without X11.
func New() (*SystemClipboard, error) {
	initOnce.Do(func() {
		initErr = xclip.Init()
	})
	if initErr != nil {
		return nil, fmt.Errorf("failed to initialize clipboard: %w", initErr)
	}
	return &SystemClipboard{}, nil
}

func (s *SystemClipboard) Name() string { return "system clipboard (" + runtime.GOOS + ")" }

// Snapshot returns the clipboard text if there is any, otherwise the image.
func (s *SystemClipboard) Snapshot() (clipboard.Snapshot, error) {
	if text := xclip.Read(xclip.FmtText); len(text) > 0 {
		return clipboard.Snapshot{Kind: history.KindText, Data: text}, nil
	}
	if img := xclip.Read(xclip.FmtImage); len(img) > 0 {
		return clipboard.Snapshot{Kind: history.KindImage, Data: img}, nil
	}
	return clipboard.Snapshot{}, nil
}

// Write replaces the clipboard content.
func (s *SystemClipboard) Write(kind history.Kind, data []byte) error {
	switch kind {
	case history.KindText:
		xclip.Write(xclip.FmtText, data)
	case history.KindImage:
		xclip.Write(xclip.FmtImage, data)
	default:
		return fmt.Errorf("%w: %s", clipboard.ErrUnsupportedKind, kind)
	}
	return nil
}
