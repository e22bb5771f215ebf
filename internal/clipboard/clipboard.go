// Package clipboard defines the collaborators the history core talks to:
// a source of clipboard snapshots, a sink that puts content back, and a
// paster that sends the paste keystroke. Implementations live in the
// sysboard, execboard and mockboard subpackages.
package clipboard

import (
	"errors"
	"fmt"

	"github.com/yiblet/cliphist/internal/history"
)

// ErrUnsupportedKind is returned by a sink that cannot hold a payload kind.
var ErrUnsupportedKind = errors.New("clipboard does not support this content kind")

// Snapshot is the clipboard content at one instant. The zero Snapshot
// means the clipboard held nothing usable.
type Snapshot struct {
	Kind history.Kind
	Data []byte
}

// Text returns a text snapshot.
func Text(s string) Snapshot {
	return Snapshot{Kind: history.KindText, Data: []byte(s)}
}

// Image returns an image snapshot.
func Image(data []byte) Snapshot {
	return Snapshot{Kind: history.KindImage, Data: data}
}

// IsEmpty reports whether the snapshot carries no content.
func (s Snapshot) IsEmpty() bool {
	return s.Kind == 0 || len(s.Data) == 0
}

func (s Snapshot) String() string {
	if s.IsEmpty() {
		return "empty"
	}
	return fmt.Sprintf("%s (%d bytes)", s.Kind, len(s.Data))
}

// Source yields the current clipboard content on demand.
type Source interface {
	Snapshot() (Snapshot, error)
}

// Sink replaces the clipboard content.
type Sink interface {
	Write(kind history.Kind, data []byte) error
}

// Clipboard is a named source and sink.
type Clipboard interface {
	Source
	Sink

	// Name returns a human-readable name for the backend.
	Name() string
}

// Paster simulates the platform paste keystroke into the focused window.
type Paster interface {
	Paste() error
}

// WriteEntry pushes a history entry back onto the clipboard.
func WriteEntry(sink Sink, e history.Entry) error {
	if e.IsZero() {
		return fmt.Errorf("nothing to write")
	}
	return sink.Write(e.Kind(), e.Payload())
}

// Router sends text writes to Text and everything else to Other.
type Router struct {
	Text  Sink
	Other Sink
}

func (r Router) Write(kind history.Kind, data []byte) error {
	if kind == history.KindText && r.Text != nil {
		return r.Text.Write(kind, data)
	}
	if r.Other == nil {
		return fmt.Errorf("%w: %s", ErrUnsupportedKind, kind)
	}
	return r.Other.Write(kind, data)
}
