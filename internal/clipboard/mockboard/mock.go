// Package mockboard provides an in-memory clipboard for tests and demos.
package mockboard

import (
	"bytes"
	"sync"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/history"
)

// MockClipboard implements clipboard.Clipboard and clipboard.Paster in memory.
type MockClipboard struct {
	mu       sync.Mutex
	current  clipboard.Snapshot
	writes   []clipboard.Snapshot
	pastes   int
	readErr  error
	writeErr error
	pasteErr error
}

// New creates an empty MockClipboard.
func New() *MockClipboard {
	return &MockClipboard{}
}

func (m *MockClipboard) Name() string { return "mock clipboard" }

// Snapshot returns a copy of the current content.
func (m *MockClipboard) Snapshot() (clipboard.Snapshot, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.readErr != nil {
		return clipboard.Snapshot{}, m.readErr
	}
	return clipboard.Snapshot{Kind: m.current.Kind, Data: bytes.Clone(m.current.Data)}, nil
}

// Write records the write and makes it the current content.
func (m *MockClipboard) Write(kind history.Kind, data []byte) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.writeErr != nil {
		return m.writeErr
	}
	snap := clipboard.Snapshot{Kind: kind, Data: bytes.Clone(data)}
	m.current = snap
	m.writes = append(m.writes, snap)
	return nil
}

// Paste counts a simulated paste keystroke.
func (m *MockClipboard) Paste() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.pasteErr != nil {
		return m.pasteErr
	}
	m.pastes++
	return nil
}

// SetText sets the content as if the user copied text.
func (m *MockClipboard) SetText(s string) {
	m.set(clipboard.Text(s))
}

// SetImage sets the content as if the user copied an image.
func (m *MockClipboard) SetImage(data []byte) {
	m.set(clipboard.Image(bytes.Clone(data)))
}

// SetEmpty clears the content.
func (m *MockClipboard) SetEmpty() {
	m.set(clipboard.Snapshot{})
}

func (m *MockClipboard) set(s clipboard.Snapshot) {
	m.mu.Lock()
	m.current = s
	m.mu.Unlock()
}

// Writes returns every snapshot written through Write, oldest first.
func (m *MockClipboard) Writes() []clipboard.Snapshot {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := make([]clipboard.Snapshot, len(m.writes))
	copy(out, m.writes)
	return out
}

// Pastes returns the number of successful Paste calls.
func (m *MockClipboard) Pastes() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.pastes
}

// FailReads makes Snapshot return err until called again with nil.
func (m *MockClipboard) FailReads(err error) {
	m.mu.Lock()
	m.readErr = err
	m.mu.Unlock()
}

// FailWrites makes Write return err until called again with nil.
func (m *MockClipboard) FailWrites(err error) {
	m.mu.Lock()
	m.writeErr = err
	m.mu.Unlock()
}

// FailPastes makes Paste return err until called again with nil.
func (m *MockClipboard) FailPastes(err error) {
	m.mu.Lock()
	m.pasteErr = err
	m.mu.Unlock()
}
