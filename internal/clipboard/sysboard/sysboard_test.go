package sysboard

import (
	"errors"
	"testing"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/history"
)

var _ clipboard.Clipboard = (*SystemClipboard)(nil)

func TestWriteUnknownKind(t *testing.T) {
	s := &SystemClipboard{}
	if err := s.Write(history.Kind(99), []byte("x")); !errors.Is(err, clipboard.ErrUnsupportedKind) {
		t.Errorf("Write() error = %v, want ErrUnsupportedKind", err)
	}
}

func TestTextRoundTrip(t *testing.T) {
	s, err := New()
	if err != nil {
		t.Skipf("clipboard unavailable: %v", err)
	}

	if err := s.Write(history.KindText, []byte("sysboard round trip")); err != nil {
		t.Fatalf("Write() error = %v", err)
	}
	snap, err := s.Snapshot()
	if err != nil {
		t.Fatalf("Snapshot() error = %v", err)
	}
	if snap.Kind != history.KindText || string(snap.Data) != "sysboard round trip" {
		t.Errorf("Snapshot() = %s %q, want text %q", snap.Kind, snap.Data, "sysboard round trip")
	}
}
