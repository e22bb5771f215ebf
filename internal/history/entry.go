// Package history implements the clipboard history core: content
// fingerprints, history entries and the bounded, deduplicated store that
// holds them most-recent-first.
package history

import (
	"bytes"
	"errors"
	"fmt"
	"time"
	"unicode/utf8"
)

var (
	// ErrUnknownKind is returned for a Kind outside the known variants.
	ErrUnknownKind = errors.New("unknown entry kind")

	// ErrInvalidText is returned when a text payload is not valid UTF-8.
	ErrInvalidText = errors.New("text payload is not valid UTF-8")
)

// Kind discriminates the payload variants an entry can hold.
type Kind uint8

const (
	KindText Kind = iota + 1
	KindImage
)

// String returns the persisted name of the kind ("text" or "image").
func (k Kind) String() string {
	switch k {
	case KindText:
		return "text"
	case KindImage:
		return "image"
	default:
		return fmt.Sprintf("kind(%d)", uint8(k))
	}
}

// Valid reports whether k is one of the known variants.
func (k Kind) Valid() bool {
	switch k {
	case KindText, KindImage:
		return true
	default:
		return false
	}
}

// ParseKind is the inverse of Kind.String.
func ParseKind(s string) (Kind, error) {
	switch s {
	case "text":
		return KindText, nil
	case "image":
		return KindImage, nil
	default:
		return 0, fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
}

// Entry is one retained clipboard snapshot. Entries are immutable values;
// the fingerprint is derived from the payload when the entry is built.
type Entry struct {
	fingerprint Fingerprint
	kind        Kind
	payload     []byte
	capturedAt  time.Time
}

// NewEntry builds an entry for payload, computing its fingerprint.
// The payload is copied.
func NewEntry(kind Kind, payload []byte, capturedAt time.Time) (Entry, error) {
	if err := validate(kind, payload); err != nil {
		return Entry{}, err
	}
	return Entry{
		fingerprint: FingerprintOf(payload),
		kind:        kind,
		payload:     bytes.Clone(payload),
		capturedAt:  capturedAt,
	}, nil
}

// RestoreEntry rebuilds an entry whose fingerprint was persisted elsewhere.
// The fingerprint is taken as given and not checked against the payload.
func RestoreEntry(fp Fingerprint, kind Kind, payload []byte, capturedAt time.Time) (Entry, error) {
	if err := validate(kind, payload); err != nil {
		return Entry{}, err
	}
	return Entry{
		fingerprint: fp,
		kind:        kind,
		payload:     bytes.Clone(payload),
		capturedAt:  capturedAt,
	}, nil
}

func validate(kind Kind, payload []byte) error {
	switch kind {
	case KindText:
		if !utf8.Valid(payload) {
			return ErrInvalidText
		}
		return nil
	case KindImage:
		return nil
	default:
		return fmt.Errorf("%w: %d", ErrUnknownKind, uint8(kind))
	}
}

// Fingerprint returns the entry's identity.
func (e Entry) Fingerprint() Fingerprint { return e.fingerprint }

// Kind returns the payload variant.
func (e Entry) Kind() Kind { return e.kind }

// CapturedAt returns when the entry was first observed.
func (e Entry) CapturedAt() time.Time { return e.capturedAt }

// Size returns the payload length in bytes.
func (e Entry) Size() int { return len(e.payload) }

// Payload returns a copy of the raw payload bytes.
func (e Entry) Payload() []byte { return bytes.Clone(e.payload) }

// Text returns the payload of a text entry. It returns "" for images.
func (e Entry) Text() string {
	if e.kind != KindText {
		return ""
	}
	return string(e.payload)
}

// IsZero reports whether e is the zero Entry.
func (e Entry) IsZero() bool {
	return e.kind == 0
}

// Equal reports whether two entries hold the same identity, kind and bytes.
func (e Entry) Equal(o Entry) bool {
	return e.fingerprint == o.fingerprint && e.kind == o.kind && bytes.Equal(e.payload, o.payload)
}
