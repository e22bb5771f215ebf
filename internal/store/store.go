// Package store defines cliphist's persistence layer: the history document
// format, the codec between that document and an in-memory history.Store,
// and the Persister interface implemented by the storage backends.
package store

import (
	"errors"
)

var (
	// ErrNoDocument is returned by Persister.Load when nothing has been saved yet.
	ErrNoDocument = errors.New("no history document")

	// ErrMalformedDocument is returned when the document as a whole cannot be parsed.
	ErrMalformedDocument = errors.New("malformed history document")

	// ErrMalformedRecord marks a record with a missing field or a wrong field type.
	ErrMalformedRecord = errors.New("malformed history record")

	// ErrUnknownEntryType marks a record whose type is neither "text" nor "image".
	ErrUnknownEntryType = errors.New("unknown entry type")

	// ErrBadContent marks a record whose content cannot be decoded for its type.
	ErrBadContent = errors.New("undecodable record content")

	// ErrFingerprintMismatch marks a record whose id does not match its content.
	ErrFingerprintMismatch = errors.New("record id does not match content")
)

// Persister reads and writes the history document.
// Save always replaces the whole document.
type Persister interface {
	// Load returns the last saved document, or ErrNoDocument.
	Load() (*Document, error)

	// Save replaces the stored document with doc.
	Save(doc *Document) error

	// Version identifies the currently stored revision without loading it.
	// It changes whenever any process saves. Nothing saved yet is "".
	Version() (string, error)

	// Close releases any resources (DB connections, file handles, etc.).
	Close() error
}
