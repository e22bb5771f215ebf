package history

import (
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
)

// ErrBadFingerprint is returned when a textual fingerprint cannot be parsed.
var ErrBadFingerprint = errors.New("malformed fingerprint")

// Fingerprint is the identity of a clipboard payload: the SHA-256 digest of
// its raw bytes. Two payloads with identical bytes always share a fingerprint.
type Fingerprint [sha256.Size]byte

// FingerprintOf computes the fingerprint of payload.
func FingerprintOf(payload []byte) Fingerprint {
	return Fingerprint(sha256.Sum256(payload))
}

// String renders the fingerprint as lowercase hex.
func (f Fingerprint) String() string {
	return hex.EncodeToString(f[:])
}

// Short returns the first 12 hex characters, for display.
func (f Fingerprint) Short() string {
	return f.String()[:12]
}

// IsZero reports whether f is the zero value.
func (f Fingerprint) IsZero() bool {
	return f == Fingerprint{}
}

// ParseFingerprint parses the hex form produced by String.
func ParseFingerprint(s string) (Fingerprint, error) {
	var f Fingerprint
	if len(s) != hex.EncodedLen(len(f)) {
		return f, fmt.Errorf("%w: want %d hex characters, got %d", ErrBadFingerprint, hex.EncodedLen(len(f)), len(s))
	}
	if _, err := hex.Decode(f[:], []byte(s)); err != nil {
		return Fingerprint{}, fmt.Errorf("%w: %v", ErrBadFingerprint, err)
	}
	return f, nil
}
