package store

import (
	"encoding/base64"
	"fmt"
	"math"
	"time"

	"github.com/yiblet/cliphist/internal/history"
)

// FingerprintPolicy decides how a stored record id is treated on load.
type FingerprintPolicy uint8

const (
	// PolicyVerify recomputes the fingerprint from the content and skips
	// records whose stored id disagrees.
	PolicyVerify FingerprintPolicy = iota
	// PolicyTrust keeps a stored SHA-256 id without checking it against the
	// content. Ids from other digests are recomputed from the content.
	PolicyTrust
)

func (p FingerprintPolicy) String() string {
	switch p {
	case PolicyVerify:
		return "verify"
	case PolicyTrust:
		return "trust"
	default:
		return fmt.Sprintf("policy(%d)", uint8(p))
	}
}

// DecodeError reports a record that Decode skipped.
type DecodeError struct {
	Index int    // position of the record in the document
	ID    string // stored id, possibly empty
	Err   error
}

func (e *DecodeError) Error() string {
	if e.ID == "" {
		return fmt.Sprintf("history record %d: %v", e.Index, e.Err)
	}
	return fmt.Sprintf("history record %d (%s): %v", e.Index, e.ID, e.Err)
}

func (e *DecodeError) Unwrap() error { return e.Err }

// Encode renders s as a Document, preserving order and capacity.
func Encode(s *history.Store) *Document {
	entries := s.Snapshot()
	doc := &Document{
		History:  make([]EntryRecord, 0, len(entries)),
		Capacity: s.Capacity(),
	}
	for _, e := range entries {
		doc.History = append(doc.History, EncodeEntry(e))
	}
	return doc
}

// EncodeEntry renders one entry as a record.
func EncodeEntry(e history.Entry) EntryRecord {
	rec := EntryRecord{
		ID:        e.Fingerprint().String(),
		Type:      e.Kind().String(),
		Timestamp: timeToSeconds(e.CapturedAt()),
	}
	switch e.Kind() {
	case history.KindText:
		rec.Content = e.Text()
	case history.KindImage:
		rec.Content = base64.StdEncoding.EncodeToString(e.Payload())
	}
	return rec
}

// Decode rebuilds a store from doc. Records that cannot be decoded are
// skipped and reported; the rest of the history is kept in order. Records
// repeating an earlier id are dropped, as are records past the capacity.
func Decode(doc *Document, policy FingerprintPolicy, opts ...history.Option) (*history.Store, []*DecodeError) {
	var (
		entries []history.Entry
		errs    []*DecodeError
	)
	loadedAt := time.Now()

	for i, rec := range doc.History {
		e, err := DecodeEntry(rec, policy, loadedAt)
		if err != nil {
			errs = append(errs, &DecodeError{Index: i, ID: rec.ID, Err: err})
			continue
		}
		entries = append(entries, e)
	}

	s, _ := history.Load(doc.Capacity, entries, opts...)
	return s, errs
}

// DecodeEntry converts one record back into an entry. A record without a
// timestamp is stamped with fallback.
func DecodeEntry(rec EntryRecord, policy FingerprintPolicy, fallback time.Time) (history.Entry, error) {
	if err := rec.Err(); err != nil {
		return history.Entry{}, err
	}

	kind, err := history.ParseKind(rec.Type)
	if err != nil {
		return history.Entry{}, fmt.Errorf("%w: %q", ErrUnknownEntryType, rec.Type)
	}

	payload, err := decodeContent(kind, rec.Content)
	if err != nil {
		return history.Entry{}, err
	}

	capturedAt := fallback
	if rec.Timestamp > 0 {
		capturedAt = secondsToTime(rec.Timestamp)
	}

	switch policy {
	case PolicyTrust:
		fp, err := history.ParseFingerprint(rec.ID)
		if err != nil {
			// Another digest, such as the md5 ids of older documents.
			e, err := history.NewEntry(kind, payload, capturedAt)
			if err != nil {
				return history.Entry{}, fmt.Errorf("%w: %v", ErrBadContent, err)
			}
			return e, nil
		}
		e, err := history.RestoreEntry(fp, kind, payload, capturedAt)
		if err != nil {
			return history.Entry{}, fmt.Errorf("%w: %v", ErrBadContent, err)
		}
		return e, nil
	default:
		e, err := history.NewEntry(kind, payload, capturedAt)
		if err != nil {
			return history.Entry{}, fmt.Errorf("%w: %v", ErrBadContent, err)
		}
		if e.Fingerprint().String() != rec.ID {
			return history.Entry{}, fmt.Errorf("%w: stored %q, computed %s", ErrFingerprintMismatch, rec.ID, e.Fingerprint())
		}
		return e, nil
	}
}

func decodeContent(kind history.Kind, content string) ([]byte, error) {
	switch kind {
	case history.KindText:
		return []byte(content), nil
	case history.KindImage:
		data, err := base64.StdEncoding.DecodeString(content)
		if err != nil {
			return nil, fmt.Errorf("%w: %v", ErrBadContent, err)
		}
		return data, nil
	default:
		return nil, fmt.Errorf("%w: %v", ErrUnknownEntryType, kind)
	}
}

// Rekey recomputes every record id from its content, for documents written
// with a different digest. Records that cannot be decoded are left as they
// are and will be reported by Decode.
func Rekey(doc *Document) *Document {
	out := &Document{
		History:  make([]EntryRecord, len(doc.History)),
		Capacity: doc.Capacity,
	}
	for i, rec := range doc.History {
		out.History[i] = rec
		if rec.Err() != nil {
			continue
		}
		kind, err := history.ParseKind(rec.Type)
		if err != nil {
			continue
		}
		payload, err := decodeContent(kind, rec.Content)
		if err != nil {
			continue
		}
		out.History[i].ID = history.FingerprintOf(payload).String()
	}
	return out
}

func timeToSeconds(t time.Time) float64 {
	return float64(t.UnixMicro()) / 1e6
}

func secondsToTime(sec float64) time.Time {
	return time.UnixMicro(int64(math.Round(sec * 1e6)))
}
