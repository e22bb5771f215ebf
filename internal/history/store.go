package history

import (
	"errors"
	"fmt"
	"time"
)

// DefaultCapacity is the number of entries retained when nothing else is configured.
const DefaultCapacity = 10

var (
	// ErrInvalidCapacity is returned for a capacity below 1.
	ErrInvalidCapacity = errors.New("capacity must be at least 1")

	// ErrNotFound is returned by EntryAt for an index outside the history.
	ErrNotFound = errors.New("entry not found")

	// ErrEmpty is returned by MostRecent when the history holds no entries.
	ErrEmpty = errors.New("history is empty")
)

// Outcome is the result of InsertIfAbsent.
type Outcome uint8

const (
	// Duplicate means an entry with the same fingerprint already existed.
	Duplicate Outcome = iota + 1
	// Inserted means a new entry was placed at the front.
	Inserted
)

func (o Outcome) String() string {
	switch o {
	case Duplicate:
		return "duplicate"
	case Inserted:
		return "inserted"
	default:
		return fmt.Sprintf("outcome(%d)", uint8(o))
	}
}

// InsertResult describes what InsertIfAbsent did.
type InsertResult struct {
	Outcome Outcome

	// Entry is the new head for Inserted, or the already stored entry for Duplicate.
	Entry Entry

	// Evicted holds the entries dropped from the tail, newest first.
	Evicted []Entry
}

// Store is a bounded, ordered collection of entries, most recent first,
// with at most one entry per fingerprint.
//
// A Store is not safe for concurrent use; callers serialize access.
type Store struct {
	entries  []Entry
	index    map[Fingerprint]struct{}
	capacity int
	now      func() time.Time
}

// Option configures a Store.
type Option func(*Store)

// WithClock replaces the wall clock used to stamp new entries.
func WithClock(now func() time.Time) Option {
	return func(s *Store) {
		s.now = now
	}
}

// NewStore creates an empty store holding at most capacity entries.
func NewStore(capacity int, opts ...Option) (*Store, error) {
	if capacity < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, capacity)
	}
	s := &Store{
		index:    make(map[Fingerprint]struct{}),
		capacity: capacity,
		now:      time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s, nil
}

// Load builds a store from entries that are already ordered most recent
// first. Entries repeating an earlier fingerprint are dropped, and entries
// beyond capacity are truncated from the tail. A capacity below 1 falls back
// to DefaultCapacity. It returns the entries it dropped.
func Load(capacity int, entries []Entry, opts ...Option) (*Store, []Entry) {
	if capacity < 1 {
		capacity = DefaultCapacity
	}
	s, _ := NewStore(capacity, opts...)

	var dropped []Entry
	for _, e := range entries {
		if e.IsZero() {
			continue
		}
		if _, ok := s.index[e.fingerprint]; ok || len(s.entries) == s.capacity {
			dropped = append(dropped, e)
			continue
		}
		s.entries = append(s.entries, e)
		s.index[e.fingerprint] = struct{}{}
	}
	return s, dropped
}

// InsertIfAbsent records payload as the most recent entry unless an entry
// with the same fingerprint is already held anywhere in the history. A
// duplicate is left where it is. Inserting past capacity evicts from the tail.
func (s *Store) InsertIfAbsent(kind Kind, payload []byte) (InsertResult, error) {
	if err := validate(kind, payload); err != nil {
		return InsertResult{}, err
	}

	fp := FingerprintOf(payload)
	if _, ok := s.index[fp]; ok {
		i, _ := s.Find(fp)
		return InsertResult{Outcome: Duplicate, Entry: s.entries[i]}, nil
	}

	e, err := NewEntry(kind, payload, s.stamp())
	if err != nil {
		return InsertResult{}, err
	}

	s.entries = append(s.entries, Entry{})
	copy(s.entries[1:], s.entries)
	s.entries[0] = e
	s.index[fp] = struct{}{}

	return InsertResult{Outcome: Inserted, Entry: e, Evicted: s.truncate()}, nil
}

// stamp returns a capture time strictly after the current head's, so
// position order and time order agree even when the wall clock stalls or
// steps backwards.
func (s *Store) stamp() time.Time {
	t := s.now().Truncate(time.Microsecond)
	if len(s.entries) > 0 {
		if head := s.entries[0].capturedAt; !t.After(head) {
			t = head.Add(time.Microsecond)
		}
	}
	return t
}

// truncate drops entries beyond capacity and returns them.
func (s *Store) truncate() []Entry {
	if len(s.entries) <= s.capacity {
		return nil
	}
	evicted := make([]Entry, len(s.entries)-s.capacity)
	copy(evicted, s.entries[s.capacity:])
	for _, e := range evicted {
		delete(s.index, e.fingerprint)
	}
	clear(s.entries[s.capacity:])
	s.entries = s.entries[:s.capacity]
	return evicted
}

// EntryAt returns the entry at index, where 0 is the most recent.
func (s *Store) EntryAt(index int) (Entry, error) {
	if index < 0 || index >= len(s.entries) {
		return Entry{}, fmt.Errorf("%w: index %d out of range (%d entries)", ErrNotFound, index, len(s.entries))
	}
	return s.entries[index], nil
}

// MostRecent returns the head of the history.
func (s *Store) MostRecent() (Entry, error) {
	if len(s.entries) == 0 {
		return Entry{}, ErrEmpty
	}
	return s.entries[0], nil
}

// Find returns the position of the entry with fingerprint fp.
func (s *Store) Find(fp Fingerprint) (int, bool) {
	if _, ok := s.index[fp]; !ok {
		return -1, false
	}
	for i, e := range s.entries {
		if e.fingerprint == fp {
			return i, true
		}
	}
	return -1, false
}

// Clear removes every entry. Clearing an empty store is a no-op.
func (s *Store) Clear() {
	clear(s.entries)
	s.entries = s.entries[:0]
	clear(s.index)
}

// SetCapacity changes the bound, truncating the oldest entries immediately
// if the history is now too long. It returns the evicted entries.
func (s *Store) SetCapacity(n int) ([]Entry, error) {
	if n < 1 {
		return nil, fmt.Errorf("%w: %d", ErrInvalidCapacity, n)
	}
	s.capacity = n
	return s.truncate(), nil
}

// Capacity returns the maximum number of entries retained.
func (s *Store) Capacity() int { return s.capacity }

// Len returns the number of entries held.
func (s *Store) Len() int { return len(s.entries) }

// Snapshot returns the entries in order, most recent first. The returned
// slice is a copy; entries themselves are immutable.
func (s *Store) Snapshot() []Entry {
	out := make([]Entry, len(s.entries))
	copy(out, s.entries)
	return out
}
