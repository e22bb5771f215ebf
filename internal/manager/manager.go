// Package manager owns the clipboard history at runtime. It is the single
// serialization point between the clipboard poll loop and user actions,
// and rewrites the persisted document after every accepted mutation.
//
// Several processes may share one document: a watcher and short-lived
// commands started from desktop shortcuts. Before every operation the
// manager compares the persisted version with the one it last loaded or
// saved, and reloads if another process has saved since.
package manager

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"sync"
	"time"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/history"
	"github.com/yiblet/cliphist/internal/reconcile"
	"github.com/yiblet/cliphist/internal/store"
)

// DefaultPollInterval is how often Run samples the clipboard.
const DefaultPollInterval = 500 * time.Millisecond

// Options configures a Manager.
type Options struct {
	// Persister loads and saves the history document. Required.
	Persister store.Persister

	// Policy decides how stored ids are checked on load.
	Policy store.FingerprintPolicy

	// DefaultCapacity is used when no history has been persisted yet.
	DefaultCapacity int

	// MaxPayload ignores clipboard values larger than this. Zero means unlimited.
	MaxPayload int

	Logger *slog.Logger

	// Clock stamps new entries; defaults to time.Now.
	Clock func() time.Time
}

// Manager manages the clipboard history and its persistence.
// All methods are safe for concurrent use.
type Manager struct {
	mu         sync.Mutex
	history    *history.Store
	persister  store.Persister
	reconciler *reconcile.Reconciler
	opts       Options
	logger     *slog.Logger

	persistErr error
	dirty      bool
	version    string // persisted version last loaded or saved
}

// New loads the persisted history through opts.Persister. A missing
// document starts an empty history with DefaultCapacity. An unparseable
// document is logged and also starts empty; it is overwritten on the
// first mutation. Other load failures are returned.
func New(opts Options) (*Manager, error) {
	if opts.Persister == nil {
		return nil, errors.New("manager: persister is required")
	}
	if opts.DefaultCapacity < 1 {
		opts.DefaultCapacity = history.DefaultCapacity
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}

	rec := reconcile.New(opts.Logger)
	rec.MaxPayload = opts.MaxPayload

	m := &Manager{
		persister:  opts.Persister,
		reconciler: rec,
		opts:       opts,
		logger:     opts.Logger,
	}

	h, err := m.load()
	if err != nil {
		return nil, err
	}
	m.history = h
	return m, nil
}

func (m *Manager) historyOptions() []history.Option {
	if m.opts.Clock == nil {
		return nil
	}
	return []history.Option{history.WithClock(m.opts.Clock)}
}

// load reads and decodes the persisted document.
func (m *Manager) load() (*history.Store, error) {
	// Read the version first: a save racing the load shows up as a change.
	version, verr := m.persister.Version()
	doc, err := m.persister.Load()
	if verr == nil {
		m.version = version
	}
	switch {
	case errors.Is(err, store.ErrNoDocument):
		m.logger.Debug("no persisted history, starting empty", "capacity", m.opts.DefaultCapacity)
		return history.NewStore(m.opts.DefaultCapacity, m.historyOptions()...)
	case errors.Is(err, store.ErrMalformedDocument):
		m.logger.Warn("persisted history is unreadable, starting empty", "err", err)
		return history.NewStore(m.opts.DefaultCapacity, m.historyOptions()...)
	case err != nil:
		return nil, fmt.Errorf("failed to load history: %w", err)
	}

	if doc.Capacity < 1 {
		doc.Capacity = m.opts.DefaultCapacity
	}
	h, errs := store.Decode(doc, m.opts.Policy, m.historyOptions()...)
	for _, derr := range errs {
		m.logger.Warn("skipping history record", "index", derr.Index, "id", derr.ID, "err", derr.Err)
	}
	m.logger.Debug("loaded history",
		"entries", h.Len(),
		"capacity", h.Capacity(),
		"skipped", len(errs),
		"policy", m.opts.Policy.String())
	return h, nil
}

// persist writes the whole history. Failures are logged and remembered;
// the in-memory state stays authoritative and the next mutation retries.
// Callers must hold m.mu.
func (m *Manager) persist() {
	if err := m.persister.Save(store.Encode(m.history)); err != nil {
		if m.persistErr == nil || m.persistErr.Error() != err.Error() {
			m.logger.Error("failed to persist history", "err", err)
		}
		m.persistErr = err
		m.dirty = true
		return
	}
	if m.dirty {
		m.logger.Info("history persisted after earlier failure")
	}
	m.persistErr = nil
	m.dirty = false
	if v, err := m.persister.Version(); err == nil {
		m.version = v
	}
}

// refresh reloads the history if another process saved since this manager
// last loaded or saved. Unsaved local changes win and are written by the
// next save. Callers must hold m.mu.
func (m *Manager) refresh() {
	if m.dirty {
		return
	}
	v, err := m.persister.Version()
	if err != nil {
		m.logger.Warn("failed to check persisted history", "err", err)
		return
	}
	if v == m.version {
		return
	}
	if err := m.reload(); err != nil {
		m.logger.Warn("failed to reload changed history", "err", err)
		// Do not retry until it changes again; the next save replaces it.
		m.version = v
		return
	}
	m.logger.Debug("reloaded history changed by another process", "entries", m.history.Len())
}

// Observe offers one clipboard snapshot to the history and persists it if
// it was new. The boolean is false when the snapshot was not observed.
func (m *Manager) Observe(snap clipboard.Snapshot) (history.InsertResult, bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refresh()
	res, observed, err := m.reconciler.Reconcile(snap, m.history)
	if err != nil || !observed {
		return res, observed, err
	}
	if res.Outcome == history.Inserted {
		m.persist()
	}
	return res, true, nil
}

// Poll reads src once and observes the result.
func (m *Manager) Poll(src clipboard.Source) (history.InsertResult, bool, error) {
	snap, err := src.Snapshot()
	if err != nil {
		return history.InsertResult{}, false, fmt.Errorf("failed to read clipboard: %w", err)
	}
	return m.Observe(snap)
}

// Run polls src every interval until ctx is cancelled. Poll errors are
// logged, repeated identical errors only once.
func (m *Manager) Run(ctx context.Context, src clipboard.Source, interval time.Duration) error {
	if interval <= 0 {
		interval = DefaultPollInterval
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	var lastErr string
	poll := func() {
		_, _, err := m.Poll(src)
		switch {
		case err == nil:
			lastErr = ""
		case err.Error() != lastErr:
			lastErr = err.Error()
			m.logger.Warn("clipboard poll failed", "err", err)
		}
	}

	m.logger.Info("watching clipboard", "interval", interval.String())
	poll()
	for {
		select {
		case <-ctx.Done():
			m.logger.Debug("stopped watching clipboard")
			return nil
		case <-ticker.C:
			poll()
		}
	}
}

// Restore returns the entry at index, 0 being the most recent. It does
// not change the history.
func (m *Manager) Restore(index int) (history.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh()
	return m.history.EntryAt(index)
}

// PasteMostRecent returns the most recent entry, or history.ErrEmpty.
func (m *Manager) PasteMostRecent() (history.Entry, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh()
	return m.history.MostRecent()
}

// ClearHistory empties the history and persists the empty document.
func (m *Manager) ClearHistory() {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refresh()
	n := m.history.Len()
	m.history.Clear()
	m.persist()
	m.logger.Info("cleared history", "removed", n)
}

// SetCapacity changes the capacity, truncating the oldest entries if needed.
func (m *Manager) SetCapacity(n int) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	m.refresh()
	evicted, err := m.history.SetCapacity(n)
	if err != nil {
		return err
	}
	m.persist()
	m.logger.Info("changed capacity", "capacity", n, "evicted", len(evicted))
	return nil
}

// Entries returns the history, most recent first.
func (m *Manager) Entries() []history.Entry {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh()
	return m.history.Snapshot()
}

// Len returns the number of entries held.
func (m *Manager) Len() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh()
	return m.history.Len()
}

// Capacity returns the current capacity.
func (m *Manager) Capacity() int {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.refresh()
	return m.history.Capacity()
}

// LastPersistError returns the error from the most recent save, or nil if
// it succeeded.
func (m *Manager) LastPersistError() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.persistErr
}

// Reload replaces the in-memory history with the persisted document. On
// failure the current history is kept.
func (m *Manager) Reload() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.dirty {
		return fmt.Errorf("refusing to reload over unsaved history: %w", m.persistErr)
	}
	return m.reload()
}

// reload replaces the history with the persisted document. Callers must
// hold m.mu.
func (m *Manager) reload() error {
	version, verr := m.persister.Version()
	doc, err := m.persister.Load()
	switch {
	case errors.Is(err, store.ErrNoDocument):
		m.history.Clear()
		if verr == nil {
			m.version = version
		}
		return nil
	case err != nil:
		return fmt.Errorf("failed to reload history: %w", err)
	}

	if doc.Capacity < 1 {
		doc.Capacity = m.history.Capacity()
	}
	h, errs := store.Decode(doc, m.opts.Policy, m.historyOptions()...)
	for _, derr := range errs {
		m.logger.Warn("skipping history record", "index", derr.Index, "id", derr.ID, "err", derr.Err)
	}
	m.history = h
	if verr == nil {
		m.version = version
	}
	return nil
}

// Flush retries a failed save, if any.
func (m *Manager) Flush() error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if !m.dirty {
		return nil
	}
	m.persist()
	return m.persistErr
}

// Close flushes pending state and releases the persister.
func (m *Manager) Close() error {
	flushErr := m.Flush()

	m.mu.Lock()
	defer m.mu.Unlock()
	if err := m.persister.Close(); err != nil {
		return fmt.Errorf("failed to close store: %w", err)
	}
	return flushErr
}
