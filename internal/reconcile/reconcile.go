// Package reconcile decides whether an observed clipboard value becomes a
// new history entry. Deduplication is identity based and delegated to the
// history store; the reconciler never compares against the previous poll.
package reconcile

import (
	"fmt"
	"log/slog"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/history"
)

// Reconciler admits clipboard snapshots into a history store.
type Reconciler struct {
	// MaxPayload ignores observations larger than this many bytes. Zero
	// means unlimited.
	MaxPayload int

	logger *slog.Logger
}

// New returns a Reconciler logging through logger, or slog.Default() if nil.
func New(logger *slog.Logger) *Reconciler {
	if logger == nil {
		logger = slog.Default()
	}
	return &Reconciler{logger: logger}
}

// Reconcile offers snap to s. The boolean is false when nothing was
// observed: an empty clipboard or an oversized payload. Otherwise the
// result reports whether the store inserted the value or already held it.
func (r *Reconciler) Reconcile(snap clipboard.Snapshot, s *history.Store) (history.InsertResult, bool, error) {
	if snap.IsEmpty() {
		return history.InsertResult{}, false, nil
	}
	if r.MaxPayload > 0 && len(snap.Data) > r.MaxPayload {
		r.logger.Warn("ignoring oversized clipboard value",
			"kind", snap.Kind.String(),
			"size", len(snap.Data),
			"limit", r.MaxPayload)
		return history.InsertResult{}, false, nil
	}

	res, err := s.InsertIfAbsent(snap.Kind, snap.Data)
	if err != nil {
		return history.InsertResult{}, false, fmt.Errorf("failed to record %s: %w", snap, err)
	}

	if res.Outcome == history.Inserted {
		r.logEntry(res.Entry)
		for _, e := range res.Evicted {
			r.logger.Debug("evicted entry", "id", e.Fingerprint().Short(), "kind", e.Kind().String())
		}
	}
	return res, true, nil
}

func (r *Reconciler) logEntry(e history.Entry) {
	r.logger.Info("recorded clipboard entry",
		"id", e.Fingerprint().Short(),
		"kind", e.Kind().String(),
		"size", e.Size())
	if e.Kind() == history.KindText {
		r.logger.Debug("entry preview", "id", e.Fingerprint().Short(), "preview", e.Preview(history.PreviewLength))
	}
}
