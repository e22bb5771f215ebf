// Package dispatch maps symbolic user actions, as triggered by hotkeys or
// the picker, onto history operations and their clipboard side effects.
package dispatch

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/history"
)

// Action names a user action.
type Action string

const (
	ActionActivate     Action = "activate"
	ActionPasteLast    Action = "paste_last"
	ActionClearHistory Action = "clear_history"
	ActionRestore      Action = "restore"
)

// Actions lists the actions that can be bound to keys, in display order.
var Actions = []Action{ActionActivate, ActionPasteLast, ActionClearHistory}

// ErrUnknownAction is returned for an action name Dispatch does not handle.
var ErrUnknownAction = errors.New("unknown action")

// History is the part of the history manager the dispatcher drives.
type History interface {
	Restore(index int) (history.Entry, error)
	PasteMostRecent() (history.Entry, error)
	ClearHistory()
}

// Dispatcher executes actions.
type Dispatcher struct {
	history History
	sink    clipboard.Sink
	paster  clipboard.Paster
	toggle  func()
	logger  *slog.Logger
}

// Option configures a Dispatcher.
type Option func(*Dispatcher)

// WithPaster sends the paste keystroke after paste_last.
func WithPaster(p clipboard.Paster) Option {
	return func(d *Dispatcher) { d.paster = p }
}

// WithToggle sets the function activate calls to show or hide the UI.
func WithToggle(fn func()) Option {
	return func(d *Dispatcher) { d.toggle = fn }
}

// WithLogger sets the logger.
func WithLogger(l *slog.Logger) Option {
	return func(d *Dispatcher) { d.logger = l }
}

// New creates a dispatcher writing restored entries to sink.
func New(h History, sink clipboard.Sink, opts ...Option) *Dispatcher {
	d := &Dispatcher{history: h, sink: sink, logger: slog.Default()}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Dispatch runs a bound action. Restore needs an index and goes through
// Restore instead.
func (d *Dispatcher) Dispatch(action Action) error {
	switch action {
	case ActionActivate:
		return d.Activate()
	case ActionPasteLast:
		_, err := d.PasteLast()
		return err
	case ActionClearHistory:
		d.ClearHistory()
		return nil
	default:
		return fmt.Errorf("%w: %q", ErrUnknownAction, action)
	}
}

// Activate toggles the UI.
func (d *Dispatcher) Activate() error {
	if d.toggle == nil {
		return errors.New("no interface to activate")
	}
	d.toggle()
	return nil
}

// Restore copies the entry at index back onto the clipboard.
func (d *Dispatcher) Restore(index int) (history.Entry, error) {
	e, err := d.history.Restore(index)
	if err != nil {
		return history.Entry{}, err
	}
	if err := clipboard.WriteEntry(d.sink, e); err != nil {
		return history.Entry{}, fmt.Errorf("failed to write clipboard: %w", err)
	}
	d.logger.Debug("restored entry", "index", index, "id", e.Fingerprint().Short(), "kind", e.Kind().String())
	return e, nil
}

// PasteLast copies the most recent entry onto the clipboard and, if a
// paster is configured, sends the paste keystroke. A failed keystroke is
// logged; the clipboard already holds the entry.
func (d *Dispatcher) PasteLast() (history.Entry, error) {
	e, err := d.history.PasteMostRecent()
	if err != nil {
		return history.Entry{}, err
	}
	if err := clipboard.WriteEntry(d.sink, e); err != nil {
		return history.Entry{}, fmt.Errorf("failed to write clipboard: %w", err)
	}
	if d.paster != nil {
		if err := d.paster.Paste(); err != nil {
			d.logger.Warn("failed to send paste keystroke", "err", err)
		}
	}
	return e, nil
}

// ClearHistory empties the history.
func (d *Dispatcher) ClearHistory() {
	d.history.ClearHistory()
}
