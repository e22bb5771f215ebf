// Package tui implements the interactive history picker.
package tui

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/cliphist/internal/dispatch"
	"github.com/yiblet/cliphist/internal/history"
	"github.com/yiblet/cliphist/internal/keybind"
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	HelpMode
	ConfirmClearMode
)

// DefaultRefresh is how often the picker re-reads the history.
const DefaultRefresh = time.Second

type flashExpiredMsg struct{}

type refreshMsg struct{}

// History is what the picker reads.
type History interface {
	Entries() []history.Entry
	Capacity() int
}

// Options configures the picker.
type Options struct {
	History    History
	Dispatcher *dispatch.Dispatcher
	Bindings   *keybind.Bindings

	// Reload, if set, runs before each refresh to pick up changes made by
	// another process.
	Reload func() error

	Refresh time.Duration
	Logger  *slog.Logger
	Now     func() time.Time
}

// AppModel is the picker's bubbletea model
type AppModel struct {
	Width        int
	Height       int
	ListWidth    int
	PreviewWidth int
	CurrentMode  UIMode

	List    ListModel
	Modal   ModalModel
	Entries []history.Entry

	// Restored is the entry chosen with enter, if any.
	Restored *history.Entry

	FlashMessage string
	FlashExpiry  time.Time

	opts Options
}

// NewAppModel creates the picker model
func NewAppModel(opts Options) *AppModel {
	if opts.Refresh <= 0 {
		opts.Refresh = DefaultRefresh
	}
	if opts.Logger == nil {
		opts.Logger = slog.Default()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}

	a := &AppModel{
		Width:        100,
		Height:       20,
		ListWidth:    50,
		PreviewWidth: 48,
		CurrentMode:  NormalMode,
		List:         NewListModel(50, 20),
		opts:         opts,
	}
	a.Entries = opts.History.Entries()
	return a
}

// Init starts the refresh ticker
func (a *AppModel) Init() tea.Cmd {
	return a.tick()
}

func (a *AppModel) tick() tea.Cmd {
	return tea.Tick(a.opts.Refresh, func(time.Time) tea.Msg { return refreshMsg{} })
}

// Update handles bubbletea messages
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(m.Width, m.Height)
		return a, nil
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case refreshMsg:
		a.refresh()
		return a, a.tick()
	case flashExpiredMsg:
		if !a.opts.Now().Before(a.FlashExpiry) {
			a.FlashMessage = ""
		}
		return a, nil
	}
	return a, nil
}

// refresh reloads the entries, keeping the cursor in range.
func (a *AppModel) refresh() {
	if a.opts.Reload != nil {
		if err := a.opts.Reload(); err != nil {
			a.opts.Logger.Warn("failed to reload history", "err", err)
		}
	}
	a.SetEntries(a.opts.History.Entries())
}

// SetEntries replaces the displayed entries
func (a *AppModel) SetEntries(entries []history.Entry) {
	a.Entries = entries
	a.List.Clamp(len(entries))
}

func (a *AppModel) resize(width, height int) {
	a.Width = max(width, 30)
	a.Height = max(height, 8)
	// The list gets 60% of the width; each pane has a two-column border.
	a.ListWidth = max(a.Width*3/5, 20)
	a.PreviewWidth = max(a.Width-a.ListWidth-4, 10)
	a.List.Update(ResizeListMsg{Width: a.ListWidth, Height: a.Height})
}

func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	key := msg.String()
	if key == "ctrl+c" {
		return a, tea.Quit
	}

	switch a.CurrentMode {
	case HelpMode:
		switch key {
		case "?", "z", "esc", "q":
			a.CurrentMode = NormalMode
		}
		return a, nil
	case ConfirmClearMode:
		return a.handleConfirmKeys(key)
	default:
		return a.handleNormalModeKeys(key)
	}
}

func (a *AppModel) handleConfirmKeys(key string) (tea.Model, tea.Cmd) {
	switch key {
	case "y", "Y":
		n := len(a.Entries)
		a.opts.Dispatcher.ClearHistory()
		a.SetEntries(a.opts.History.Entries())
		a.Modal.Hide()
		a.CurrentMode = NormalMode
		return a, a.setFlashMessage(fmt.Sprintf("Cleared %d item(s)", n), 2*time.Second)
	case "n", "N", "esc", "q":
		a.Modal.Hide()
		a.CurrentMode = NormalMode
	}
	return a, nil
}

func (a *AppModel) handleNormalModeKeys(key string) (tea.Model, tea.Cmd) {
	// Configured bindings take precedence over the built-in keys.
	if a.opts.Bindings != nil {
		if action, ok := a.opts.Bindings.Lookup(key); ok {
			return a.runAction(action)
		}
	}

	maxIndex := len(a.Entries) - 1
	switch key {
	case "q", "esc":
		return a, tea.Quit
	case "?", "z":
		a.CurrentMode = HelpMode
	case "up", "k":
		a.List.Update(NavigateUpMsg{})
	case "down", "j":
		a.List.Update(NavigateDownMsg{MaxIndex: maxIndex})
	case "g", "home":
		a.List.Update(GoToTopMsg{})
	case "G", "end":
		a.List.Update(GoToBottomMsg{MaxIndex: maxIndex})
	case "enter":
		e, err := a.restoreSelected()
		if err != nil {
			return a, a.setFlashMessage(err.Error(), 2*time.Second)
		}
		a.Restored = &e
		return a, tea.Quit
	case "c", "y":
		e, err := a.restoreSelected()
		if err != nil {
			return a, a.setFlashMessage(err.Error(), 2*time.Second)
		}
		return a, a.setFlashMessage("Copied "+e.Preview(30), 2*time.Second)
	case "p":
		return a.runAction(dispatch.ActionPasteLast)
	case "D":
		return a.runAction(dispatch.ActionClearHistory)
	case "r":
		a.refresh()
	}
	return a, nil
}

func (a *AppModel) runAction(action dispatch.Action) (tea.Model, tea.Cmd) {
	switch action {
	case dispatch.ActionActivate:
		// The picker is the activated UI; activating again hides it.
		return a, tea.Quit
	case dispatch.ActionClearHistory:
		if len(a.Entries) == 0 {
			return a, a.setFlashMessage("History is already empty", 2*time.Second)
		}
		a.Modal.Show("Clear history?",
			fmt.Sprintf("This removes all %d item(s).", len(a.Entries)),
			"[y] yes   [n] no")
		a.CurrentMode = ConfirmClearMode
		return a, nil
	case dispatch.ActionPasteLast:
		e, err := a.opts.Dispatcher.PasteLast()
		if err != nil {
			return a, a.setFlashMessage(describe(err), 2*time.Second)
		}
		return a, a.setFlashMessage("Copied "+e.Preview(30), 2*time.Second)
	}
	return a, nil
}

func (a *AppModel) restoreSelected() (history.Entry, error) {
	if len(a.Entries) == 0 {
		return history.Entry{}, errors.New("History is empty")
	}
	e, err := a.opts.Dispatcher.Restore(a.List.Cursor)
	if err != nil {
		return history.Entry{}, errors.New(describe(err))
	}
	return e, nil
}

func describe(err error) string {
	switch {
	case errors.Is(err, history.ErrEmpty):
		return "History is empty"
	case errors.Is(err, history.ErrNotFound):
		return "Item no longer exists"
	default:
		return "Error: " + err.Error()
	}
}

// setFlashMessage shows message in the status line for duration
func (a *AppModel) setFlashMessage(message string, duration time.Duration) tea.Cmd {
	a.FlashMessage = message
	a.FlashExpiry = a.opts.Now().Add(duration)
	return tea.Tick(duration, func(time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

// Selected returns the entry under the cursor.
func (a *AppModel) Selected() (history.Entry, bool) {
	if a.List.Cursor < 0 || a.List.Cursor >= len(a.Entries) {
		return history.Entry{}, false
	}
	return a.Entries[a.List.Cursor], true
}

// View renders the picker
func (a *AppModel) View() string {
	if a.CurrentMode == HelpMode {
		return renderHelpView(a) + "\n\n" + renderStatusLine(a)
	}

	capacity := a.opts.History.Capacity()
	list := ListView(a.List, a.Entries, capacity, a.opts.Now())
	e, ok := a.Selected()
	preview := PreviewView(a.PreviewWidth, a.Height, e, ok)

	view := lipgloss.JoinHorizontal(lipgloss.Top, list, preview) + "\n" + renderStatusLine(a)
	return ModalView(a.Modal, view, a.Width, a.Height)
}

func renderStatusLine(a *AppModel) string {
	style := lipgloss.NewStyle().Width(a.Width)
	if a.FlashMessage != "" && a.opts.Now().Before(a.FlashExpiry) {
		return style.Foreground(lipgloss.Color("10")).Render(a.FlashMessage)
	}
	switch a.CurrentMode {
	case HelpMode:
		return style.Render("Press ? to return, ctrl+c to quit")
	case ConfirmClearMode:
		return style.Render("Confirm with y, cancel with n")
	default:
		return style.Render("enter restore  c copy  p paste last  D clear  ? help  q quit")
	}
}

func renderHelpView(a *AppModel) string {
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render("Keys") + "\n\n")

	rows := [][2]string{
		{"j / down", "next item"},
		{"k / up", "previous item"},
		{"g / G", "first / last item"},
		{"enter", "copy item to the clipboard and exit"},
		{"c", "copy item to the clipboard"},
		{"p", "copy the most recent item"},
		{"D", "clear history"},
		{"r", "reload"},
		{"q / esc", "quit"},
	}
	for _, r := range rows {
		fmt.Fprintf(&b, "  %-12s %s\n", r[0], r[1])
	}

	if a.opts.Bindings != nil {
		b.WriteString("\n" + lipgloss.NewStyle().Bold(true).Render("Bindings") + "\n\n")
		for _, bind := range a.opts.Bindings.List() {
			note := ""
			if bind.Combo.TeaKey() == "" {
				note = " (global only)"
			}
			fmt.Fprintf(&b, "  %-16s %s%s\n", bind.Combo.String(), bind.Action, note)
		}
	}

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(1, 2).
		Width(min(a.Width-4, 70)).
		Render(b.String())
}
