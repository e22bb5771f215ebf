package tui

import (
	"io"
	"log/slog"
	"path/filepath"
	"strings"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/yiblet/cliphist/internal/clipboard"
	"github.com/yiblet/cliphist/internal/clipboard/mockboard"
	"github.com/yiblet/cliphist/internal/dispatch"
	"github.com/yiblet/cliphist/internal/keybind"
	"github.com/yiblet/cliphist/internal/manager"
	"github.com/yiblet/cliphist/internal/store/memstore"
)

type fixture struct {
	app   *AppModel
	mgr   *manager.Manager
	board *mockboard.MockClipboard
}

// setupApp builds a picker over a manager holding the given values, oldest first.
func setupApp(t *testing.T, values ...string) fixture {
	t.Helper()

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	mgr, err := manager.New(manager.Options{Persister: memstore.NewMemoryStore(), Logger: logger})
	if err != nil {
		t.Fatal(err)
	}
	for _, v := range values {
		if _, _, err := mgr.Observe(clipboard.Text(v)); err != nil {
			t.Fatal(err)
		}
	}

	bindings, err := keybind.Load(filepath.Join(t.TempDir(), "keybindings.json"), logger)
	if err != nil {
		t.Fatal(err)
	}

	board := mockboard.New()
	app := NewAppModel(Options{
		History:    mgr,
		Dispatcher: dispatch.New(mgr, board, dispatch.WithLogger(logger)),
		Bindings:   bindings,
		Logger:     logger,
	})
	return fixture{app: app, mgr: mgr, board: board}
}

func runes(s string) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune(s)}
}

func isQuit(cmd tea.Cmd) bool {
	if cmd == nil {
		return false
	}
	_, ok := cmd().(tea.QuitMsg)
	return ok
}

func TestNewAppModel(t *testing.T) {
	f := setupApp(t, "one", "two")

	if len(f.app.Entries) != 2 {
		t.Fatalf("Expected 2 entries, got %d", len(f.app.Entries))
	}
	if f.app.Entries[0].Text() != "two" {
		t.Errorf("Expected most recent entry first, got %q", f.app.Entries[0].Text())
	}
	if f.app.CurrentMode != NormalMode {
		t.Errorf("Expected NormalMode, got %v", f.app.CurrentMode)
	}
}

func TestAppModel_WindowResize(t *testing.T) {
	f := setupApp(t, "one")

	f.app.Update(tea.WindowSizeMsg{Width: 140, Height: 30})
	if f.app.Width != 140 || f.app.Height != 30 {
		t.Errorf("size = %dx%d, want 140x30", f.app.Width, f.app.Height)
	}
	if f.app.ListWidth != 84 {
		t.Errorf("ListWidth = %d, want 84", f.app.ListWidth)
	}
	if f.app.List.Height != 30 {
		t.Errorf("List.Height = %d, want 30", f.app.List.Height)
	}

	f.app.Update(tea.WindowSizeMsg{Width: 5, Height: 2})
	if f.app.Width != 30 || f.app.Height != 8 {
		t.Errorf("minimum size not enforced: %dx%d", f.app.Width, f.app.Height)
	}
}

func TestAppModel_Navigation(t *testing.T) {
	f := setupApp(t, "a", "b", "c")

	f.app.Update(runes("j"))
	f.app.Update(tea.KeyMsg{Type: tea.KeyDown})
	if f.app.List.Cursor != 2 {
		t.Errorf("Cursor = %d, want 2", f.app.List.Cursor)
	}
	f.app.Update(runes("j"))
	if f.app.List.Cursor != 2 {
		t.Errorf("Cursor moved past the end: %d", f.app.List.Cursor)
	}
	f.app.Update(runes("k"))
	if f.app.List.Cursor != 1 {
		t.Errorf("Cursor = %d, want 1", f.app.List.Cursor)
	}
	f.app.Update(runes("g"))
	if f.app.List.Cursor != 0 {
		t.Errorf("Cursor = %d after g, want 0", f.app.List.Cursor)
	}
	f.app.Update(runes("G"))
	if f.app.List.Cursor != 2 {
		t.Errorf("Cursor = %d after G, want 2", f.app.List.Cursor)
	}
}

func TestAppModel_EnterRestoresAndQuits(t *testing.T) {
	f := setupApp(t, "hello", "world")

	f.app.Update(runes("j"))
	_, cmd := f.app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if !isQuit(cmd) {
		t.Error("enter did not quit")
	}
	if f.app.Restored == nil || f.app.Restored.Text() != "hello" {
		t.Errorf("Restored = %v, want hello", f.app.Restored)
	}

	snap, _ := f.board.Snapshot()
	if string(snap.Data) != "hello" {
		t.Errorf("clipboard = %q, want hello", snap.Data)
	}
	// Restoring does not reorder the history.
	if f.mgr.Entries()[0].Text() != "world" {
		t.Error("restore moved the entry to the front")
	}
}

func TestAppModel_CopyKeepsRunning(t *testing.T) {
	f := setupApp(t, "hello")

	f.app.Update(runes("c"))
	if f.app.Restored != nil {
		t.Error("c ended the picker")
	}
	snap, _ := f.board.Snapshot()
	if string(snap.Data) != "hello" {
		t.Errorf("clipboard = %q, want hello", snap.Data)
	}
	if !strings.HasPrefix(f.app.FlashMessage, "Copied") {
		t.Errorf("FlashMessage = %q", f.app.FlashMessage)
	}
}

func TestAppModel_EnterOnEmptyHistory(t *testing.T) {
	f := setupApp(t)

	f.app.Update(tea.KeyMsg{Type: tea.KeyEnter})
	if f.app.Restored != nil {
		t.Error("enter on empty history restored an entry")
	}
	if f.app.FlashMessage != "History is empty" {
		t.Errorf("FlashMessage = %q", f.app.FlashMessage)
	}
}

func TestAppModel_PasteLastBinding(t *testing.T) {
	f := setupApp(t, "older", "newest")

	// Ctrl+Shift+V arrives in a terminal as ctrl+v.
	f.app.Update(tea.KeyMsg{Type: tea.KeyCtrlV})
	snap, _ := f.board.Snapshot()
	if string(snap.Data) != "newest" {
		t.Errorf("clipboard = %q, want newest", snap.Data)
	}
}

func TestAppModel_ClearHistory(t *testing.T) {
	f := setupApp(t, "a", "b")

	f.app.Update(runes("D"))
	if f.app.CurrentMode != ConfirmClearMode || !f.app.Modal.Active {
		t.Fatalf("mode = %v, modal active = %v", f.app.CurrentMode, f.app.Modal.Active)
	}
	if !strings.Contains(f.app.View(), "Clear history?") {
		t.Error("confirmation dialog not rendered")
	}

	f.app.Update(runes("n"))
	if f.app.CurrentMode != NormalMode || f.mgr.Len() != 2 {
		t.Errorf("cancel: mode = %v, Len() = %d", f.app.CurrentMode, f.mgr.Len())
	}

	f.app.Update(runes("D"))
	f.app.Update(runes("y"))
	if f.mgr.Len() != 0 || len(f.app.Entries) != 0 {
		t.Errorf("after confirm: Len() = %d, entries = %d", f.mgr.Len(), len(f.app.Entries))
	}
	if f.app.Modal.Active {
		t.Error("modal still active")
	}
}

func TestAppModel_ClearBindingOpensConfirm(t *testing.T) {
	f := setupApp(t, "a")

	f.app.Update(tea.KeyMsg{Type: tea.KeyCtrlC, Alt: true})
	if f.app.CurrentMode != ConfirmClearMode {
		t.Errorf("Ctrl+Alt+C: mode = %v, want ConfirmClearMode", f.app.CurrentMode)
	}
}

func TestAppModel_QuitKeys(t *testing.T) {
	keys := []tea.KeyMsg{
		runes("q"),
		{Type: tea.KeyEsc},
		{Type: tea.KeyCtrlC},
		{Type: tea.KeyCtrlV, Alt: true}, // activate toggles the picker away
	}
	for _, k := range keys {
		t.Run(k.String(), func(t *testing.T) {
			f := setupApp(t, "a")
			if _, cmd := f.app.Update(k); !isQuit(cmd) {
				t.Errorf("%s did not quit", k.String())
			}
		})
	}
}

func TestAppModel_HelpMode(t *testing.T) {
	f := setupApp(t, "a")

	f.app.Update(runes("?"))
	if f.app.CurrentMode != HelpMode {
		t.Fatalf("mode = %v, want HelpMode", f.app.CurrentMode)
	}
	view := f.app.View()
	for _, want := range []string{"Ctrl+Alt+V", "paste_last", "clear history"} {
		if !strings.Contains(view, want) {
			t.Errorf("help view missing %q", want)
		}
	}

	_, cmd := f.app.Update(runes("q"))
	if isQuit(cmd) {
		t.Error("q in help mode quit instead of closing help")
	}
	if f.app.CurrentMode != NormalMode {
		t.Errorf("mode = %v after closing help", f.app.CurrentMode)
	}
}

func TestAppModel_Refresh(t *testing.T) {
	f := setupApp(t, "a")
	reloads := 0
	f.app.opts.Reload = func() error { reloads++; return nil }

	f.mgr.Observe(clipboard.Text("b"))
	_, cmd := f.app.Update(refreshMsg{})
	if cmd == nil {
		t.Error("refresh did not schedule the next tick")
	}
	if reloads != 1 {
		t.Errorf("Reload called %d times, want 1", reloads)
	}
	if len(f.app.Entries) != 2 || f.app.Entries[0].Text() != "b" {
		t.Errorf("entries after refresh = %d", len(f.app.Entries))
	}

	// The cursor follows a shrinking history.
	f.app.Update(runes("G"))
	f.mgr.ClearHistory()
	f.app.Update(refreshMsg{})
	if f.app.List.Cursor != 0 {
		t.Errorf("Cursor = %d after history emptied", f.app.List.Cursor)
	}
}

func TestAppModel_View(t *testing.T) {
	f := setupApp(t, "first line\nsecond line", "world")
	f.app.Update(tea.WindowSizeMsg{Width: 120, Height: 24})

	view := f.app.View()
	for _, want := range []string{"History (2/10)", "world", "first line"} {
		if !strings.Contains(view, want) {
			t.Errorf("view missing %q", want)
		}
	}
}

func TestAppModel_ViewEmpty(t *testing.T) {
	f := setupApp(t)
	if !strings.Contains(f.app.View(), "Nothing copied yet.") {
		t.Error("empty view missing placeholder")
	}
}

func TestAppModel_FlashExpires(t *testing.T) {
	f := setupApp(t, "a")
	now := time.Now()
	f.app.opts.Now = func() time.Time { return now }

	f.app.Update(runes("c"))
	if f.app.FlashMessage == "" {
		t.Fatal("no flash message")
	}
	now = now.Add(3 * time.Second)
	f.app.Update(flashExpiredMsg{})
	if f.app.FlashMessage != "" {
		t.Errorf("FlashMessage = %q after expiry", f.app.FlashMessage)
	}
}

func TestFormatAge(t *testing.T) {
	tests := []struct {
		d    time.Duration
		want string
	}{
		{-time.Second, "0s"},
		{5 * time.Second, "5s"},
		{3 * time.Minute, "3m"},
		{2 * time.Hour, "2h"},
		{50 * time.Hour, "2d"},
	}
	for _, tt := range tests {
		if got := FormatAge(tt.d); got != tt.want {
			t.Errorf("FormatAge(%s) = %q, want %q", tt.d, got, tt.want)
		}
	}
}
