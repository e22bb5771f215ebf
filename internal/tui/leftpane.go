package tui

import (
	"fmt"
	"strings"
	"time"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/cliphist/internal/history"
)

// ListMsg represents messages that the list pane handles
type ListMsg interface {
	isListMsg()
}

type NavigateUpMsg struct{}

func (NavigateUpMsg) isListMsg() {}

type NavigateDownMsg struct {
	MaxIndex int // Maximum valid index for bounds checking
}

func (NavigateDownMsg) isListMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isListMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isListMsg() {}

type ResizeListMsg struct {
	Width  int
	Height int
}

func (ResizeListMsg) isListMsg() {}

// ListModel holds the state for the entry list
type ListModel struct {
	Cursor int
	Offset int // First visible row
	Width  int
	Height int
}

// NewListModel creates a list model with the given size
func NewListModel(width, height int) ListModel {
	return ListModel{Width: width, Height: height}
}

// Update applies a list message
func (l *ListModel) Update(msg ListMsg) {
	switch m := msg.(type) {
	case NavigateUpMsg:
		if l.Cursor > 0 {
			l.Cursor--
		}
	case NavigateDownMsg:
		if l.Cursor < m.MaxIndex {
			l.Cursor++
		}
	case GoToTopMsg:
		l.Cursor = 0
	case GoToBottomMsg:
		if m.MaxIndex >= 0 {
			l.Cursor = m.MaxIndex
		}
	case ResizeListMsg:
		l.Width = m.Width
		l.Height = m.Height
	}
	l.scroll()
}

// Clamp keeps the cursor within n entries.
func (l *ListModel) Clamp(n int) {
	if l.Cursor >= n {
		l.Cursor = max(n-1, 0)
	}
	l.scroll()
}

func (l *ListModel) visibleRows() int {
	return max(l.Height-6, 1)
}

// scroll keeps the cursor inside the visible window.
func (l *ListModel) scroll() {
	rows := l.visibleRows()
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+rows {
		l.Offset = l.Cursor - rows + 1
	}
}

// entryLine renders one row: index, kind marker, preview and age.
func entryLine(i int, e history.Entry, width int, now time.Time) string {
	marker := "T"
	if e.Kind() == history.KindImage {
		marker = "I"
	}
	age := FormatAge(now.Sub(e.CapturedAt()))
	prefix := fmt.Sprintf("%2d %s ", i, marker)
	room := width - lipgloss.Width(prefix) - len(age) - 1
	preview := history.Truncate(e.Preview(max(room, 4)), max(room, 4))
	gap := max(width-lipgloss.Width(prefix)-lipgloss.Width(preview)-len(age), 1)
	return prefix + preview + strings.Repeat(" ", gap) + age
}

// ListView renders the list pane
func ListView(model ListModel, entries []history.Entry, capacity int, now time.Time) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("205")).
		Padding(0, 1).
		Width(model.Width).
		Height(model.Height - 4)

	inner := model.Width - 4
	var content strings.Builder
	title := fmt.Sprintf("History (%d/%d)", len(entries), capacity)
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	if len(entries) == 0 {
		content.WriteString("Nothing copied yet.")
		return style.Render(content.String())
	}

	end := min(model.Offset+model.visibleRows(), len(entries))
	for i := model.Offset; i < end; i++ {
		line := entryLine(i, entries[i], inner, now)
		if i == model.Cursor {
			line = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				Width(inner).
				Render(line)
		}
		content.WriteString(line + "\n")
	}

	return style.Render(content.String())
}

// FormatAge renders a duration the way the list shows it: 5s, 3m, 2h, 4d.
func FormatAge(d time.Duration) string {
	switch {
	case d < time.Minute:
		return fmt.Sprintf("%ds", max(int(d/time.Second), 0))
	case d < time.Hour:
		return fmt.Sprintf("%dm", int(d/time.Minute))
	case d < 24*time.Hour:
		return fmt.Sprintf("%dh", int(d/time.Hour))
	default:
		return fmt.Sprintf("%dd", int(d/(24*time.Hour)))
	}
}
