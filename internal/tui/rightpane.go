package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/cliphist/internal/history"
)

// PreviewView renders the selected entry with its metadata
func PreviewView(width, height int, e history.Entry, ok bool) string {
	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color("62")).
		Padding(0, 1).
		Width(width).
		Height(height - 4)

	if !ok {
		return style.Render("")
	}

	meta := lipgloss.NewStyle().Foreground(lipgloss.Color("241"))
	var b strings.Builder
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(e.Kind().String()))
	b.WriteString(meta.Render(fmt.Sprintf("  %d bytes  %s  %s",
		e.Size(),
		e.CapturedAt().Local().Format("2006-01-02 15:04:05"),
		e.Fingerprint().Short())))
	b.WriteString("\n\n")

	if e.Kind() == history.KindImage {
		b.WriteString(e.Preview(history.PreviewLength))
		return style.Render(b.String())
	}

	// Long text is cut to the pane; lipgloss wraps within the width.
	lines := strings.Split(e.Text(), "\n")
	room := max(height-8, 1)
	if len(lines) > room {
		more := len(lines) - room
		lines = append(lines[:room], meta.Render(fmt.Sprintf("... %d more lines", more)))
	}
	for i, l := range lines {
		lines[i] = strings.ReplaceAll(l, "\t", "    ")
	}
	b.WriteString(strings.Join(lines, "\n"))
	return style.Render(b.String())
}
