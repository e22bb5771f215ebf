package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"
)

// ModalModel holds a confirmation dialog
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
}

// Show opens the dialog
func (m *ModalModel) Show(title, content, options string) {
	m.Active = true
	m.Title = title
	m.Content = content
	m.Options = options
}

// Hide closes the dialog
func (m *ModalModel) Hide() {
	*m = ModalModel{}
}

// ModalView overlays the dialog on the middle of background
func ModalView(model ModalModel, background string, windowWidth, windowHeight int) string {
	if !model.Active {
		return background
	}

	body := model.Title
	if model.Content != "" {
		body += "\n\n" + model.Content
	}
	if model.Options != "" {
		body += "\n\n" + model.Options
	}

	modal := lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		BorderForeground(lipgloss.Color("9")).
		Padding(1, 2).
		Width(min(50, max(windowWidth-4, 10))).
		Align(lipgloss.Center).
		Render(body)

	bgLines := strings.Split(background, "\n")
	modalLines := strings.Split(modal, "\n")
	top := max((windowHeight-len(modalLines))/2, 0)
	left := max((windowWidth-lipgloss.Width(modalLines[0]))/2, 0)
	pad := strings.Repeat(" ", left)

	for len(bgLines) < top+len(modalLines) {
		bgLines = append(bgLines, "")
	}
	for i, l := range modalLines {
		bgLines[top+i] = pad + l
	}
	return strings.Join(bgLines, "\n")
}
