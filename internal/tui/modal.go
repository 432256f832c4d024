package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yiblet/clippy/internal/history"
)

// ModalMsg represents messages that the modal component handles
type ModalMsg interface {
	isModalMsg()
}

// Modal message implementations
type ShowModalMsg struct {
	Title   string
	Content string
	Options string
}

func (ShowModalMsg) isModalMsg() {}

type HideModalMsg struct{}

func (HideModalMsg) isModalMsg() {}

// ModalModel holds the state for modal dialogs
type ModalModel struct {
	Active  bool
	Title   string
	Content string
	Options string
	Width   int
	Height  int
}

// NewModalModel creates a new modal model
func NewModalModel() ModalModel {
	return ModalModel{Width: 50, Height: 7}
}

// Update handles modal messages
func (m *ModalModel) Update(msg ModalMsg) {
	switch msg := msg.(type) {
	case ShowModalMsg:
		m.Active = true
		m.Title = msg.Title
		m.Content = msg.Content
		m.Options = msg.Options
	case HideModalMsg:
		m.Active = false
		m.Title = ""
		m.Content = ""
		m.Options = ""
	}
}

// ModalView overlays the modal, centered, on top of backgroundView
func ModalView(model ModalModel, backgroundView string, windowWidth, windowHeight int) string {
	if !model.Active {
		return backgroundView
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
		Width(min(model.Width, max(windowWidth-4, 10))).
		Height(min(model.Height, max(windowHeight-4, 3))).
		Align(lipgloss.Center, lipgloss.Center).
		Render(body)

	bgLines := strings.Split(backgroundView, "\n")
	modalLines := strings.Split(modal, "\n")
	top := max((windowHeight-len(modalLines))/2, 0)
	left := max((windowWidth-lipgloss.Width(modalLines[0]))/2, 0)

	for i, modalLine := range modalLines {
		row := top + i
		if row >= len(bgLines) {
			break
		}
		bg := bgLines[row]
		right := left + lipgloss.Width(modalLine)

		var line strings.Builder
		line.WriteString(truncateToVisualWidth(bg, left))
		if pad := left - lipgloss.Width(line.String()); pad > 0 {
			line.WriteString(strings.Repeat(" ", pad))
		}
		line.WriteString(modalLine)
		if right < lipgloss.Width(bg) {
			line.WriteString(truncateFromVisualWidth(bg, right))
		}
		bgLines[row] = line.String()
	}

	return strings.Join(bgLines, "\n")
}

// ShowDeleteConfirmation creates a delete confirmation modal
func ShowDeleteConfirmation(preview string, index int, kind history.Kind) ShowModalMsg {
	return ShowModalMsg{
		Title:   fmt.Sprintf("Delete %s entry %d?", kind, index),
		Content: history.Truncate(preview, 40),
		Options: "[y] delete    [n] cancel",
	}
}

// ShowError creates a modal reporting a failed action
func ShowError(title string, err error) ShowModalMsg {
	return ShowModalMsg{
		Title:   title,
		Content: err.Error(),
		Options: "Press any key to continue",
	}
}

// truncateToVisualWidth returns the prefix of a styled string that occupies
// targetWidth terminal cells. ANSI escapes are copied through.
func truncateToVisualWidth(s string, targetWidth int) string {
	if targetWidth <= 0 {
		return ""
	}

	var result strings.Builder
	width := 0
	inEscape := false
	for _, r := range s {
		if r == '\x1b' {
			inEscape = true
		}
		if inEscape {
			result.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
			continue
		}

		w := runewidth.RuneWidth(r)
		if width+w > targetWidth {
			break
		}
		result.WriteRune(r)
		width += w
	}
	return result.String()
}

// truncateFromVisualWidth returns the part of a styled string starting at
// terminal cell startWidth. Escapes seen before that point are replayed so
// the remaining text keeps its style.
func truncateFromVisualWidth(s string, startWidth int) string {
	if startWidth <= 0 {
		return s
	}

	var escapes strings.Builder
	width := 0
	inEscape := false
	for i, r := range s {
		if r == '\x1b' {
			inEscape = true
		}
		if inEscape {
			escapes.WriteRune(r)
			if r == 'm' {
				inEscape = false
			}
			continue
		}
		if width >= startWidth {
			return escapes.String() + s[i:]
		}
		width += runewidth.RuneWidth(r)
	}
	return ""
}
