package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"
)

// RightPaneMsg represents messages that the right pane component handles
type RightPaneMsg interface {
	isRightPaneMsg()
}

type ScrollUpMsg struct{}

func (ScrollUpMsg) isRightPaneMsg() {}

type ScrollDownMsg struct {
	MaxScroll int
}

func (ScrollDownMsg) isRightPaneMsg() {}

type ScrollToTopMsg struct{}

func (ScrollToTopMsg) isRightPaneMsg() {}

type ScrollToBottomMsg struct {
	MaxScroll int
}

func (ScrollToBottomMsg) isRightPaneMsg() {}

type PageUpMsg struct{}

func (PageUpMsg) isRightPaneMsg() {}

type PageDownMsg struct {
	MaxScroll int
}

func (PageDownMsg) isRightPaneMsg() {}

type ResizeRightPaneMsg struct {
	Width  int
	Height int
}

func (ResizeRightPaneMsg) isRightPaneMsg() {}

// UpdateContentMsg resets the view after the selected entry changed.
type UpdateContentMsg struct{}

func (UpdateContentMsg) isRightPaneMsg() {}

// RightPaneModel holds the state for the right pane (entry preview)
type RightPaneModel struct {
	Width   int
	Height  int
	ViewPos int // First visible line
}

// NewRightPaneModel creates a new right pane model with default values
func NewRightPaneModel(width, height int) RightPaneModel {
	return RightPaneModel{Width: width, Height: height}
}

// Update applies msg to the pane state
func (r *RightPaneModel) Update(msg RightPaneMsg) {
	switch m := msg.(type) {
	case ScrollUpMsg:
		if r.ViewPos > 0 {
			r.ViewPos--
		}
	case ScrollDownMsg:
		if r.ViewPos < m.MaxScroll {
			r.ViewPos++
		}
	case ScrollToTopMsg:
		r.ViewPos = 0
	case ScrollToBottomMsg:
		r.ViewPos = m.MaxScroll
	case PageUpMsg:
		r.ViewPos = max(r.ViewPos-r.pageSize(), 0)
	case PageDownMsg:
		r.ViewPos = min(r.ViewPos+r.pageSize(), m.MaxScroll)
	case ResizeRightPaneMsg:
		r.Width = m.Width
		r.Height = m.Height
	case UpdateContentMsg:
		r.ViewPos = 0
	}
}

// pageSize is half the visible height, like vim's ctrl+d.
func (r *RightPaneModel) pageSize() int {
	return max(r.availableHeight()/2, 1)
}

func (r *RightPaneModel) availableHeight() int {
	return max(r.Height-6, 1) // borders, title and status line
}

func (r *RightPaneModel) textWidth() int {
	return max(r.Width-6, 1)
}

// RightPaneView renders the right pane as a pure function
func RightPaneView(model RightPaneModel, entry *Entry, index int, focused bool) string {
	borderColor := "62"
	if focused {
		borderColor = "205"
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width - 2).
		Height(model.Height - 4)

	var b strings.Builder
	if entry == nil {
		b.WriteString(lipgloss.NewStyle().Bold(true).Render("Preview") + "\n\n")
		b.WriteString("Nothing selected")
		return style.Render(b.String())
	}

	entry.UpdateWrappedLines(model.textWidth())
	height := model.availableHeight()

	title := fmt.Sprintf("[%d] %s", index, entry.Stamp)
	if focused {
		title = "● " + title
	}
	if maxScroll := getMaxScroll(model, entry); maxScroll > 0 {
		bottom := min(model.ViewPos+height, len(entry.Lines))
		title += fmt.Sprintf(" (%d-%d/%d)", model.ViewPos+1, bottom, len(entry.Lines))
	}
	title = runewidth.Truncate(title, model.textWidth(), "...")
	b.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	end := min(model.ViewPos+height, len(entry.Lines))
	for i := model.ViewPos; i < end; i++ {
		b.WriteString(entry.Lines[i] + "\n")
	}

	return style.Render(strings.TrimSuffix(b.String(), "\n"))
}

// getMaxScroll returns the maximum scroll position (pure function)
func getMaxScroll(model RightPaneModel, entry *Entry) int {
	if entry == nil {
		return 0
	}
	entry.UpdateWrappedLines(model.textWidth())
	return max(len(entry.Lines)-model.availableHeight(), 0)
}
