package tui

import (
	"fmt"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/mattn/go-runewidth"

	"github.com/yiblet/clippy/internal/history"
)

// LeftPaneMsg represents messages that the left pane component handles
type LeftPaneMsg interface {
	isLeftPaneMsg()
}

type NavigateUpMsg struct{}

func (NavigateUpMsg) isLeftPaneMsg() {}

type NavigateDownMsg struct {
	MaxIndex int // Maximum valid index for bounds checking
}

func (NavigateDownMsg) isLeftPaneMsg() {}

// SelectItemMsg moves the cursor to Index, clamped to the list.
type SelectItemMsg struct {
	Index    int
	MaxIndex int
}

func (SelectItemMsg) isLeftPaneMsg() {}

type GoToTopMsg struct{}

func (GoToTopMsg) isLeftPaneMsg() {}

type GoToBottomMsg struct {
	MaxIndex int
}

func (GoToBottomMsg) isLeftPaneMsg() {}

type ResizeLeftPaneMsg struct {
	Width  int
	Height int
}

func (ResizeLeftPaneMsg) isLeftPaneMsg() {}

// LeftPaneModel holds the state for the left pane (entry list)
type LeftPaneModel struct {
	Cursor int // Selected entry index
	Offset int // First visible entry
	Width  int
	Height int
}

// NewLeftPaneModel creates a new left pane model with default values
func NewLeftPaneModel(width, height int) LeftPaneModel {
	return LeftPaneModel{Width: width, Height: height}
}

// Update applies msg to the pane state
func (l *LeftPaneModel) Update(msg LeftPaneMsg) {
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
		l.Cursor = max(m.MaxIndex, 0)
	case SelectItemMsg:
		l.Cursor = min(max(m.Index, 0), max(m.MaxIndex, 0))
	case ResizeLeftPaneMsg:
		l.Width = m.Width
		l.Height = m.Height
	}
	l.scroll()
}

// visibleRows is the number of entries that fit under the pane title.
func (l *LeftPaneModel) visibleRows() int {
	return max(l.Height-6, 1)
}

// scroll keeps the cursor inside the visible window.
func (l *LeftPaneModel) scroll() {
	rows := l.visibleRows()
	if l.Cursor < l.Offset {
		l.Offset = l.Cursor
	}
	if l.Cursor >= l.Offset+rows {
		l.Offset = l.Cursor - rows + 1
	}
}

// LeftPaneView renders the left pane as a pure function
func LeftPaneView(model LeftPaneModel, entries []*Entry, kind history.Kind, focused bool) string {
	borderColor := "62"
	if focused {
		borderColor = "205"
	}

	style := lipgloss.NewStyle().
		Border(lipgloss.NormalBorder()).
		BorderForeground(lipgloss.Color(borderColor)).
		Padding(0, 1).
		Width(model.Width).
		Height(model.Height - 4)

	var content strings.Builder
	title := fmt.Sprintf("%s (%d)", paneTitle(kind), len(entries))
	if focused {
		title = "● " + title
	}
	content.WriteString(lipgloss.NewStyle().Bold(true).Render(title) + "\n\n")

	if len(entries) == 0 {
		content.WriteString("(empty)")
		return style.Render(content.String())
	}

	lineWidth := max(model.Width-2, 4) // inside the padding
	end := min(model.Offset+model.visibleRows(), len(entries))
	for i := model.Offset; i < end; i++ {
		line := runewidth.Truncate(fmt.Sprintf("%d. %s", i, entries[i].Preview), lineWidth, "...")
		if i == model.Cursor {
			line = lipgloss.NewStyle().
				Background(lipgloss.Color("62")).
				Foreground(lipgloss.Color("230")).
				Width(lineWidth).
				Render(line)
		}
		content.WriteString(line + "\n")
	}

	return style.Render(strings.TrimSuffix(content.String(), "\n"))
}

func paneTitle(kind history.Kind) string {
	if kind == history.KindPins {
		return "Pins"
	}
	return "History"
}
