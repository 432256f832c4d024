// Package tui implements the interactive picker for history and pins.
package tui

import (
	"fmt"
	"time"

	"github.com/charmbracelet/bubbles/help"
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/yiblet/clippy/internal/clipboard"
	"github.com/yiblet/clippy/internal/history"
)

const flashDuration = 2 * time.Second

// PaneType represents which pane is focused
type PaneType int

const (
	LeftPane PaneType = iota
	RightPane
)

// UIMode represents the current modal state of the application
type UIMode int

const (
	NormalMode UIMode = iota
	HelpMode
	DeleteMode
	ErrorMode
)

type flashExpiredMsg struct{}

// AppModel is the picker. It implements tea.Model.
type AppModel struct {
	Width       int
	Height      int
	LeftWidth   int
	RightWidth  int
	ActivePane  PaneType
	CurrentMode UIMode
	Kind        history.Kind

	LeftPane  LeftPaneModel
	RightPane RightPaneModel
	Modal     ModalModel
	Items     []*Entry

	FlashMessage string
	FlashExpiry  time.Time

	keys keyMap
	help help.Model

	manager   *history.Manager
	clipboard clipboard.Clipboard
	now       func() time.Time
}

// Option configures the picker.
type Option func(*AppModel)

// WithClock overrides the time source for timestamps and flash expiry.
func WithClock(now func() time.Time) Option {
	return func(a *AppModel) {
		a.now = now
	}
}

// NewModel creates a picker over mgr, starting on the kind list.
func NewModel(mgr *history.Manager, clip clipboard.Clipboard, kind history.Kind, opts ...Option) *AppModel {
	// Placeholder dimensions until the first WindowSizeMsg
	a := &AppModel{
		Width:       120,
		Height:      20,
		LeftWidth:   30,
		RightWidth:  88,
		ActivePane:  LeftPane,
		CurrentMode: NormalMode,
		Kind:        kind,
		LeftPane:    NewLeftPaneModel(30, 20),
		RightPane:   NewRightPaneModel(88, 20),
		Modal:       NewModalModel(),
		keys:        defaultKeyMap(),
		help:        help.New(),
		manager:     mgr,
		clipboard:   clip,
		now:         time.Now,
	}
	for _, opt := range opts {
		opt(a)
	}
	a.reload()
	return a
}

// Init implements tea.Model
func (a *AppModel) Init() tea.Cmd {
	return nil
}

// Update implements tea.Model
func (a *AppModel) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	switch m := msg.(type) {
	case tea.WindowSizeMsg:
		a.resize(m.Width, m.Height)
	case tea.KeyMsg:
		return a.handleKeyPress(m)
	case flashExpiredMsg:
		if !a.now().Before(a.FlashExpiry) {
			a.FlashMessage = ""
		}
	}
	return a, nil
}

// View implements tea.Model
func (a *AppModel) View() string {
	if a.CurrentMode == HelpMode {
		return renderHelpView(a) + "\n\n" + a.renderStatusLine()
	}

	view := a.renderNormalView()
	if a.Modal.Active {
		return ModalView(a.Modal, view, a.Width, a.Height)
	}
	return view
}

// Selected returns the entry under the cursor, or nil for an empty list.
func (a *AppModel) Selected() *Entry {
	if a.LeftPane.Cursor < 0 || a.LeftPane.Cursor >= len(a.Items) {
		return nil
	}
	return a.Items[a.LeftPane.Cursor]
}

func (a *AppModel) resize(width, height int) {
	a.Width = max(width, 30)
	a.Height = height

	const (
		minLeft   = 15
		minRight  = 20
		borderGap = 2
	)
	a.LeftWidth = max(min(30, a.Width/3), minLeft)
	a.RightWidth = max(a.Width-a.LeftWidth-borderGap, minRight)

	a.help.Width = a.Width
	a.LeftPane.Update(ResizeLeftPaneMsg{Width: a.LeftWidth, Height: a.Height})
	a.RightPane.Update(ResizeRightPaneMsg{Width: a.RightWidth, Height: a.Height})
}

// reload re-reads the current list and keeps the cursor in range.
func (a *AppModel) reload() {
	a.Items = NewEntries(a.manager.List(a.Kind), a.now())
	a.LeftPane.Update(SelectItemMsg{Index: a.LeftPane.Cursor, MaxIndex: len(a.Items) - 1})
	a.RightPane.Update(UpdateContentMsg{})
}

func (a *AppModel) handleKeyPress(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	if key.Matches(msg, a.keys.ForceQuit) {
		return a, tea.Quit
	}

	switch a.CurrentMode {
	case HelpMode:
		if key.Matches(msg, a.keys.Help, a.keys.Quit) {
			a.CurrentMode = NormalMode
		}
		return a, nil
	case DeleteMode:
		return a.handleDeleteModeKeys(msg)
	case ErrorMode:
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		return a, nil
	default:
		return a.handleNormalModeKeys(msg)
	}
}

func (a *AppModel) handleNormalModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Quit):
		return a, tea.Quit
	case key.Matches(msg, a.keys.Help):
		a.CurrentMode = HelpMode
	case key.Matches(msg, a.keys.SwitchTab):
		if a.Kind == history.KindHistory {
			a.Kind = history.KindPins
		} else {
			a.Kind = history.KindHistory
		}
		a.LeftPane.Update(GoToTopMsg{})
		a.reload()
	case key.Matches(msg, a.keys.FocusList):
		a.ActivePane = LeftPane
	case key.Matches(msg, a.keys.FocusView):
		a.ActivePane = RightPane
	case key.Matches(msg, a.keys.Up, a.keys.Down, a.keys.Top, a.keys.Bottom):
		a.move(msg)
	case key.Matches(msg, a.keys.PageUp):
		a.RightPane.Update(PageUpMsg{})
	case key.Matches(msg, a.keys.PageDown):
		a.RightPane.Update(PageDownMsg{MaxScroll: getMaxScroll(a.RightPane, a.Selected())})
	case key.Matches(msg, a.keys.Copy):
		return a, a.copySelected()
	case key.Matches(msg, a.keys.CopyQuit):
		cmd := a.copySelected()
		if a.Selected() == nil || a.Modal.Active {
			return a, cmd
		}
		return a, tea.Sequence(cmd, tea.Quit)
	case key.Matches(msg, a.keys.Pin):
		return a, a.togglePin()
	case key.Matches(msg, a.keys.Delete):
		if entry := a.Selected(); entry != nil {
			a.CurrentMode = DeleteMode
			a.Modal.Update(ShowDeleteConfirmation(entry.Preview, a.LeftPane.Cursor, a.Kind))
		}
	}
	return a, nil
}

// move handles navigation keys for the focused pane.
func (a *AppModel) move(msg tea.KeyMsg) {
	if a.ActivePane == RightPane {
		maxScroll := getMaxScroll(a.RightPane, a.Selected())
		switch {
		case key.Matches(msg, a.keys.Up):
			a.RightPane.Update(ScrollUpMsg{})
		case key.Matches(msg, a.keys.Down):
			a.RightPane.Update(ScrollDownMsg{MaxScroll: maxScroll})
		case key.Matches(msg, a.keys.Top):
			a.RightPane.Update(ScrollToTopMsg{})
		case key.Matches(msg, a.keys.Bottom):
			a.RightPane.Update(ScrollToBottomMsg{MaxScroll: maxScroll})
		}
		return
	}

	maxIndex := len(a.Items) - 1
	switch {
	case key.Matches(msg, a.keys.Up):
		a.LeftPane.Update(NavigateUpMsg{})
	case key.Matches(msg, a.keys.Down):
		a.LeftPane.Update(NavigateDownMsg{MaxIndex: maxIndex})
	case key.Matches(msg, a.keys.Top):
		a.LeftPane.Update(GoToTopMsg{})
	case key.Matches(msg, a.keys.Bottom):
		a.LeftPane.Update(GoToBottomMsg{MaxIndex: maxIndex})
	}
	a.RightPane.Update(UpdateContentMsg{})
}

func (a *AppModel) handleDeleteModeKeys(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	switch {
	case key.Matches(msg, a.keys.Confirm):
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
		rec, err := a.manager.Delete(a.Kind, a.LeftPane.Cursor)
		if err != nil {
			return a, a.showError("Delete failed", err)
		}
		a.reload()
		return a, a.setFlashMessage("Deleted: " + history.Truncate(history.Preview(rec), 40))
	case key.Matches(msg, a.keys.Cancel):
		a.Modal.Update(HideModalMsg{})
		a.CurrentMode = NormalMode
	}
	return a, nil
}

// togglePin pins the selected history entry or unpins the selected pin.
func (a *AppModel) togglePin() tea.Cmd {
	if a.Selected() == nil {
		return a.setFlashMessage("Nothing selected")
	}

	if a.Kind == history.KindPins {
		rec, err := a.manager.Unpin(a.LeftPane.Cursor)
		if err != nil {
			return a.showError("Unpin failed", err)
		}
		a.reload()
		return a.setFlashMessage("Unpinned: " + history.Truncate(history.Preview(rec), 40))
	}

	rec, err := a.manager.Pin(a.LeftPane.Cursor)
	if err != nil {
		return a.showError("Pin failed", err)
	}
	a.reload()
	return a.setFlashMessage("Pinned: " + history.Truncate(history.Preview(rec), 40))
}

// copySelected writes the selected entry back to the clipboard.
func (a *AppModel) copySelected() tea.Cmd {
	entry := a.Selected()
	if entry == nil {
		return a.setFlashMessage("Nothing selected")
	}

	data, err := a.manager.Payload(entry.Record)
	if err != nil {
		return a.showError("Copy failed", err)
	}
	format := clipboard.FormatText
	if entry.Record.IsImage() {
		format = clipboard.FormatImage
	}
	if err := a.clipboard.Write(format, data); err != nil {
		return a.showError("Copy failed", err)
	}
	return a.setFlashMessage(fmt.Sprintf("Copied %d bytes to clipboard", len(data)))
}

func (a *AppModel) showError(title string, err error) tea.Cmd {
	a.CurrentMode = ErrorMode
	a.Modal.Update(ShowError(title, err))
	return nil
}

// setFlashMessage shows message in the status line for flashDuration
func (a *AppModel) setFlashMessage(message string) tea.Cmd {
	a.FlashMessage = message
	a.FlashExpiry = a.now().Add(flashDuration)
	return tea.Tick(flashDuration, func(time.Time) tea.Msg {
		return flashExpiredMsg{}
	})
}

func (a *AppModel) renderNormalView() string {
	left := LeftPaneView(a.LeftPane, a.Items, a.Kind, a.ActivePane == LeftPane)
	right := RightPaneView(a.RightPane, a.Selected(), a.LeftPane.Cursor, a.ActivePane == RightPane)
	return lipgloss.JoinHorizontal(lipgloss.Top, left, right) + "\n\n" + a.renderStatusLine()
}

func (a *AppModel) renderStatusLine() string {
	style := lipgloss.NewStyle().Width(a.Width)

	if a.FlashMessage != "" && a.now().Before(a.FlashExpiry) {
		return style.Foreground(lipgloss.Color("10")).Render(a.FlashMessage)
	}

	switch a.CurrentMode {
	case HelpMode:
		return a.help.ShortHelpView([]key.Binding{a.keys.Help, a.keys.ForceQuit})
	case DeleteMode:
		return a.help.ShortHelpView([]key.Binding{a.keys.Confirm, a.keys.Cancel})
	default:
		return a.help.View(a.keys)
	}
}

func renderHelpView(a *AppModel) string {
	title := lipgloss.NewStyle().Bold(true).Render("clippy - clipboard history")
	body := a.help.FullHelpView(a.keys.FullHelp())

	return lipgloss.NewStyle().
		Border(lipgloss.RoundedBorder()).
		Padding(1).
		Width(max(a.Width-4, 20)).
		Render(title + "\n\n" + body)
}
