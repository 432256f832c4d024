package tui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the picker bindings. It satisfies help.KeyMap.
type keyMap struct {
	Up        key.Binding
	Down      key.Binding
	Top       key.Binding
	Bottom    key.Binding
	FocusList key.Binding
	FocusView key.Binding
	PageUp    key.Binding
	PageDown  key.Binding
	SwitchTab key.Binding

	CopyQuit key.Binding
	Copy     key.Binding
	Pin      key.Binding
	Delete   key.Binding

	Confirm   key.Binding
	Cancel    key.Binding
	Help      key.Binding
	Quit      key.Binding
	ForceQuit key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:        key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Down:      key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Top:       key.NewBinding(key.WithKeys("g", "home"), key.WithHelp("g", "first")),
		Bottom:    key.NewBinding(key.WithKeys("G", "end"), key.WithHelp("G", "last")),
		FocusList: key.NewBinding(key.WithKeys("h", "left"), key.WithHelp("h", "focus list")),
		FocusView: key.NewBinding(key.WithKeys("l", "right"), key.WithHelp("l", "focus preview")),
		PageUp:    key.NewBinding(key.WithKeys("ctrl+u", "pgup"), key.WithHelp("ctrl+u", "preview page up")),
		PageDown:  key.NewBinding(key.WithKeys("ctrl+d", "pgdown"), key.WithHelp("ctrl+d", "preview page down")),
		SwitchTab: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "history/pins")),

		CopyQuit: key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "copy & quit")),
		Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Pin:      key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "pin/unpin")),
		Delete:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "delete")),

		Confirm:   key.NewBinding(key.WithKeys("y", "Y"), key.WithHelp("y", "confirm")),
		Cancel:    key.NewBinding(key.WithKeys("n", "N", "esc", "q"), key.WithHelp("n", "cancel")),
		Help:      key.NewBinding(key.WithKeys("z", "?"), key.WithHelp("z", "help")),
		Quit:      key.NewBinding(key.WithKeys("q", "esc"), key.WithHelp("q", "quit")),
		ForceQuit: key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.SwitchTab, k.CopyQuit, k.Copy, k.Pin, k.Delete, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Top, k.Bottom, k.SwitchTab},
		{k.FocusList, k.FocusView, k.PageDown, k.PageUp},
		{k.CopyQuit, k.Copy, k.Pin, k.Delete},
		{k.Help, k.Quit},
	}
}
