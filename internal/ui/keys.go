package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds every binding the app reacts to.
type keyMap struct {
	Down     key.Binding
	Up       key.Binding
	Activate key.Binding
	Stats    key.Binding
	Embed    key.Binding
	Data     key.Binding
	Close    key.Binding
	Back     key.Binding
	Forward  key.Binding
	Retry    key.Binding
	Theme    key.Binding
	Copy     key.Binding
	Debug    key.Binding
	Quit     key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		Down:     key.NewBinding(key.WithKeys("j", "down"), key.WithHelp("j/↓", "down")),
		Up:       key.NewBinding(key.WithKeys("k", "up"), key.WithHelp("k/↑", "up")),
		Activate: key.NewBinding(key.WithKeys("enter", " "), key.WithHelp("enter", "open")),
		Stats:    key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "stats")),
		Embed:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "embed")),
		Data:     key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "data")),
		Close:    key.NewBinding(key.WithKeys("esc", "q"), key.WithHelp("esc", "close")),
		Back:     key.NewBinding(key.WithKeys("["), key.WithHelp("[", "back")),
		Forward:  key.NewBinding(key.WithKeys("]"), key.WithHelp("]", "forward")),
		Retry:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "retry")),
		Theme:    key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "theme")),
		Copy:     key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "copy")),
		Debug:    key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "debug")),
		Quit:     key.NewBinding(key.WithKeys("ctrl+c"), key.WithHelp("ctrl+c", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.Up, k.Activate, k.Stats, k.Embed, k.Data, k.Retry, k.Theme, k.Close, k.Copy}
}

// FullHelp implements help.KeyMap.
func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Down, k.Up, k.Activate},
		{k.Stats, k.Embed, k.Data, k.Close},
		{k.Back, k.Forward, k.Retry, k.Theme, k.Copy, k.Debug, k.Quit},
	}
}
