package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Primary key.Binding
	Reset   key.Binding
	Presets key.Binding
	Custom  key.Binding
	Sound   key.Binding
	Up      key.Binding
	Down    key.Binding
	Confirm key.Binding
	Cancel  key.Binding
	Quit    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Primary: key.NewBinding(key.WithKeys(" ", "enter"), key.WithHelp("space", "start/pause/stop")),
		Reset:   key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reset")),
		Presets: key.NewBinding(key.WithKeys("1", "2", "3", "4", "5", "6"), key.WithHelp("1-6", "preset")),
		Custom:  key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "custom")),
		Sound:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sound")),
		Up:      key.NewBinding(key.WithKeys("up", "k", "+")),
		Down:    key.NewBinding(key.WithKeys("down", "j", "-")),
		Confirm: key.NewBinding(key.WithKeys("enter", " ")),
		Cancel:  key.NewBinding(key.WithKeys("esc")),
		Quit:    key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) help() []key.Binding {
	return []key.Binding{k.Primary, k.Reset, k.Presets, k.Custom, k.Sound, k.Quit}
}
