// ABOUTME: Key bindings for the field browser and capture pane
// ABOUTME: Implements help.KeyMap so the footer lists the active keys

package tui

import "github.com/charmbracelet/bubbles/key"

type browseKeys struct {
	Up        key.Binding
	Down      key.Binding
	Favourite key.Binding
	Delete    key.Binding
	Add       key.Binding
	Reload    key.Binding
	Quit      key.Binding
}

func newBrowseKeys() browseKeys {
	return browseKeys{
		Up:        key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:      key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Favourite: key.NewBinding(key.WithKeys("f"), key.WithHelp("f", "favourite")),
		Delete:    key.NewBinding(key.WithKeys("d", "x"), key.WithHelp("d", "delete")),
		Add:       key.NewBinding(key.WithKeys("a"), key.WithHelp("a", "add field")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k browseKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Favourite, k.Delete, k.Add, k.Reload, k.Quit}
}

func (k browseKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{{k.Up, k.Down}, k.ShortHelp()}
}

type captureKeys struct {
	Enter    key.Binding
	Switch   key.Binding
	Undo     key.Binding
	Submit   key.Binding
	Cancel   key.Binding
	ForceOut key.Binding
}

func newCaptureKeys() captureKeys {
	return captureKeys{
		Enter:    key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "add point / save")),
		Switch:   key.NewBinding(key.WithKeys("tab", "shift+tab"), key.WithHelp("tab", "point/name")),
		Undo:     key.NewBinding(key.WithKeys("ctrl+x"), key.WithHelp("ctrl+x", "remove last point")),
		Submit:   key.NewBinding(key.WithKeys("ctrl+s"), key.WithHelp("ctrl+s", "save")),
		Cancel:   key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "cancel")),
		ForceOut: key.NewBinding(key.WithKeys("ctrl+c")),
	}
}

func (k captureKeys) ShortHelp() []key.Binding {
	return []key.Binding{k.Enter, k.Switch, k.Undo, k.Submit, k.Cancel}
}

func (k captureKeys) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp()}
}
