package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap holds the picker bindings. List navigation and filtering are left to [list.Model].
type keyMap struct {
	enter      key.Binding
	switchKind key.Binding
	tracks     key.Binding
	back       key.Binding
	yes        key.Binding
	no         key.Binding
	restart    key.Binding
	quit       key.Binding
}

func newKeyMap() keyMap {
	return keyMap{
		enter:      key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "select")),
		switchKind: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "albums/songs")),
		tracks:     key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "tracklist")),
		back:       key.NewBinding(key.WithKeys("esc"), key.WithHelp("esc", "back")),
		yes:        key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "fetch")),
		no:         key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "cancel")),
		restart:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "pick another")),
		quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// resultHelp lists the bindings shown under the search results.
func (k keyMap) resultHelp() []key.Binding {
	return []key.Binding{k.enter, k.switchKind, k.quit}
}

// confirmHelp lists the bindings shown on the confirm screen.
func (k keyMap) confirmHelp() []key.Binding {
	return []key.Binding{k.yes, k.no, k.tracks}
}
