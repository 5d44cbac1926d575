package tui

import (
	"github.com/charmbracelet/bubbles/key"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/glorpus-work/modpick/pkg/session"
)

// KeyMap defines key bindings for the browse view.
type KeyMap struct {
	Left    key.Binding
	Right   key.Binding
	Enter   key.Binding
	Option1 key.Binding
	Option2 key.Binding
	Back    key.Binding
	Quit    key.Binding
}

// DefaultKeyMap returns the default key bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "previous"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("enter", "download"),
		),
		Option1: key.NewBinding(
			key.WithKeys("1", "o"),
			key.WithHelp("1", "view github"),
		),
		Option2: key.NewBinding(
			key.WithKeys("2", "r"),
			key.WithHelp("2", "refresh"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "q"),
			key.WithHelp("esc", "back"),
		),
		Quit: key.NewBinding(
			key.WithKeys("ctrl+c"),
			key.WithHelp("ctrl+c", "quit"),
		),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Left, k.Right, k.Enter, k.Option1, k.Option2, k.Back}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{k.ShortHelp(), {k.Quit}}
}

// sessionKey maps a pressed key onto the controller's input. Keys the view
// does not bind are forwarded as KeyNone, which still triggers a fetch on an
// empty catalog.
func (k KeyMap) sessionKey(msg tea.KeyMsg) session.Key {
	switch {
	case key.Matches(msg, k.Left):
		return session.KeyLeft
	case key.Matches(msg, k.Right):
		return session.KeyRight
	case key.Matches(msg, k.Enter):
		return session.KeyEnter
	case key.Matches(msg, k.Option1):
		return session.KeyOption1
	case key.Matches(msg, k.Option2):
		return session.KeyOption2
	case key.Matches(msg, k.Back):
		return session.KeyBack
	default:
		return session.KeyNone
	}
}
