package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap defines the global key bindings. Pages add their own on top.
type KeyMap struct {
	// Navigation
	Home      key.Binding
	TopRated  key.Binding
	Bookmarks key.Binding
	Search    key.Binding
	Back      key.Binding

	// Actions
	Quit   key.Binding
	Help   key.Binding
	Logout key.Binding
	Reload key.Binding

	// Confirmations
	Confirm key.Binding
	Deny    key.Binding
}

// DefaultKeyMap returns the default key bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		// Navigation
		Home: key.NewBinding(
			key.WithKeys("1"),
			key.WithHelp("1", "home"),
		),
		TopRated: key.NewBinding(
			key.WithKeys("2"),
			key.WithHelp("2", "top rated"),
		),
		Bookmarks: key.NewBinding(
			key.WithKeys("3"),
			key.WithHelp("3", "bookmarks"),
		),
		Search: key.NewBinding(
			key.WithKeys("4", "s"),
			key.WithHelp("s", "search"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc", "backspace", "h"),
			key.WithHelp("esc", "back"),
		),

		// Actions
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),
		Reload: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "reload bookmarks"),
		),

		// Confirmations
		Confirm: key.NewBinding(
			key.WithKeys("y", "Y"),
			key.WithHelp("y", "yes"),
		),
		Deny: key.NewBinding(
			key.WithKeys("n", "N", "esc"),
			key.WithHelp("n", "no"),
		),
	}
}

// Keys is the global keymap instance
var Keys = DefaultKeyMap()
