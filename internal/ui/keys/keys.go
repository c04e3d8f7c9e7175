package keys

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the bindings shared by every view
type KeyMap struct {
	Quit   key.Binding
	Back   key.Binding
	New    key.Binding
	Enter  key.Binding
	Delete key.Binding
	Edit   key.Binding
	Tab    key.Binding
	Up     key.Binding
	Down   key.Binding
	Left   key.Binding
	Right  key.Binding
	Filter key.Binding
	Save   key.Binding
	Help   key.Binding

	// Navigation between routes
	Events        key.Binding
	Dashboard     key.Binding
	Tasks         key.Binding
	Announcements key.Binding
	Profile       key.Binding
	Logout        key.Binding

	// Event actions
	RSVP key.Binding
	Chat key.Binding

	// Organizer channel
	Vote    key.Binding
	Poll    key.Binding
	Summary key.Binding
	Results key.Binding
	Refresh key.Binding

	// Task board
	Advance key.Binding
	Cancel  key.Binding
	Assign  key.Binding
	Attach  key.Binding
	Toggle  key.Binding

	// Announcements
	React   key.Binding
	Comment key.Binding
	Read    key.Binding
}

// DefaultKeyMap returns the default bindings
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Quit: key.NewBinding(
			key.WithKeys("q", "ctrl+c"),
			key.WithHelp("q", "quit"),
		),
		Back: key.NewBinding(
			key.WithKeys("esc"),
			key.WithHelp("esc", "back"),
		),
		New: key.NewBinding(
			key.WithKeys("n"),
			key.WithHelp("n", "new"),
		),
		Enter: key.NewBinding(
			key.WithKeys("enter"),
			key.WithHelp("↵", "select"),
		),
		Delete: key.NewBinding(
			key.WithKeys("d"),
			key.WithHelp("d", "delete"),
		),
		Edit: key.NewBinding(
			key.WithKeys("e"),
			key.WithHelp("e", "edit"),
		),
		Tab: key.NewBinding(
			key.WithKeys("tab"),
			key.WithHelp("tab", "next"),
		),
		Up: key.NewBinding(
			key.WithKeys("up", "k"),
			key.WithHelp("↑/k", "up"),
		),
		Down: key.NewBinding(
			key.WithKeys("down", "j"),
			key.WithHelp("↓/j", "down"),
		),
		Left: key.NewBinding(
			key.WithKeys("left", "h"),
			key.WithHelp("←/h", "prev page"),
		),
		Right: key.NewBinding(
			key.WithKeys("right", "l"),
			key.WithHelp("→/l", "next page"),
		),
		Filter: key.NewBinding(
			key.WithKeys("f"),
			key.WithHelp("f", "filter"),
		),
		Save: key.NewBinding(
			key.WithKeys("ctrl+s"),
			key.WithHelp("ctrl+s", "save"),
		),
		Help: key.NewBinding(
			key.WithKeys("?"),
			key.WithHelp("?", "help"),
		),

		Events: key.NewBinding(
			key.WithKeys("E"),
			key.WithHelp("E", "events"),
		),
		Dashboard: key.NewBinding(
			key.WithKeys("D"),
			key.WithHelp("D", "dashboard"),
		),
		Tasks: key.NewBinding(
			key.WithKeys("T"),
			key.WithHelp("T", "tasks"),
		),
		Announcements: key.NewBinding(
			key.WithKeys("A"),
			key.WithHelp("A", "announcements"),
		),
		Profile: key.NewBinding(
			key.WithKeys("P"),
			key.WithHelp("P", "profile"),
		),
		Logout: key.NewBinding(
			key.WithKeys("L"),
			key.WithHelp("L", "logout"),
		),

		RSVP: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "rsvp"),
		),
		Chat: key.NewBinding(
			key.WithKeys("o"),
			key.WithHelp("o", "organizer chat"),
		),

		Vote: key.NewBinding(
			key.WithKeys("v"),
			key.WithHelp("v", "vote"),
		),
		Poll: key.NewBinding(
			key.WithKeys("ctrl+p"),
			key.WithHelp("ctrl+p", "toggle poll"),
		),
		Summary: key.NewBinding(
			key.WithKeys("s"),
			key.WithHelp("s", "summary"),
		),
		Results: key.NewBinding(
			key.WithKeys("r"),
			key.WithHelp("r", "results"),
		),
		Refresh: key.NewBinding(
			key.WithKeys("ctrl+r"),
			key.WithHelp("ctrl+r", "refresh"),
		),

		Advance: key.NewBinding(
			key.WithKeys(" "),
			key.WithHelp("space", "advance status"),
		),
		Cancel: key.NewBinding(
			key.WithKeys("x"),
			key.WithHelp("x", "cancel"),
		),
		Assign: key.NewBinding(
			key.WithKeys("a"),
			key.WithHelp("a", "assign"),
		),
		Attach: key.NewBinding(
			key.WithKeys("u"),
			key.WithHelp("u", "attach"),
		),
		Toggle: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "toggle"),
		),

		React: key.NewBinding(
			key.WithKeys("+"),
			key.WithHelp("+", "react"),
		),
		Comment: key.NewBinding(
			key.WithKeys("c"),
			key.WithHelp("c", "comment"),
		),
		Read: key.NewBinding(
			key.WithKeys("m"),
			key.WithHelp("m", "mark read"),
		),
	}
}
