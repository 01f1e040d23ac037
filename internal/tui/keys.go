package tui

import "github.com/charmbracelet/bubbles/key"

// KeyMap holds the table bindings. It satisfies help.KeyMap.
type KeyMap struct {
	Up         key.Binding
	Down       key.Binding
	PageUp     key.Binding
	PageDown   key.Binding
	Home       key.Binding
	End        key.Binding
	Left       key.Binding
	Right      key.Binding
	NextColumn key.Binding
	PrevColumn key.Binding
	Toggle     key.Binding
	Sort       key.Binding
	Grow       key.Binding
	Shrink     key.Binding
	Help       key.Binding
	Quit       key.Binding
}

// DefaultKeyMap returns the standard bindings.
func DefaultKeyMap() KeyMap {
	return KeyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		PageUp:     key.NewBinding(key.WithKeys("pgup", "b"), key.WithHelp("pgup", "page up")),
		PageDown:   key.NewBinding(key.WithKeys("pgdown", "f", " "), key.WithHelp("pgdn", "page down")),
		Home:       key.NewBinding(key.WithKeys("home", "g"), key.WithHelp("home", "top")),
		End:        key.NewBinding(key.WithKeys("end", "G"), key.WithHelp("end", "bottom")),
		Left:       key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "scroll left")),
		Right:      key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "scroll right")),
		NextColumn: key.NewBinding(key.WithKeys("tab"), key.WithHelp("tab", "next column")),
		PrevColumn: key.NewBinding(key.WithKeys("shift+tab"), key.WithHelp("shift+tab", "prev column")),
		Toggle:     key.NewBinding(key.WithKeys("enter"), key.WithHelp("enter", "expand")),
		Sort:       key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "sort")),
		Grow:       key.NewBinding(key.WithKeys("+", "="), key.WithHelp("+", "widen")),
		Shrink:     key.NewBinding(key.WithKeys("-", "_"), key.WithHelp("-", "narrow")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

// ShortHelp implements help.KeyMap.
func (k KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Down, k.NextColumn, k.Sort, k.Toggle, k.Grow, k.Help, k.Quit}
}

// FullHelp implements help.KeyMap.
func (k KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.PageUp, k.PageDown, k.Home, k.End},
		{k.Left, k.Right, k.NextColumn, k.PrevColumn},
		{k.Toggle, k.Sort, k.Grow, k.Shrink},
		{k.Help, k.Quit},
	}
}
