package ui

import "github.com/charmbracelet/bubbles/key"

// keyMap lists the launch table bindings. It implements help.KeyMap.
type keyMap struct {
	Up         key.Binding
	Down       key.Binding
	Toggle     key.Binding
	PrevPage   key.Binding
	NextPage   key.Binding
	PrevWindow key.Binding
	NextWindow key.Binding
	Mode       key.Binding
	DateSort   key.Binding
	Rocket     key.Binding
	Status     key.Binding
	Clear      key.Binding
	Copy       key.Binding
	Help       key.Binding
	Quit       key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Up:         key.NewBinding(key.WithKeys("up", "k"), key.WithHelp("↑/k", "up")),
		Down:       key.NewBinding(key.WithKeys("down", "j"), key.WithHelp("↓/j", "down")),
		Toggle:     key.NewBinding(key.WithKeys(" ", "f"), key.WithHelp("space/f", "favorite")),
		PrevPage:   key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("←/h", "prev page")),
		NextPage:   key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("→/l", "next page")),
		PrevWindow: key.NewBinding(key.WithKeys("p"), key.WithHelp("p", "fetch previous")),
		NextWindow: key.NewBinding(key.WithKeys("n"), key.WithHelp("n", "fetch next")),
		Mode:       key.NewBinding(key.WithKeys("t"), key.WithHelp("t", "upcoming/past")),
		DateSort:   key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "date sort")),
		Rocket:     key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "rocket filter")),
		Status:     key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "status filter")),
		Clear:      key.NewBinding(key.WithKeys("c"), key.WithHelp("c", "clear filters")),
		Copy:       key.NewBinding(key.WithKeys("y"), key.WithHelp("y", "copy id")),
		Help:       key.NewBinding(key.WithKeys("?"), key.WithHelp("?", "help")),
		Quit:       key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
	}
}

func (k keyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Toggle, k.PrevPage, k.NextPage, k.Mode, k.Help, k.Quit}
}

func (k keyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Toggle, k.Copy},
		{k.PrevPage, k.NextPage, k.PrevWindow, k.NextWindow, k.Mode},
		{k.DateSort, k.Rocket, k.Status, k.Clear},
		{k.Help, k.Quit},
	}
}
