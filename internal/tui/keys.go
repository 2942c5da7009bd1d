package tui

import "github.com/charmbracelet/bubbles/key"

type keyMap struct {
	Quit      key.Binding
	Search    key.Binding
	Leave     key.Binding
	Subject   key.Binding
	Sort      key.Binding
	Direction key.Binding
	PrevPage  key.Binding
	NextPage  key.Binding
	Export    key.Binding
	Reload    key.Binding
	Confirm   key.Binding
	Cancel    key.Binding
}

func defaultKeyMap() keyMap {
	return keyMap{
		Quit:      key.NewBinding(key.WithKeys("q", "ctrl+c"), key.WithHelp("q", "quit")),
		Search:    key.NewBinding(key.WithKeys("/"), key.WithHelp("/", "search")),
		Leave:     key.NewBinding(key.WithKeys("esc", "enter"), key.WithHelp("esc", "done")),
		Subject:   key.NewBinding(key.WithKeys("s"), key.WithHelp("s", "subject")),
		Sort:      key.NewBinding(key.WithKeys("o"), key.WithHelp("o", "sort")),
		Direction: key.NewBinding(key.WithKeys("d"), key.WithHelp("d", "direction")),
		PrevPage:  key.NewBinding(key.WithKeys("left", "h"), key.WithHelp("left/h", "prev")),
		NextPage:  key.NewBinding(key.WithKeys("right", "l"), key.WithHelp("right/l", "next")),
		Export:    key.NewBinding(key.WithKeys("e"), key.WithHelp("e", "export")),
		Reload:    key.NewBinding(key.WithKeys("r"), key.WithHelp("r", "reload")),
		Confirm:   key.NewBinding(key.WithKeys("enter", "y")),
		Cancel:    key.NewBinding(key.WithKeys("esc", "n")),
	}
}

func (k keyMap) help(search bool) string {
	bindings := []key.Binding{k.Search, k.Subject, k.Sort, k.Direction}
	if !search {
		bindings = append(bindings, k.PrevPage, k.NextPage)
	}
	bindings = append(bindings, k.Export, k.Reload, k.Quit)
	out := ""
	for i, b := range bindings {
		if i > 0 {
			out += "  "
		}
		h := b.Help()
		out += h.Key + ": " + h.Desc
	}
	return out
}
