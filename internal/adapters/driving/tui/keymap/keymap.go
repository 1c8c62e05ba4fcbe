// Package keymap holds the key bindings shared by the TUI views.
package keymap

import (
	"slices"

	"github.com/charmbracelet/bubbles/key"
)

// KeyMap is the full set of bindings. Search and Details share enter:
// which one applies depends on whether the query field has focus.
type KeyMap struct {
	Quit key.Binding
	Help key.Binding
	Back key.Binding

	Up   key.Binding
	Down key.Binding

	Search    key.Binding
	NewSearch key.Binding
	Details   key.Binding

	// Source management.
	Index  key.Binding
	Remove key.Binding
	Reload key.Binding
}

func bind(help, desc string, keys ...string) key.Binding {
	return key.NewBinding(key.WithKeys(keys...), key.WithHelp(help, desc))
}

// DefaultKeyMap returns vim-flavoured bindings with arrow key fallbacks.
func DefaultKeyMap() *KeyMap {
	return &KeyMap{
		Quit: bind("q", "quit", "q", "ctrl+c"),
		Help: bind("?", "help", "?"),
		Back: bind("esc", "back", "esc"),

		Up:   bind("↑/k", "up", "up", "k"),
		Down: bind("↓/j", "down", "down", "j"),

		Search:    bind("enter", "search", "enter"),
		NewSearch: bind("n", "new search", "n"),
		Details:   bind("enter", "details", "enter"),

		Index:  bind("i", "index", "i"),
		Remove: bind("d", "remove", "d", "delete"),
		Reload: bind("r", "reload", "r"),
	}
}

// ShortHelp is shown while typing a query.
func (k *KeyMap) ShortHelp() []key.Binding {
	return []key.Binding{k.Search, k.Back}
}

// ResultsHelp is shown while browsing search results.
func (k *KeyMap) ResultsHelp() []key.Binding {
	return []key.Binding{k.NewSearch, k.Up, k.Down, k.Details, k.Back}
}

func (k *KeyMap) SourcesHelp() []key.Binding {
	return []key.Binding{k.Up, k.Down, k.Index, k.Remove, k.Reload, k.Back}
}

// FullHelp groups every binding into the columns of the help view.
func (k *KeyMap) FullHelp() [][]key.Binding {
	return [][]key.Binding{
		{k.Up, k.Down, k.Details},
		{k.Search, k.NewSearch, k.Back},
		{k.Index, k.Remove, k.Reload},
		{k.Help, k.Quit},
	}
}

// Matches reports whether keyStr (a tea.KeyMsg string) triggers binding.
func Matches(keyStr string, binding key.Binding) bool {
	return slices.Contains(binding.Keys(), keyStr)
}
