// Package menu is the landing view of the TUI.
package menu

import (
	"fmt"
	"strconv"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/styles"
)

// Item is one menu entry. Quit entries end the program instead of
// switching view.
type Item struct {
	Label string
	View  messages.ViewType
	Quit  bool
}

// View lists the top-level views and the index totals.
type View struct {
	styles *styles.Styles
	keys   *keymap.KeyMap
	items  []Item
	cursor int
	ready  bool

	width, height  int
	files, sources int
}

func NewView(s *styles.Styles) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	return &View{
		styles: s,
		keys:   keymap.DefaultKeyMap(),
		items: []Item{
			{Label: "Search files", View: messages.ViewSearch},
			{Label: "Sources", View: messages.ViewSources},
			{Label: "Help", View: messages.ViewHelp},
			{Label: "Quit", Quit: true},
		},
		width:  80,
		height: 24,
	}
}

func (v *View) Init() tea.Cmd {
	return nil
}

func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
	case tea.KeyMsg:
		return v, v.handleKey(msg.String())
	}
	return v, nil
}

func (v *View) handleKey(k string) tea.Cmd {
	switch {
	case keymap.Matches(k, v.keys.Up):
		v.cursor = max(v.cursor-1, 0)
	case keymap.Matches(k, v.keys.Down):
		v.cursor = min(v.cursor+1, len(v.items)-1)
	case k == "enter":
		return v.choose(v.cursor)
	case keymap.Matches(k, v.keys.Quit):
		return tea.Quit
	default:
		// 1-9 jump straight to an entry
		if n, err := strconv.Atoi(k); err == nil && n >= 1 && n <= len(v.items) {
			v.cursor = n - 1
			return v.choose(v.cursor)
		}
	}
	return nil
}

func (v *View) choose(i int) tea.Cmd {
	item := v.items[i]
	if item.Quit {
		return tea.Quit
	}
	return func() tea.Msg { return messages.ViewChanged{View: item.View} }
}

func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	lines := []string{
		v.styles.Title.Render("tgindex"),
		"",
		v.styles.Muted.Render("Files shared in your Telegram channels and groups"),
		v.styles.Subtitle.Render(fmt.Sprintf("%d file(s) from %d source(s)", v.files, v.sources)),
		"",
	}
	for i, item := range v.items {
		label := fmt.Sprintf("%d. %s", i+1, item.Label)
		if i == v.cursor {
			lines = append(lines, "> "+v.styles.Selected.Render(label))
		} else {
			lines = append(lines, "  "+v.styles.Normal.Render(label))
		}
	}
	lines = append(lines, "", v.styles.Help.Render("[j/k] Navigate  [Enter/1-4] Select  [q] Quit"))
	return strings.Join(lines, "\n")
}

// SetStats updates the totals under the title.
func (v *View) SetStats(files, sources int) {
	v.files, v.sources = files, sources
}

func (v *View) SetDimensions(width, height int) {
	v.width, v.height = width, height
	v.ready = true
}

// Selected is the index of the highlighted entry.
func (v *View) Selected() int {
	return v.cursor
}
