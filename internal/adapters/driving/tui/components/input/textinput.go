// Package input provides the query field of the search view.
package input

import (
	"strings"

	"github.com/charmbracelet/bubbles/textinput"
	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/styles"
)

const (
	minWidth   = 20
	labelWidth = 12
	maxQuery   = 256
)

// SearchInput is a labelled single-line query field.
type SearchInput struct {
	field  textinput.Model
	styles *styles.Styles
	width  int
}

// NewSearchInput returns a focused field. A nil style set uses the defaults.
func NewSearchInput(s *styles.Styles) *SearchInput {
	if s == nil {
		s = styles.DefaultStyles()
	}

	field := textinput.New()
	field.Placeholder = "file name or message text"
	field.CharLimit = maxQuery
	field.Focus()

	in := &SearchInput{field: field, styles: s}
	in.SetWidth(50 + labelWidth)
	return in
}

func (s *SearchInput) Init() tea.Cmd {
	return textinput.Blink
}

func (s *SearchInput) Update(msg tea.Msg) (*SearchInput, tea.Cmd) {
	var cmd tea.Cmd
	s.field, cmd = s.field.Update(msg)
	return s, cmd
}

func (s *SearchInput) View() string {
	//nolint:misspell // lipgloss.Center is the library constant
	return lipgloss.JoinHorizontal(lipgloss.Center,
		s.styles.Title.Render("Find: "),
		s.styles.InputField.Render(s.field.View()),
	)
}

// Value is the query with surrounding whitespace removed.
func (s *SearchInput) Value() string {
	return strings.TrimSpace(s.field.Value())
}

func (s *SearchInput) SetValue(value string) {
	s.field.SetValue(value)
	s.field.CursorEnd()
}

// Clear empties the field and gives it focus.
func (s *SearchInput) Clear() tea.Cmd {
	s.field.Reset()
	return s.field.Focus()
}

func (s *SearchInput) Focus() tea.Cmd { return s.field.Focus() }

func (s *SearchInput) Blur() { s.field.Blur() }

func (s *SearchInput) Focused() bool { return s.field.Focused() }

// SetWidth fits the field into width columns next to its label.
func (s *SearchInput) SetWidth(width int) {
	s.width = width
	s.field.Width = max(width-labelWidth, minWidth)
}

func (s *SearchInput) Width() int { return s.width }
