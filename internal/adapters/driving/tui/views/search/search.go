// Package search provides the file search view for the TUI.
package search

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/charmbracelet/lipgloss"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/components/input"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/components/list"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// View is the search view: a query input, a result list with an optional
// details panel, and a status bar.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	input     *input.SearchInput
	list      *list.DocumentList
	statusbar *status.Bar

	documents driving.DocumentService
	userID    int64
	ctx       context.Context

	width       int
	height      int
	ready       bool
	err         error
	focusInput  bool
	showDetails bool
}

// NewView creates a new search view.
func NewView(s *styles.Styles, km *keymap.KeyMap, documents driving.DocumentService, userID int64) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}

	return &View{
		styles:     s,
		keymap:     km,
		input:      input.NewSearchInput(s),
		list:       list.NewDocumentList(s),
		statusbar:  status.NewBar(s, km),
		documents:  documents,
		userID:     userID,
		ctx:        context.Background(),
		width:      80,
		height:     24,
		focusInput: true,
	}
}

// WithContext sets the context searches run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init initialises the view.
func (v *View) Init() tea.Cmd {
	return v.input.Init()
}

// Update handles messages for the search view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SearchCompleted:
		v.handleSearchCompleted(msg)
		return v, nil

	case messages.ErrorOccurred:
		v.setError(msg.Err)
		return v, nil
	}

	var cmd tea.Cmd
	v.input, cmd = v.input.Update(msg)
	return v, cmd
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if keymap.Matches(key, v.keymap.Back) {
		if v.showDetails {
			v.showDetails = false
			return v, nil
		}
		return v, func() tea.Msg {
			return messages.ViewChanged{View: messages.ViewMenu}
		}
	}

	if v.focusInput {
		if keymap.Matches(key, v.keymap.Search) {
			query := strings.TrimSpace(v.input.Value())
			if query == "" {
				return v, nil
			}
			v.statusbar.SetState(status.StateSearching)
			v.focusInput = false
			v.input.Blur()
			return v, v.performSearch(query)
		}
		var cmd tea.Cmd
		v.input, cmd = v.input.Update(msg)
		return v, cmd
	}

	switch {
	case keymap.Matches(key, v.keymap.Details):
		if v.list.SelectedDocument() != nil {
			v.showDetails = !v.showDetails
		}
	case keymap.Matches(key, v.keymap.Up):
		v.list.MoveUp()
	case keymap.Matches(key, v.keymap.Down):
		v.list.MoveDown()
	case keymap.Matches(key, v.keymap.NewSearch):
		v.focusInput = true
		v.showDetails = false
		return v, v.input.Clear()
	}
	return v, nil
}

func (v *View) performSearch(query string) tea.Cmd {
	documents, ctx, userID := v.documents, v.ctx, v.userID
	return func() tea.Msg {
		if documents == nil {
			return messages.ErrorOccurred{Err: ErrNoDocumentService}
		}
		docs, err := documents.Search(ctx, userID, query, domain.SearchOptions{Limit: domain.DefaultSearchLimit})
		return messages.SearchCompleted{Query: query, Documents: docs, Err: err}
	}
}

func (v *View) handleSearchCompleted(msg messages.SearchCompleted) {
	if msg.Err != nil {
		v.setError(msg.Err)
		return
	}

	v.err = nil
	v.showDetails = false
	v.list.SetDocuments(msg.Documents)
	v.statusbar.SetState(status.StateResults)
	v.statusbar.SetMessage("")
	v.statusbar.SetCount(len(msg.Documents))
	v.focusInput = false
	v.input.Blur()
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(domain.UserMessage(err))
}

// View renders the search view.
func (v *View) View() string {
	if !v.ready {
		return "Initialising..."
	}

	sections := []string{v.styles.Title.Render("tgindex · search"), "", v.input.View(), ""}

	if v.err != nil {
		sections = append(sections, v.styles.Error.Render("Error: "+domain.UserMessage(v.err)), "")
	}

	body := v.list.View()
	if doc := v.list.SelectedDocument(); v.showDetails && doc != nil {
		//nolint:misspell // lipgloss.Top is the library constant
		body = lipgloss.JoinHorizontal(lipgloss.Top, body, "  ", v.renderDetails(doc))
	}
	sections = append(sections, body, "", v.statusbar.View())

	return lipgloss.JoinVertical(lipgloss.Left, sections...)
}

func (v *View) renderDetails(d *domain.Document) string {
	rows := [][2]string{
		{"Name", d.FileName},
		{"Type", d.FileType},
		{"Size", list.HumanSize(d.FileSize)},
		{"MIME", d.MIMEType},
		{"Source", d.SourceName},
		{"Message", fmt.Sprintf("%d in chat %d", d.Origin.MessageID, d.Origin.ChatID)},
		{"Posted", d.PostedAt.Format("2006-01-02 15:04")},
		{"Indexed", d.IndexedAt.Format("2006-01-02 15:04")},
	}

	lines := make([]string, 0, len(rows)+2)
	for _, r := range rows {
		if r[1] == "" {
			continue
		}
		lines = append(lines, v.styles.Muted.Render(fmt.Sprintf("%-8s", r[0]))+" "+v.styles.Normal.Render(r[1]))
	}
	if d.Text != "" {
		lines = append(lines, "", v.styles.Normal.Render(d.Text))
	}

	return v.styles.Panel.Width(max(v.width/2-4, 30)).Render(strings.Join(lines, "\n"))
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true

	v.input.SetWidth(width)
	v.list.SetDimensions(width/2, height-10)
	v.statusbar.SetWidth(width)
}

// Ready returns whether the view is ready to render.
func (v *View) Ready() bool {
	return v.ready
}

// Query returns the current search query.
func (v *View) Query() string {
	return v.input.Value()
}

// SetQuery sets the search query.
func (v *View) SetQuery(query string) {
	v.input.SetValue(query)
}

// Documents returns the current results.
func (v *View) Documents() []domain.Document {
	return v.list.Documents()
}

// SelectedDocument returns the selected result, or nil.
func (v *View) SelectedDocument() *domain.Document {
	return v.list.SelectedDocument()
}

// DetailsShown reports whether the details panel is open.
func (v *View) DetailsShown() bool {
	return v.showDetails
}

// Err returns the current error, if any.
func (v *View) Err() error {
	return v.err
}

// Reset returns the view to an empty query.
func (v *View) Reset() {
	v.focusInput = true
	v.showDetails = false
	v.input.Clear()
	v.list.SetDocuments(nil)
	v.err = nil
	v.statusbar.Clear()
}

// InputFocused returns whether the input has focus.
func (v *View) InputFocused() bool {
	return v.focusInput
}
