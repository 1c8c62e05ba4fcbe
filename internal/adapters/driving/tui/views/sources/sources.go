// Package sources provides the view listing connected channels and groups.
package sources

import (
	"context"
	"fmt"
	"strings"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/components/status"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// IndexFunc runs an indexing pass for the source with the given identifier.
type IndexFunc func(ctx context.Context, identifier string) (domain.IndexResult, error)

// View is the sources management view.
type View struct {
	styles    *styles.Styles
	keymap    *keymap.KeyMap
	statusbar *status.Bar

	registry driving.SourceRegistry
	index    IndexFunc
	userID   int64
	ctx      context.Context

	sources    []domain.Source
	selected   int
	confirming bool
	width      int
	height     int
	ready      bool
	err        error
	loading    bool
	indexing   string
}

// NewView creates a new sources view. index may be nil, in which case the
// index key reports that indexing is unavailable.
func NewView(
	s *styles.Styles,
	km *keymap.KeyMap,
	registry driving.SourceRegistry,
	index IndexFunc,
	userID int64,
) *View {
	if s == nil {
		s = styles.DefaultStyles()
	}
	if km == nil {
		km = keymap.DefaultKeyMap()
	}
	return &View{
		styles:    s,
		keymap:    km,
		statusbar: status.NewBar(s, km),
		registry:  registry,
		index:     index,
		userID:    userID,
		ctx:       context.Background(),
	}
}

// WithContext sets the context service calls run under.
func (v *View) WithContext(ctx context.Context) *View {
	v.ctx = ctx
	return v
}

// Init loads the sources.
func (v *View) Init() tea.Cmd {
	v.loading = true
	return v.loadSources()
}

func (v *View) loadSources() tea.Cmd {
	registry, ctx, userID := v.registry, v.ctx, v.userID
	return func() tea.Msg {
		if registry == nil {
			return messages.SourcesLoaded{Err: ErrNoSourceRegistry}
		}
		sources, err := registry.List(ctx, userID)
		return messages.SourcesLoaded{Sources: sources, Err: err}
	}
}

func (v *View) removeSource(identifier string) tea.Cmd {
	registry, ctx, userID := v.registry, v.ctx, v.userID
	return func() tea.Msg {
		if registry == nil {
			return messages.SourceRemoved{Identifier: identifier, Err: ErrNoSourceRegistry}
		}
		err := registry.Remove(ctx, userID, identifier)
		return messages.SourceRemoved{Identifier: identifier, Err: err}
	}
}

func (v *View) indexSource(identifier string) tea.Cmd {
	index, ctx := v.index, v.ctx
	return func() tea.Msg {
		if index == nil {
			return messages.IndexCompleted{Identifier: identifier, Err: ErrIndexingUnavailable}
		}
		result, err := index(ctx, identifier)
		return messages.IndexCompleted{Identifier: identifier, Result: result, Err: err}
	}
}

// Update handles messages for the sources view.
func (v *View) Update(msg tea.Msg) (*View, tea.Cmd) {
	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		v.SetDimensions(msg.Width, msg.Height)
		return v, nil

	case tea.KeyMsg:
		return v.handleKeyMsg(msg)

	case messages.SourcesLoaded:
		v.loading = false
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.err = nil
		v.sources = msg.Sources
		v.selected = min(v.selected, max(len(v.sources)-1, 0))
		v.statusbar.SetState(status.StateSources)
		v.statusbar.SetCount(len(v.sources))
		return v, nil

	case messages.SourceRemoved:
		if msg.Err != nil {
			v.setError(msg.Err)
			return v, nil
		}
		v.notice("Removed " + msg.Identifier)
		return v, v.loadSources()

	case messages.IndexCompleted:
		v.indexing = ""
		if msg.Err != nil && msg.Result.Scanned == 0 {
			v.setError(msg.Err)
			return v, v.loadSources()
		}
		v.notice(indexNotice(msg))
		return v, v.loadSources()
	}

	return v, nil
}

func (v *View) handleKeyMsg(msg tea.KeyMsg) (*View, tea.Cmd) {
	key := msg.String()

	if v.confirming {
		v.confirming = false
		if key == "y" {
			if src := v.SelectedSource(); src != nil {
				return v, v.removeSource(sourceRef(src))
			}
		}
		v.statusbar.SetMessage("")
		return v, nil
	}

	switch {
	case keymap.Matches(key, v.keymap.Up):
		if v.selected > 0 {
			v.selected--
		}
	case keymap.Matches(key, v.keymap.Down):
		if v.selected < len(v.sources)-1 {
			v.selected++
		}
	case keymap.Matches(key, v.keymap.Reload):
		v.loading = true
		return v, v.loadSources()
	case keymap.Matches(key, v.keymap.Remove):
		if v.SelectedSource() != nil {
			v.confirming = true
		}
	case keymap.Matches(key, v.keymap.Index):
		src := v.SelectedSource()
		if src == nil || v.indexing != "" {
			return v, nil
		}
		v.indexing = src.DisplayName()
		v.statusbar.SetState(status.StateIndexing)
		v.statusbar.SetMessage(v.indexing)
		return v, v.indexSource(sourceRef(src))
	}
	return v, nil
}

func (v *View) setError(err error) {
	v.err = err
	v.statusbar.SetState(status.StateError)
	v.statusbar.SetMessage(domain.UserMessage(err))
}

func (v *View) notice(text string) {
	v.err = nil
	v.statusbar.SetState(status.StateSources)
	v.statusbar.SetMessage(text)
}

// sourceRef is the identifier service calls look a source up by.
func sourceRef(src *domain.Source) string {
	if src.Identifier != "" {
		return src.Identifier
	}
	return fmt.Sprintf("%d", src.PeerID)
}

func indexNotice(msg messages.IndexCompleted) string {
	name := msg.Identifier
	if msg.Result.Source != nil {
		name = msg.Result.Source.DisplayName()
	}
	text := fmt.Sprintf("%s: %d new file(s), %d message(s) scanned", name, msg.Result.Indexed, msg.Result.Scanned)
	if msg.Err != nil {
		text += " (stopped early: " + domain.UserMessage(msg.Err) + ")"
	}
	return text
}

// View renders the sources view.
func (v *View) View() string {
	var b strings.Builder

	b.WriteString(v.styles.Title.Render("tgindex · sources"))
	b.WriteString("\n\n")

	switch {
	case v.loading:
		b.WriteString(v.styles.Muted.Render("Loading sources..."))
	case len(v.sources) == 0 && v.err == nil:
		b.WriteString(v.styles.Muted.Render("No sources connected. Run `tgindex source add <channel>` to add one."))
	default:
		for i := range v.sources {
			b.WriteString(v.renderSource(i, &v.sources[i]))
			b.WriteString("\n")
		}
	}

	if v.confirming {
		if src := v.SelectedSource(); src != nil {
			b.WriteString("\n")
			b.WriteString(v.styles.Warning.Render(
				fmt.Sprintf("Stop monitoring %s? Indexed files are kept. [y/N]", src.DisplayName())))
		}
	}

	b.WriteString("\n\n")
	v.statusbar.SetWidth(v.width)
	b.WriteString(v.statusbar.View())
	return b.String()
}

func (v *View) renderSource(index int, src *domain.Source) string {
	indicator := "  "
	if index == v.selected {
		indicator = "> "
	}

	kind := fmt.Sprintf("[%s]", src.Kind)
	name := src.DisplayName()
	if src.Identifier != "" && src.Identifier != name {
		name += " (" + src.Identifier + ")"
	}

	progress := "never indexed"
	if src.Indexed() {
		progress = fmt.Sprintf("up to #%d", src.Watermark())
		if src.LastIndexedAt != nil {
			progress += ", " + src.LastIndexedAt.Format("2006-01-02 15:04")
		}
	}

	if index == v.selected {
		return v.styles.Selected.Render(fmt.Sprintf("%s%-10s %s", indicator, kind, name)) +
			"  " + v.styles.Muted.Render(progress)
	}
	return v.styles.Normal.Render(indicator) +
		v.styles.Subtitle.Render(fmt.Sprintf("%-10s ", kind)) +
		v.styles.Normal.Render(name) +
		"  " + v.styles.Muted.Render(progress)
}

// SetDimensions sets the view dimensions.
func (v *View) SetDimensions(width, height int) {
	v.width = width
	v.height = height
	v.ready = true
	v.statusbar.SetWidth(width)
}

// Sources returns the current list of sources.
func (v *View) Sources() []domain.Source {
	return v.sources
}

// SelectedIndex returns the currently selected source index.
func (v *View) SelectedIndex() int {
	return v.selected
}

// SelectedSource returns the selected source, or nil when the list is empty.
func (v *View) SelectedSource() *domain.Source {
	if v.selected < 0 || v.selected >= len(v.sources) {
		return nil
	}
	return &v.sources[v.selected]
}

// Indexing returns the name of the source being indexed, if any.
func (v *View) Indexing() string {
	return v.indexing
}

// Err returns the last error.
func (v *View) Err() error {
	return v.err
}
