package tui

import (
	"context"
	"fmt"

	tea "github.com/charmbracelet/bubbletea"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/keymap"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/styles"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/views/menu"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/views/search"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/views/sources"
)

// statsLoaded carries the totals shown on the menu.
type statsLoaded struct {
	files   int
	sources int
}

// App is the main TUI application following the Elm architecture.
type App struct {
	ports *Ports
	ctx   context.Context

	styles *styles.Styles
	keymap *keymap.KeyMap

	menuView    *menu.View
	searchView  *search.View
	sourcesView *sources.View

	currentView messages.ViewType
	err         error

	width  int
	height int
	ready  bool
}

// Ensure App implements tea.Model.
var _ tea.Model = (*App)(nil)

// NewApp creates a new TUI application with the given ports.
func NewApp(ports *Ports) (*App, error) {
	if err := ports.Validate(); err != nil {
		return nil, fmt.Errorf("creating app: %w", err)
	}

	s := styles.DefaultStyles()
	km := keymap.DefaultKeyMap()

	return &App{
		ports:       ports,
		ctx:         context.Background(),
		styles:      s,
		keymap:      km,
		menuView:    menu.NewView(s),
		searchView:  search.NewView(s, km, ports.Documents, ports.UserID),
		sourcesView: sources.NewView(s, km, ports.Sources, ports.Index, ports.UserID),
		currentView: messages.ViewMenu,
	}, nil
}

// WithContext sets the context service calls run under.
func (a *App) WithContext(ctx context.Context) *App {
	a.ctx = ctx
	a.searchView.WithContext(ctx)
	a.sourcesView.WithContext(ctx)
	return a
}

// Init implements tea.Model.
func (a *App) Init() tea.Cmd {
	return tea.Batch(
		tea.SetWindowTitle("tgindex"),
		a.loadStats(),
	)
}

func (a *App) loadStats() tea.Cmd {
	ports, ctx := a.ports, a.ctx
	return func() tea.Msg {
		var stats statsLoaded
		if n, err := ports.Documents.Count(ctx, ports.UserID); err == nil {
			stats.files = n
		}
		if list, err := ports.Sources.List(ctx, ports.UserID); err == nil {
			stats.sources = len(list)
		}
		return stats
	}
}

// Update implements tea.Model.
//
//nolint:gocyclo // central message router
func (a *App) Update(msg tea.Msg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch msg := msg.(type) {
	case tea.WindowSizeMsg:
		a.SetDimensions(msg.Width, msg.Height)
		return a, nil

	case tea.KeyMsg:
		if msg.String() == "ctrl+c" {
			return a, tea.Quit
		}
		return a.handleKey(msg)

	case statsLoaded:
		a.menuView.SetStats(msg.files, msg.sources)
		return a, nil

	case messages.ViewChanged:
		a.currentView = msg.View
		switch msg.View {
		case messages.ViewMenu:
			return a, a.loadStats()
		case messages.ViewSearch:
			a.searchView.Reset()
			return a, a.searchView.Init()
		case messages.ViewSources:
			return a, a.sourcesView.Init()
		case messages.ViewHelp:
		}
		return a, nil

	case messages.SearchCompleted:
		a.searchView, cmd = a.searchView.Update(msg)
		a.err = msg.Err
		return a, cmd

	case messages.SourcesLoaded, messages.SourceRemoved, messages.IndexCompleted:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
		a.err = a.sourcesView.Err()
		return a, cmd

	case messages.ErrorOccurred:
		a.err = msg.Err
		if a.currentView == messages.ViewSearch {
			a.searchView, cmd = a.searchView.Update(msg)
		}
		return a, cmd

	case messages.Quit:
		return a, tea.Quit
	}

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewSources:
		a.sourcesView, cmd = a.sourcesView.Update(msg)
	case messages.ViewHelp:
	}
	return a, cmd
}

func (a *App) handleKey(msg tea.KeyMsg) (tea.Model, tea.Cmd) {
	var cmd tea.Cmd

	switch a.currentView {
	case messages.ViewMenu:
		a.menuView, cmd = a.menuView.Update(msg)
	case messages.ViewSearch:
		a.searchView, cmd = a.searchView.Update(msg)
	case messages.ViewSources:
		if keymap.Matches(msg.String(), a.keymap.Back) {
			a.currentView = messages.ViewMenu
			return a, a.loadStats()
		}
		a.sourcesView, cmd = a.sourcesView.Update(msg)
	case messages.ViewHelp:
		if keymap.Matches(msg.String(), a.keymap.Back) {
			a.currentView = messages.ViewMenu
		}
	}
	return a, cmd
}

// View implements tea.Model.
func (a *App) View() string {
	if !a.ready {
		return "Initialising..."
	}

	switch a.currentView {
	case messages.ViewSearch:
		return a.searchView.View()
	case messages.ViewSources:
		return a.sourcesView.View()
	case messages.ViewHelp:
		return a.viewHelp()
	case messages.ViewMenu:
	}
	return a.menuView.View()
}

func (a *App) viewHelp() string {
	return a.styles.Title.Render("Help") + `

Menu:
  j/k, ↑/↓    Navigate options
  enter       Select option
  q           Quit

Search:
  (type)      File name or message text
  enter       Submit search
  n           New search
  j/k, ↑/↓    Navigate results
  enter       Toggle file details

Sources:
  i           Index new messages of the selected source
  d           Stop monitoring the selected source
  r           Reload the list

Everywhere:
  esc         Back
  ctrl+c      Quit

` + a.styles.Help.Render("[esc] back to menu")
}

// Run starts the TUI application.
func (a *App) Run() error {
	p := tea.NewProgram(a, tea.WithAltScreen(), tea.WithContext(a.ctx))
	_, err := p.Run()
	return err
}

// CurrentView returns the current view type.
func (a *App) CurrentView() messages.ViewType {
	return a.currentView
}

// Err returns the last error that occurred.
func (a *App) Err() error {
	return a.err
}

// Ready returns whether the app has been initialised.
func (a *App) Ready() bool {
	return a.ready
}

// SetDimensions sets the terminal dimensions on every view.
func (a *App) SetDimensions(width, height int) {
	a.width = width
	a.height = height
	a.ready = true
	a.menuView.SetDimensions(width, height)
	a.searchView.SetDimensions(width, height)
	a.sourcesView.SetDimensions(width, height)
}
