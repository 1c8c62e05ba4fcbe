package sources

import (
	"context"
	"errors"
	"testing"
	"time"

	tea "github.com/charmbracelet/bubbletea"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/messages"
	"github.com/custodia-labs/tgindex/internal/core/domain"
)

type fakeRegistry struct {
	sources []domain.Source
	listErr error
	removed []string
}

func (f *fakeRegistry) Add(context.Context, int64, string) (*domain.Source, error) {
	return nil, errors.New("not used")
}

func (f *fakeRegistry) Get(context.Context, int64, string) (*domain.Source, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeRegistry) List(context.Context, int64) ([]domain.Source, error) {
	return f.sources, f.listErr
}

func (f *fakeRegistry) Remove(_ context.Context, _ int64, identifier string) error {
	f.removed = append(f.removed, identifier)
	return nil
}

func (f *fakeRegistry) AdvanceWatermark(context.Context, int64, int64, int, time.Time) error {
	return nil
}

func (f *fakeRegistry) Monitoring(context.Context, int64) ([]domain.Source, error) {
	return nil, nil
}

func sampleSources() []domain.Source {
	watermark := 120
	indexed := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	return []domain.Source{
		{ID: "s1", PeerID: 100, Identifier: "newsdrop", Name: "News Drop", Kind: domain.SourceKindChannel,
			LastMessageID: &watermark, LastIndexedAt: &indexed},
		{ID: "s2", PeerID: 200, Name: "Book club", Kind: domain.SourceKindGroup},
	}
}

func loadedView(t *testing.T, registry *fakeRegistry, index IndexFunc) *View {
	t.Helper()
	v := NewView(nil, nil, registry, index, 1)
	v.SetDimensions(140, 30)

	cmd := v.Init()
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	return v
}

func key(r rune) tea.KeyMsg {
	return tea.KeyMsg{Type: tea.KeyRunes, Runes: []rune{r}}
}

func TestView_ListsSources(t *testing.T) {
	v := loadedView(t, &fakeRegistry{sources: sampleSources()}, nil)

	view := v.View()
	assert.Contains(t, view, "News Drop (newsdrop)")
	assert.Contains(t, view, "up to #120, 2024-06-01 12:00")
	assert.Contains(t, view, "never indexed")
	assert.Contains(t, view, "2 source(s)")
}

func TestView_EmptyState(t *testing.T) {
	v := loadedView(t, &fakeRegistry{}, nil)
	assert.Contains(t, v.View(), "No sources connected")
	assert.Nil(t, v.SelectedSource())
}

func TestView_LoadError(t *testing.T) {
	v := loadedView(t, &fakeRegistry{listErr: errors.New("disk full")}, nil)

	require.Error(t, v.Err())
	assert.Contains(t, v.View(), "disk full")
}

func TestView_RemoveNeedsConfirmation(t *testing.T) {
	registry := &fakeRegistry{sources: sampleSources()}
	v := loadedView(t, registry, nil)

	v, cmd := v.Update(key('d'))
	assert.Nil(t, cmd)
	assert.Contains(t, v.View(), "Stop monitoring News Drop?")

	v, cmd = v.Update(key('n'))
	assert.Nil(t, cmd)
	assert.Empty(t, registry.removed)

	v, _ = v.Update(key('d'))
	v, cmd = v.Update(key('y'))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, messages.SourceRemoved{Identifier: "newsdrop"}, msg)
	assert.Equal(t, []string{"newsdrop"}, registry.removed)

	_, cmd = v.Update(msg)
	require.NotNil(t, cmd, "removal reloads the list")
}

func TestView_RemoveByPeerIDWhenNoIdentifier(t *testing.T) {
	registry := &fakeRegistry{sources: sampleSources()}
	v := loadedView(t, registry, nil)

	v, _ = v.Update(key('j'))
	v, _ = v.Update(key('d'))
	_, cmd := v.Update(key('y'))
	require.NotNil(t, cmd)
	cmd()
	assert.Equal(t, []string{"200"}, registry.removed)
}

func TestView_IndexSelected(t *testing.T) {
	var called string
	index := func(_ context.Context, identifier string) (domain.IndexResult, error) {
		called = identifier
		return domain.IndexResult{Scanned: 30, Indexed: 4}, nil
	}
	v := loadedView(t, &fakeRegistry{sources: sampleSources()}, index)

	v, cmd := v.Update(key('i'))
	require.NotNil(t, cmd)
	assert.Equal(t, "News Drop", v.Indexing())
	assert.Contains(t, v.View(), "Indexing News Drop...")

	_, again := v.Update(key('i'))
	assert.Nil(t, again, "one pass at a time")

	msg := cmd()
	assert.Equal(t, "newsdrop", called)

	v, _ = v.Update(msg)
	assert.Empty(t, v.Indexing())
	assert.Contains(t, v.View(), "newsdrop: 4 new file(s), 30 message(s) scanned")
}

func TestView_IndexPartialFailure(t *testing.T) {
	v := loadedView(t, &fakeRegistry{sources: sampleSources()}, nil)

	v, _ = v.Update(messages.IndexCompleted{
		Identifier: "newsdrop",
		Result:     domain.IndexResult{Scanned: 10, Indexed: 2},
		Err:        errors.New("connection reset"),
	})
	v.SetDimensions(300, 30)
	assert.NoError(t, v.Err())
	view := v.View()
	assert.Contains(t, view, "2 new file(s)")
	assert.Contains(t, view, "stopped early: Unexpected error: connection reset")
}

func TestView_IndexUnavailable(t *testing.T) {
	v := loadedView(t, &fakeRegistry{sources: sampleSources()}, nil)

	_, cmd := v.Update(key('i'))
	require.NotNil(t, cmd)
	msg := cmd()
	assert.Equal(t, messages.IndexCompleted{Identifier: "newsdrop", Err: ErrIndexingUnavailable}, msg)

	v, _ = v.Update(msg)
	assert.ErrorIs(t, v.Err(), ErrIndexingUnavailable)
}

func TestView_Reload(t *testing.T) {
	registry := &fakeRegistry{sources: sampleSources()}
	v := loadedView(t, registry, nil)

	registry.sources = registry.sources[:1]
	v, cmd := v.Update(key('r'))
	require.NotNil(t, cmd)
	v, _ = v.Update(cmd())
	assert.Len(t, v.Sources(), 1)
}
