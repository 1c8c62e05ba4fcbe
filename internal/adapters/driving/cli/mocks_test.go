package cli

import (
	"context"
	"strings"
	"sync"
	"time"

	"github.com/custodia-labs/tgindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
	"github.com/custodia-labs/tgindex/internal/core/services"
)

var (
	_ driving.SourceRegistry  = (*fakeSources)(nil)
	_ driving.Indexer         = (*fakeIndexer)(nil)
	_ driving.Listener        = (*fakeListener)(nil)
	_ driving.DocumentService = (*fakeDocuments)(nil)
)

var testPosted = time.Date(2024, 5, 1, 9, 30, 0, 0, time.UTC)

type fakeSources struct {
	mu      sync.Mutex
	sources []domain.Source
	added   []string
	removed []string
	addErr  error
}

func (f *fakeSources) Add(_ context.Context, _ int64, identifier string) (*domain.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.addErr != nil {
		return nil, f.addErr
	}
	f.added = append(f.added, identifier)
	src := domain.Source{ID: "src-new", PeerID: 300, Identifier: identifier, Name: "Added " + identifier, Kind: domain.SourceKindChannel}
	f.sources = append(f.sources, src)
	return &src, nil
}

func (f *fakeSources) Get(_ context.Context, _ int64, identifier string) (*domain.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	for i := range f.sources {
		if strings.EqualFold(f.sources[i].Identifier, domain.NormaliseIdentifier(identifier)) {
			src := f.sources[i]
			return &src, nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeSources) List(context.Context, int64) ([]domain.Source, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]domain.Source(nil), f.sources...), nil
}

func (f *fakeSources) Remove(ctx context.Context, userID int64, identifier string) error {
	if _, err := f.Get(ctx, userID, identifier); err != nil {
		return err
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	f.removed = append(f.removed, identifier)
	return nil
}

func (f *fakeSources) AdvanceWatermark(context.Context, int64, int64, int, time.Time) error {
	return nil
}

func (f *fakeSources) Monitoring(context.Context, int64) ([]domain.Source, error) {
	return nil, nil
}

type fakeIndexer struct {
	mu        sync.Mutex
	calls     []string
	limits    []int
	reindexed []string
	result    domain.IndexResult
	err       error
	all       []domain.IndexResult
}

func (f *fakeIndexer) IndexSource(_ context.Context, _ int64, identifier string, windowLimit int) (domain.IndexResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls = append(f.calls, identifier)
	f.limits = append(f.limits, windowLimit)
	return f.result, f.err
}

func (f *fakeIndexer) Reindex(_ context.Context, _ int64, identifier string) (domain.IndexResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.reindexed = append(f.reindexed, identifier)
	return f.result, f.err
}

func (f *fakeIndexer) IndexAll(context.Context, int64, int) ([]domain.IndexResult, error) {
	return f.all, f.err
}

func (f *fakeIndexer) Status(int64, int64) *driving.IndexStatus {
	return nil
}

type fakeListener struct {
	ran bool
}

func (f *fakeListener) HandleMessage(context.Context, domain.Message) (int, error) {
	return 0, nil
}

func (f *fakeListener) Run(ctx context.Context) error {
	f.ran = true
	return nil
}

type fakeDocuments struct {
	docs      []domain.Document
	lastQuery string
	lastOpts  domain.SearchOptions
	lastLimit int
}

func (f *fakeDocuments) Search(_ context.Context, _ int64, query string, opts domain.SearchOptions) ([]domain.Document, error) {
	f.lastQuery, f.lastOpts = query, opts
	return f.docs, nil
}

func (f *fakeDocuments) Recent(_ context.Context, _ int64, limit int) ([]domain.Document, error) {
	f.lastLimit = limit
	return f.docs, nil
}

func (f *fakeDocuments) Get(_ context.Context, _ int64, id string) (*domain.Document, error) {
	for i := range f.docs {
		if f.docs[i].ID == id {
			return &f.docs[i], nil
		}
	}
	return nil, domain.ErrNotFound
}

func (f *fakeDocuments) Count(context.Context, int64) (int, error) {
	return len(f.docs), nil
}

// testServices exposes the fakes installed by setupTestServices.
type testServices struct {
	sources   *fakeSources
	indexer   *fakeIndexer
	listener  *fakeListener
	documents *fakeDocuments
	sessions  int
}

func setupTestServices() (*testServices, func()) {
	watermark := 120
	ts := &testServices{
		sources: &fakeSources{sources: []domain.Source{{
			ID: "src-1", PeerID: 100, Identifier: "newsdrop", Name: "News Drop",
			Kind: domain.SourceKindChannel, CreatedAt: testPosted, LastMessageID: &watermark,
		}}},
		indexer:  &fakeIndexer{},
		listener: &fakeListener{},
		documents: &fakeDocuments{docs: []domain.Document{{
			ID: "doc-1", FileName: "report.pdf", FileType: "pdf", FileSize: 2048, MIMEType: "application/pdf",
			SourceName: "News Drop", Origin: domain.MessageLocator{ChatID: 100, MessageID: 42},
			Hash: "abc123", Text: "Quarterly numbers", PostedAt: testPosted, IndexedAt: testPosted,
		}}},
	}

	SetServices(&Services{
		Sources:   ts.sources,
		Indexer:   ts.indexer,
		Listener:  ts.listener,
		Documents: ts.documents,
		Settings:  services.NewSettingsService(memory.NewConfigStore()),
		Session: func(ctx context.Context, fn func(ctx context.Context) error) error {
			ts.sessions++
			return fn(ctx)
		},
	})

	return ts, func() { SetServices(nil) }
}
