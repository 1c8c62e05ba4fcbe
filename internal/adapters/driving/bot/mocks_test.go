package bot

import (
	"context"
	"sync"
	"time"

	tgbotapi "github.com/go-telegram-bot-api/telegram-bot-api/v5"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// fakeAPI records what the bot sends.
type fakeAPI struct {
	mu      sync.Mutex
	sent    []tgbotapi.MessageConfig
	updates chan tgbotapi.Update
	stopped bool
}

func newFakeAPI() *fakeAPI {
	return &fakeAPI{updates: make(chan tgbotapi.Update, 8)}
}

func (f *fakeAPI) GetUpdatesChan(_ tgbotapi.UpdateConfig) tgbotapi.UpdatesChannel {
	return f.updates
}

func (f *fakeAPI) StopReceivingUpdates() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.stopped = true
}

func (f *fakeAPI) Send(c tgbotapi.Chattable) (tgbotapi.Message, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if m, ok := c.(tgbotapi.MessageConfig); ok {
		f.sent = append(f.sent, m)
	}
	return tgbotapi.Message{}, nil
}

func (f *fakeAPI) texts() []string {
	f.mu.Lock()
	defer f.mu.Unlock()
	out := make([]string, len(f.sent))
	for i, m := range f.sent {
		out[i] = m.Text
	}
	return out
}

func (f *fakeAPI) last() string {
	texts := f.texts()
	if len(texts) == 0 {
		return ""
	}
	return texts[len(texts)-1]
}

type fakeSources struct {
	sources []domain.Source
	addErr  error
	getErr  error
	added   []string
}

func (f *fakeSources) Add(_ context.Context, _ int64, identifier string) (*domain.Source, error) {
	f.added = append(f.added, identifier)
	if f.addErr != nil {
		return nil, f.addErr
	}
	return &domain.Source{Identifier: identifier}, nil
}

func (f *fakeSources) Get(_ context.Context, _ int64, identifier string) (*domain.Source, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return &domain.Source{Identifier: identifier}, nil
}

func (f *fakeSources) List(_ context.Context, _ int64) ([]domain.Source, error) {
	return f.sources, nil
}

func (f *fakeSources) Remove(_ context.Context, _ int64, _ string) error {
	return nil
}

func (f *fakeSources) AdvanceWatermark(_ context.Context, _, _ int64, _ int, _ time.Time) error {
	return nil
}

func (f *fakeSources) Monitoring(_ context.Context, _ int64) ([]domain.Source, error) {
	return f.sources, nil
}

type fakeIndexer struct {
	result    domain.IndexResult
	err       error
	indexed   []string
	reindexed []string
}

func (f *fakeIndexer) IndexSource(_ context.Context, _ int64, identifier string, _ int) (domain.IndexResult, error) {
	f.indexed = append(f.indexed, identifier)
	return f.result, f.err
}

func (f *fakeIndexer) Reindex(_ context.Context, _ int64, identifier string) (domain.IndexResult, error) {
	f.reindexed = append(f.reindexed, identifier)
	return f.result, f.err
}

func (f *fakeIndexer) IndexAll(_ context.Context, _ int64, _ int) ([]domain.IndexResult, error) {
	return nil, nil
}

func (f *fakeIndexer) Status(_, _ int64) *driving.IndexStatus {
	return nil
}

type fakeDocuments struct {
	docs    []domain.Document
	queries []string
	users   []int64
}

func (f *fakeDocuments) Search(_ context.Context, userID int64, query string, _ domain.SearchOptions) ([]domain.Document, error) {
	f.queries = append(f.queries, query)
	f.users = append(f.users, userID)
	return f.docs, nil
}

func (f *fakeDocuments) Recent(_ context.Context, _ int64, _ int) ([]domain.Document, error) {
	return f.docs, nil
}

func (f *fakeDocuments) Get(_ context.Context, _ int64, _ string) (*domain.Document, error) {
	return nil, domain.ErrNotFound
}

func (f *fakeDocuments) Count(_ context.Context, _ int64) (int, error) {
	return len(f.docs), nil
}

type fakeListener struct {
	mu       sync.Mutex
	messages []domain.Message

	// hold, when set, keeps HandleMessage busy until it is closed.
	hold      chan struct{}
	active    int
	maxActive int
}

func (f *fakeListener) HandleMessage(_ context.Context, msg domain.Message) (int, error) {
	f.mu.Lock()
	f.active++
	f.maxActive = max(f.maxActive, f.active)
	hold := f.hold
	f.mu.Unlock()

	if hold != nil {
		<-hold
	}

	f.mu.Lock()
	defer f.mu.Unlock()
	f.active--
	f.messages = append(f.messages, msg)
	return 1, nil
}

func (f *fakeListener) stats() (handled, active, maxActive int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.messages), f.active, f.maxActive
}

func (f *fakeListener) Run(ctx context.Context) error {
	<-ctx.Done()
	return nil
}
