package services

import (
	"context"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/tgindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

var mockEpoch = time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)

// mockPlatform is an in-memory Telegram: entities by identifier and a
// history per chat.
type mockPlatform struct {
	mu         sync.Mutex
	entities   map[string]domain.Entity
	history    map[int64][]domain.Message
	resolveErr error

	// failAfter makes the iterator fail once it has yielded n messages.
	failAfter int
	failErr   error

	// onNext runs before each yielded message, by position.
	onNext func(i int)

	handler  driven.MessageHandler
	requests []domain.HistoryRequest
}

func newMockPlatform() *mockPlatform {
	return &mockPlatform{
		entities:  make(map[string]domain.Entity),
		history:   make(map[int64][]domain.Message),
		failAfter: -1,
	}
}

func (p *mockPlatform) addChannel(username string, id int64, title string) {
	p.mu.Lock()
	defer p.mu.Unlock()
	e := domain.Entity{ID: id, Title: title, Username: username, Kind: domain.SourceKindChannel}
	p.entities[username] = e
	p.entities[fmt.Sprint(id)] = e
}

func (p *mockPlatform) post(msgs ...domain.Message) {
	p.mu.Lock()
	defer p.mu.Unlock()
	for _, m := range msgs {
		p.history[m.PeerID] = append(p.history[m.PeerID], m)
	}
	for peer := range p.history {
		h := p.history[peer]
		sort.Slice(h, func(i, j int) bool { return h[i].ID < h[j].ID })
	}
}

func (p *mockPlatform) ResolveEntity(_ context.Context, identifier string) (*domain.Entity, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	if p.resolveErr != nil {
		return nil, p.resolveErr
	}
	e, ok := p.entities[identifier]
	if !ok {
		return nil, fmt.Errorf("%w: %s", domain.ErrSourceUnresolvable, identifier)
	}
	return &e, nil
}

func (p *mockPlatform) IterMessages(_ context.Context, entity domain.Entity, req domain.HistoryRequest) (driven.MessageIterator, error) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.requests = append(p.requests, req)

	all := p.history[entity.ID]
	var window []domain.Message
	if req.Ascending() {
		for _, m := range all {
			if m.ID > req.MinID {
				window = append(window, m)
			}
		}
	} else {
		for i := len(all) - 1; i >= 0; i-- {
			window = append(window, all[i])
		}
	}
	if req.Limit > 0 && len(window) > req.Limit {
		window = window[:req.Limit]
	}
	return &mockIterator{msgs: window, failAfter: p.failAfter, failErr: p.failErr, onNext: p.onNext}, nil
}

func (p *mockPlatform) OnNewMessage(handler driven.MessageHandler) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.handler = handler
}

func (p *mockPlatform) currentHandler() driven.MessageHandler {
	p.mu.Lock()
	defer p.mu.Unlock()
	return p.handler
}

type mockIterator struct {
	msgs      []domain.Message
	pos       int
	failAfter int
	failErr   error
	onNext    func(i int)
	err       error
}

func (it *mockIterator) Next(_ context.Context) (domain.Message, bool) {
	if it.failAfter >= 0 && it.pos == it.failAfter {
		it.err = it.failErr
		return domain.Message{}, false
	}
	if it.pos >= len(it.msgs) {
		return domain.Message{}, false
	}
	if it.onNext != nil {
		it.onNext(it.pos)
	}
	m := it.msgs[it.pos]
	it.pos++
	return m, true
}

func (it *mockIterator) Err() error { return it.err }

// mockFailingDocStore fails every call after the first okCalls lookups.
type mockFailingDocStore struct {
	*memory.DocumentStore
	mu      sync.Mutex
	okCalls int
}

func (s *mockFailingDocStore) FindByHash(ctx context.Context, userID int64, hash string) (*domain.Document, error) {
	s.mu.Lock()
	if s.okCalls <= 0 {
		s.mu.Unlock()
		return nil, domain.Persistence("find document", fmt.Errorf("connection refused"))
	}
	s.okCalls--
	s.mu.Unlock()
	return s.DocumentStore.FindByHash(ctx, userID, hash)
}

func textMsg(peer int64, id int) domain.Message {
	return domain.Message{ID: id, PeerID: peer, Date: mockEpoch.Add(time.Duration(id) * time.Minute), Text: fmt.Sprintf("message %d", id)}
}

func docMsg(peer int64, id int, name, mime string) domain.Message {
	m := textMsg(peer, id)
	m.Text = ""
	m.Caption = "caption " + name
	m.Media = &domain.DocumentMedia{
		FileID:     int64(1000 + id),
		Size:       int64(100 * id),
		MIMEType:   mime,
		Attributes: []domain.DocumentAttribute{{Kind: "filename", FileName: name}},
	}
	return m
}

func photoMsg(peer int64, id int) domain.Message {
	m := textMsg(peer, id)
	m.Media = &domain.PhotoMedia{FileID: int64(5000 + id), Size: 2048}
	return m
}

type mockHarness struct {
	platform *mockPlatform
	sources  *memory.SourceStore
	docs     *memory.DocumentStore
	registry *SourceService
	indexer  *Indexer
}

func newMockHarness(cfg domain.IndexingSettings) *mockHarness {
	h := &mockHarness{
		platform: newMockPlatform(),
		sources:  memory.NewSourceStore(),
		docs:     memory.NewDocumentStore(),
	}
	h.registry = NewSourceService(h.sources, h.platform, NewSessionGate())
	h.indexer = NewIndexer(h.registry, h.docs, h.platform, cfg)
	return h
}
