package services

import (
	"context"
	"errors"
	"fmt"
	"sync"
	"time"

	"github.com/google/uuid"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
	"github.com/custodia-labs/tgindex/internal/logger"
)

// Ensure Indexer implements the interface.
var _ driving.Indexer = (*Indexer)(nil)

// Indexer runs backfill passes: it reads a bounded window of a source's
// history, stores every new file once per user and advances the watermark.
type Indexer struct {
	registry *SourceService
	docStore driven.DocumentStore
	platform driven.Platform
	gate     *SessionGate
	locks    *KeyLock
	hasher   Hasher
	cfg      domain.IndexingSettings

	// Status tracking
	mu     sync.RWMutex
	status map[domain.SourceKey]*driving.IndexStatus
}

// NewIndexer creates a new indexer. The registry and the indexer must share
// the same session gate.
func NewIndexer(
	registry *SourceService,
	docStore driven.DocumentStore,
	platform driven.Platform,
	cfg domain.IndexingSettings,
) *Indexer {
	defaults := domain.DefaultSettings().Indexing
	if cfg.WindowLimit <= 0 {
		cfg.WindowLimit = defaults.WindowLimit
	}
	if cfg.ReindexWindowLimit <= 0 {
		cfg.ReindexWindowLimit = defaults.ReindexWindowLimit
	}
	if cfg.Concurrency <= 0 {
		cfg.Concurrency = defaults.Concurrency
	}
	return &Indexer{
		registry: registry,
		docStore: docStore,
		platform: platform,
		gate:     registry.gate,
		locks:    NewKeyLock(),
		hasher:   NewHasher(cfg.HashMode),
		cfg:      cfg,
		status:   make(map[domain.SourceKey]*driving.IndexStatus),
	}
}

// pass holds the state of one indexing invocation.
type pass struct {
	source *domain.Source
	entity *domain.Entity
	seen   map[string]struct{}
	maxID  int
	// ascending passes read oldest first, so maxID is a safe resume point
	// even when the pass stops early.
	ascending bool
	result domain.IndexResult
	status *driving.IndexStatus
}

// IndexSource indexes up to windowLimit messages of a source, registering
// the source for the user on first use.
//
//nolint:gocyclo // Orchestration function with necessary sequential steps
func (ix *Indexer) IndexSource(
	ctx context.Context,
	userID int64,
	identifier string,
	windowLimit int,
) (domain.IndexResult, error) {
	if windowLimit <= 0 {
		windowLimit = ix.cfg.WindowLimit
	}

	// 1. Resolve, registering the source if this is the first connect
	source, _, entity, err := ix.registry.ensure(ctx, userID, identifier)
	if err != nil {
		return domain.IndexResult{}, err
	}

	// 2. One pass per (user, source) at a time
	key := domain.SourceKey{UserID: userID, PeerID: source.PeerID}
	unlock := ix.locks.Lock(key)
	defer unlock()

	// The watermark may have moved while waiting for the lock
	source, err = ix.registry.sourceStore.FindByPeer(ctx, userID, source.PeerID)
	if err != nil {
		return domain.IndexResult{}, fmt.Errorf("reload source: %w", err)
	}

	req := domain.HistoryRequest{Limit: windowLimit, MinID: source.Watermark()}
	p := &pass{
		source:    source,
		entity:    entity,
		seen:      make(map[string]struct{}),
		ascending: req.Ascending(),
		status:    &driving.IndexStatus{Key: key, Running: true},
	}
	p.result.Source = source
	ix.setStatus(key, p.status)

	logger.Info("Indexing %s for user %d (window %d, after message %d)",
		source.DisplayName(), userID, windowLimit, source.Watermark())

	// 3. Fetch and process
	runErr := ix.run(ctx, p, req)

	// 4. Commit progress, also after a failed or cancelled fetch
	commitErr := ix.commit(ctx, p, runErr == nil)

	err = errors.Join(runErr, commitErr)
	ix.finishStatus(key, p, err)

	if err != nil {
		logger.Warn("Indexing %s stopped after %d new documents: %v", source.DisplayName(), p.result.Indexed, err)
		return p.result, err
	}
	logger.Info("Indexed %s: %d new, %d duplicates, %d failed, %d scanned",
		source.DisplayName(), p.result.Indexed, p.result.Duplicates, p.result.Failed, p.result.Scanned)
	return p.result, nil
}

// Reindex runs IndexSource with the reindex window.
func (ix *Indexer) Reindex(ctx context.Context, userID int64, identifier string) (domain.IndexResult, error) {
	return ix.IndexSource(ctx, userID, identifier, ix.cfg.ReindexWindowLimit)
}

// IndexAll runs IndexSource for every source of a user with bounded concurrency.
// A failing source does not stop the others.
func (ix *Indexer) IndexAll(ctx context.Context, userID int64, windowLimit int) ([]domain.IndexResult, error) {
	sources, err := ix.registry.List(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list sources: %w", err)
	}

	results := make([]domain.IndexResult, len(sources))
	errs := make([]error, len(sources))

	var g errgroup.Group
	g.SetLimit(ix.cfg.Concurrency)
	for i := range sources {
		g.Go(func() error {
			results[i], errs[i] = ix.IndexSource(ctx, userID, sources[i].Identifier, windowLimit)
			if errs[i] != nil {
				errs[i] = fmt.Errorf("index %s: %w", sources[i].DisplayName(), errs[i])
			}
			return nil
		})
	}
	_ = g.Wait() //nolint:errcheck // goroutines report through errs

	return results, errors.Join(errs...)
}

// Status returns progress for a source, nil when no pass has run.
func (ix *Indexer) Status(userID, peerID int64) *driving.IndexStatus {
	ix.mu.RLock()
	defer ix.mu.RUnlock()

	status, ok := ix.status[domain.SourceKey{UserID: userID, PeerID: peerID}]
	if !ok {
		return nil
	}
	// Return a copy to avoid race conditions
	cp := *status
	return &cp
}

// run streams the window and processes each message. It stops after the
// current message when ctx ends.
func (ix *Indexer) run(ctx context.Context, p *pass, req domain.HistoryRequest) error {
	var iter driven.MessageIterator
	err := ix.gate.Do(ctx, func(ctx context.Context) error {
		var err error
		iter, err = ix.platform.IterMessages(ctx, *p.entity, req)
		return err
	})
	if err != nil {
		return fmt.Errorf("fetch history: %w", err)
	}

	for {
		if err := ctx.Err(); err != nil {
			return err
		}

		var (
			msg domain.Message
			ok  bool
		)
		err := ix.gate.Do(ctx, func(ctx context.Context) error {
			msg, ok = iter.Next(ctx)
			return nil
		})
		if err != nil {
			return err
		}
		if !ok {
			if err := iter.Err(); err != nil {
				return fmt.Errorf("fetch history: %w", err)
			}
			return nil
		}

		p.result.Scanned++
		if err := ix.processMessage(ctx, p, &msg); err != nil {
			return err
		}
		if msg.ID > p.maxID {
			p.maxID = msg.ID
		}
	}
}

// processMessage handles one message. Only a persistence outage is returned;
// anything else is counted and logged.
func (ix *Indexer) processMessage(ctx context.Context, p *pass, msg *domain.Message) error {
	descriptor, err := Extract(msg)
	if errors.Is(err, domain.ErrNoMedia) {
		return nil
	}
	if err != nil {
		p.result.Failed++
		ix.bumpStatus(p, false)
		logger.Warn("Skipping message %d in %s: %v", msg.ID, p.source.DisplayName(), err)
		return nil
	}

	hash := ix.hasher.Hash(msg, descriptor)
	if _, dup := p.seen[hash]; dup {
		p.result.Duplicates++
		return nil
	}
	p.seen[hash] = struct{}{}

	doc := newDocument(p.source, p.entity.ID, msg, descriptor, hash)
	created, err := storeOnce(ctx, ix.docStore, doc)
	switch {
	case errors.Is(err, domain.ErrPersistence):
		return err
	case err != nil:
		p.result.Failed++
		ix.bumpStatus(p, false)
		logger.Warn("Failed to store message %d in %s: %v", msg.ID, p.source.DisplayName(), err)
	case created:
		p.result.Indexed++
		ix.bumpStatus(p, true)
		logger.Debug("Indexed %s from message %d", descriptor.FileName, msg.ID)
	default:
		p.result.Duplicates++
	}
	return nil
}

// commit advances the watermark to the highest message processed.
// It runs even when ctx is cancelled so stopped passes keep their progress.
// A newest-first pass that stopped early leaves the watermark alone: the
// older part of its window was never read, and the documents it did store
// are skipped as duplicates on the retry.
func (ix *Indexer) commit(ctx context.Context, p *pass, complete bool) error {
	if p.maxID == 0 {
		return nil
	}
	if !complete && !p.ascending {
		logger.Debug("Keeping watermark of %s: first pass stopped before the end of its window",
			p.source.DisplayName())
		return nil
	}
	mark := p.maxID
	if wm := p.source.Watermark(); wm > mark {
		mark = wm
	}

	at := time.Now()
	commitCtx := context.WithoutCancel(ctx)
	if err := ix.registry.AdvanceWatermark(commitCtx, p.source.UserID, p.source.PeerID, mark, at); err != nil {
		return err
	}

	updated := *p.source
	updated.LastMessageID = &mark
	updated.LastIndexedAt = &at
	p.result.Source = &updated
	p.result.Watermark = &mark
	return nil
}

// storeOnce inserts doc unless the user already has a document with its hash.
func storeOnce(ctx context.Context, store driven.DocumentStore, doc *domain.Document) (bool, error) {
	_, err := store.FindByHash(ctx, doc.UserID, doc.Hash)
	if err == nil {
		return false, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return false, fmt.Errorf("find document: %w", err)
	}

	if err := store.Insert(ctx, doc); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			return false, nil
		}
		return false, fmt.Errorf("insert document: %w", err)
	}
	return true, nil
}

func newDocument(source *domain.Source, chatID int64, msg *domain.Message, d domain.Descriptor, hash string) *domain.Document {
	return &domain.Document{
		ID:         uuid.NewString(),
		UserID:     source.UserID,
		SourceID:   source.ID,
		SourceName: source.DisplayName(),
		Origin:     domain.MessageLocator{ChatID: chatID, MessageID: msg.ID},
		FileName:   d.FileName,
		FileType:   d.FileType,
		FileSize:   d.FileSize,
		MIMEType:   d.MIMEType,
		Hash:       hash,
		Text:       d.Text,
		PostedAt:   msg.Date,
		IndexedAt:  time.Now(),
	}
}

func (ix *Indexer) setStatus(key domain.SourceKey, status *driving.IndexStatus) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	ix.status[key] = status
}

func (ix *Indexer) bumpStatus(p *pass, indexed bool) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	if indexed {
		p.status.Indexed++
	} else {
		p.status.Failed++
	}
}

func (ix *Indexer) finishStatus(key domain.SourceKey, p *pass, err error) {
	ix.mu.Lock()
	defer ix.mu.Unlock()
	p.status.Running = false
	p.status.LastError = err
	ix.status[key] = p.status
}
