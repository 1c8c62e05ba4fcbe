package services

import (
	"context"
	"errors"
	"fmt"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
	"github.com/custodia-labs/tgindex/internal/logger"
)

// Ensure Listener implements the interface.
var _ driving.Listener = (*Listener)(nil)

// Listener indexes files as they are posted, for every user monitoring the
// chat. It never moves watermarks: the next backfill rescans and dedups.
type Listener struct {
	registry *SourceService
	docStore driven.DocumentStore
	platform driven.Platform
	hasher   Hasher
}

// NewListener creates a new live listener.
func NewListener(registry *SourceService, docStore driven.DocumentStore, platform driven.Platform, mode domain.HashMode) *Listener {
	return &Listener{
		registry: registry,
		docStore: docStore,
		platform: platform,
		hasher:   NewHasher(mode),
	}
}

// HandleMessage indexes a live message. Returns how many users got a new
// document. A failure for one user does not stop the others.
func (l *Listener) HandleMessage(ctx context.Context, msg domain.Message) (int, error) {
	if !msg.HasMedia() {
		return 0, nil
	}

	descriptor, err := Extract(&msg)
	if err != nil {
		return 0, fmt.Errorf("message %d in %d: %w", msg.ID, msg.PeerID, err)
	}
	hash := l.hasher.Hash(&msg, descriptor)

	sources, err := l.registry.Monitoring(ctx, msg.PeerID)
	if err != nil {
		return 0, fmt.Errorf("list monitoring sources: %w", err)
	}

	created := 0
	var errs []error
	for i := range sources {
		doc := newDocument(&sources[i], msg.PeerID, &msg, descriptor, hash)
		ok, err := storeOnce(ctx, l.docStore, doc)
		if err != nil {
			errs = append(errs, fmt.Errorf("user %d: %w", sources[i].UserID, err))
			continue
		}
		if ok {
			created++
			logger.Debug("Live indexed %s for user %d", descriptor.FileName, sources[i].UserID)
		}
	}

	return created, errors.Join(errs...)
}

// Run subscribes to live messages and blocks until ctx is done.
func (l *Listener) Run(ctx context.Context) error {
	if l.platform == nil {
		return domain.ErrNotImplemented
	}

	l.platform.OnNewMessage(func(ctx context.Context, msg domain.Message) {
		n, err := l.HandleMessage(ctx, msg)
		if err != nil {
			logger.Warn("Live message %d in %d: %v", msg.ID, msg.PeerID, err)
			return
		}
		if n > 0 {
			logger.Info("Indexed live message %d in %d for %d users", msg.ID, msg.PeerID, n)
		}
	})
	defer l.platform.OnNewMessage(nil)

	logger.Info("Listening for new messages")
	<-ctx.Done()
	return nil
}
