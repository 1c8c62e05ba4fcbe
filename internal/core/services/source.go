package services

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
	"github.com/custodia-labs/tgindex/internal/logger"
)

// Ensure SourceService implements the interface.
var _ driving.SourceRegistry = (*SourceService)(nil)

// SourceService manages the sources users monitor.
type SourceService struct {
	sourceStore driven.SourceStore
	platform    driven.Platform
	gate        *SessionGate
}

// NewSourceService creates a new source service.
// The platform is only needed by Add and by the indexer; it may be nil for
// read-only use.
func NewSourceService(sourceStore driven.SourceStore, platform driven.Platform, gate *SessionGate) *SourceService {
	if gate == nil {
		gate = NewSessionGate()
	}
	return &SourceService{
		sourceStore: sourceStore,
		platform:    platform,
		gate:        gate,
	}
}

// Add resolves an identifier on the platform and registers it for the user.
func (s *SourceService) Add(ctx context.Context, userID int64, identifier string) (*domain.Source, error) {
	source, created, _, err := s.ensure(ctx, userID, identifier)
	if err != nil {
		return nil, err
	}
	if !created {
		return source, domain.ErrAlreadyExists
	}
	return source, nil
}

// Get retrieves a user's source by identifier or numeric id.
func (s *SourceService) Get(ctx context.Context, userID int64, identifier string) (*domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	id := domain.NormaliseIdentifier(identifier)
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	if peerID, ok := domain.ParsePeerID(id); ok {
		source, err := s.sourceStore.FindByPeer(ctx, userID, peerID)
		if err == nil || !errors.Is(err, domain.ErrNotFound) {
			return source, err
		}
	}
	return s.sourceStore.FindByIdentifier(ctx, userID, id)
}

// List returns all sources of a user.
func (s *SourceService) List(ctx context.Context, userID int64) ([]domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.sourceStore.List(ctx, userID)
}

// Remove stops monitoring a source. Indexed documents are kept.
func (s *SourceService) Remove(ctx context.Context, userID int64, identifier string) error {
	source, err := s.Get(ctx, userID, identifier)
	if err != nil {
		return err
	}
	return s.sourceStore.Delete(ctx, userID, source.PeerID)
}

// AdvanceWatermark records the last processed message of a pass.
// Lower values are accepted so a watermark can be reset by hand.
func (s *SourceService) AdvanceWatermark(ctx context.Context, userID, peerID int64, messageID int, at time.Time) error {
	if s.sourceStore == nil {
		return domain.ErrNotImplemented
	}
	if err := s.sourceStore.UpdateWatermark(ctx, userID, peerID, messageID, at); err != nil {
		return fmt.Errorf("update watermark: %w", err)
	}
	return nil
}

// Monitoring returns every user's source for a platform id.
func (s *SourceService) Monitoring(ctx context.Context, peerID int64) ([]domain.Source, error) {
	if s.sourceStore == nil {
		return nil, domain.ErrNotImplemented
	}
	return s.sourceStore.ListByPeer(ctx, peerID)
}

// Resolve looks an identifier up on the platform while holding the session.
func (s *SourceService) Resolve(ctx context.Context, identifier string) (*domain.Entity, error) {
	if s.platform == nil {
		return nil, domain.ErrNotImplemented
	}
	id := domain.NormaliseIdentifier(identifier)
	if id == "" {
		return nil, domain.ErrInvalidInput
	}

	var entity *domain.Entity
	err := s.gate.Do(ctx, func(ctx context.Context) error {
		var err error
		entity, err = s.platform.ResolveEntity(ctx, id)
		return err
	})
	if err != nil {
		return nil, fmt.Errorf("resolve %s: %w", id, err)
	}
	return entity, nil
}

// ensure resolves identifier and returns the user's source for it,
// registering the source first if needed.
func (s *SourceService) ensure(ctx context.Context, userID int64, identifier string) (*domain.Source, bool, *domain.Entity, error) {
	if s.sourceStore == nil {
		return nil, false, nil, domain.ErrNotImplemented
	}
	id := domain.NormaliseIdentifier(identifier)
	if id == "" {
		return nil, false, nil, domain.ErrInvalidInput
	}

	entity, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, false, nil, err
	}

	existing, err := s.sourceStore.FindByPeer(ctx, userID, entity.ID)
	if err == nil {
		return existing, false, entity, nil
	}
	if !errors.Is(err, domain.ErrNotFound) {
		return nil, false, nil, fmt.Errorf("find source: %w", err)
	}

	source := &domain.Source{
		ID:         uuid.NewString(),
		UserID:     userID,
		PeerID:     entity.ID,
		Identifier: id,
		Name:       entity.Title,
		Kind:       entity.Kind,
		CreatedAt:  time.Now(),
	}
	if err := s.sourceStore.Insert(ctx, source); err != nil {
		if errors.Is(err, domain.ErrAlreadyExists) {
			// lost a race with a concurrent registration
			existing, findErr := s.sourceStore.FindByPeer(ctx, userID, entity.ID)
			if findErr == nil {
				return existing, false, entity, nil
			}
		}
		return nil, false, nil, fmt.Errorf("insert source: %w", err)
	}

	logger.Info("Registered source %s (%d) for user %d", source.DisplayName(), source.PeerID, userID)
	return source, true, entity, nil
}
