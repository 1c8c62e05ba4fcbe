package memory

import (
	"context"
	"sort"
	"sync"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

// Ensure SourceStore implements the interface.
var _ driven.SourceStore = (*SourceStore)(nil)

// SourceStore is an in-memory implementation of driven.SourceStore.
type SourceStore struct {
	mu      sync.RWMutex
	sources map[domain.SourceKey]domain.Source
}

// NewSourceStore creates a new in-memory source store.
func NewSourceStore() *SourceStore {
	return &SourceStore{
		sources: make(map[domain.SourceKey]domain.Source),
	}
}

// FindByPeer retrieves a user's source by platform id.
func (s *SourceStore) FindByPeer(_ context.Context, userID, peerID int64) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	source, ok := s.sources[domain.SourceKey{UserID: userID, PeerID: peerID}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	return copySource(source), nil
}

// FindByIdentifier retrieves a user's source by normalised identifier.
func (s *SourceStore) FindByIdentifier(_ context.Context, userID int64, identifier string) (*domain.Source, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	for key, source := range s.sources {
		if key.UserID == userID && source.Identifier == identifier {
			return copySource(source), nil
		}
	}
	return nil, domain.ErrNotFound
}

// Insert stores a new source.
func (s *SourceStore) Insert(_ context.Context, source *domain.Source) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.SourceKey{UserID: source.UserID, PeerID: source.PeerID}
	if _, exists := s.sources[key]; exists {
		return domain.ErrAlreadyExists
	}
	s.sources[key] = *copySource(*source)
	return nil
}

// UpdateWatermark sets the last indexed message id and time.
func (s *SourceStore) UpdateWatermark(_ context.Context, userID, peerID int64, messageID int, at time.Time) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := domain.SourceKey{UserID: userID, PeerID: peerID}
	source, ok := s.sources[key]
	if !ok {
		return domain.ErrNotFound
	}
	source.LastMessageID = &messageID
	source.LastIndexedAt = &at
	s.sources[key] = source
	return nil
}

// List returns all sources of a user, oldest first.
func (s *SourceStore) List(_ context.Context, userID int64) ([]domain.Source, error) {
	return s.filter(func(k domain.SourceKey) bool { return k.UserID == userID }), nil
}

// ListByPeer returns every user's source for a platform id.
func (s *SourceStore) ListByPeer(_ context.Context, peerID int64) ([]domain.Source, error) {
	return s.filter(func(k domain.SourceKey) bool { return k.PeerID == peerID }), nil
}

// Delete removes a user's source.
func (s *SourceStore) Delete(_ context.Context, userID, peerID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	delete(s.sources, domain.SourceKey{UserID: userID, PeerID: peerID})
	return nil
}

func (s *SourceStore) filter(match func(domain.SourceKey) bool) []domain.Source {
	s.mu.RLock()
	defer s.mu.RUnlock()
	result := make([]domain.Source, 0)
	for key, source := range s.sources {
		if match(key) {
			result = append(result, *copySource(source))
		}
	}
	sort.Slice(result, func(i, j int) bool {
		if result[i].CreatedAt.Equal(result[j].CreatedAt) {
			return result[i].ID < result[j].ID
		}
		return result[i].CreatedAt.Before(result[j].CreatedAt)
	})
	return result
}

// copySource detaches the pointer fields so callers cannot mutate stored state.
func copySource(source domain.Source) *domain.Source {
	if source.LastMessageID != nil {
		id := *source.LastMessageID
		source.LastMessageID = &id
	}
	if source.LastIndexedAt != nil {
		at := *source.LastIndexedAt
		source.LastIndexedAt = &at
	}
	return &source
}
