package memory

import (
	"context"
	"sort"
	"strings"
	"sync"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

// Ensure DocumentStore implements the interface.
var _ driven.DocumentStore = (*DocumentStore)(nil)

type hashKey struct {
	userID int64
	hash   string
}

// DocumentStore is an in-memory implementation of driven.DocumentStore.
type DocumentStore struct {
	mu        sync.RWMutex
	documents map[string]domain.Document
	byHash    map[hashKey]string
}

// NewDocumentStore creates a new in-memory document store.
func NewDocumentStore() *DocumentStore {
	return &DocumentStore{
		documents: make(map[string]domain.Document),
		byHash:    make(map[hashKey]string),
	}
}

// FindByHash retrieves a user's document by dedup key.
func (s *DocumentStore) FindByHash(_ context.Context, userID int64, hash string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	id, ok := s.byHash[hashKey{userID, hash}]
	if !ok {
		return nil, domain.ErrNotFound
	}
	doc := s.documents[id]
	return &doc, nil
}

// Insert stores a new document.
func (s *DocumentStore) Insert(_ context.Context, doc *domain.Document) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	key := hashKey{doc.UserID, doc.Hash}
	if _, exists := s.byHash[key]; exists {
		return domain.ErrAlreadyExists
	}
	if _, exists := s.documents[doc.ID]; exists {
		return domain.ErrAlreadyExists
	}
	s.documents[doc.ID] = *doc
	s.byHash[key] = doc.ID
	return nil
}

// Find returns a user's documents matching the query.
func (s *DocumentStore) Find(_ context.Context, userID int64, query domain.DocumentQuery) ([]domain.Document, error) {
	s.mu.RLock()
	needle := strings.ToLower(query.Text)
	matched := make([]domain.Document, 0)
	for _, doc := range s.documents {
		if doc.UserID != userID {
			continue
		}
		if query.FileType != "" && !strings.EqualFold(doc.FileType, query.FileType) {
			continue
		}
		if query.SourceID != "" && doc.SourceID != query.SourceID {
			continue
		}
		if needle != "" &&
			!strings.Contains(strings.ToLower(doc.FileName), needle) &&
			!strings.Contains(strings.ToLower(doc.Text), needle) {
			continue
		}
		matched = append(matched, doc)
	}
	s.mu.RUnlock()

	sort.Slice(matched, func(i, j int) bool {
		a, b := matched[i], matched[j]
		if !a.PostedAt.Equal(b.PostedAt) {
			if query.Sort == domain.SortOldest {
				return a.PostedAt.Before(b.PostedAt)
			}
			return a.PostedAt.After(b.PostedAt)
		}
		return a.ID < b.ID
	})

	if query.Offset >= len(matched) {
		return []domain.Document{}, nil
	}
	matched = matched[query.Offset:]
	if limit := query.EffectiveLimit(); len(matched) > limit {
		matched = matched[:limit]
	}
	return matched, nil
}

// Get retrieves a document by ID, scoped to its owner.
func (s *DocumentStore) Get(_ context.Context, userID int64, id string) (*domain.Document, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	doc, ok := s.documents[id]
	if !ok || doc.UserID != userID {
		return nil, domain.ErrNotFound
	}
	return &doc, nil
}

// Count returns the number of documents a user has.
func (s *DocumentStore) Count(_ context.Context, userID int64) (int, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	n := 0
	for _, doc := range s.documents {
		if doc.UserID == userID {
			n++
		}
	}
	return n, nil
}
