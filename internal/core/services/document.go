package services

import (
	"context"
	"strings"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// Ensure DocumentService implements the interface.
var _ driving.DocumentService = (*DocumentService)(nil)

// DocumentService queries indexed files.
type DocumentService struct {
	docStore driven.DocumentStore
}

// NewDocumentService creates a new document service.
func NewDocumentService(docStore driven.DocumentStore) *DocumentService {
	return &DocumentService{docStore: docStore}
}

// Search matches query against file names and text, newest first.
// An empty query matches everything.
func (s *DocumentService) Search(
	ctx context.Context,
	userID int64,
	query string,
	opts domain.SearchOptions,
) ([]domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	if opts.Offset < 0 || opts.Limit < 0 {
		return nil, domain.ErrInvalidInput
	}
	return s.docStore.Find(ctx, userID, domain.DocumentQuery{
		Text:     strings.TrimSpace(query),
		FileType: strings.ToLower(strings.TrimSpace(opts.FileType)),
		SourceID: opts.SourceID,
		Sort:     domain.SortNewest,
		Offset:   opts.Offset,
		Limit:    opts.Limit,
	})
}

// Recent returns the latest discovered files.
func (s *DocumentService) Recent(ctx context.Context, userID int64, limit int) ([]domain.Document, error) {
	return s.Search(ctx, userID, "", domain.SearchOptions{Limit: limit})
}

// Get retrieves one of the user's documents by ID.
func (s *DocumentService) Get(ctx context.Context, userID int64, id string) (*domain.Document, error) {
	if s.docStore == nil {
		return nil, domain.ErrNotImplemented
	}
	if id == "" {
		return nil, domain.ErrInvalidInput
	}
	return s.docStore.Get(ctx, userID, id)
}

// Count returns how many files the user has indexed.
func (s *DocumentService) Count(ctx context.Context, userID int64) (int, error) {
	if s.docStore == nil {
		return 0, domain.ErrNotImplemented
	}
	return s.docStore.Count(ctx, userID)
}
