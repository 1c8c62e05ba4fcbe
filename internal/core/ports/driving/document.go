package driving

import (
	"context"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// DocumentService queries indexed files.
type DocumentService interface {
	// Search matches query against file names and text, newest first.
	Search(ctx context.Context, userID int64, query string, opts domain.SearchOptions) ([]domain.Document, error)

	// Recent returns the latest discovered files.
	Recent(ctx context.Context, userID int64, limit int) ([]domain.Document, error)

	// Get retrieves one of the user's documents by ID.
	Get(ctx context.Context, userID int64, id string) (*domain.Document, error)

	// Count returns how many files the user has indexed.
	Count(ctx context.Context, userID int64) (int, error)
}
