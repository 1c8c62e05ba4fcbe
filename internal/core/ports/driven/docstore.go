package driven

import (
	"context"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// DocumentStore persists discovered files.
// (UserID, Hash) is unique in every implementation.
type DocumentStore interface {
	// FindByHash retrieves a user's document by dedup key.
	// Returns domain.ErrNotFound when absent.
	FindByHash(ctx context.Context, userID int64, hash string) (*domain.Document, error)

	// Insert stores a new document.
	// Returns domain.ErrAlreadyExists when (UserID, Hash) is taken.
	Insert(ctx context.Context, doc *domain.Document) error

	// Find returns a user's documents matching the query.
	Find(ctx context.Context, userID int64, query domain.DocumentQuery) ([]domain.Document, error)

	// Get retrieves a document by ID, scoped to its owner.
	// Returns domain.ErrNotFound when absent or owned by another user.
	Get(ctx context.Context, userID int64, id string) (*domain.Document, error)

	// Count returns the number of documents a user has.
	Count(ctx context.Context, userID int64) (int, error)
}
