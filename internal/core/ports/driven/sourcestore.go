package driven

import (
	"context"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// SourceStore persists the sources each user monitors.
// (UserID, PeerID) is unique.
type SourceStore interface {
	// FindByPeer retrieves a user's source by platform id.
	// Returns domain.ErrNotFound when absent.
	FindByPeer(ctx context.Context, userID, peerID int64) (*domain.Source, error)

	// FindByIdentifier retrieves a user's source by normalised identifier.
	// Returns domain.ErrNotFound when absent.
	FindByIdentifier(ctx context.Context, userID int64, identifier string) (*domain.Source, error)

	// Insert stores a new source.
	// Returns domain.ErrAlreadyExists when (UserID, PeerID) is taken.
	Insert(ctx context.Context, source *domain.Source) error

	// UpdateWatermark sets the last indexed message id and time.
	// Returns domain.ErrNotFound when the source does not exist.
	UpdateWatermark(ctx context.Context, userID, peerID int64, messageID int, at time.Time) error

	// List returns all sources of a user, oldest first.
	List(ctx context.Context, userID int64) ([]domain.Source, error)

	// ListByPeer returns every user's source for a platform id.
	ListByPeer(ctx context.Context, peerID int64) ([]domain.Source, error)

	// Delete removes a user's source. Indexed documents are kept.
	Delete(ctx context.Context, userID, peerID int64) error
}
