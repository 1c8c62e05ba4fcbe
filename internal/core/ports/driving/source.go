package driving

import (
	"context"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// SourceRegistry manages the channels and groups users monitor.
type SourceRegistry interface {
	// Add resolves an identifier on the platform and registers it for the user.
	// Returns domain.ErrAlreadyExists when the user already monitors it.
	Add(ctx context.Context, userID int64, identifier string) (*domain.Source, error)

	// Get retrieves a user's source by identifier or numeric id.
	Get(ctx context.Context, userID int64, identifier string) (*domain.Source, error)

	// List returns all sources of a user.
	List(ctx context.Context, userID int64) ([]domain.Source, error)

	// Remove stops monitoring a source. Indexed documents are kept.
	Remove(ctx context.Context, userID int64, identifier string) error

	// AdvanceWatermark records the last processed message of a pass.
	AdvanceWatermark(ctx context.Context, userID, peerID int64, messageID int, at time.Time) error

	// Monitoring returns every user's source for a platform id.
	Monitoring(ctx context.Context, peerID int64) ([]domain.Source, error)
}
