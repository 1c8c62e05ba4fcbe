package driving

import (
	"context"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// Listener ingests messages as they are posted.
type Listener interface {
	// HandleMessage indexes a live message for every user monitoring its
	// chat. Returns how many users got a new document.
	HandleMessage(ctx context.Context, msg domain.Message) (int, error)

	// Run subscribes to live messages and blocks until ctx is done.
	Run(ctx context.Context) error
}
