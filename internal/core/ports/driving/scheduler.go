package driving

import (
	"context"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// Scheduler runs background catch-up passes next to the live listener.
type Scheduler interface {
	// Start runs scheduled tasks until ctx is cancelled or Stop is called.
	Start(ctx context.Context) error

	// Stop gracefully stops all running tasks.
	Stop() error

	// Task returns the state of the catch-up task.
	Task() domain.ScheduledTask
}
