package driven

import (
	"context"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// Platform is the authorized user session on Telegram.
// Implementations translate platform failures into the domain taxonomy:
// domain.ErrSourceUnresolvable for unknown or inaccessible entities and
// *domain.RetryableError for flood control and dropped connections.
type Platform interface {
	// ResolveEntity looks up a channel or group by username or numeric id.
	ResolveEntity(ctx context.Context, identifier string) (*domain.Entity, error)

	// IterMessages opens a lazy, finite stream over an entity's history.
	// Without a MinID the stream is newest first; with one it is ascending
	// and only yields messages after MinID.
	IterMessages(ctx context.Context, entity domain.Entity, req domain.HistoryRequest) (MessageIterator, error)

	// OnNewMessage registers the handler for live messages.
	// Registering again replaces the previous handler.
	OnNewMessage(handler MessageHandler)
}

// MessageHandler receives live messages from the platform.
type MessageHandler func(ctx context.Context, msg domain.Message)

// MessageIterator yields messages one at a time. It is not restartable.
type MessageIterator interface {
	// Next returns the next message, or false when the stream is exhausted
	// or failed. Check Err after Next returns false.
	Next(ctx context.Context) (domain.Message, bool)

	// Err returns the error that stopped the stream, if any.
	Err() error
}
