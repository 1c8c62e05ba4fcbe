package telegram

import (
	"context"
	"fmt"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
)

var _ driven.Platform = Offline{}

// Offline stands in for the session in processes that only read the store.
// Every platform call fails with domain.ErrSessionUnauthorized.
type Offline struct{}

// ResolveEntity always fails.
func (Offline) ResolveEntity(context.Context, string) (*domain.Entity, error) {
	return nil, errOffline("resolving entity")
}

// IterMessages always fails.
func (Offline) IterMessages(context.Context, domain.Entity, domain.HistoryRequest) (driven.MessageIterator, error) {
	return nil, errOffline("reading history")
}

// OnNewMessage ignores the handler.
func (Offline) OnNewMessage(driven.MessageHandler) {}

func errOffline(op string) error {
	return fmt.Errorf("%w: %s: session not opened", domain.ErrSessionUnauthorized, op)
}
