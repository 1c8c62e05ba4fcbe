package driving

import (
	"context"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// Indexer runs backfill passes over a source's history.
type Indexer interface {
	// IndexSource indexes up to windowLimit messages of a source. A first pass
	// reads the newest messages; later passes read forward from the watermark.
	// windowLimit <= 0 uses the configured default. The result reflects what
	// was committed, also when an error is returned.
	IndexSource(ctx context.Context, userID int64, identifier string, windowLimit int) (domain.IndexResult, error)

	// Reindex runs IndexSource with the reindex window.
	Reindex(ctx context.Context, userID int64, identifier string) (domain.IndexResult, error)

	// IndexAll runs IndexSource for every source of a user.
	IndexAll(ctx context.Context, userID int64, windowLimit int) ([]domain.IndexResult, error)

	// Status returns progress for a source, nil when no pass has run.
	Status(userID, peerID int64) *IndexStatus
}

// IndexStatus represents the state of the latest pass over a source.
type IndexStatus struct {
	// Key identifies the user and source.
	Key domain.SourceKey

	// Running indicates if a pass is currently in progress.
	Running bool

	// Indexed is the count of documents committed so far.
	Indexed int

	// Failed is the number of messages skipped after errors.
	Failed int

	// LastError is the error that ended the latest pass, if any.
	LastError error
}
