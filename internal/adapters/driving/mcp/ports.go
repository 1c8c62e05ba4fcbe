package mcp

import (
	"context"

	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// SessionRunner runs fn while the platform session is connected.
type SessionRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Ports aggregates the driving ports the MCP server calls.
type Ports struct {
	// Documents answers search, recent and document reads.
	Documents driving.DocumentService

	// Sources lists the monitored channels and groups.
	Sources driving.SourceRegistry

	// Indexer runs passes for the index_source tool. Optional.
	Indexer driving.Indexer

	// Session connects the platform around an indexing pass. Optional; when
	// nil the indexer is called directly.
	Session SessionRunner

	// UserID is the user every request acts as.
	UserID int64
}

// Validate ensures all required ports are set.
func (p *Ports) Validate() error {
	if p.Documents == nil {
		return ErrMissingDocumentService
	}
	if p.Sources == nil {
		return ErrMissingSourceRegistry
	}
	return nil
}

// withSession runs fn inside the session when one is configured.
func (p *Ports) withSession(ctx context.Context, fn func(ctx context.Context) error) error {
	if p.Session == nil {
		return fn(ctx)
	}
	return p.Session(ctx, fn)
}
