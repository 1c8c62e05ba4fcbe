// Package tui is an interactive terminal browser for indexed files: search
// by name or text, and list, index or remove sources.
package tui

import (
	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui/views/sources"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// IndexFunc runs an indexing pass for a source, connecting the platform
// session as needed.
type IndexFunc = sources.IndexFunc

// Ports aggregates the driving ports the TUI calls.
type Ports struct {
	// Documents answers searches.
	Documents driving.DocumentService

	// Sources lists and removes sources.
	Sources driving.SourceRegistry

	// Index runs a pass from the sources view. Optional.
	Index IndexFunc

	// UserID is the user the TUI acts as.
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
