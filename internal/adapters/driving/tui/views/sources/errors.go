package sources

import "errors"

var (
	// ErrNoSourceRegistry indicates that no source registry was provided.
	ErrNoSourceRegistry = errors.New("source registry is required")

	// ErrIndexingUnavailable is returned when the TUI runs without a
	// platform session.
	ErrIndexingUnavailable = errors.New("indexing is not available in this session")
)
