package tui

import "errors"

// ErrMissingDocumentService is returned when the document service is not provided.
var ErrMissingDocumentService = errors.New("tui: document service is required")

// ErrMissingSourceRegistry is returned when the source registry is not provided.
var ErrMissingSourceRegistry = errors.New("tui: source registry is required")
