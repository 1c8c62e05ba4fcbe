package search

import "errors"

// ErrNoDocumentService indicates that no document service was provided.
var ErrNoDocumentService = errors.New("document service is required")
