// Package mcp provides an MCP (Model Context Protocol) server adapter for
// tgindex. It lets assistants search indexed Telegram files, list the
// monitored sources and trigger indexing passes.
package mcp

import "errors"

var (
	// ErrMissingDocumentService is returned when the document service is not provided.
	ErrMissingDocumentService = errors.New("mcp: document service is required")

	// ErrMissingSourceRegistry is returned when the source registry is not provided.
	ErrMissingSourceRegistry = errors.New("mcp: source registry is required")

	// ErrIndexingUnavailable is returned by index_source when no indexer is wired.
	ErrIndexingUnavailable = errors.New("mcp: indexing is not available")
)
