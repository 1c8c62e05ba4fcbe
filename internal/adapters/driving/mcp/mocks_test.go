package mcp

import (
	"context"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

// mockDocumentService is a mock implementation of driving.DocumentService.
type mockDocumentService struct {
	documents []domain.Document
	document  *domain.Document
	err       error

	lastQuery string
	lastOpts  domain.SearchOptions
	lastLimit int
	lastUser  int64
}

func (m *mockDocumentService) Search(
	_ context.Context,
	userID int64,
	query string,
	opts domain.SearchOptions,
) ([]domain.Document, error) {
	m.lastUser, m.lastQuery, m.lastOpts = userID, query, opts
	return m.documents, m.err
}

func (m *mockDocumentService) Recent(_ context.Context, userID int64, limit int) ([]domain.Document, error) {
	m.lastUser, m.lastLimit = userID, limit
	return m.documents, m.err
}

func (m *mockDocumentService) Get(_ context.Context, userID int64, _ string) (*domain.Document, error) {
	m.lastUser = userID
	return m.document, m.err
}

func (m *mockDocumentService) Count(_ context.Context, _ int64) (int, error) {
	return len(m.documents), m.err
}

// mockSourceRegistry is a mock implementation of driving.SourceRegistry.
type mockSourceRegistry struct {
	sources []domain.Source
	err     error
}

func (m *mockSourceRegistry) Add(_ context.Context, _ int64, _ string) (*domain.Source, error) {
	return nil, m.err
}

func (m *mockSourceRegistry) Get(_ context.Context, _ int64, _ string) (*domain.Source, error) {
	return nil, m.err
}

func (m *mockSourceRegistry) List(_ context.Context, _ int64) ([]domain.Source, error) {
	return m.sources, m.err
}

func (m *mockSourceRegistry) Remove(_ context.Context, _ int64, _ string) error {
	return m.err
}

func (m *mockSourceRegistry) AdvanceWatermark(_ context.Context, _, _ int64, _ int, _ time.Time) error {
	return m.err
}

func (m *mockSourceRegistry) Monitoring(_ context.Context, _ int64) ([]domain.Source, error) {
	return m.sources, m.err
}

// mockIndexer is a mock implementation of driving.Indexer.
type mockIndexer struct {
	result domain.IndexResult
	err    error

	calls      int
	identifier string
	limit      int
}

func (m *mockIndexer) IndexSource(_ context.Context, _ int64, identifier string, limit int) (domain.IndexResult, error) {
	m.calls++
	m.identifier, m.limit = identifier, limit
	return m.result, m.err
}

func (m *mockIndexer) Reindex(ctx context.Context, userID int64, identifier string) (domain.IndexResult, error) {
	return m.IndexSource(ctx, userID, identifier, 0)
}

func (m *mockIndexer) IndexAll(_ context.Context, _ int64, _ int) ([]domain.IndexResult, error) {
	return []domain.IndexResult{m.result}, m.err
}

func (m *mockIndexer) Status(_, _ int64) *driving.IndexStatus {
	return nil
}
