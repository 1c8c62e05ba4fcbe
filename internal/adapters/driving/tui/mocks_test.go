package tui

import (
	"context"
	"time"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
)

var (
	_ driving.DocumentService = (*mockDocumentService)(nil)
	_ driving.SourceRegistry  = (*mockSourceRegistry)(nil)
)

type mockDocumentService struct {
	docs  []domain.Document
	count int
	err   error
}

func (m *mockDocumentService) Search(_ context.Context, _ int64, _ string, _ domain.SearchOptions) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Recent(_ context.Context, _ int64, _ int) ([]domain.Document, error) {
	return m.docs, m.err
}

func (m *mockDocumentService) Get(_ context.Context, _ int64, _ string) (*domain.Document, error) {
	if len(m.docs) == 0 {
		return nil, domain.ErrNotFound
	}
	return &m.docs[0], nil
}

func (m *mockDocumentService) Count(_ context.Context, _ int64) (int, error) {
	return m.count, m.err
}

type mockSourceRegistry struct {
	sources []domain.Source
	removed []string
}

func (m *mockSourceRegistry) Add(_ context.Context, _ int64, identifier string) (*domain.Source, error) {
	return &domain.Source{Identifier: identifier}, nil
}

func (m *mockSourceRegistry) Get(_ context.Context, _ int64, _ string) (*domain.Source, error) {
	return nil, domain.ErrNotFound
}

func (m *mockSourceRegistry) List(_ context.Context, _ int64) ([]domain.Source, error) {
	return m.sources, nil
}

func (m *mockSourceRegistry) Remove(_ context.Context, _ int64, identifier string) error {
	m.removed = append(m.removed, identifier)
	return nil
}

func (m *mockSourceRegistry) AdvanceWatermark(_ context.Context, _, _ int64, _ int, _ time.Time) error {
	return nil
}

func (m *mockSourceRegistry) Monitoring(_ context.Context, _ int64) ([]domain.Source, error) {
	return nil, nil
}
