package mcp

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewServer(t *testing.T) {
	t.Run("missing document service returns error", func(t *testing.T) {
		server, err := NewServer(&Ports{Sources: &mockSourceRegistry{}})
		require.Error(t, err)
		assert.Nil(t, server)
		assert.ErrorIs(t, err, ErrMissingDocumentService)
	})

	t.Run("valid ports creates server", func(t *testing.T) {
		server, err := NewServer(&Ports{
			Documents: &mockDocumentService{},
			Sources:   &mockSourceRegistry{},
		})
		require.NoError(t, err)
		assert.NotNil(t, server)
	})
}

func TestPorts_Validate(t *testing.T) {
	t.Run("missing document service", func(t *testing.T) {
		ports := &Ports{Sources: &mockSourceRegistry{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingDocumentService)
	})

	t.Run("missing source registry", func(t *testing.T) {
		ports := &Ports{Documents: &mockDocumentService{}}
		assert.ErrorIs(t, ports.Validate(), ErrMissingSourceRegistry)
	})

	t.Run("indexer is optional", func(t *testing.T) {
		ports := &Ports{Documents: &mockDocumentService{}, Sources: &mockSourceRegistry{}}
		assert.NoError(t, ports.Validate())
	})

	t.Run("all ports is valid", func(t *testing.T) {
		ports := &Ports{
			Documents: &mockDocumentService{},
			Sources:   &mockSourceRegistry{},
			Indexer:   &mockIndexer{},
		}
		assert.NoError(t, ports.Validate())
	})
}
