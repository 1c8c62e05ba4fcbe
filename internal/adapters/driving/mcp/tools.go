package mcp

import (
	"context"
	"errors"
	"time"

	"github.com/modelcontextprotocol/go-sdk/mcp"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// defaultToolLimit caps tool results when the caller gives no limit.
const defaultToolLimit = 10

// SearchInput is the input schema for the search_documents tool.
type SearchInput struct {
	Query    string `json:"query" jsonschema:"text matched against file names and message text"`
	Limit    int    `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
	Offset   int    `json:"offset,omitempty" jsonschema:"number of results to skip"`
	FileType string `json:"file_type,omitempty" jsonschema:"restrict to one file type such as pdf or photo"`
}

// RecentInput is the input schema for the recent_documents tool.
type RecentInput struct {
	Limit int `json:"limit,omitempty" jsonschema:"maximum number of results to return (default 10)"`
}

// DocumentsOutput is the output schema for tools returning documents.
type DocumentsOutput struct {
	Results []DocumentOutput `json:"results"`
	Count   int              `json:"count"`
}

// DocumentOutput represents a single indexed file.
type DocumentOutput struct {
	DocumentID string `json:"document_id"`
	FileName   string `json:"file_name"`
	FileType   string `json:"file_type"`
	FileSize   int64  `json:"file_size"`
	Source     string `json:"source"`
	ChatID     int64  `json:"chat_id"`
	MessageID  int    `json:"message_id"`
	PostedAt   string `json:"posted_at"`
	Text       string `json:"text,omitempty"`
}

// ListSourcesInput is the (empty) input schema for the list_sources tool.
type ListSourcesInput struct{}

// SourcesOutput is the output schema for list_sources.
type SourcesOutput struct {
	Sources []SourceOutput `json:"sources"`
}

// SourceOutput represents one monitored channel or group.
type SourceOutput struct {
	ID            string `json:"id"`
	PeerID        int64  `json:"peer_id"`
	Identifier    string `json:"identifier"`
	Name          string `json:"name"`
	Kind          string `json:"kind"`
	LastMessageID int    `json:"last_message_id,omitempty"`
	LastIndexedAt string `json:"last_indexed_at,omitempty"`
}

// IndexInput is the input schema for the index_source tool.
type IndexInput struct {
	Identifier string `json:"identifier" jsonschema:"username, t.me link or numeric id of the channel or group"`
	Limit      int    `json:"limit,omitempty" jsonschema:"maximum number of messages to scan (default from settings)"`
}

// IndexOutput is the output schema for index_source.
type IndexOutput struct {
	Source     string `json:"source"`
	Scanned    int    `json:"scanned"`
	Indexed    int    `json:"indexed"`
	Duplicates int    `json:"duplicates"`
	Failed     int    `json:"failed"`
	Watermark  int    `json:"watermark,omitempty"`
}

// registerTools registers all tool handlers with the MCP server.
func (s *Server) registerTools() {
	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "search_documents",
		Description: "Search indexed Telegram files by file name or message text, newest first",
	}, s.handleSearch)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "recent_documents",
		Description: "List the most recently posted indexed files",
	}, s.handleRecent)

	mcp.AddTool(s.server, &mcp.Tool{
		Name:        "list_sources",
		Description: "List the channels and groups being indexed",
	}, s.handleListSources)

	if s.ports.Indexer != nil {
		mcp.AddTool(s.server, &mcp.Tool{
			Name:        "index_source",
			Description: "Connect a channel or group if needed and index its latest files",
		}, s.handleIndex)
	}
}

// handleSearch handles the search_documents tool invocation.
func (s *Server) handleSearch(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input SearchInput,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	opts := domain.SearchOptions{Limit: limit, Offset: input.Offset, FileType: input.FileType}
	docs, err := s.ports.Documents.Search(ctx, s.ports.UserID, input.Query, opts)
	if err != nil {
		return nil, DocumentsOutput{}, err
	}
	return nil, documentsOutput(docs), nil
}

// handleRecent handles the recent_documents tool invocation.
func (s *Server) handleRecent(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input RecentInput,
) (*mcp.CallToolResult, DocumentsOutput, error) {
	limit := input.Limit
	if limit <= 0 {
		limit = defaultToolLimit
	}

	docs, err := s.ports.Documents.Recent(ctx, s.ports.UserID, limit)
	if err != nil {
		return nil, DocumentsOutput{}, err
	}
	return nil, documentsOutput(docs), nil
}

// handleListSources handles the list_sources tool invocation.
func (s *Server) handleListSources(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	_ ListSourcesInput,
) (*mcp.CallToolResult, SourcesOutput, error) {
	sources, err := s.ports.Sources.List(ctx, s.ports.UserID)
	if err != nil {
		return nil, SourcesOutput{}, err
	}

	out := SourcesOutput{Sources: make([]SourceOutput, len(sources))}
	for i := range sources {
		out.Sources[i] = sourceOutput(&sources[i])
	}
	return nil, out, nil
}

// handleIndex handles the index_source tool invocation.
func (s *Server) handleIndex(
	ctx context.Context,
	_ *mcp.CallToolRequest,
	input IndexInput,
) (*mcp.CallToolResult, IndexOutput, error) {
	if s.ports.Indexer == nil {
		return nil, IndexOutput{}, ErrIndexingUnavailable
	}
	if input.Identifier == "" {
		return nil, IndexOutput{}, errors.New("identifier is required")
	}

	var result domain.IndexResult
	err := s.ports.withSession(ctx, func(ctx context.Context) error {
		var err error
		result, err = s.ports.Indexer.IndexSource(ctx, s.ports.UserID, input.Identifier, input.Limit)
		return err
	})

	out := IndexOutput{
		Source:     input.Identifier,
		Scanned:    result.Scanned,
		Indexed:    result.Indexed,
		Duplicates: result.Duplicates,
		Failed:     result.Failed,
	}
	if result.Source != nil {
		out.Source = result.Source.DisplayName()
	}
	if result.Watermark != nil {
		out.Watermark = *result.Watermark
	}
	if err != nil {
		return nil, out, errors.New(domain.UserMessage(err))
	}
	return nil, out, nil
}

func documentsOutput(docs []domain.Document) DocumentsOutput {
	out := DocumentsOutput{
		Results: make([]DocumentOutput, len(docs)),
		Count:   len(docs),
	}
	for i := range docs {
		out.Results[i] = documentOutput(&docs[i])
	}
	return out
}

func documentOutput(d *domain.Document) DocumentOutput {
	return DocumentOutput{
		DocumentID: d.ID,
		FileName:   d.FileName,
		FileType:   d.FileType,
		FileSize:   d.FileSize,
		Source:     d.SourceName,
		ChatID:     d.Origin.ChatID,
		MessageID:  d.Origin.MessageID,
		PostedAt:   d.PostedAt.UTC().Format(time.RFC3339),
		Text:       d.Text,
	}
}

func sourceOutput(src *domain.Source) SourceOutput {
	out := SourceOutput{
		ID:            src.ID,
		PeerID:        src.PeerID,
		Identifier:    src.Identifier,
		Name:          src.DisplayName(),
		Kind:          string(src.Kind),
		LastMessageID: src.Watermark(),
	}
	if src.LastIndexedAt != nil {
		out.LastIndexedAt = src.LastIndexedAt.UTC().Format(time.RFC3339)
	}
	return out
}
