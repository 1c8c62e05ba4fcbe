package cli

import (
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

var (
	searchLimit  int
	searchOffset int
	searchType   string
	searchSource string
	searchJSON   bool

	recentLimit int
	recentJSON  bool
)

var searchCmd = &cobra.Command{
	Use:   "search [query]",
	Short: "Search indexed files",
	Long: `Finds indexed files whose name or message text contains the query,
ignoring case. Newest files come first.`,
	Args: cobra.ExactArgs(1),
	RunE: runSearch,

	Annotations: map[string]string{annotationOffline: "true"},
}

var recentCmd = &cobra.Command{
	Use:   "recent",
	Short: "List the most recently posted files",
	Args:  cobra.NoArgs,
	RunE:  runRecent,

	Annotations: map[string]string{annotationOffline: "true"},
}

func init() {
	searchCmd.Flags().IntVarP(&searchLimit, "limit", "n", 10, "maximum number of results")
	searchCmd.Flags().IntVar(&searchOffset, "offset", 0, "number of results to skip")
	searchCmd.Flags().StringVarP(&searchType, "type", "t", "", "only files of this type (pdf, photo, video, ...)")
	searchCmd.Flags().StringVarP(&searchSource, "source", "s", "", "only files from this source")
	searchCmd.Flags().BoolVar(&searchJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(searchCmd)

	recentCmd.Flags().IntVarP(&recentLimit, "limit", "n", 10, "maximum number of results")
	recentCmd.Flags().BoolVar(&recentJSON, "json", false, "output results as JSON")
	rootCmd.AddCommand(recentCmd)
}

func runSearch(cmd *cobra.Command, args []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	ctx := cmd.Context()
	opts := domain.SearchOptions{
		Limit:    searchLimit,
		Offset:   searchOffset,
		FileType: strings.ToLower(searchType),
	}

	if searchSource != "" {
		if sourceRegistry == nil {
			return errors.New("source registry not configured")
		}
		src, err := sourceRegistry.Get(ctx, userID, searchSource)
		if err != nil {
			return failure("finding source "+searchSource, err)
		}
		opts.SourceID = src.ID
	}

	docs, err := documentService.Search(ctx, userID, args[0], opts)
	if err != nil {
		return failure("search failed", err)
	}

	if searchJSON {
		return outputDocumentsJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Printf("No files found for %q.\n", args[0])
		return nil
	}
	outputDocumentsTable(cmd, docs, searchOffset)
	return nil
}

func runRecent(cmd *cobra.Command, _ []string) error {
	if documentService == nil {
		return errors.New("document service not configured")
	}

	docs, err := documentService.Recent(cmd.Context(), userID, recentLimit)
	if err != nil {
		return failure("listing recent files", err)
	}

	if recentJSON {
		return outputDocumentsJSON(cmd, docs)
	}
	if len(docs) == 0 {
		cmd.Println("No files indexed yet.")
		return nil
	}
	outputDocumentsTable(cmd, docs, 0)
	return nil
}

// documentJSON is the JSON shape of a document.
type documentJSON struct {
	ID        string `json:"id"`
	FileName  string `json:"file_name"`
	FileType  string `json:"file_type"`
	FileSize  int64  `json:"file_size"`
	MIMEType  string `json:"mime_type,omitempty"`
	Source    string `json:"source"`
	ChatID    int64  `json:"chat_id"`
	MessageID int    `json:"message_id"`
	Text      string `json:"text,omitempty"`
	PostedAt  string `json:"posted_at"`
	IndexedAt string `json:"indexed_at"`
}

func toDocumentJSON(d *domain.Document) documentJSON {
	return documentJSON{
		ID:        d.ID,
		FileName:  d.FileName,
		FileType:  d.FileType,
		FileSize:  d.FileSize,
		MIMEType:  d.MIMEType,
		Source:    d.SourceName,
		ChatID:    d.Origin.ChatID,
		MessageID: d.Origin.MessageID,
		Text:      d.Text,
		PostedAt:  d.PostedAt.UTC().Format(time.RFC3339),
		IndexedAt: d.IndexedAt.UTC().Format(time.RFC3339),
	}
}

func outputDocumentsJSON(cmd *cobra.Command, docs []domain.Document) error {
	out := make([]documentJSON, len(docs))
	for i := range docs {
		out[i] = toDocumentJSON(&docs[i])
	}
	data, err := json.MarshalIndent(out, "", "  ")
	if err != nil {
		return fmt.Errorf("failed to marshal results: %w", err)
	}
	cmd.Println(string(data))
	return nil
}

func outputDocumentsTable(cmd *cobra.Command, docs []domain.Document, offset int) {
	cmd.Println("Results:")
	cmd.Println()
	for i := range docs {
		d := &docs[i]
		cmd.Printf("  [%d] %s (%s, %s)\n", offset+i+1, d.FileName, d.FileType, humanSize(d.FileSize))
		meta := d.PostedAt.Format("2006-01-02")
		if d.SourceName != "" {
			meta = d.SourceName + " · " + meta
		}
		cmd.Printf("      %s\n", meta)
		if text := snippet(d.Text, 80); text != "" {
			cmd.Printf("      %s\n", text)
		}
		cmd.Printf("      ID: %s\n", d.ID)
		cmd.Println()
	}
}

// snippet flattens text to one line of at most n runes.
func snippet(text string, n int) string {
	text = strings.Join(strings.Fields(text), " ")
	r := []rune(text)
	if len(r) <= n {
		return text
	}
	return string(r[:n]) + "..."
}

// humanSize formats a byte count, "unknown size" when zero.
func humanSize(n int64) string {
	const unit = 1024
	if n <= 0 {
		return "unknown size"
	}
	if n < unit {
		return fmt.Sprintf("%d B", n)
	}
	div, exp := int64(unit), 0
	for m := n / unit; m >= unit; m /= unit {
		div *= unit
		exp++
	}
	return fmt.Sprintf("%.1f %cB", float64(n)/float64(div), "KMGTPE"[exp])
}
