package cli

import (
	"context"
	"errors"
	"io"
	"os"
	"time"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

// progressInterval is how often a running pass is polled for progress.
const progressInterval = 500 * time.Millisecond

var indexLimit int

var indexCmd = &cobra.Command{
	Use:   "index [identifier]",
	Short: "Index files from connected sources",
	Long: `Runs an indexing pass. The first pass over a source reads its newest
messages; later passes read forward from where the previous one stopped.
An identifier that is not connected yet is connected first.
Without an identifier, every connected source is indexed.`,
	Args: cobra.MaximumNArgs(1),
	RunE: runIndex,
}

var reindexCmd = &cobra.Command{
	Use:   "reindex [identifier]",
	Short: "Run a larger indexing pass over a source",
	Long: `Runs an indexing pass with the reindex window (indexing.reindex_window_limit).
Files already indexed are skipped.`,
	Args: cobra.ExactArgs(1),
	RunE: runReindex,
}

func init() {
	indexCmd.Flags().IntVarP(&indexLimit, "limit", "n", 0, "maximum messages to scan per source (default from settings)")
	rootCmd.AddCommand(indexCmd)
	rootCmd.AddCommand(reindexCmd)
}

func runIndex(cmd *cobra.Command, args []string) error {
	if indexer == nil {
		return errors.New("indexer not configured")
	}

	if len(args) == 0 {
		return indexAll(cmd)
	}

	identifier := args[0]
	cmd.Printf("Indexing %s...\n", identifier)

	var result domain.IndexResult
	err := withSession(cmd.Context(), func(ctx context.Context) error {
		var err error
		result, err = indexWithProgress(ctx, cmd, identifier, func(ctx context.Context) (domain.IndexResult, error) {
			return indexer.IndexSource(ctx, userID, identifier, indexLimit)
		})
		return err
	})
	return reportIndex(cmd, identifier, result, err)
}

func runReindex(cmd *cobra.Command, args []string) error {
	if indexer == nil {
		return errors.New("indexer not configured")
	}

	identifier := args[0]
	cmd.Printf("Reindexing %s...\n", identifier)

	var result domain.IndexResult
	err := withSession(cmd.Context(), func(ctx context.Context) error {
		var err error
		result, err = indexWithProgress(ctx, cmd, identifier, func(ctx context.Context) (domain.IndexResult, error) {
			return indexer.Reindex(ctx, userID, identifier)
		})
		return err
	})
	return reportIndex(cmd, identifier, result, err)
}

func indexAll(cmd *cobra.Command) error {
	cmd.Println("Indexing all sources...")

	var results []domain.IndexResult
	err := withSession(cmd.Context(), func(ctx context.Context) error {
		var err error
		results, err = indexer.IndexAll(ctx, userID, indexLimit)
		return err
	})

	total := 0
	for i := range results {
		printIndexResult(cmd, "", &results[i])
		total += results[i].Indexed
	}
	if err != nil {
		return failure("indexing stopped early", err)
	}
	if len(results) == 0 {
		cmd.Println("No sources connected.")
		return nil
	}
	cmd.Printf("Done: %d new file(s) from %d source(s).\n", total, len(results))
	return nil
}

// indexWithProgress runs pass while displaying the running count on a
// terminal. Progress can only be polled for sources already connected.
func indexWithProgress(
	ctx context.Context,
	cmd *cobra.Command,
	identifier string,
	pass func(ctx context.Context) (domain.IndexResult, error),
) (domain.IndexResult, error) {
	var peerID int64
	if sourceRegistry != nil {
		if src, err := sourceRegistry.Get(ctx, userID, identifier); err == nil {
			peerID = src.PeerID
		}
	}
	if peerID == 0 || !isTerminal(cmd.OutOrStdout()) {
		return pass(ctx)
	}

	type outcome struct {
		result domain.IndexResult
		err    error
	}
	done := make(chan outcome, 1)
	go func() {
		result, err := pass(ctx)
		done <- outcome{result, err}
	}()

	ticker := time.NewTicker(progressInterval)
	defer ticker.Stop()

	lastCount := -1
	for {
		select {
		case out := <-done:
			if lastCount >= 0 {
				cmd.Println()
			}
			return out.result, out.err
		case <-ticker.C:
			status := indexer.Status(userID, peerID)
			if status != nil && status.Running && status.Indexed != lastCount {
				cmd.Printf("\rIndexed %d file(s)...", status.Indexed)
				lastCount = status.Indexed
			}
		}
	}
}

func reportIndex(cmd *cobra.Command, identifier string, result domain.IndexResult, err error) error {
	if result.Scanned > 0 || result.Source != nil {
		printIndexResult(cmd, identifier, &result)
	}
	if err != nil {
		return failure("indexing "+identifier, err)
	}
	return nil
}

func printIndexResult(cmd *cobra.Command, fallback string, r *domain.IndexResult) {
	name := fallback
	if r.Source != nil {
		name = r.Source.DisplayName()
	}

	cmd.Printf("  %s: %d new file(s), %d message(s) scanned", name, r.Indexed, r.Scanned)
	if r.Duplicates > 0 {
		cmd.Printf(", %d already indexed", r.Duplicates)
	}
	if r.Failed > 0 {
		cmd.Printf(", %d skipped", r.Failed)
	}
	if r.Watermark != nil {
		cmd.Printf(" (up to message %d)", *r.Watermark)
	}
	cmd.Println()
}

// isTerminal reports whether w is an interactive terminal.
func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	return ok && term.IsTerminal(int(f.Fd()))
}
