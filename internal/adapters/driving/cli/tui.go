package cli

import (
	"context"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/tui"
	"github.com/custodia-labs/tgindex/internal/core/domain"
)

var tuiCmd = &cobra.Command{
	Use:   "tui",
	Short: "Launch the interactive terminal UI",
	Long: `Launch the interactive terminal user interface.

Search indexed files, open their details, and list, index or remove sources
with keyboard navigation.

Controls:
  ↑/k, ↓/j - Navigate
  Enter    - Search / Details / Select
  i        - Index the selected source
  d        - Remove the selected source
  Esc      - Back
  q        - Quit`,
	RunE: runTUI,
}

func init() {
	rootCmd.AddCommand(tuiCmd)
}

func runTUI(cmd *cobra.Command, _ []string) error {
	defer func() {
		if r := recover(); r != nil {
			fmt.Fprintf(os.Stderr, "Panic in TUI: %v\n", r)
			fmt.Fprintf(os.Stderr, "Stack trace:\n%s\n", debug.Stack())
		}
	}()

	ports := &tui.Ports{
		Documents: documentService,
		Sources:   sourceRegistry,
		UserID:    userID,
	}
	if indexer != nil && sessionRunner != nil {
		ports.Index = tuiIndexFunc()
	}

	app, err := tui.NewApp(ports)
	if err != nil {
		return fmt.Errorf("failed to create TUI: %w", err)
	}

	if err := app.WithContext(cmd.Context()).Run(); err != nil {
		return fmt.Errorf("TUI error: %w", err)
	}
	return nil
}

// tuiIndexFunc indexes a source inside the platform session.
func tuiIndexFunc() tui.IndexFunc {
	return func(ctx context.Context, identifier string) (domain.IndexResult, error) {
		var result domain.IndexResult
		err := withSession(ctx, func(ctx context.Context) error {
			var err error
			result, err = indexer.IndexSource(ctx, userID, identifier, 0)
			return err
		})
		return result, err
	}
}
