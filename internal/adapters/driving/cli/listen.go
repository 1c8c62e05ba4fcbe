package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

var listenCmd = &cobra.Command{
	Use:   "listen",
	Short: "Index new files as they are posted",
	Long: `Keeps the Telegram session connected and indexes media posted in any
monitored channel or group, for every user monitoring it. Stops on Ctrl+C.

When indexing.catch_up_interval is set, the sources of --user are also
re-indexed from their watermark on that interval, so messages posted while
the session was down are picked up.`,
	Args: cobra.NoArgs,
	RunE: runListen,
}

func init() {
	rootCmd.AddCommand(listenCmd)
}

func runListen(cmd *cobra.Command, _ []string) error {
	if listener == nil {
		return errors.New("listener not configured")
	}

	err := withSession(cmd.Context(), func(ctx context.Context) error {
		cmd.Println("Listening for new files. Press Ctrl+C to stop.")
		return runWithScheduler(ctx, listener.Run)
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return failure("listener stopped", err)
	}
	return nil
}

// runWithScheduler runs fn and, when configured, the catch-up scheduler
// until either fails or ctx ends.
func runWithScheduler(ctx context.Context, fn func(ctx context.Context) error) error {
	if scheduler == nil || !scheduler.Task().Enabled {
		return fn(ctx)
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error { return fn(ctx) })
	g.Go(func() error { return scheduler.Start(ctx) })
	return g.Wait()
}
