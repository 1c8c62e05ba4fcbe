package cli

import (
	"context"
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/custodia-labs/tgindex/internal/adapters/driving/bot"
)

var (
	botAllowedUsers []int64
	botResultLimit  int
	botNoListen     bool
)

var botCmd = &cobra.Command{
	Use:   "bot",
	Short: "Serve the Telegram bot",
	Long: `Runs the bot configured by telegram.bot_token. Users talk to it in a
private chat:

  /connect <channel>   connect a channel or group and index its files
  /reindex <channel>   run a larger pass over a connected source
  /search <text>       find files by name or message text
  /recent              list the latest files
  /sources             list connected sources
  /stats               count indexed files

Unless --no-listen is given, new files posted in monitored chats are indexed
while the bot runs.`,
	Args: cobra.NoArgs,
	RunE: runBot,
}

func init() {
	botCmd.Flags().Int64SliceVar(&botAllowedUsers, "allow", nil, "user ids allowed to send commands (default everyone)")
	botCmd.Flags().IntVarP(&botResultLimit, "limit", "n", bot.DefaultResultLimit, "files listed per reply")
	botCmd.Flags().BoolVar(&botNoListen, "no-listen", false, "do not index new messages while serving")
	rootCmd.AddCommand(botCmd)
}

func runBot(cmd *cobra.Command, _ []string) error {
	if settingsService == nil || sourceRegistry == nil || indexer == nil || documentService == nil {
		return errors.New("bot services not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("reading settings: %w", err)
	}
	if settings.Telegram.BotToken == "" {
		return errors.New(`telegram.bot_token is not set; run "tgindex settings set telegram.bot_token <token>"`)
	}

	ports := bot.Ports{
		Sources:   sourceRegistry,
		Indexer:   indexer,
		Documents: documentService,
		Listener:  listener,
	}
	b, err := bot.New(settings.Telegram.BotToken, ports, bot.Config{
		AllowedUsers: botAllowedUsers,
		ResultLimit:  botResultLimit,
	})
	if err != nil {
		return err
	}

	err = withSession(cmd.Context(), func(ctx context.Context) error {
		g, ctx := errgroup.WithContext(ctx)
		g.Go(func() error { return b.Run(ctx) })
		if listener != nil && !botNoListen {
			g.Go(func() error { return runWithScheduler(ctx, listener.Run) })
		}
		cmd.Println("Bot is running. Press Ctrl+C to stop.")
		return g.Wait()
	})
	if err != nil && !errors.Is(err, context.Canceled) {
		return failure("bot stopped", err)
	}
	return nil
}
