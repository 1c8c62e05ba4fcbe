package cli

import (
	"context"
	"errors"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

var sourceCmd = &cobra.Command{
	Use:   "source",
	Short: "Manage monitored channels and groups",
	Long: `Connect, list and remove the Telegram channels and groups whose files are
indexed. Sources are per user (see --user).`,
}

var sourceAddCmd = &cobra.Command{
	Use:   "add [identifier]",
	Short: "Connect a channel or group",
	Long: `Resolves a channel or group and starts monitoring it. The identifier can be
a username (@newsdrop), a t.me link or a numeric id. Run "tgindex index"
afterwards to backfill its files.`,
	Args: cobra.ExactArgs(1),
	RunE: runSourceAdd,
}

var sourceListCmd = &cobra.Command{
	Use:   "list",
	Short: "List connected sources",
	RunE:  runSourceList,

	Annotations: map[string]string{annotationOffline: "true"},
}

var sourceRemoveCmd = &cobra.Command{
	Use:   "remove [identifier]",
	Short: "Stop monitoring a source",
	Long:  `Stops monitoring a source. Files already indexed from it are kept.`,
	Args:  cobra.ExactArgs(1),
	RunE:  runSourceRemove,

	Annotations: map[string]string{annotationOffline: "true"},
}

func init() {
	sourceCmd.AddCommand(sourceAddCmd)
	sourceCmd.AddCommand(sourceListCmd)
	sourceCmd.AddCommand(sourceRemoveCmd)
	rootCmd.AddCommand(sourceCmd)
}

func runSourceAdd(cmd *cobra.Command, args []string) error {
	if sourceRegistry == nil {
		return errors.New("source registry not configured")
	}

	var src *domain.Source
	err := withSession(cmd.Context(), func(ctx context.Context) error {
		var err error
		src, err = sourceRegistry.Add(ctx, userID, args[0])
		return err
	})
	if errors.Is(err, domain.ErrAlreadyExists) {
		cmd.Printf("%s is already connected.\n", args[0])
		return nil
	}
	if err != nil {
		return failure("adding source", err)
	}

	cmd.Printf("Connected %s (%s, id %d).\n", src.DisplayName(), src.Kind, src.PeerID)
	cmd.Println(`Run "tgindex index" to fetch its files.`)
	return nil
}

func runSourceList(cmd *cobra.Command, _ []string) error {
	if sourceRegistry == nil {
		return errors.New("source registry not configured")
	}

	sources, err := sourceRegistry.List(cmd.Context(), userID)
	if err != nil {
		return failure("listing sources", err)
	}

	if len(sources) == 0 {
		cmd.Println("No sources connected.")
		return nil
	}

	cmd.Println("Connected sources:")
	cmd.Println()
	for i := range sources {
		printSource(cmd, &sources[i])
	}
	cmd.Printf("Total: %d sources\n", len(sources))
	return nil
}

func printSource(cmd *cobra.Command, src *domain.Source) {
	cmd.Printf("  %s\n", src.DisplayName())
	if src.Identifier != "" {
		cmd.Printf("    Identifier: %s\n", src.Identifier)
	}
	cmd.Printf("    Kind:       %s\n", src.Kind)
	cmd.Printf("    Peer ID:    %d\n", src.PeerID)
	cmd.Printf("    Added:      %s\n", src.CreatedAt.Format("2006-01-02 15:04"))
	if src.Indexed() {
		cmd.Printf("    Indexed up to message %d", src.Watermark())
		if src.LastIndexedAt != nil {
			cmd.Printf(" (%s)", src.LastIndexedAt.Format("2006-01-02 15:04"))
		}
		cmd.Println()
	} else {
		cmd.Println("    Not indexed yet")
	}
	cmd.Println()
}

func runSourceRemove(cmd *cobra.Command, args []string) error {
	if sourceRegistry == nil {
		return errors.New("source registry not configured")
	}

	if err := sourceRegistry.Remove(cmd.Context(), userID, args[0]); err != nil {
		return failure("removing source", err)
	}

	cmd.Printf("Source %s removed. Indexed files are kept.\n", args[0])
	return nil
}
