package cli

import (
	"bufio"
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/spf13/cobra"
	"golang.org/x/term"

	"github.com/custodia-labs/tgindex/internal/core/domain"
)

var settingsCmd = &cobra.Command{
	Use:   "settings",
	Short: "Manage application settings",
	Long: `View and configure the Telegram session, the document store and indexing.

Settings live in config.toml in the config directory. Use "set" for single
keys or run the interactive wizard.`,
	Annotations: map[string]string{annotationSettingsOnly: "true"},
	RunE:        runSettingsShow,
}

var settingsShowCmd = &cobra.Command{
	Use:   "show",
	Short: "Show current settings",
	RunE:  runSettingsShow,
}

var settingsSetCmd = &cobra.Command{
	Use:   "set [key] [value]",
	Short: "Set one setting",
	Long: `Set one setting by its dot-notation key, for example:

  tgindex settings set telegram.api_id 12345
  tgindex settings set storage.backend postgres
  tgindex settings set indexing.hash_mode content
  tgindex settings set indexing.catch_up_interval 15m`,
	Args: cobra.ExactArgs(2),
	RunE: runSettingsSet,
}

var settingsKeysCmd = &cobra.Command{
	Use:   "keys",
	Short: "List setting keys",
	RunE:  runSettingsKeys,
}

var settingsWizardCmd = &cobra.Command{
	Use:   "wizard",
	Short: "Interactive setup wizard",
	Long:  `Run an interactive wizard to configure the session and the store step by step.`,
	RunE:  runSettingsWizard,
}

func init() {
	settingsCmd.AddCommand(settingsShowCmd)
	settingsCmd.AddCommand(settingsSetCmd)
	settingsCmd.AddCommand(settingsKeysCmd)
	settingsCmd.AddCommand(settingsWizardCmd)
	rootCmd.AddCommand(settingsCmd)
}

func runSettingsShow(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	settings, err := settingsService.Get()
	if err != nil {
		return fmt.Errorf("failed to get settings: %w", err)
	}

	cmd.Println("Current Settings")
	cmd.Println("================")
	cmd.Println()

	cmd.Println("[Telegram]")
	cmd.Printf("  API ID: %s\n", orUnset(settings.Telegram.APIID > 0, strconv.Itoa(settings.Telegram.APIID)))
	cmd.Printf("  API hash: %s\n", orUnset(settings.Telegram.APIHash != "", maskAPIKey(settings.Telegram.APIHash)))
	cmd.Printf("  Session file: %s\n", orUnset(settings.Telegram.SessionPath != "", settings.Telegram.SessionPath))
	cmd.Printf("  Bot token: %s\n", orUnset(settings.Telegram.BotToken != "", maskAPIKey(settings.Telegram.BotToken)))
	cmd.Printf("  Requests per second: %g\n", settings.Telegram.RequestsPerSecond)
	cmd.Println()

	cmd.Println("[Storage]")
	cmd.Printf("  Backend: %s\n", settings.Storage.Backend.Description())
	switch settings.Storage.Backend {
	case domain.StoragePostgres:
		cmd.Printf("  DSN: %s\n", orUnset(settings.Storage.PostgresDSN != "", settings.Storage.PostgresDSN))
	case domain.StorageMongo:
		cmd.Printf("  URI: %s\n", settings.Storage.MongoURI)
		cmd.Printf("  Database: %s\n", settings.Storage.MongoDatabase)
	case domain.StorageSQLite, domain.StorageMemory:
	}
	cmd.Println()

	cmd.Println("[Indexing]")
	cmd.Printf("  Window: %d messages\n", settings.Indexing.WindowLimit)
	cmd.Printf("  Reindex window: %d messages\n", settings.Indexing.ReindexWindowLimit)
	cmd.Printf("  Page size: %d\n", settings.Indexing.PageSize)
	cmd.Printf("  Concurrency: %d\n", settings.Indexing.Concurrency)
	cmd.Printf("  Hash mode: %s\n", settings.Indexing.HashMode)
	if settings.Indexing.CatchUpInterval > 0 {
		cmd.Printf("  Catch-up: every %s\n", settings.Indexing.CatchUpInterval)
	} else {
		cmd.Println("  Catch-up: off")
	}
	cmd.Println()

	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Status: incomplete (%v)\n", err)
	} else {
		cmd.Println("Status: ready")
	}
	return nil
}

func runSettingsSet(cmd *cobra.Command, args []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	if err := settingsService.Set(args[0], args[1]); err != nil {
		return fmt.Errorf("failed to set %s: %w", args[0], err)
	}
	cmd.Printf("Set %s.\n", args[0])
	return nil
}

func runSettingsKeys(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}
	for _, key := range settingsService.Keys() {
		cmd.Println(key)
	}
	return nil
}

func runSettingsWizard(cmd *cobra.Command, _ []string) error {
	if settingsService == nil {
		return errors.New("settings service not configured")
	}

	cmd.Println("tgindex Settings Wizard")
	cmd.Println("=======================")
	cmd.Println()

	reader := bufio.NewReader(cmd.InOrStdin())
	secret := func() string {
		if f, ok := cmd.InOrStdin().(*os.File); ok && term.IsTerminal(int(f.Fd())) {
			return readPassword(f)
		}
		return readLine(reader)
	}

	cmd.Println("Step 1: Telegram application")
	cmd.Println("----------------------------")
	cmd.Println("Create one at https://my.telegram.org to get an API ID and hash.")
	cmd.Print("API ID: ")
	if v := readLine(reader); v != "" {
		if err := settingsService.Set("telegram.api_id", v); err != nil {
			return err
		}
	}
	cmd.Print("API hash: ")
	if v := secret(); v != "" {
		if err := settingsService.Set("telegram.api_hash", v); err != nil {
			return err
		}
	}
	cmd.Print("Bot token (empty to skip): ")
	if v := secret(); v != "" {
		if err := settingsService.Set("telegram.bot_token", v); err != nil {
			return err
		}
	}
	cmd.Println()

	cmd.Println("Step 2: Document store")
	cmd.Println("----------------------")
	backends := []domain.StorageBackend{domain.StorageSQLite, domain.StoragePostgres, domain.StorageMongo}
	for i, b := range backends {
		cmd.Printf("  %d. %s\n", i+1, b.Description())
	}
	cmd.Print("\nEnter choice [1]: ")
	backend := backends[parseChoice(readLine(reader), len(backends), 1)-1]
	if err := settingsService.Set("storage.backend", backend.String()); err != nil {
		return err
	}

	switch backend {
	case domain.StoragePostgres:
		cmd.Print("PostgreSQL DSN: ")
		if err := settingsService.Set("storage.postgres_dsn", readLine(reader)); err != nil {
			return err
		}
	case domain.StorageMongo:
		cmd.Print("MongoDB URI [mongodb://localhost:27017]: ")
		if v := readLine(reader); v != "" {
			if err := settingsService.Set("storage.mongo_uri", v); err != nil {
				return err
			}
		}
	case domain.StorageSQLite, domain.StorageMemory:
	}
	cmd.Printf("Using %s.\n\n", backend.Description())

	cmd.Println("Configuration Complete!")
	cmd.Println("=======================")
	if err := settingsService.Validate(); err != nil {
		cmd.Printf("Warning: %v\n", err)
	} else {
		cmd.Println("All settings are valid and saved.")
	}
	return nil
}

// Helper functions.

//nolint:errcheck // CLI helper, error ignored for UX
func readLine(reader *bufio.Reader) string {
	input, _ := reader.ReadString('\n')
	return strings.TrimSpace(input)
}

func parseChoice(input string, maxVal, defaultVal int) int {
	if input == "" {
		return defaultVal
	}
	val, err := strconv.Atoi(input)
	if err != nil || val < 1 || val > maxVal {
		return defaultVal
	}
	return val
}

// readPassword reads a line from a terminal without echo.
func readPassword(f *os.File) string {
	password, err := term.ReadPassword(int(f.Fd()))
	if err != nil {
		return readLine(bufio.NewReader(f))
	}
	fmt.Fprintln(os.Stderr)
	return strings.TrimSpace(string(password))
}

func maskAPIKey(key string) string {
	if len(key) <= 8 {
		return "****"
	}
	return key[:4] + "..." + key[len(key)-4:]
}

func orUnset(set bool, value string) string {
	if !set {
		return "(not set)"
	}
	return value
}
