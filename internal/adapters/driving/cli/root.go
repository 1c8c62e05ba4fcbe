// Package cli is the tgindex command line: connect sources, run indexing
// passes, search indexed files and start the long-running front ends (live
// listener, bot, MCP server, TUI).
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driving"
	"github.com/custodia-labs/tgindex/internal/logger"
)

// version is set at build time with -ldflags "-X .../cli.version=...".
var version = "dev"

// Command annotations controlling what the bootstrap builds.
const (
	annotationNoServices   = "tgindex/no-services"
	annotationSettingsOnly = "tgindex/settings-only"
	annotationOffline      = "tgindex/offline"
)

// SessionRunner runs fn while the platform session is connected.
type SessionRunner func(ctx context.Context, fn func(ctx context.Context) error) error

// Services holds the driving ports commands call into.
type Services struct {
	Sources   driving.SourceRegistry
	Indexer   driving.Indexer
	Listener  driving.Listener
	Documents driving.DocumentService
	Settings  driving.SettingsService

	// Scheduler runs catch-up passes next to the listener. Optional.
	Scheduler driving.Scheduler

	// Session connects the platform around commands that need it.
	Session SessionRunner
}

// Options are the global flags handed to the bootstrap.
type Options struct {
	ConfigDir string
	DataDir   string
	UserID    int64

	// SettingsOnly asks for the settings service alone, so settings can be
	// fixed even when the store or the session cannot be opened.
	SettingsOnly bool

	// Offline commands only read the store. The session file is left
	// alone so they can run next to a listener.
	Offline bool
}

// Bootstrap builds the services for a command. The returned func releases
// them once the command finishes.
type Bootstrap func(ctx context.Context, opts Options) (*Services, func() error, error)

var (
	bootstrap Bootstrap
	closer    func() error

	sourceRegistry  driving.SourceRegistry
	indexer         driving.Indexer
	listener        driving.Listener
	documentService driving.DocumentService
	settingsService driving.SettingsService
	scheduler       driving.Scheduler
	sessionRunner   SessionRunner
)

// Global flags.
var (
	configDir string
	dataDir   string
	verbose   bool
	userID    int64
)

var rootCmd = &cobra.Command{
	Use:   "tgindex",
	Short: "Index and search files shared in Telegram channels and groups",
	Long: `tgindex indexes the files shared in Telegram channels and groups you are a
member of, so they can be searched by file name or message text.

Connect a source with "tgindex source add @channel", run "tgindex index" to
backfill it, and "tgindex listen" to pick up new files as they are posted.`,
	SilenceUsage:       true,
	PersistentPreRunE:  setup,
	PersistentPostRunE: teardown,
}

func init() {
	flags := rootCmd.PersistentFlags()
	flags.StringVar(&configDir, "config-dir", "", "directory holding config.toml (default ~/.tgindex)")
	flags.StringVar(&dataDir, "data-dir", "", "directory holding the database and session (default ~/.tgindex)")
	flags.BoolVarP(&verbose, "verbose", "v", false, "enable debug logging")
	flags.Int64Var(&userID, "user", 0, "Telegram user id to act as, shared with the bot")
}

// SetBootstrap registers the function building services before each command.
func SetBootstrap(b Bootstrap) {
	bootstrap = b
}

// SetServices installs services directly, bypassing the bootstrap.
func SetServices(s *Services) {
	if s == nil {
		s = &Services{}
	}
	sourceRegistry = s.Sources
	indexer = s.Indexer
	listener = s.Listener
	documentService = s.Documents
	settingsService = s.Settings
	scheduler = s.Scheduler
	sessionRunner = s.Session
}

// Execute runs the root command until it finishes or the process is
// interrupted.
func Execute() error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()
	return rootCmd.ExecuteContext(ctx)
}

func setup(cmd *cobra.Command, _ []string) error {
	logger.SetVerbose(verbose)

	if bootstrap == nil || skipsServices(cmd) {
		return nil
	}

	opts := Options{
		ConfigDir:    configDir,
		DataDir:      dataDir,
		UserID:       userID,
		SettingsOnly: hasAnnotation(cmd, annotationSettingsOnly),
		Offline:      hasAnnotation(cmd, annotationOffline),
	}
	services, release, err := bootstrap(cmd.Context(), opts)
	if err != nil {
		return err
	}
	SetServices(services)
	closer = release
	return nil
}

func teardown(_ *cobra.Command, _ []string) error {
	if closer == nil {
		return nil
	}
	err := closer()
	closer = nil
	return err
}

// skipsServices reports commands that run without the bootstrap.
func skipsServices(cmd *cobra.Command) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if c.Name() == "help" || c.Name() == "completion" {
			return true
		}
	}
	return hasAnnotation(cmd, annotationNoServices)
}

// hasAnnotation looks the annotation up on cmd and its parents.
func hasAnnotation(cmd *cobra.Command, key string) bool {
	for c := cmd; c != nil; c = c.Parent() {
		if _, ok := c.Annotations[key]; ok {
			return true
		}
	}
	return false
}

// withSession runs fn inside the platform session.
func withSession(ctx context.Context, fn func(ctx context.Context) error) error {
	if sessionRunner == nil {
		return errors.New("telegram session not configured")
	}
	return sessionRunner(ctx, fn)
}

// commandError reports a failure with its human-readable reason while
// keeping the cause matchable.
type commandError struct {
	action string
	err    error
}

func (e *commandError) Error() string {
	return fmt.Sprintf("%s: %s", e.action, domain.UserMessage(e.err))
}

func (e *commandError) Unwrap() error {
	return e.err
}

func failure(action string, err error) error {
	return &commandError{action: action, err: err}
}
