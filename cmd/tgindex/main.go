// Command tgindex indexes and searches files shared in Telegram channels
// and groups.
package main

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"

	"github.com/custodia-labs/tgindex/internal/adapters/driven/config/file"
	"github.com/custodia-labs/tgindex/internal/adapters/driven/storage/memory"
	"github.com/custodia-labs/tgindex/internal/adapters/driven/storage/mongo"
	"github.com/custodia-labs/tgindex/internal/adapters/driven/storage/postgres"
	"github.com/custodia-labs/tgindex/internal/adapters/driven/storage/sqlite"
	"github.com/custodia-labs/tgindex/internal/adapters/driven/telegram"
	"github.com/custodia-labs/tgindex/internal/adapters/driving/cli"
	"github.com/custodia-labs/tgindex/internal/core/domain"
	"github.com/custodia-labs/tgindex/internal/core/ports/driven"
	"github.com/custodia-labs/tgindex/internal/core/services"
	"github.com/custodia-labs/tgindex/internal/logger"
)

// defaultDirName is created under the home directory when no directory flag is given.
const defaultDirName = ".tgindex"

func main() {
	cli.SetBootstrap(bootstrap)
	if err := cli.Execute(); err != nil {
		os.Exit(1)
	}
}

// store is the document store opened for one command.
type store struct {
	sources   driven.SourceStore
	documents driven.DocumentStore
	close     func() error
}

func bootstrap(ctx context.Context, opts cli.Options) (*cli.Services, func() error, error) {
	configDir, err := resolveDir(opts.ConfigDir)
	if err != nil {
		return nil, nil, err
	}
	dataDir, err := resolveDir(opts.DataDir)
	if err != nil {
		return nil, nil, err
	}

	configStore, err := file.NewConfigStore(configDir)
	if err != nil {
		return nil, nil, fmt.Errorf("opening config: %w", err)
	}
	settingsService := services.NewSettingsService(configStore)
	if opts.SettingsOnly {
		return &cli.Services{Settings: settingsService}, nil, nil
	}

	settings, err := settingsService.Get()
	if err != nil {
		return nil, nil, fmt.Errorf("reading settings: %w", err)
	}
	if !opts.Offline {
		if err := settingsService.Validate(); err != nil {
			return nil, nil, fmt.Errorf(`%w (run "tgindex settings wizard")`, err)
		}
	}

	st, err := openStore(ctx, settings.Storage, dataDir)
	if err != nil {
		return nil, nil, err
	}
	logger.Debug("using %s store", settings.Storage.Backend)

	var platform driven.Platform = telegram.Offline{}
	var session cli.SessionRunner
	release := st.close
	if !opts.Offline {
		client, err := openClient(settings.Telegram, settings.Indexing, dataDir)
		if err != nil {
			return nil, nil, errors.Join(err, st.close())
		}
		platform = client
		session = client.Session
		release = func() error {
			return errors.Join(client.Close(), st.close())
		}
	}

	gate := services.NewSessionGate()
	registry := services.NewSourceService(st.sources, platform, gate)

	indexer := services.NewIndexer(registry, st.documents, platform, settings.Indexing)

	return &cli.Services{
		Sources:   registry,
		Indexer:   indexer,
		Listener:  services.NewListener(registry, st.documents, platform, settings.Indexing.HashMode),
		Documents: services.NewDocumentService(st.documents),
		Settings:  settingsService,
		Scheduler: services.NewScheduler(indexer, opts.UserID, settings.Indexing.CatchUpInterval),
		Session:   session,
	}, release, nil
}

// openStore opens the configured backend and fails when it is unreachable.
func openStore(ctx context.Context, cfg domain.StorageSettings, dataDir string) (*store, error) {
	switch cfg.Backend {
	case domain.StorageSQLite:
		s, err := sqlite.NewStore(dataDir)
		if err != nil {
			return nil, fmt.Errorf("opening sqlite store: %w", err)
		}
		return &store{sources: s.SourceStore(), documents: s.DocumentStore(), close: s.Close}, nil
	case domain.StoragePostgres:
		s, err := postgres.NewStore(ctx, cfg.PostgresDSN)
		if err != nil {
			return nil, fmt.Errorf("opening postgres store: %w", err)
		}
		return &store{sources: s.SourceStore(), documents: s.DocumentStore(), close: s.Close}, nil
	case domain.StorageMongo:
		s, err := mongo.NewStore(ctx, cfg.MongoURI, cfg.MongoDatabase)
		if err != nil {
			return nil, fmt.Errorf("opening mongo store: %w", err)
		}
		return &store{sources: s.SourceStore(), documents: s.DocumentStore(), close: s.Close}, nil
	case domain.StorageMemory:
		logger.Warn("in-memory store selected: nothing is kept after the command exits")
		return &store{
			sources:   memory.NewSourceStore(),
			documents: memory.NewDocumentStore(),
			close:     func() error { return nil },
		}, nil
	default:
		return nil, fmt.Errorf("%w: unknown storage backend %q", domain.ErrInvalidInput, cfg.Backend)
	}
}

func openClient(cfg domain.TelegramSettings, indexing domain.IndexingSettings, dataDir string) (*telegram.Client, error) {
	sessionPath := cfg.SessionPath
	if sessionPath == "" {
		sessionPath = filepath.Join(dataDir, "session.db")
	}
	client, err := telegram.New(telegram.Config{
		APIID:             cfg.APIID,
		APIHash:           cfg.APIHash,
		SessionPath:       sessionPath,
		RequestsPerSecond: cfg.RequestsPerSecond,
		PageSize:          indexing.PageSize,
	})
	if err != nil {
		return nil, fmt.Errorf("opening telegram session: %w", err)
	}
	return client, nil
}

// resolveDir returns dir, or ~/.tgindex when empty.
func resolveDir(dir string) (string, error) {
	if dir != "" {
		return dir, nil
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("finding home directory: %w", err)
	}
	return filepath.Join(home, defaultDirName), nil
}
