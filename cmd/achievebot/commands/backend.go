package commands

import (
	"context"
	"fmt"
	"log/slog"
	"path/filepath"

	"github.com/MEKXH/achievebot/internal/bus"
	"github.com/MEKXH/achievebot/internal/config"
	"github.com/MEKXH/achievebot/internal/engine"
	"github.com/MEKXH/achievebot/internal/store"
	"github.com/MEKXH/achievebot/internal/store/filestore"
	"github.com/MEKXH/achievebot/internal/store/sqlite"
)

// openBackend opens the storage medium selected by bot.storage.
func openBackend(ctx context.Context, cfg *config.Config) (store.Backend, error) {
	dataDir, err := cfg.DataDirPath()
	if err != nil {
		return nil, err
	}
	switch cfg.Bot.Storage {
	case config.StorageSQLite:
		return sqlite.Open(ctx, filepath.Join(dataDir, sqlite.DefaultFileName))
	case config.StorageFile, "":
		return filestore.Open(dataDir)
	default:
		return nil, fmt.Errorf("unknown storage %q", cfg.Bot.Storage)
	}
}

// openStores loads the catalog and the ledger. The caller closes the backend.
func openStores(ctx context.Context, cfg *config.Config) (*store.Catalog, *store.Ledger, store.Backend, error) {
	backend, err := openBackend(ctx, cfg)
	if err != nil {
		return nil, nil, nil, fmt.Errorf("open %s storage: %w", cfg.Bot.Storage, err)
	}
	catalog, err := store.OpenCatalog(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, nil, nil, err
	}
	ledger, err := store.OpenLedger(ctx, backend)
	if err != nil {
		_ = backend.Close()
		return nil, nil, nil, err
	}
	slog.Debug("stores loaded", "storage", cfg.Bot.Storage, "achievements", catalog.Len(), "grants", ledger.Len())
	return catalog, ledger, backend, nil
}

// openEngine builds the command engine over freshly loaded stores.
func openEngine(ctx context.Context, cfg *config.Config, msgBus *bus.MessageBus) (*engine.Loop, store.Backend, error) {
	catalog, ledger, backend, err := openStores(ctx, cfg)
	if err != nil {
		return nil, nil, err
	}
	loop, err := engine.NewLoop(msgBus, catalog, ledger)
	if err != nil {
		_ = backend.Close()
		return nil, nil, err
	}
	return loop, backend, nil
}
