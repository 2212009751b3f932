package main

import (
	"context"
	"fmt"

	"github.com/keeperhq/keeper/internal/config"
	"github.com/keeperhq/keeper/internal/storage"
)

// initStorage opens the configured database and brings its schema up to
// date. Callers own the returned storage and must Close it.
func initStorage(ctx context.Context) (*storage.SQLiteStorage, error) {
	settings := config.Load()

	store, err := storage.NewSQLiteStorage(settings.DatabasePath)
	if err != nil {
		return nil, fmt.Errorf("failed to open database at %s: %w", settings.DatabasePath, err)
	}

	if err := store.Migrate(ctx); err != nil {
		_ = store.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	return store, nil
}
