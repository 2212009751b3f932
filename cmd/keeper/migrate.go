package main

import (
	"fmt"

	"github.com/keeperhq/keeper/internal/config"
	"github.com/keeperhq/keeper/internal/storage"
	"github.com/spf13/cobra"
)

func migrateCmd() *cobra.Command {
	var status bool

	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Apply pending database schema migrations",
		Long: `Apply any pending schema migrations to the keeper database.

With --status, report the current schema version without changing anything.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ctx := cmd.Context()
			settings := config.Load()

			store, err := storage.NewSQLiteStorage(settings.DatabasePath)
			if err != nil {
				return fmt.Errorf("failed to open database at %s: %w", settings.DatabasePath, err)
			}
			defer func() { _ = store.Close() }()

			if status {
				version, err := store.SchemaVersion(ctx)
				if err != nil {
					return err
				}
				cmd.Printf("Schema version: %d (expected %d)\n", version, storage.ExpectedSchemaVersion)
				if version < storage.ExpectedSchemaVersion {
					cmd.Println("Migrations pending. Run 'keeper migrate' to apply them.")
				}
				return nil
			}

			if err := store.Migrate(ctx); err != nil {
				return fmt.Errorf("migration failed: %w", err)
			}

			cmd.Println("Database schema is up to date.")
			return nil
		},
	}

	cmd.Flags().BoolVar(&status, "status", false, "report schema version without migrating")

	return cmd
}
