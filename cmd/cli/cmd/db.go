// Package cmd - database commands
package cmd

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"paint-quote/adapters/storage"
	"paint-quote/internal/config"
	"paint-quote/internal/logging"
)

var dbCmd = &cobra.Command{
	Use:   "db",
	Short: "Database maintenance",
}

var dbMigrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending schema migrations",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := context.Background()
		cfg := config.Get()

		store, err := storage.Open(cfg.Storage.Path, storage.WithLogger(logging.Named("storage")))
		if err != nil {
			return err
		}
		defer store.Close()

		if err := store.Migrate(ctx); err != nil {
			return err
		}
		v, err := store.Version(ctx)
		if err != nil {
			return err
		}
		fmt.Fprintf(cmd.OutOrStdout(), "Database %s is at schema version %d\n", cfg.Storage.Path, v)
		return nil
	},
}

func init() {
	dbCmd.AddCommand(dbMigrateCmd)
}
