package main

import (
	"fmt"

	"github.com/spf13/cobra"

	sqliteadapter "github.com/ericfisherdev/authorsite/internal/adapter/driven/sqlite"
	"github.com/ericfisherdev/authorsite/internal/application"
)

func newMigrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations and print the schema version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}

			db, err := sqliteadapter.NewDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()

			if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
				return err
			}
			version, dirty, err := sqliteadapter.MigrationVersion(db.Writer)
			if err != nil {
				return err
			}
			logger.Info("migrations complete", "path", cfg.DBPath, "version", version, "dirty", dirty)
			fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", version)
			return nil
		},
	}
}

func newCacheCmd() *cobra.Command {
	cacheCmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect and clear cached CMS responses",
	}

	purgeCmd := &cobra.Command{
		Use:   "purge [prefix]",
		Short: "Remove cached entries whose key starts with prefix (default: all media entries)",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			prefix := application.MediaKeyPrefix
			if len(args) == 1 {
				prefix = args[0]
			}

			cfg, logger, err := loadConfig()
			if err != nil {
				return err
			}
			db, err := sqliteadapter.NewDB(cfg.DBPath)
			if err != nil {
				return err
			}
			defer db.Close()
			if err := sqliteadapter.RunMigrations(db.Writer); err != nil {
				return err
			}

			health := application.NewHealthService(0)
			store, closeStore, err := openCacheStore(cmd.Context(), cfg, db, health)
			if err != nil {
				return err
			}
			defer closeStore()

			cache := application.NewCache(store, cfg.CacheTTL, nil, logger)
			n, err := cache.Purge(cmd.Context(), prefix)
			if err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "purged %d entries with prefix %q\n", n, prefix)
			return nil
		},
	}

	cacheCmd.AddCommand(purgeCmd)
	return cacheCmd
}
