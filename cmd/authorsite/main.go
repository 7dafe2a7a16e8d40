package main

import (
	"log/slog"
	"os"

	"github.com/spf13/cobra"

	"github.com/ericfisherdev/authorsite/internal/config"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		slog.Error("fatal error", "error", err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Every subcommand loads configuration
// from the environment, after applying the optional .env file.
func newRootCmd() *cobra.Command {
	var envFile string

	root := &cobra.Command{
		Use:           "authorsite",
		Short:         "Author and speaker site backed by a WordPress REST API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, _ []string) error {
			return config.LoadDotenv(envFile)
		},
	}
	root.PersistentFlags().StringVar(&envFile, "env-file", ".env", "optional file of KEY=VALUE pairs loaded before reading the environment")

	root.AddCommand(newServeCmd(), newMigrateCmd(), newCacheCmd())
	return root
}

// loadConfig reads the configuration and installs the default logger at the
// configured level.
func loadConfig() (*config.Config, *slog.Logger, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, nil, err
	}
	logger := slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: cfg.LogLevel}))
	slog.SetDefault(logger)
	return cfg, logger, nil
}
