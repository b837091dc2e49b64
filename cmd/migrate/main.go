package main

import (
	"fmt"
	"log"
	"os"
	"strconv"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/fastygo/worklog/internal/config"
	pgInfra "github.com/fastygo/worklog/internal/infrastructure/postgres"
	"github.com/fastygo/worklog/pkg/logger"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	var dsn string

	root := &cobra.Command{
		Use:           "migrate",
		Short:         "Manage the work-log database schema",
		SilenceUsage:  true,
		SilenceErrors: false,
	}
	root.PersistentFlags().StringVar(&dsn, "database-url", "", "Postgres URL (defaults to DATABASE_URL / DB_* settings)")

	resolve := func() (string, *zap.Logger, error) {
		cfg, err := config.Load()
		if err != nil {
			return "", nil, err
		}
		zapLogger, err := logger.New(logger.Config{Level: cfg.Logger.Level, Encoding: "console"})
		if err != nil {
			log.Fatalf("logger error: %v", err)
		}
		if dsn != "" {
			return dsn, zapLogger, nil
		}
		return cfg.Database.URL, zapLogger, nil
	}

	root.AddCommand(
		&cobra.Command{
			Use:   "up",
			Short: "Apply all pending migrations",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				url, zapLogger, err := resolve()
				if err != nil {
					return err
				}
				defer zapLogger.Sync()
				return pgInfra.MigrateUp(url, zapLogger)
			},
		},
		&cobra.Command{
			Use:   "version",
			Short: "Print the applied schema version",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				url, _, err := resolve()
				if err != nil {
					return err
				}
				version, dirty, err := pgInfra.MigrationVersion(url)
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "version %d (dirty=%t)\n", version, dirty)
				return nil
			},
		},
		&cobra.Command{
			Use:   "force VERSION",
			Short: "Mark VERSION as applied without running it",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				version, err := strconv.Atoi(args[0])
				if err != nil {
					return fmt.Errorf("invalid version %q: %w", args[0], err)
				}
				url, _, err := resolve()
				if err != nil {
					return err
				}
				return pgInfra.ForceVersion(url, version)
			},
		},
	)
	return root
}
