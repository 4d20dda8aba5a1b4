package main

import (
	"context"
	"errors"

	"hardware-management-api/internal/config"
	"hardware-management-api/internal/logger"
	"hardware-management-api/internal/store/postgres"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "hwtool",
		Short:         "Hardware management operator tool",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().String("dsn", "", "PostgreSQL DSN (overrides DB_DSN)")

	root.AddCommand(
		newTokenCmd(),
		newImportCmd(),
		newMigrateCmd(),
		newHashPasswordCmd(),
	)
	return root
}

func cliLogger(cfg *config.Config) *zap.Logger {
	log, err := logger.New(cfg.Environment, cfg.LogLevel)
	if err != nil {
		return zap.NewNop()
	}
	return log
}

func dsnFlag(cmd *cobra.Command, cfg *config.Config) string {
	if dsn, _ := cmd.Flags().GetString("dsn"); dsn != "" {
		return dsn
	}
	return cfg.DBDSN
}

// openPostgres connects using --dsn or DB_DSN
func openPostgres(ctx context.Context, cmd *cobra.Command, cfg *config.Config) (*postgres.Store, error) {
	dsn := dsnFlag(cmd, cfg)
	if dsn == "" {
		return nil, errors.New("a database is required: set DB_DSN or pass --dsn")
	}
	return postgres.Open(ctx, dsn)
}
