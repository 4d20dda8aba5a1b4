package main

import (
	"fmt"
	"time"

	"hardware-management-api/internal/config"
	"hardware-management-api/internal/logger"
	"hardware-management-api/internal/store"
	"hardware-management-api/internal/store/postgres"

	"github.com/spf13/cobra"
)

func newMigrateCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "migrate",
		Short: "Manage the PostgreSQL schema",
	}

	var seed bool
	up := &cobra.Command{
		Use:   "up",
		Short: "Apply pending migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := cliLogger(cfg)
			defer func() { _ = log.Sync() }()

			st, err := openPostgres(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := postgres.Migrate(st.DB(), logger.Named(log, "migrate")); err != nil {
				return err
			}
			if seed {
				n, err := store.Seed(cmd.Context(), st, time.Now())
				if err != nil {
					return err
				}
				fmt.Fprintf(cmd.OutOrStdout(), "seeded %d assets\n", n)
			}
			return printVersion(cmd, st)
		},
	}
	up.Flags().BoolVar(&seed, "seed", false, "load the demo catalogue after migrating")

	var steps int
	down := &cobra.Command{
		Use:   "down",
		Short: "Roll back migrations",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg := config.Load()
			log := cliLogger(cfg)
			defer func() { _ = log.Sync() }()

			st, err := openPostgres(cmd.Context(), cmd, cfg)
			if err != nil {
				return err
			}
			defer st.Close()

			if err := postgres.MigrateDown(st.DB(), steps, logger.Named(log, "migrate")); err != nil {
				return err
			}
			return printVersion(cmd, st)
		},
	}
	down.Flags().IntVar(&steps, "steps", 1, "number of migrations to roll back")

	version := &cobra.Command{
		Use:   "version",
		Short: "Print the applied schema version",
		RunE: func(cmd *cobra.Command, _ []string) error {
			st, err := openPostgres(cmd.Context(), cmd, config.Load())
			if err != nil {
				return err
			}
			defer st.Close()
			return printVersion(cmd, st)
		},
	}

	cmd.AddCommand(up, down, version)
	return cmd
}

func printVersion(cmd *cobra.Command, st *postgres.Store) error {
	v, dirty, err := postgres.MigrationVersion(st.DB())
	if err != nil {
		return fmt.Errorf("read schema version: %w", err)
	}
	if dirty {
		fmt.Fprintf(cmd.OutOrStdout(), "schema version %d (dirty)\n", v)
		return nil
	}
	fmt.Fprintf(cmd.OutOrStdout(), "schema version %d\n", v)
	return nil
}
