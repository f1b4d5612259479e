package main

import (
	"fmt"
	"log/slog"

	"github.com/Veraticus/spice-planner/internal/cli"
	"github.com/Veraticus/spice-planner/internal/config"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Run database migrations",
		Long: `Initialize or update the database schema to the latest version and seed the
default categories.`,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.Load(viper.GetViper())
			if err != nil {
				return err
			}

			slog.Info("Starting database migration", "database", cfg.DatabasePath)

			store, err := initStorage(cmd.Context(), cfg)
			if err != nil {
				return err
			}
			defer store.Close()

			fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess("Database is up to date: "+cfg.DatabasePath))
			return nil
		},
	}
}
