package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/iliyamo/food-ordering-assistant/internal/config"
	"github.com/iliyamo/food-ordering-assistant/internal/database"
)

func newMigrateCmd(v *viper.Viper) *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Create the catalog and order tables",
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := config.LoadDatabase(v)
			if err != nil {
				return err
			}
			db, err := database.Open(cfg.DBUser, cfg.DBPass, cfg.DBHost, cfg.DBPort, cfg.DBName)
			if err != nil {
				return fmt.Errorf("open database: %w", err)
			}
			defer db.Close()
			if err := database.Migrate(cmd.Context(), db); err != nil {
				return err
			}
			fmt.Fprintf(cmd.OutOrStdout(), "applied %d statements to %s\n", len(database.Statements()), cfg.DBName)
			return nil
		},
	}
}
