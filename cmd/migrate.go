package cmd

import (
	"fmt"

	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/spf13/cobra"
)

var (
	migrateCmd = &cobra.Command{
		RunE:  runMigration,
		Use:   "migrate",
		Short: "to apply the embedded sql migrations for the configured driver",
	}
	migrateRollback bool
)

func init() {
	migrateCmd.Flags().BoolVarP(&migrateRollback, "rollback", "r", false, "to rollback the latest version of sql migration")
}

func runMigration(cmd *cobra.Command, _ []string) error {
	cfg, err := loadConfig(configDir)
	if err != nil {
		return err
	}
	log := initLogger(cfg)

	db, err := database.Open(cmd.Context(), cfg.Database, log)
	if err != nil {
		return err
	}
	defer database.Close(db)

	if err := database.Migrate(cmd.Context(), db, log, migrateRollback); err != nil {
		return err
	}

	if migrateRollback {
		fmt.Fprintln(cmd.OutOrStdout(), "Rolled back the latest migration")
	} else {
		fmt.Fprintln(cmd.OutOrStdout(), "Database schema is up to date")
	}
	return nil
}
