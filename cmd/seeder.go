package cmd

import (
	"fmt"

	"github.com/frahmantamala/office-ticketing/internal/auth"
	"github.com/frahmantamala/office-ticketing/internal/database"
	"github.com/frahmantamala/office-ticketing/internal/seed"
	"github.com/spf13/cobra"
)

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the database with sample data",
	Long: `Seed an empty database with the default categories, the admin, agent1 and user1
accounts and two sample tickets. Nothing is written once any user exists.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(configDir)
		if err != nil {
			return err
		}
		log := initLogger(cfg)

		db, err := openDB(cmd.Context(), cfg, log)
		if err != nil {
			return err
		}
		defer database.Close(db)

		seeded, err := seed.NewSeeder(db, auth.NewPasswordHasher(cfg.Security.BCryptCost), log).Run(cmd.Context())
		if err != nil {
			return err
		}
		if !seeded {
			fmt.Fprintln(cmd.OutOrStdout(), "Users already exist; nothing to seed")
			return nil
		}
		fmt.Fprintln(cmd.OutOrStdout(), "Seeded sample data. Log in as admin/admin123, agent1/agent123 or user1/user123")
		return nil
	},
}
