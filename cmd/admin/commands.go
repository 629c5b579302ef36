package main

import (
	"context"
	"fmt"

	"github.com/punkontrol/backend/internal/counts"
	"github.com/punkontrol/backend/internal/database"
	"github.com/punkontrol/backend/internal/models"
	"github.com/punkontrol/backend/internal/seed"
	"github.com/spf13/cobra"
)

var seedClean bool

var seedCmd = &cobra.Command{
	Use:   "seed",
	Short: "Seed the development database with fake users, artworks and posts",
	RunE: func(cmd *cobra.Command, args []string) error {
		seeder := seed.NewSeeder(database.DB)
		if seedClean {
			if err := seeder.Clean(); err != nil {
				return fmt.Errorf("failed to clean database: %w", err)
			}
			fmt.Println("Database cleaned")
		}
		if err := seeder.SeedDev(); err != nil {
			return err
		}
		fmt.Println("Seeding complete")
		return nil
	},
}

var fixCountsUser string

var fixCountsCmd = &cobra.Command{
	Use:   "fix-counts",
	Short: "Recompute denormalized per-user counters from the source tables",
	RunE: func(cmd *cobra.Command, args []string) error {
		repairer := counts.NewRepairer(database.DB)
		if fixCountsUser != "" {
			if err := repairer.FixUser(context.Background(), fixCountsUser); err != nil {
				return err
			}
			fmt.Printf("Repaired counters for user %s\n", fixCountsUser)
			return nil
		}

		repaired, err := repairer.FixAll(context.Background())
		if err != nil {
			return err
		}
		fmt.Printf("Repaired counters for %d users\n", repaired)
		return nil
	},
}

var promoteAdminCmd = &cobra.Command{
	Use:   "promote-admin <username>",
	Short: "Grant admin privileges to an account",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		result := database.DB.Model(&models.User{}).
			Where("LOWER(username) = LOWER(?)", args[0]).
			Update("is_admin", true)
		if result.Error != nil {
			return result.Error
		}
		if result.RowsAffected == 0 {
			return fmt.Errorf("user %q not found", args[0])
		}
		fmt.Printf("User %s is now an admin\n", args[0])
		return nil
	},
}

func init() {
	seedCmd.Flags().BoolVar(&seedClean, "clean", false, "Delete existing data before seeding")
	fixCountsCmd.Flags().StringVar(&fixCountsUser, "user", "", "Repair a single user id instead of all users")
}
