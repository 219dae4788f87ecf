package cmd

import (
	"fmt"
	"log"

	"github.com/spf13/cobra"

	"github.com/mwrona/maskfold/internal/core/db"
)

var migrateCmd = &cobra.Command{
	Use:   "migrate",
	Short: "Apply pending database migrations",
	RunE:  runMigrate,
}

var migrateStatusCmd = &cobra.Command{
	Use:   "status",
	Short: "Show migration status",
	RunE:  runMigrateStatus,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	migrateCmd.AddCommand(migrateStatusCmd)
}

func runMigrate(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	if err := db.MigrateUp(database); err != nil {
		return fmt.Errorf("migration failed: %w", err)
	}

	log.Println("Migrations applied successfully")
	return nil
}

func runMigrateStatus(cmd *cobra.Command, args []string) error {
	if dbURL == "" {
		return fmt.Errorf("--db-url required")
	}
	database, err := db.Open(dbURL)
	if err != nil {
		return fmt.Errorf("failed to open database: %w", err)
	}
	defer database.Close()

	statuses, err := db.MigrateStatus(database)
	if err != nil {
		return fmt.Errorf("failed to read migration status: %w", err)
	}

	for _, s := range statuses {
		state := "pending"
		if s.Applied {
			state = "applied"
		}
		fmt.Printf("%-40s %s\n", s.ID, state)
	}
	return nil
}
