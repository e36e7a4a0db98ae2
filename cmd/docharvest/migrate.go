package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"
)

var migrateCommand = &cobra.Command{
	Use:   "migrate",
	Short: "Apply the catalog database schema",
	Long:  "Applies the embedded schema to the target database. All statements are idempotent, so running migrate repeatedly is safe.",
	RunE:  runMigrate,
}

var migrateDatabaseURL string

func init() {
	migrateCommand.Flags().StringVar(&migrateDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	rootCmd.AddCommand(migrateCommand)
}

func runMigrate(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	database, err := connectDB(ctx, migrateDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.Migrate(ctx); err != nil {
		return err
	}

	fmt.Println("Schema applied.")
	return nil
}
