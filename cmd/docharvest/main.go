// Package main provides the docharvest command line interface.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/jonathan/docharvest/internal/db"
)

var rootCmd = &cobra.Command{
	Use:   "docharvest",
	Short: "Document ingestion and extraction pipeline",
	Long:  "docharvest crawls mailboxes and directories for documents, extracts and deduplicates their text, classifies them, and maintains a queryable catalog with idempotent export.",
}

func main() {
	// Load .env file if it exists
	_ = godotenv.Load()

	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

// resolveDatabaseURL picks the connection string from the flag or environment
func resolveDatabaseURL(flagValue string) (string, error) {
	if flagValue != "" {
		return flagValue, nil
	}
	if env := os.Getenv("DATABASE_URL"); env != "" {
		return env, nil
	}
	return "", fmt.Errorf("DATABASE_URL environment variable or --db-url flag is required")
}

// connectDB resolves the database URL and opens a connection pool
func connectDB(ctx context.Context, flagValue string) (*db.DB, error) {
	databaseURL, err := resolveDatabaseURL(flagValue)
	if err != nil {
		return nil, err
	}

	database, err := db.Connect(ctx, databaseURL)
	if err != nil {
		return nil, fmt.Errorf("failed to connect to database: %w", err)
	}
	return database, nil
}
