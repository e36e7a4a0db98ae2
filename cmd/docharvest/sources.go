package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/docharvest/internal/observability"
)

var sourcesCommand = &cobra.Command{
	Use:   "sources",
	Short: "Inspect and toggle registered sources",
}

var sourcesListCommand = &cobra.Command{
	Use:   "list",
	Short: "List registered sources with their sync state",
	RunE:  runSourcesList,
}

var sourcesEnableCommand = &cobra.Command{
	Use:   "enable <source-id>",
	Short: "Reactivate a source and reset its auth failure count",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return setSourceActive(args[0], true)
	},
}

var sourcesDisableCommand = &cobra.Command{
	Use:   "disable <source-id>",
	Short: "Deactivate a source without deleting its history",
	Args:  cobra.ExactArgs(1),
	RunE: func(_ *cobra.Command, args []string) error {
		return setSourceActive(args[0], false)
	},
}

var sourcesDatabaseURL string

func init() {
	sourcesCommand.PersistentFlags().StringVar(&sourcesDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	sourcesCommand.AddCommand(sourcesListCommand)
	sourcesCommand.AddCommand(sourcesEnableCommand)
	sourcesCommand.AddCommand(sourcesDisableCommand)
	rootCmd.AddCommand(sourcesCommand)
}

func runSourcesList(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	database, err := connectDB(ctx, sourcesDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	sources, err := database.ListSources(ctx)
	if err != nil {
		return err
	}
	if len(sources) == 0 {
		fmt.Println("No sources registered. Sources are registered on first sync.")
		return nil
	}

	observability.NewPrinter(os.Stdout).PrintSources(sources)
	return nil
}

func setSourceActive(idArg string, active bool) error {
	ctx := context.Background()

	sourceID, err := uuid.Parse(idArg)
	if err != nil {
		return fmt.Errorf("invalid source ID: %s", idArg)
	}

	database, err := connectDB(ctx, sourcesDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	if err := database.SetSourceActive(ctx, sourceID, active); err != nil {
		return err
	}

	state := "enabled"
	if !active {
		state = "disabled"
	}
	fmt.Printf("Source %s %s\n", sourceID, state)
	return nil
}
