package main

import (
	"context"
	"fmt"

	"github.com/spf13/cobra"

	"github.com/jonathan/docharvest/internal/classify"
	"github.com/jonathan/docharvest/internal/entities"
)

var reclassifyCommand = &cobra.Command{
	Use:   "reclassify",
	Short: "Re-run classification over documents stored with an older classifier version",
	Long: `Finds documents whose stored classifier version differs from the current one,
re-classifies their text and re-extracts entities. Each pass appends to the
classification history; earlier classifications are never overwritten.

Processes up to --limit documents per invocation; re-run until it reports
nothing left to do.`,
	RunE: runReclassify,
}

var (
	reclassifyDatabaseURL string
	reclassifyLimit       int
	reclassifyMinHits     int
	reclassifyVerbose     bool
)

func init() {
	reclassifyCommand.Flags().StringVar(&reclassifyDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	reclassifyCommand.Flags().IntVar(&reclassifyLimit, "limit", 500, "Maximum documents to process in this invocation")
	reclassifyCommand.Flags().IntVar(&reclassifyMinHits, "min-hits", classify.DefaultMinHits, "Minimum term hits for a confident classification")
	reclassifyCommand.Flags().BoolVarP(&reclassifyVerbose, "verbose", "v", false, "Print each reclassified document")

	rootCmd.AddCommand(reclassifyCommand)
}

func runReclassify(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	database, err := connectDB(ctx, reclassifyDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	docs, err := database.ListDocumentsForReclassify(ctx, classify.Version, reclassifyLimit)
	if err != nil {
		return err
	}
	if len(docs) == 0 {
		fmt.Printf("All documents already classified with %s\n", classify.Version)
		return nil
	}

	registry := entities.NewRegistry()
	changed := 0

	for _, doc := range docs {
		result := classify.Classify(doc.Text, reclassifyMinHits)

		if err := database.AppendClassification(ctx, doc.ID, result.Type, result.Score, result.Version); err != nil {
			return fmt.Errorf("failed to reclassify document %s: %w", doc.ID, err)
		}

		extracted := registry.Run(doc.Text, result.Type)
		if err := database.UpsertEntities(ctx, doc.ID, extracted.Entities); err != nil {
			return fmt.Errorf("failed to store entities for document %s: %w", doc.ID, err)
		}

		if result.Type != doc.DetectedType {
			changed++
			if reclassifyVerbose {
				fmt.Printf("[VERBOSE] %s: %s -> %s (score %.0f)\n", doc.ID, doc.DetectedType, result.Type, result.Score)
			}
		}
	}

	fmt.Printf("Reclassified %d documents with %s (%d changed type)\n", len(docs), classify.Version, changed)
	if len(docs) == reclassifyLimit {
		fmt.Println("More documents may remain; re-run to continue.")
	}
	return nil
}
