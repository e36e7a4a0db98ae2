package main

import (
	"context"
	"fmt"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/jonathan/docharvest/internal/observability"
	"github.com/jonathan/docharvest/internal/types"
)

var statusCommand = &cobra.Command{
	Use:   "status",
	Short: "Show sync cursor state and recent sync activity",
	Long: `Shows sync cursors across all sources, flagging stalled windows that need
manual intervention. With --source the output also includes that source's
latest sync log and per-status raw unit counts. With --document the command
instead prints one document's classification and extracted entities.`,
	RunE: runStatus,
}

var (
	statusDatabaseURL string
	statusSourceID    string
	statusFilter      string
	statusDocumentID  string
)

func init() {
	statusCommand.Flags().StringVar(&statusDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	statusCommand.Flags().StringVar(&statusSourceID, "source", "", "Limit output to one source ID")
	statusCommand.Flags().StringVar(&statusFilter, "status", "", "Only show cursors in this state (pending, in_progress, completed, failed, stalled)")
	statusCommand.Flags().StringVar(&statusDocumentID, "document", "", "Show one document's classification and entities instead of cursor state")

	rootCmd.AddCommand(statusCommand)
}

func runStatus(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	status := types.CursorStatus(statusFilter)
	switch status {
	case "", types.CursorPending, types.CursorInProgress, types.CursorCompleted, types.CursorFailed, types.CursorStalled:
	default:
		return fmt.Errorf("unknown cursor status: %s", statusFilter)
	}

	var sourceID *uuid.UUID
	if statusSourceID != "" {
		parsed, err := uuid.Parse(statusSourceID)
		if err != nil {
			return fmt.Errorf("invalid source ID: %s", statusSourceID)
		}
		sourceID = &parsed
	}

	database, err := connectDB(ctx, statusDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	printer := observability.NewPrinter(os.Stdout)

	if statusDocumentID != "" {
		docID, err := uuid.Parse(statusDocumentID)
		if err != nil {
			return fmt.Errorf("invalid document ID: %s", statusDocumentID)
		}
		doc, err := database.GetDocument(ctx, docID)
		if err != nil {
			return err
		}
		if doc == nil {
			return fmt.Errorf("document not found: %s", docID)
		}
		docEntities, err := database.ListEntities(ctx, docID, "")
		if err != nil {
			return err
		}
		printer.PrintDocument(doc, docEntities)
		return nil
	}

	cursors, err := database.ListCursors(ctx, sourceID, status)
	if err != nil {
		return err
	}
	if len(cursors) == 0 {
		fmt.Println("No sync cursors recorded.")
	} else {
		printer.PrintCursors(cursors)
	}

	if sourceID == nil {
		return nil
	}

	latest, err := database.LatestSyncLog(ctx, *sourceID)
	if err != nil {
		return err
	}
	if latest != nil {
		fmt.Printf("\nLatest sync: %s  status=%s processed=%d extracted=%d errors=%d\n",
			latest.StartedAt.Format("2006-01-02 15:04:05"), latest.Status, latest.Processed, latest.Extracted, latest.Errors)
		if latest.Error != "" {
			fmt.Printf("  error: %s\n", latest.Error)
		}
	}

	counts, err := database.CountUnitsByStatus(ctx, *sourceID)
	if err != nil {
		return err
	}
	if len(counts) > 0 {
		fmt.Printf("Units: extracted=%d duplicate=%d failed=%d\n",
			counts[types.UnitExtracted], counts[types.UnitDuplicate], counts[types.UnitFailedExtraction])
	}

	return nil
}
