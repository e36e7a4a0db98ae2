package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/jonathan/docharvest/internal/export"
	"github.com/jonathan/docharvest/internal/observability"
	"github.com/jonathan/docharvest/internal/types"
)

var exportCommand = &cobra.Command{
	Use:   "export",
	Short: "Export catalog documents as a schema-validated JSON batch",
	Long: `Selects matching documents, marks them exported, and writes them as one
batch together with their entities and source provenance. Selection and marking
happen in a single transaction, so re-running the same export produces an empty
batch instead of duplicate hand-offs. Pass --everything to include documents
already exported by earlier batches.`,
	RunE: runExport,
}

var (
	exportDatabaseURL string
	exportDocType     string
	exportSince       string
	exportUntil       string
	exportEverything  bool
	exportLimit       int
	exportOutput      string
)

func init() {
	exportCommand.Flags().StringVar(&exportDatabaseURL, "db-url", "", "PostgreSQL connection URL (optional, defaults to DATABASE_URL env var)")
	exportCommand.Flags().StringVar(&exportDocType, "type", "", "Only export documents of this type (resume, job_description, unknown)")
	exportCommand.Flags().StringVar(&exportSince, "since", "", "Only export documents extracted at or after this RFC 3339 timestamp")
	exportCommand.Flags().StringVar(&exportUntil, "until", "", "Only export documents extracted at or before this RFC 3339 timestamp")
	exportCommand.Flags().BoolVar(&exportEverything, "everything", false, "Include documents already exported by earlier batches")
	exportCommand.Flags().IntVar(&exportLimit, "limit", 0, "Cap the number of documents in the batch (0 means no cap)")
	exportCommand.Flags().StringVarP(&exportOutput, "output", "o", "-", "Output file path ('-' writes to stdout)")

	rootCmd.AddCommand(exportCommand)
}

// buildExportFilter translates the CLI flags into an export filter
func buildExportFilter(docType, since, until string, everything bool, limit int) (types.ExportFilter, error) {
	filter := types.ExportFilter{
		NotExported: !everything,
		Limit:       limit,
	}

	switch types.DocType(docType) {
	case "", types.DocTypeResume, types.DocTypeJobDescription, types.DocTypeUnknown:
		filter.DocType = types.DocType(docType)
	default:
		return types.ExportFilter{}, fmt.Errorf("unknown document type: %s", docType)
	}

	if since != "" {
		t, err := time.Parse(time.RFC3339, since)
		if err != nil {
			return types.ExportFilter{}, fmt.Errorf("invalid --since value (want RFC 3339): %s", since)
		}
		filter.Since = &t
	}
	if until != "" {
		t, err := time.Parse(time.RFC3339, until)
		if err != nil {
			return types.ExportFilter{}, fmt.Errorf("invalid --until value (want RFC 3339): %s", until)
		}
		filter.Until = &t
	}

	return filter, nil
}

func runExport(_ *cobra.Command, _ []string) error {
	ctx := context.Background()

	filter, err := buildExportFilter(exportDocType, exportSince, exportUntil, exportEverything, exportLimit)
	if err != nil {
		return err
	}

	database, err := connectDB(ctx, exportDatabaseURL)
	if err != nil {
		return err
	}
	defer database.Close()

	batch, err := export.Run(ctx, database, filter, exportOutput)
	if err != nil {
		return err
	}

	// The receipt goes to stderr so it never mixes with a batch on stdout
	observability.NewPrinter(os.Stderr).PrintExportBatch(batch)
	return nil
}
