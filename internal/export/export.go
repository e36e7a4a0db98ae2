// Package export serializes catalog batches for downstream consumers. Every
// batch is validated against the embedded JSON Schema before it leaves the
// process, so schema drift fails loudly here instead of in a consumer.
package export

import (
	"context"
	_ "embed"
	"encoding/json"
	"fmt"
	"os"

	"github.com/jonathan/docharvest/internal/db"
	"github.com/jonathan/docharvest/internal/schemas"
	"github.com/jonathan/docharvest/internal/types"
)

//go:embed export_batch.schema.json
var batchSchema []byte

// BatchSchema exposes the embedded schema for admin tooling
func BatchSchema() []byte {
	return batchSchema
}

// Serialize renders a batch as indented JSON and validates it against the
// batch schema
func Serialize(batch *types.ExportBatch) ([]byte, error) {
	data, err := json.MarshalIndent(batch, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("failed to serialize export batch: %w", err)
	}
	if err := schemas.Validate(batchSchema, data); err != nil {
		return nil, fmt.Errorf("export batch rejected by schema: %w", err)
	}
	return data, nil
}

// Run selects and marks matching documents as one batch, then writes the
// serialized batch to outputPath ("" or "-" writes to stdout). The database
// marks rows exported inside the selection transaction, so re-running the
// same filter with no new documents produces an empty batch.
func Run(ctx context.Context, database *db.DB, filter types.ExportFilter, outputPath string) (*types.ExportBatch, error) {
	batch, err := database.CreateExportBatch(ctx, filter)
	if err != nil {
		return nil, err
	}

	data, err := Serialize(batch)
	if err != nil {
		return nil, err
	}

	if err := write(data, outputPath); err != nil {
		return nil, err
	}
	return batch, nil
}

func write(data []byte, outputPath string) error {
	if outputPath == "" || outputPath == "-" {
		_, err := fmt.Fprintf(os.Stdout, "%s\n", data)
		return err
	}
	if err := os.WriteFile(outputPath, data, 0o644); err != nil {
		return fmt.Errorf("failed to write export file %s: %w", outputPath, err)
	}
	return nil
}
