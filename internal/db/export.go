package db

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/docharvest/internal/types"
)

// txQuerier is the slice of pgx.Tx the export record builder needs
type txQuerier interface {
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
}

// CreateExportBatch selects documents matching the filter, marks them exported
// and records the batch, all in one transaction. Documents already stamped with
// an exported_at are excluded when the filter asks for unexported records, so
// re-running the same filter yields an empty batch until new documents arrive.
func (db *DB) CreateExportBatch(ctx context.Context, filter types.ExportFilter) (*types.ExportBatch, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin export transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	query, args := buildExportQuery(filter)
	rows, err := tx.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to select documents for export: %w", err)
	}

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			rows.Close()
			return nil, err
		}
		docs = append(docs, *doc)
	}
	rows.Close()

	batch := &types.ExportBatch{
		BatchID:    uuid.New(),
		ExportedAt: time.Now().UTC(),
		Filter:     filter,
		Records:    []types.ExportRecord{},
	}

	for i := range docs {
		record, err := buildExportRecord(ctx, tx, docs[i])
		if err != nil {
			return nil, err
		}
		batch.Records = append(batch.Records, *record)
	}

	if len(docs) > 0 {
		ids := make([]uuid.UUID, len(docs))
		for i, d := range docs {
			ids[i] = d.ID
		}
		_, err = tx.Exec(ctx,
			`UPDATE documents SET exported_at = $2, export_batch_id = $3 WHERE id = ANY($1)`,
			ids, batch.ExportedAt, batch.BatchID)
		if err != nil {
			return nil, fmt.Errorf("failed to mark documents exported: %w", err)
		}
	}

	filterJSON, err := json.Marshal(filter)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal export filter: %w", err)
	}
	_, err = tx.Exec(ctx,
		`INSERT INTO export_batches (id, filter, exported_at, record_count)
		 VALUES ($1, $2, $3, $4)`,
		batch.BatchID, filterJSON, batch.ExportedAt, len(batch.Records))
	if err != nil {
		return nil, fmt.Errorf("failed to record export batch: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit export batch: %w", err)
	}
	return batch, nil
}

// buildExportQuery assembles the document selection for an export filter.
// FOR UPDATE serializes concurrent exports over the same rows.
func buildExportQuery(filter types.ExportFilter) (string, []interface{}) {
	query := fmt.Sprintf(`SELECT %s FROM documents`, documentColumns)

	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.DocType != "" {
		conditions = append(conditions, fmt.Sprintf("detected_type = $%d", argNum))
		args = append(args, filter.DocType)
		argNum++
	}
	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("extracted_at >= $%d", argNum))
		args = append(args, *filter.Since)
		argNum++
	}
	if filter.Until != nil {
		conditions = append(conditions, fmt.Sprintf("extracted_at <= $%d", argNum))
		args = append(args, *filter.Until)
		argNum++
	}
	if filter.NotExported {
		conditions = append(conditions, "exported_at IS NULL")
	}

	query += whereClause(conditions)
	query += " ORDER BY extracted_at ASC"
	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
	}
	query += " FOR UPDATE"

	return query, args
}

// buildExportRecord attaches entities and provenance to one exported document
func buildExportRecord(ctx context.Context, tx txQuerier, doc types.Document) (*types.ExportRecord, error) {
	record := &types.ExportRecord{
		Document:   doc,
		Entities:   []types.Entity{},
		Provenance: []types.Provenance{},
	}

	rows, err := tx.Query(ctx,
		`SELECT id, document_id, entity_type, value, extraction_method, created_at
		 FROM entities WHERE document_id = $1 ORDER BY entity_type ASC, value ASC`, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query export entities: %w", err)
	}
	for rows.Next() {
		var e types.Entity
		err := rows.Scan(&e.ID, &e.DocumentID, &e.Type, &e.Value, &e.ExtractionMethod, &e.CreatedAt)
		if err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan export entity: %w", err)
		}
		record.Entities = append(record.Entities, e)
	}
	rows.Close()

	rows, err = tx.Query(ctx,
		`SELECT source_id, origin_id FROM raw_units
		 WHERE document_id = $1 ORDER BY fetched_at ASC`, doc.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query export provenance: %w", err)
	}
	for rows.Next() {
		var p types.Provenance
		if err := rows.Scan(&p.SourceID, &p.OriginID); err != nil {
			rows.Close()
			return nil, fmt.Errorf("failed to scan export provenance: %w", err)
		}
		record.Provenance = append(record.Provenance, p)
	}
	rows.Close()

	return record, nil
}

// ListExportBatches retrieves recorded batches, newest first
func (db *DB) ListExportBatches(ctx context.Context, limit int) ([]types.ExportBatch, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, filter, exported_at, record_count
		 FROM export_batches ORDER BY exported_at DESC LIMIT $1`, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list export batches: %w", err)
	}
	defer rows.Close()

	var batches []types.ExportBatch
	for rows.Next() {
		var b types.ExportBatch
		var filterJSON []byte
		var count int
		if err := rows.Scan(&b.BatchID, &filterJSON, &b.ExportedAt, &count); err != nil {
			return nil, fmt.Errorf("failed to scan export batch: %w", err)
		}
		if err := json.Unmarshal(filterJSON, &b.Filter); err != nil {
			return nil, fmt.Errorf("failed to decode export filter: %w", err)
		}
		batches = append(batches, b)
	}
	return batches, nil
}
