package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/docharvest/internal/entities"
	"github.com/jonathan/docharvest/internal/types"
)

// UpsertEntities records re-extracted entities for a document. The unique key
// on (document_id, entity_type, value) makes repeat extraction non-duplicating.
func (db *DB) UpsertEntities(ctx context.Context, docID uuid.UUID, values []entities.Value) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	for _, v := range values {
		_, err := tx.Exec(ctx,
			`INSERT INTO entities (id, document_id, entity_type, value, extraction_method)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (document_id, entity_type, value) DO NOTHING`,
			uuid.New(), docID, v.Type, v.Value, v.Method)
		if err != nil {
			return fmt.Errorf("failed to upsert entity: %w", err)
		}
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit entities: %w", err)
	}
	return nil
}

// ListEntities retrieves a document's entities, optionally filtered by type
func (db *DB) ListEntities(ctx context.Context, docID uuid.UUID, entityType types.EntityType) ([]types.Entity, error) {
	query := `SELECT id, document_id, entity_type, value, extraction_method, created_at
	          FROM entities WHERE document_id = $1`
	args := []interface{}{docID}
	if entityType != "" {
		query += " AND entity_type = $2"
		args = append(args, entityType)
	}
	query += " ORDER BY entity_type ASC, value ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list entities: %w", err)
	}
	defer rows.Close()

	var result []types.Entity
	for rows.Next() {
		var e types.Entity
		err := rows.Scan(&e.ID, &e.DocumentID, &e.Type, &e.Value, &e.ExtractionMethod, &e.CreatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan entity: %w", err)
		}
		result = append(result, e)
	}
	return result, nil
}
