package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/docharvest/internal/types"
)

// ExistingOriginIDs returns the origin IDs already persisted for a source.
// A resumed window uses this to skip refetching units it has already committed.
func (db *DB) ExistingOriginIDs(ctx context.Context, sourceID uuid.UUID) (map[string]bool, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT origin_id FROM raw_units WHERE source_id = $1`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to query origin ids: %w", err)
	}
	defer rows.Close()

	seen := make(map[string]bool)
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return nil, fmt.Errorf("failed to scan origin id: %w", err)
		}
		seen[id] = true
	}
	return seen, nil
}

// ListUnitsForDocument retrieves every raw unit linked to a document, which is
// the document's full provenance across sources
func (db *DB) ListUnitsForDocument(ctx context.Context, docID uuid.UUID) ([]types.RawUnit, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, source_id, origin_id, fetched_at, size_bytes, content_ref, document_id, status, error
		 FROM raw_units WHERE document_id = $1 ORDER BY fetched_at ASC`, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list raw units: %w", err)
	}
	defer rows.Close()

	var units []types.RawUnit
	for rows.Next() {
		var u types.RawUnit
		err := rows.Scan(&u.ID, &u.SourceID, &u.OriginID, &u.FetchedAt, &u.Size,
			&u.ContentRef, &u.DocumentID, &u.Status, &u.Error)
		if err != nil {
			return nil, fmt.Errorf("failed to scan raw unit: %w", err)
		}
		units = append(units, u)
	}
	return units, nil
}

// CountUnitsByStatus summarizes a source's units per terminal status
func (db *DB) CountUnitsByStatus(ctx context.Context, sourceID uuid.UUID) (map[types.UnitStatus]int, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT status, COUNT(*) FROM raw_units WHERE source_id = $1 GROUP BY status`, sourceID)
	if err != nil {
		return nil, fmt.Errorf("failed to count raw units: %w", err)
	}
	defer rows.Close()

	counts := make(map[types.UnitStatus]int)
	for rows.Next() {
		var status types.UnitStatus
		var n int
		if err := rows.Scan(&status, &n); err != nil {
			return nil, fmt.Errorf("failed to scan unit count: %w", err)
		}
		counts[status] = n
	}
	return counts, nil
}
