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

// maxAuthFailures disables a source after this many terminal auth failures.
// The source row is kept (never deleted) so its history stays queryable.
const maxAuthFailures = 3

// UpsertSource registers a source by (kind, address), returning the stored
// record. Re-registering an existing source refreshes its settings and
// reactivates it.
func (db *DB) UpsertSource(ctx context.Context, kind types.SourceKind, address string, settings types.SourceSettings) (*types.Source, error) {
	settingsJSON, err := json.Marshal(settings)
	if err != nil {
		return nil, fmt.Errorf("failed to marshal source settings: %w", err)
	}

	var src types.Source
	var raw []byte
	err = db.pool.QueryRow(ctx,
		`INSERT INTO sources (id, kind, address, settings)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (kind, address)
		 DO UPDATE SET settings = $4, active = TRUE, auth_failures = 0
		 RETURNING id, kind, address, settings, active, auth_failures, last_sync_at, created_at`,
		uuid.New(), kind, address, settingsJSON,
	).Scan(&src.ID, &src.Kind, &src.Address, &raw, &src.Active, &src.AuthFailures, &src.LastSyncAt, &src.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to upsert source: %w", err)
	}

	if err := json.Unmarshal(raw, &src.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode source settings: %w", err)
	}
	return &src, nil
}

// GetSource retrieves a source by ID, returning nil when absent
func (db *DB) GetSource(ctx context.Context, id uuid.UUID) (*types.Source, error) {
	row := db.pool.QueryRow(ctx,
		`SELECT id, kind, address, settings, active, auth_failures, last_sync_at, created_at
		 FROM sources WHERE id = $1`, id)
	return scanSource(row)
}

// ListSources retrieves all registered sources, active first
func (db *DB) ListSources(ctx context.Context) ([]types.Source, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, kind, address, settings, active, auth_failures, last_sync_at, created_at
		 FROM sources ORDER BY active DESC, created_at ASC`)
	if err != nil {
		return nil, fmt.Errorf("failed to list sources: %w", err)
	}
	defer rows.Close()

	var sources []types.Source
	for rows.Next() {
		src, err := scanSource(rows)
		if err != nil {
			return nil, err
		}
		sources = append(sources, *src)
	}
	return sources, nil
}

// RecordAuthFailure increments the source's terminal auth failure count and
// disables the source once the threshold is reached. Returns the new active
// state.
func (db *DB) RecordAuthFailure(ctx context.Context, id uuid.UUID) (bool, error) {
	var active bool
	err := db.pool.QueryRow(ctx,
		`UPDATE sources
		 SET auth_failures = auth_failures + 1,
		     active = (auth_failures + 1 < $2)
		 WHERE id = $1
		 RETURNING active`,
		id, maxAuthFailures,
	).Scan(&active)
	if err != nil {
		return false, fmt.Errorf("failed to record auth failure: %w", err)
	}
	return active, nil
}

// SetSourceActive enables or disables a source explicitly
func (db *DB) SetSourceActive(ctx context.Context, id uuid.UUID, active bool) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE sources SET active = $2, auth_failures = 0 WHERE id = $1`, id, active)
	if err != nil {
		return fmt.Errorf("failed to update source: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("source not found: %s", id)
	}
	return nil
}

// TouchLastSync records a successful sync completion time
func (db *DB) TouchLastSync(ctx context.Context, id uuid.UUID, at time.Time) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE sources SET last_sync_at = $2 WHERE id = $1`, id, at)
	if err != nil {
		return fmt.Errorf("failed to touch last_sync_at: %w", err)
	}
	return nil
}

// scanSource decodes one source row
func scanSource(row pgx.Row) (*types.Source, error) {
	var src types.Source
	var raw []byte
	err := row.Scan(&src.ID, &src.Kind, &src.Address, &raw, &src.Active, &src.AuthFailures, &src.LastSyncAt, &src.CreatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan source: %w", err)
	}
	if err := json.Unmarshal(raw, &src.Settings); err != nil {
		return nil, fmt.Errorf("failed to decode source settings: %w", err)
	}
	return &src, nil
}
