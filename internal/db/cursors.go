package db

import (
	"context"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/docharvest/internal/types"
)

// ClaimWindow acquires the sync cursor for (source, window), creating it when
// absent, and moves it to in_progress. Claimable states are pending, failed
// (retry) and in_progress (a crashed run left it claimed; the new run resumes
// it). Completed and stalled cursors return CursorUnavailableError; a failed
// cursor whose attempts have reached maxRetries is promoted to stalled instead
// of being retried. A window overlapping a different existing window returns
// WindowConflictError.
func (db *DB) ClaimWindow(ctx context.Context, sourceID uuid.UUID, window types.Window, maxRetries int) (*types.SyncCursor, error) {
	if err := db.ensureCursor(ctx, sourceID, window); err != nil {
		return nil, err
	}

	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin claim transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	var cur types.SyncCursor
	err = tx.QueryRow(ctx,
		`SELECT id, source_id, window_start, window_end, status,
		        items_processed, items_skipped_duplicate, items_failed,
		        attempts, last_error, updated_at
		 FROM sync_cursors
		 WHERE source_id = $1 AND window_start = $2 AND window_end = $3
		 FOR UPDATE`,
		sourceID, window.Start, window.End,
	).Scan(&cur.ID, &cur.SourceID, &cur.WindowStart, &cur.WindowEnd, &cur.Status,
		&cur.ItemsProcessed, &cur.ItemsSkippedDuplicate, &cur.ItemsFailed,
		&cur.Attempts, &cur.LastError, &cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to load cursor: %w", err)
	}

	switch cur.Status {
	case types.CursorCompleted, types.CursorStalled:
		return nil, &CursorUnavailableError{SourceID: sourceID, Status: cur.Status}
	case types.CursorFailed:
		if cur.Attempts >= maxRetries {
			_, err = tx.Exec(ctx,
				`UPDATE sync_cursors SET status = $2, updated_at = NOW() WHERE id = $1`,
				cur.ID, types.CursorStalled)
			if err != nil {
				return nil, fmt.Errorf("failed to stall cursor: %w", err)
			}
			if err := tx.Commit(ctx); err != nil {
				return nil, fmt.Errorf("failed to commit stall: %w", err)
			}
			return nil, &CursorUnavailableError{SourceID: sourceID, Status: types.CursorStalled}
		}
	}

	err = tx.QueryRow(ctx,
		`UPDATE sync_cursors
		 SET status = $2, attempts = attempts + 1, last_error = '', updated_at = NOW()
		 WHERE id = $1
		 RETURNING status, attempts, updated_at`,
		cur.ID, types.CursorInProgress,
	).Scan(&cur.Status, &cur.Attempts, &cur.UpdatedAt)
	if err != nil {
		return nil, fmt.Errorf("failed to claim cursor: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit claim: %w", err)
	}
	return &cur, nil
}

// ensureCursor creates the cursor row when absent. The exclusion constraint
// fires for the row's own window too, so an exclusion error is only a real
// conflict when no exact-window row exists.
func (db *DB) ensureCursor(ctx context.Context, sourceID uuid.UUID, window types.Window) error {
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sync_cursors (id, source_id, window_start, window_end)
		 VALUES ($1, $2, $3, $4)
		 ON CONFLICT (source_id, window_start, window_end) DO NOTHING`,
		uuid.New(), sourceID, window.Start, window.End,
	)
	if err == nil {
		return nil
	}
	if !isExclusionViolation(err) {
		return fmt.Errorf("failed to ensure cursor: %w", err)
	}

	var exists bool
	checkErr := db.pool.QueryRow(ctx,
		`SELECT EXISTS (
		   SELECT 1 FROM sync_cursors
		   WHERE source_id = $1 AND window_start = $2 AND window_end = $3)`,
		sourceID, window.Start, window.End,
	).Scan(&exists)
	if checkErr != nil {
		return fmt.Errorf("failed to check cursor existence: %w", checkErr)
	}
	if exists {
		return nil
	}
	return &WindowConflictError{SourceID: sourceID, Window: window}
}

// CompleteCursor marks a claimed cursor completed
func (db *DB) CompleteCursor(ctx context.Context, cursorID uuid.UUID) error {
	result, err := db.pool.Exec(ctx,
		`UPDATE sync_cursors SET status = $2, updated_at = NOW()
		 WHERE id = $1 AND status = $3`,
		cursorID, types.CursorCompleted, types.CursorInProgress)
	if err != nil {
		return fmt.Errorf("failed to complete cursor: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("cursor not in progress: %s", cursorID)
	}
	return nil
}

// FailCursor records a failed attempt. Attempts were counted at claim time,
// so a cursor that has exhausted maxRetries goes straight to stalled.
func (db *DB) FailCursor(ctx context.Context, cursorID uuid.UUID, maxRetries int, cause string) (types.CursorStatus, error) {
	var status types.CursorStatus
	err := db.pool.QueryRow(ctx,
		`UPDATE sync_cursors
		 SET status = CASE WHEN attempts >= $2 THEN 'stalled' ELSE 'failed' END,
		     last_error = $3, updated_at = NOW()
		 WHERE id = $1
		 RETURNING status`,
		cursorID, maxRetries, cause,
	).Scan(&status)
	if err != nil {
		return "", fmt.Errorf("failed to fail cursor: %w", err)
	}
	return status, nil
}

// ListCursors retrieves cursors, optionally filtered by source and status
func (db *DB) ListCursors(ctx context.Context, sourceID *uuid.UUID, status types.CursorStatus) ([]types.SyncCursor, error) {
	query := `SELECT id, source_id, window_start, window_end, status,
	                 items_processed, items_skipped_duplicate, items_failed,
	                 attempts, last_error, updated_at
	          FROM sync_cursors`

	var conditions []string
	var args []interface{}
	argNum := 1

	if sourceID != nil {
		conditions = append(conditions, fmt.Sprintf("source_id = $%d", argNum))
		args = append(args, *sourceID)
		argNum++
	}
	if status != "" {
		conditions = append(conditions, fmt.Sprintf("status = $%d", argNum))
		args = append(args, status)
		argNum++
	}

	query += whereClause(conditions)
	query += " ORDER BY window_start ASC"

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list cursors: %w", err)
	}
	defer rows.Close()

	var cursors []types.SyncCursor
	for rows.Next() {
		var cur types.SyncCursor
		err := rows.Scan(&cur.ID, &cur.SourceID, &cur.WindowStart, &cur.WindowEnd, &cur.Status,
			&cur.ItemsProcessed, &cur.ItemsSkippedDuplicate, &cur.ItemsFailed,
			&cur.Attempts, &cur.LastError, &cur.UpdatedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan cursor: %w", err)
		}
		cursors = append(cursors, cur)
	}
	return cursors, nil
}

// GetCursor retrieves one cursor by ID, returning nil when absent
func (db *DB) GetCursor(ctx context.Context, id uuid.UUID) (*types.SyncCursor, error) {
	var cur types.SyncCursor
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_id, window_start, window_end, status,
		        items_processed, items_skipped_duplicate, items_failed,
		        attempts, last_error, updated_at
		 FROM sync_cursors WHERE id = $1`, id,
	).Scan(&cur.ID, &cur.SourceID, &cur.WindowStart, &cur.WindowEnd, &cur.Status,
		&cur.ItemsProcessed, &cur.ItemsSkippedDuplicate, &cur.ItemsFailed,
		&cur.Attempts, &cur.LastError, &cur.UpdatedAt)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get cursor: %w", err)
	}
	return &cur, nil
}
