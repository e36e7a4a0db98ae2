package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/docharvest/internal/types"
)

// StartSyncLog opens an append-only log record for one sync invocation
func (db *DB) StartSyncLog(ctx context.Context, sourceID uuid.UUID) (uuid.UUID, error) {
	id := uuid.New()
	_, err := db.pool.Exec(ctx,
		`INSERT INTO sync_logs (id, source_id) VALUES ($1, $2)`, id, sourceID)
	if err != nil {
		return uuid.Nil, fmt.Errorf("failed to start sync log: %w", err)
	}
	return id, nil
}

// FinishSyncLog closes a log record with final counters and outcome
func (db *DB) FinishSyncLog(ctx context.Context, id uuid.UUID, processed, extracted, errCount int, status, cause string) error {
	_, err := db.pool.Exec(ctx,
		`UPDATE sync_logs
		 SET ended_at = $2, processed = $3, extracted = $4, errors = $5, status = $6, error = $7
		 WHERE id = $1`,
		id, time.Now().UTC(), processed, extracted, errCount, status, cause)
	if err != nil {
		return fmt.Errorf("failed to finish sync log: %w", err)
	}
	return nil
}

// LatestSyncLog retrieves the most recent log for a source, nil when none exist
func (db *DB) LatestSyncLog(ctx context.Context, sourceID uuid.UUID) (*types.SyncLog, error) {
	var l types.SyncLog
	err := db.pool.QueryRow(ctx,
		`SELECT id, source_id, started_at, ended_at, processed, extracted, errors, status, error
		 FROM sync_logs WHERE source_id = $1 ORDER BY started_at DESC LIMIT 1`, sourceID,
	).Scan(&l.ID, &l.SourceID, &l.StartedAt, &l.EndedAt, &l.Processed, &l.Extracted, &l.Errors, &l.Status, &l.Error)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to get latest sync log: %w", err)
	}
	return &l, nil
}

// ListSyncLogs retrieves recent logs for a source, newest first
func (db *DB) ListSyncLogs(ctx context.Context, sourceID uuid.UUID, limit int) ([]types.SyncLog, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, source_id, started_at, ended_at, processed, extracted, errors, status, error
		 FROM sync_logs WHERE source_id = $1 ORDER BY started_at DESC LIMIT $2`,
		sourceID, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list sync logs: %w", err)
	}
	defer rows.Close()

	var logs []types.SyncLog
	for rows.Next() {
		var l types.SyncLog
		err := rows.Scan(&l.ID, &l.SourceID, &l.StartedAt, &l.EndedAt, &l.Processed, &l.Extracted, &l.Errors, &l.Status, &l.Error)
		if err != nil {
			return nil, fmt.Errorf("failed to scan sync log: %w", err)
		}
		logs = append(logs, l)
	}
	return logs, nil
}
