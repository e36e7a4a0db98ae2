package types

import (
	"time"

	"github.com/google/uuid"
)

// CursorStatus is the lifecycle state of a sync window
type CursorStatus string

const (
	CursorPending    CursorStatus = "pending"
	CursorInProgress CursorStatus = "in_progress"
	CursorCompleted  CursorStatus = "completed"
	CursorFailed     CursorStatus = "failed"
	// CursorStalled means retry attempts are exhausted; the window is surfaced
	// for manual intervention rather than retried forever.
	CursorStalled CursorStatus = "stalled"
)

// Window bounds one crawl of a source to the half-open range [Start, End).
// Half-open ends let consecutive windows share a boundary instant without
// overlapping, so an incremental window can start exactly where the previous
// one ended.
type Window struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// Contains reports whether t falls inside the window
func (w Window) Contains(t time.Time) bool {
	return !t.Before(w.Start) && t.Before(w.End)
}

// Overlaps reports whether two windows share any instant
func (w Window) Overlaps(other Window) bool {
	return w.Start.Before(other.End) && other.Start.Before(w.End)
}

// SyncCursor is a persisted progress marker for one (source, window) pair.
// Windows of the same granularity for one source must never overlap.
type SyncCursor struct {
	ID                    uuid.UUID    `json:"id"`
	SourceID              uuid.UUID    `json:"source_id"`
	WindowStart           time.Time    `json:"window_start"`
	WindowEnd             time.Time    `json:"window_end"`
	Status                CursorStatus `json:"status"`
	ItemsProcessed        int          `json:"items_processed"`
	ItemsSkippedDuplicate int          `json:"items_skipped_duplicate"`
	ItemsFailed           int          `json:"items_failed"`
	Attempts              int          `json:"attempts"`
	LastError             string       `json:"last_error,omitempty"`
	UpdatedAt             time.Time    `json:"updated_at"`
}

// Window returns the cursor bounds as a Window value
func (c *SyncCursor) Window() Window {
	return Window{Start: c.WindowStart, End: c.WindowEnd}
}

// SyncLog is one append-only record of a sync invocation over a source
type SyncLog struct {
	ID        uuid.UUID  `json:"id"`
	SourceID  uuid.UUID  `json:"source_id"`
	StartedAt time.Time  `json:"started_at"`
	EndedAt   *time.Time `json:"ended_at,omitempty"`
	Processed int        `json:"processed"`
	Extracted int        `json:"extracted"`
	Errors    int        `json:"errors"`
	Status    string     `json:"status"`
	Error     string     `json:"error,omitempty"`
}
