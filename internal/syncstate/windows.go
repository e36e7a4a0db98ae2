// Package syncstate holds the cursor state machine rules and window
// arithmetic for incremental sync and historical backfill.
package syncstate

import (
	"fmt"
	"time"

	"github.com/jonathan/docharvest/internal/types"
)

// YearWindows splits [startYear, now) into independent half-open per-year
// windows so one bad year never blocks the others. Each window ends at the
// start of the next year; the current year's window ends now.
func YearWindows(startYear int, now time.Time) []types.Window {
	if startYear > now.Year() {
		return nil
	}

	windows := make([]types.Window, 0, now.Year()-startYear+1)
	for year := startYear; year <= now.Year(); year++ {
		start := time.Date(year, 1, 1, 0, 0, 0, 0, time.UTC)
		end := time.Date(year+1, 1, 1, 0, 0, 0, 0, time.UTC)
		if year == now.Year() {
			end = now
		}
		windows = append(windows, types.Window{Start: start, End: end})
	}
	return windows
}

// IncrementalWindow bounds a routine sync of a previously synced source:
// the half-open range [lastSyncAt, now). Starting exactly at the previous
// window's end is safe because half-open windows touching at a boundary do
// not overlap.
func IncrementalWindow(lastSyncAt, now time.Time) types.Window {
	if !lastSyncAt.Before(now) {
		return types.Window{Start: now, End: now}
	}
	return types.Window{Start: lastSyncAt, End: now}
}

// PlanWindows decides the sync windows for one source. Backfill runs and
// never-synced sources both use the per-year windows, so mixing routine sync
// and backfill produces identical claims instead of conflicting ones; a
// previously synced source gets a single incremental window.
func PlanWindows(lastSyncAt *time.Time, backfill bool, startYear int, now time.Time) []types.Window {
	if backfill || lastSyncAt == nil {
		return YearWindows(startYear, now)
	}
	return []types.Window{IncrementalWindow(*lastSyncAt, now)}
}

// transitions is the allowed cursor state machine:
// pending → in_progress → {completed | failed}; failed re-enters in_progress
// until attempts are exhausted, then becomes stalled (manual intervention).
var transitions = map[types.CursorStatus][]types.CursorStatus{
	types.CursorPending:    {types.CursorInProgress},
	types.CursorInProgress: {types.CursorCompleted, types.CursorFailed, types.CursorInProgress},
	types.CursorFailed:     {types.CursorInProgress, types.CursorStalled},
	types.CursorCompleted:  {},
	types.CursorStalled:    {},
}

// CanTransition reports whether a cursor may move from one status to another
func CanTransition(from, to types.CursorStatus) bool {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}

// Transition validates a status change, returning a typed error on violation
func Transition(cursor *types.SyncCursor, to types.CursorStatus) error {
	if !CanTransition(cursor.Status, to) {
		return &TransitionError{From: cursor.Status, To: to}
	}
	cursor.Status = to
	return nil
}

// NextAfterFailure decides whether a failed window retries or stalls
func NextAfterFailure(attempts, maxRetries int) types.CursorStatus {
	if attempts >= maxRetries {
		return types.CursorStalled
	}
	return types.CursorFailed
}

// TransitionError represents an illegal cursor state change
type TransitionError struct {
	From types.CursorStatus
	To   types.CursorStatus
}

func (e *TransitionError) Error() string {
	return fmt.Sprintf("illegal cursor transition: %s to %s", e.From, e.To)
}
