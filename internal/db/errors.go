package db

import (
	"fmt"

	"github.com/google/uuid"

	"github.com/jonathan/docharvest/internal/types"
)

// WindowConflictError indicates another cursor already covers an overlapping
// window for the source. Concurrent pipeline instances coordinate purely
// through this constraint; the losing claimant backs off.
type WindowConflictError struct {
	SourceID uuid.UUID
	Window   types.Window
}

func (e *WindowConflictError) Error() string {
	return fmt.Sprintf("window %s..%s overlaps an existing cursor for source %s",
		e.Window.Start.Format("2006-01-02"), e.Window.End.Format("2006-01-02"), e.SourceID)
}

// CursorUnavailableError indicates the window's cursor is in a state that
// cannot be claimed (completed or stalled).
type CursorUnavailableError struct {
	SourceID uuid.UUID
	Status   types.CursorStatus
}

func (e *CursorUnavailableError) Error() string {
	return fmt.Sprintf("cursor for source %s is %s and cannot be claimed", e.SourceID, e.Status)
}
