// Package pipeline provides the high-level orchestration for source syncing:
// claim a window, fetch raw units, extract, deduplicate, classify, extract
// entities, and commit each unit atomically.
package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"sync"
	"time"

	"github.com/jonathan/docharvest/internal/config"
	"github.com/jonathan/docharvest/internal/db"
	"github.com/jonathan/docharvest/internal/entities"
	"github.com/jonathan/docharvest/internal/mailbox"
	"github.com/jonathan/docharvest/internal/sources"
	"github.com/jonathan/docharvest/internal/syncstate"
	"github.com/jonathan/docharvest/internal/types"
)

// RunOptions holds configuration for one pipeline invocation
type RunOptions struct {
	Config   *config.Config
	Backfill bool // per-year historical windows instead of one incremental window
	Verbose  bool
}

// SourceSummary reports the outcome for one source
type SourceSummary struct {
	Address          string           `json:"address"`
	Kind             types.SourceKind `json:"kind"`
	Processed        int              `json:"processed"`
	NewDocuments     int              `json:"new_documents"`
	Duplicates       int              `json:"duplicates"`
	Failed           int              `json:"failed"`
	NewByType        map[string]int   `json:"new_by_type"`
	WindowsCompleted int              `json:"windows_completed"`
	WindowsSkipped   int              `json:"windows_skipped"`
	WindowsFailed    int              `json:"windows_failed"`
	WindowsTruncated int              `json:"windows_truncated"`
	Errors           []string         `json:"errors,omitempty"`
}

// Summary is the invocation-level result, always returned even under partial
// failure so "nothing new" and "something broke" stay distinguishable
type Summary struct {
	StartedAt time.Time       `json:"started_at"`
	EndedAt   time.Time       `json:"ended_at"`
	Sources   []SourceSummary `json:"sources"`
}

// Processed sums processed units across sources
func (s *Summary) Processed() int {
	total := 0
	for _, src := range s.Sources {
		total += src.Processed
	}
	return total
}

// HasErrors reports whether any source recorded an error
func (s *Summary) HasErrors() bool {
	for _, src := range s.Sources {
		if len(src.Errors) > 0 {
			return true
		}
	}
	return false
}

// counters accumulates unit outcomes across concurrent workers
type counters struct {
	mu           sync.Mutex
	processed    int
	newDocuments int
	duplicates   int
	failed       int
	newByType    map[string]int
}

func newCounters() *counters {
	return &counters{newByType: make(map[string]int)}
}

func (c *counters) record(outcome *db.IngestOutcome, docType types.DocType) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed++
	if outcome.IsNew {
		c.newDocuments++
		c.newByType[string(docType)]++
	} else {
		c.duplicates++
	}
}

func (c *counters) recordFailure() {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.processed++
	c.failed++
}

// Run executes one sync or backfill pass over every resolved source. The
// returned Summary is valid even when err is non-nil.
func Run(ctx context.Context, database *db.DB, opts RunOptions) (*Summary, error) {
	summary := &Summary{StartedAt: time.Now().UTC()}
	defer func() { summary.EndedAt = time.Now().UTC() }()

	descriptors, err := sources.Resolve(opts.Config)
	if err != nil {
		return summary, err
	}
	if len(descriptors) == 0 {
		return summary, fmt.Errorf("no sources configured")
	}

	registry := entities.NewRegistry()

	for _, desc := range descriptors {
		if err := ctx.Err(); err != nil {
			return summary, err
		}
		srcSummary := syncSource(ctx, database, desc, registry, opts)
		summary.Sources = append(summary.Sources, srcSummary)
	}

	if summary.HasErrors() {
		return summary, fmt.Errorf("sync completed with errors")
	}
	return summary, nil
}

// syncSource registers the source, plans its windows and processes each one.
// All failures are captured in the summary; nothing panics the invocation.
func syncSource(ctx context.Context, database *db.DB, desc sources.Descriptor, registry *entities.Registry, opts RunOptions) SourceSummary {
	srcSummary := SourceSummary{
		Address:   desc.Address,
		Kind:      desc.Kind,
		NewByType: make(map[string]int),
	}
	fail := func(format string, args ...any) SourceSummary {
		srcSummary.Errors = append(srcSummary.Errors, fmt.Sprintf(format, args...))
		return srcSummary
	}

	src, err := database.UpsertSource(ctx, desc.Kind, desc.Address, desc.Settings)
	if err != nil {
		return fail("failed to register source: %v", err)
	}
	if !src.Active {
		fmt.Printf("Warning: source %s is disabled, skipping\n", desc.Address)
		return srcSummary
	}

	now := time.Now().UTC()
	windows := syncstate.PlanWindows(src.LastSyncAt, opts.Backfill, opts.Config.BackfillStartYear, now)

	logID, err := database.StartSyncLog(ctx, src.ID)
	if err != nil {
		return fail("failed to start sync log: %v", err)
	}

	tally := newCounters()
	for _, window := range windows {
		if err := ctx.Err(); err != nil {
			break
		}
		outcome := syncWindow(ctx, database, src, desc, window, registry, tally, opts)
		switch outcome.result {
		case windowCompleted:
			srcSummary.WindowsCompleted++
		case windowSkipped:
			srcSummary.WindowsSkipped++
		case windowFailed:
			srcSummary.WindowsFailed++
			srcSummary.Errors = append(srcSummary.Errors, outcome.message)
		case windowTruncated:
			srcSummary.WindowsTruncated++
		}
		if outcome.disableSource {
			// Terminal credential failure; stop hammering the provider
			break
		}
	}

	tally.mu.Lock()
	srcSummary.Processed = tally.processed
	srcSummary.NewDocuments = tally.newDocuments
	srcSummary.Duplicates = tally.duplicates
	srcSummary.Failed = tally.failed
	for k, v := range tally.newByType {
		srcSummary.NewByType[k] = v
	}
	tally.mu.Unlock()

	logStatus := "completed"
	logError := ""
	if len(srcSummary.Errors) > 0 {
		logStatus = "failed"
		logError = srcSummary.Errors[0]
	}
	if err := database.FinishSyncLog(ctx, logID, srcSummary.Processed, srcSummary.NewDocuments, srcSummary.Failed, logStatus, logError); err != nil {
		fmt.Printf("Warning: failed to finish sync log: %v\n", err)
	}

	// A truncated window is not fully covered yet; advancing last_sync_at
	// past it would orphan the remainder.
	if srcSummary.WindowsCompleted > 0 && srcSummary.WindowsFailed == 0 && srcSummary.WindowsTruncated == 0 {
		if err := database.TouchLastSync(ctx, src.ID, now); err != nil {
			fmt.Printf("Warning: failed to record last sync time: %v\n", err)
		}
	}

	return srcSummary
}

type windowResult int

const (
	windowCompleted windowResult = iota
	windowSkipped
	windowFailed
	// windowTruncated means the batch cap cut the window short; the cursor
	// stays in_progress and the next run resumes it
	windowTruncated
)

type windowOutcome struct {
	result        windowResult
	message       string
	disableSource bool
}

// syncWindow claims one cursor and drives it to a terminal state. Context
// cancellation deliberately leaves the cursor in_progress; the next run
// reclaims and resumes it.
func syncWindow(ctx context.Context, database *db.DB, src *types.Source, desc sources.Descriptor, window types.Window, registry *entities.Registry, tally *counters, opts RunOptions) windowOutcome {
	cursor, err := database.ClaimWindow(ctx, src.ID, window, opts.Config.MaxRetries)
	if err != nil {
		var unavailable *db.CursorUnavailableError
		if errors.As(err, &unavailable) {
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Window %s..%s is %s, skipping\n",
					window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"), unavailable.Status)
			}
			return windowOutcome{result: windowSkipped}
		}
		var conflict *db.WindowConflictError
		if errors.As(err, &conflict) {
			return windowOutcome{result: windowSkipped}
		}
		return windowOutcome{result: windowFailed, message: fmt.Sprintf("claim failed: %v", err)}
	}

	if opts.Verbose {
		fmt.Printf("[VERBOSE] Syncing %s window %s..%s (attempt %d)\n",
			desc.Address, window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"), cursor.Attempts)
	}

	var truncated bool
	switch desc.Kind {
	case types.SourceMailbox:
		truncated, err = syncMailboxWindow(ctx, database, src, desc, cursor, registry, tally, opts)
	case types.SourceDirectory:
		truncated, err = syncDirectoryWindow(ctx, database, src, desc, cursor, registry, tally, opts)
	default:
		err = fmt.Errorf("unsupported source kind: %s", desc.Kind)
	}

	if err != nil {
		// Only the invocation's own cancellation leaves the cursor claimed; a
		// per-fetch timeout with the run still live goes through FailCursor.
		if ctx.Err() != nil && (errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded)) {
			// Leave the cursor claimed; a rerun resumes where this one stopped
			return windowOutcome{result: windowFailed, message: "interrupted, window left in progress"}
		}

		var authErr *mailbox.AuthError
		if errors.As(err, &authErr) {
			active, dbErr := database.RecordAuthFailure(ctx, src.ID)
			if dbErr != nil {
				fmt.Printf("Warning: failed to record auth failure: %v\n", dbErr)
			} else if !active {
				fmt.Fprintf(os.Stderr, "Warning: source %s disabled after repeated auth failures\n", src.Address)
			}
			if _, failErr := database.FailCursor(ctx, cursor.ID, opts.Config.MaxRetries, authErr.Error()); failErr != nil {
				fmt.Printf("Warning: failed to mark cursor failed: %v\n", failErr)
			}
			return windowOutcome{result: windowFailed, message: authErr.Error(), disableSource: true}
		}

		status, failErr := database.FailCursor(ctx, cursor.ID, opts.Config.MaxRetries, err.Error())
		if failErr != nil {
			fmt.Printf("Warning: failed to mark cursor failed: %v\n", failErr)
		} else if status == types.CursorStalled {
			fmt.Fprintf(os.Stderr, "Warning: window %s..%s stalled after %d attempts\n",
				window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"), cursor.Attempts)
		}
		return windowOutcome{result: windowFailed, message: err.Error()}
	}

	if truncated {
		// The batch cap stopped short of the window's matches. Leave the
		// cursor in_progress so the next invocation reclaims and resumes it;
		// completing now would silently lose everything beyond the cap.
		if opts.Verbose {
			fmt.Printf("[VERBOSE] Window %s..%s hit the batch cap, left in progress\n",
				window.Start.Format("2006-01-02"), window.End.Format("2006-01-02"))
		}
		return windowOutcome{result: windowTruncated}
	}

	if err := database.CompleteCursor(ctx, cursor.ID); err != nil {
		return windowOutcome{result: windowFailed, message: fmt.Sprintf("failed to complete cursor: %v", err)}
	}
	return windowOutcome{result: windowCompleted}
}
