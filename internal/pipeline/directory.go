package pipeline

import (
	"context"
	"errors"
	"fmt"
	"os"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/docharvest/internal/db"
	"github.com/jonathan/docharvest/internal/entities"
	"github.com/jonathan/docharvest/internal/fscrawl"
	"github.com/jonathan/docharvest/internal/sources"
	"github.com/jonathan/docharvest/internal/types"
)

// errWalkLimit stops a walk once the batch cap is collected
var errWalkLimit = errors.New("walk limit reached")

// syncDirectoryWindow walks one root and processes files whose modification
// time falls inside the window. The walk itself is not resumable; the origin
// ledger makes re-walking skipped work cheap. truncated reports that the
// batch cap stopped the walk early; the caller must then leave the cursor
// claimed instead of completing the window.
func syncDirectoryWindow(ctx context.Context, database *db.DB, src *types.Source, desc sources.Descriptor, cursor *types.SyncCursor, registry *entities.Registry, tally *counters, opts RunOptions) (truncated bool, err error) {
	existing, err := database.ExistingOriginIDs(ctx, src.ID)
	if err != nil {
		return false, err
	}

	window := cursor.Window()
	limit := batchLimit(opts)

	var candidates []fscrawl.Candidate
	err = fscrawl.Walk(desc.Settings.Root, desc.Settings.Extensions, func(c fscrawl.Candidate) error {
		if err := ctx.Err(); err != nil {
			return err
		}
		if !window.Contains(time.Unix(c.ModTime, 0).UTC()) {
			return nil
		}
		if existing[c.Path] {
			return nil
		}
		if len(candidates) >= limit {
			return errWalkLimit
		}
		candidates = append(candidates, c)
		return nil
	})
	if errors.Is(err, errWalkLimit) {
		truncated = true
	} else if err != nil {
		return false, err
	}

	if opts.Verbose {
		fmt.Printf("[VERBOSE] %s: %d files to process\n", desc.Address, len(candidates))
	}
	if len(candidates) == 0 {
		return truncated, nil
	}

	g, gctx := errgroup.WithContext(ctx)
	items := make(chan rawItem, opts.Config.Workers*2)

	readers, readCtx := errgroup.WithContext(gctx)
	candidateCh := make(chan fscrawl.Candidate)

	readers.Go(func() error {
		defer close(candidateCh)
		for _, c := range candidates {
			select {
			case <-readCtx.Done():
				return readCtx.Err()
			case candidateCh <- c:
			}
		}
		return nil
	})

	for i := 0; i < opts.Config.FetchConcurrency; i++ {
		readers.Go(func() error {
			for c := range candidateCh {
				data, err := os.ReadFile(c.Path)
				if err != nil {
					// Vanished or unreadable since the walk; skip, not fatal
					fmt.Printf("Warning: failed to read %s: %v\n", c.Path, err)
					continue
				}
				item := rawItem{
					originID:   c.Path,
					contentRef: c.Path,
					fetchedAt:  time.Now().UTC(),
					size:       c.Size,
					data:       data,
					hint:       c.Extension,
				}
				select {
				case <-readCtx.Done():
					return readCtx.Err()
				case items <- item:
				}
			}
			return nil
		})
	}

	g.Go(func() error {
		defer close(items)
		return readers.Wait()
	})
	g.Go(func() error {
		return processItems(gctx, database, src, *cursor, registry, tally, opts, items)
	})

	return truncated, g.Wait()
}
