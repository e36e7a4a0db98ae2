package pipeline

import (
	"context"
	"errors"
	"fmt"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/jonathan/docharvest/internal/classify"
	"github.com/jonathan/docharvest/internal/db"
	"github.com/jonathan/docharvest/internal/entities"
	"github.com/jonathan/docharvest/internal/extract"
	"github.com/jonathan/docharvest/internal/types"
)

// rawItem is one fetched unit queued for CPU processing. Either data (raw
// bytes needing format dispatch) or text (already-decoded plain text) is set.
type rawItem struct {
	originID   string
	contentRef string
	fetchedAt  time.Time
	size       int64
	data       []byte
	hint       string
	text       string
}

// processItems drains the bounded queue with a CPU worker pool. Extraction,
// classification and entity extraction are synchronous per unit; each unit
// lands in its own transaction. A database error aborts the window, an
// extraction error only fails the unit.
func processItems(ctx context.Context, database *db.DB, src *types.Source, cursor types.SyncCursor, registry *entities.Registry, tally *counters, opts RunOptions, items <-chan rawItem) error {
	g, gctx := errgroup.WithContext(ctx)

	for i := 0; i < opts.Config.Workers; i++ {
		g.Go(func() error {
			for item := range items {
				if err := gctx.Err(); err != nil {
					return err
				}
				if err := processItem(gctx, database, src, cursor, registry, tally, opts, item); err != nil {
					return err
				}
			}
			return nil
		})
	}

	return g.Wait()
}

// processItem runs one unit through extract → classify → entities → commit
func processItem(ctx context.Context, database *db.DB, src *types.Source, cursor types.SyncCursor, registry *entities.Registry, tally *counters, opts RunOptions, item rawItem) error {
	base := db.UnitIngest{
		SourceID:   src.ID,
		CursorID:   cursor.ID,
		OriginID:   item.originID,
		ContentRef: item.contentRef,
		FetchedAt:  item.fetchedAt,
		Size:       item.size,
	}

	var result *extract.Result
	var err error
	if item.text != "" {
		result, err = extract.HashOnly(item.text)
	} else {
		result, err = extract.Extract(item.data, item.hint)
	}
	if err != nil {
		var extractErr *extract.ExtractionError
		if errors.As(err, &extractErr) {
			if opts.Verbose {
				fmt.Printf("[VERBOSE] Extraction failed for %s: %v\n", item.originID, err)
			}
			if dbErr := database.RecordFailedUnit(ctx, base, err); dbErr != nil {
				return dbErr
			}
			tally.recordFailure()
			return nil
		}
		return err
	}

	classification := classify.Classify(result.Text, opts.Config.ClassifyMinHits)
	extracted := registry.Run(result.Text, classification.Type)

	base.Text = result.Text
	base.Hash = result.Hash
	base.Algorithm = extract.HashAlgorithm
	base.DocType = classification.Type
	base.Score = classification.Score
	base.ClassifierVersion = classification.Version
	base.Entities = extracted.Entities

	outcome, err := database.IngestUnit(ctx, base)
	if err != nil {
		return err
	}
	tally.record(outcome, classification.Type)

	if opts.Verbose && len(extracted.Failed) > 0 {
		for name, msg := range extracted.Failed {
			fmt.Printf("[VERBOSE] Entity extractor %s failed for %s: %s\n", name, item.originID, msg)
		}
	}
	return nil
}
