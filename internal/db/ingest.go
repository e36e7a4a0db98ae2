package db

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/docharvest/internal/entities"
	"github.com/jonathan/docharvest/internal/types"
)

// UnitIngest carries everything needed to commit one processed raw unit
type UnitIngest struct {
	SourceID   uuid.UUID
	CursorID   uuid.UUID
	OriginID   string
	ContentRef string
	FetchedAt  time.Time
	Size       int64

	// Extraction outcome
	Text      string
	Hash      string
	Algorithm string

	// Classification outcome
	DocType           types.DocType
	Score             float64
	ClassifierVersion string

	// Entity extraction outcome
	Entities []entities.Value
}

// IngestOutcome reports how a unit was committed
type IngestOutcome struct {
	UnitID     uuid.UUID
	DocumentID uuid.UUID
	IsNew      bool // false when the content hash already had a canonical document
}

// IngestUnit commits one successfully extracted unit as a single transaction:
// the hash record, document, classification, entities, raw unit and cursor
// delta all land together or not at all, so a crash can never leave a unit
// "extracted" without its hash and document recorded.
//
// Two units racing with identical content resolve through the document's
// content_hash unique constraint: the loser links to the winner's canonical
// document instead of duplicating it.
func (db *DB) IngestUnit(ctx context.Context, in UnitIngest) (*IngestOutcome, error) {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to begin ingest transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	docID, isNew, err := claimDocument(ctx, tx, in)
	if err != nil {
		return nil, err
	}

	if isNew {
		if err := insertDocumentDetails(ctx, tx, docID, in); err != nil {
			return nil, err
		}
	}

	unitStatus := types.UnitExtracted
	if !isNew {
		unitStatus = types.UnitDuplicate
	}

	unitID := uuid.New()
	_, err = tx.Exec(ctx,
		`INSERT INTO raw_units (id, source_id, origin_id, fetched_at, size_bytes, content_ref, document_id, status)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source_id, origin_id) DO NOTHING`,
		unitID, in.SourceID, in.OriginID, in.FetchedAt, in.Size, in.ContentRef, docID, unitStatus,
	)
	if err != nil {
		return nil, fmt.Errorf("failed to insert raw unit: %w", err)
	}

	processedDelta, duplicateDelta := 1, 0
	if !isNew {
		duplicateDelta = 1
	}
	if err := bumpCursor(ctx, tx, in.CursorID, processedDelta, duplicateDelta, 0); err != nil {
		return nil, err
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("failed to commit ingest transaction: %w", err)
	}

	return &IngestOutcome{UnitID: unitID, DocumentID: docID, IsNew: isNew}, nil
}

// RecordFailedUnit commits a unit whose extraction failed, together with its
// cursor delta. Failed extraction is terminal for the unit: changed source
// bytes change the hash and arrive as a new unit.
func (db *DB) RecordFailedUnit(ctx context.Context, in UnitIngest, extractErr error) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO raw_units (id, source_id, origin_id, fetched_at, size_bytes, content_ref, status, error)
		 VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		 ON CONFLICT (source_id, origin_id) DO NOTHING`,
		uuid.New(), in.SourceID, in.OriginID, in.FetchedAt, in.Size, in.ContentRef,
		types.UnitFailedExtraction, extractErr.Error(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert failed unit: %w", err)
	}

	if err := bumpCursor(ctx, tx, in.CursorID, 1, 0, 1); err != nil {
		return err
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit failed unit: %w", err)
	}
	return nil
}

// claimDocument inserts the document row for this content, deduplicating on
// the content_hash unique constraint. The winner also records the hash in the
// ledger; the document must exist before the ledger row can reference it. On
// conflict the existing canonical document wins and isNew is false.
func claimDocument(ctx context.Context, tx pgx.Tx, in UnitIngest) (uuid.UUID, bool, error) {
	docID := uuid.New()

	tag, err := tx.Exec(ctx,
		`INSERT INTO documents (id, content_hash, text_content, detected_type, classification_score, classifier_version, extracted_at)
		 VALUES ($1, $2, $3, $4, $5, $6, $7)
		 ON CONFLICT (content_hash) DO NOTHING`,
		docID, in.Hash, in.Text, in.DocType, in.Score, in.ClassifierVersion, in.FetchedAt,
	)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to insert document: %w", err)
	}

	if tag.RowsAffected() == 1 {
		_, err = tx.Exec(ctx,
			`INSERT INTO content_hashes (hash, algorithm, canonical_document_id)
			 VALUES ($1, $2, $3)
			 ON CONFLICT (hash) DO NOTHING`,
			in.Hash, in.Algorithm, docID,
		)
		if err != nil {
			return uuid.Nil, false, fmt.Errorf("failed to record content hash: %w", err)
		}
		return docID, true, nil
	}

	var canonical uuid.UUID
	err = tx.QueryRow(ctx,
		`SELECT id FROM documents WHERE content_hash = $1`, in.Hash,
	).Scan(&canonical)
	if err != nil {
		return uuid.Nil, false, fmt.Errorf("failed to resolve canonical document: %w", err)
	}
	return canonical, false, nil
}

// insertDocumentDetails writes a new document's first classification entry
// and its entities inside the ingest transaction
func insertDocumentDetails(ctx context.Context, tx pgx.Tx, docID uuid.UUID, in UnitIngest) error {
	_, err := tx.Exec(ctx,
		`INSERT INTO classifications (id, document_id, doc_type, score, classifier_version)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), docID, in.DocType, in.Score, in.ClassifierVersion,
	)
	if err != nil {
		return fmt.Errorf("failed to insert classification: %w", err)
	}

	for _, e := range in.Entities {
		_, err = tx.Exec(ctx,
			`INSERT INTO entities (id, document_id, entity_type, value, extraction_method)
			 VALUES ($1, $2, $3, $4, $5)
			 ON CONFLICT (document_id, entity_type, value) DO NOTHING`,
			uuid.New(), docID, e.Type, e.Value, e.Method,
		)
		if err != nil {
			return fmt.Errorf("failed to insert entity: %w", err)
		}
	}

	return nil
}

// bumpCursor applies one unit's counters to its cursor within the same transaction
func bumpCursor(ctx context.Context, tx pgx.Tx, cursorID uuid.UUID, processed, duplicates, failed int) error {
	if cursorID == uuid.Nil {
		return nil
	}
	_, err := tx.Exec(ctx,
		`UPDATE sync_cursors
		 SET items_processed = items_processed + $2,
		     items_skipped_duplicate = items_skipped_duplicate + $3,
		     items_failed = items_failed + $4,
		     updated_at = NOW()
		 WHERE id = $1`,
		cursorID, processed, duplicates, failed,
	)
	if err != nil {
		return fmt.Errorf("failed to update cursor counters: %w", err)
	}
	return nil
}
