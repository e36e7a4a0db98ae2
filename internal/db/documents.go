package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/jonathan/docharvest/internal/types"
)

const documentColumns = `id, content_hash, text_content, detected_type,
	classification_score, classifier_version, extracted_at, exported_at, export_batch_id`

// DocumentFilter narrows ListDocuments. Zero values mean "no constraint".
type DocumentFilter struct {
	DocType types.DocType
	Since   *time.Time
	Until   *time.Time
	Limit   int
	Offset  int
}

// buildDocumentQuery assembles the filtered SELECT and its arguments
func buildDocumentQuery(filter DocumentFilter) (string, []interface{}) {
	query := fmt.Sprintf(`SELECT %s FROM documents`, documentColumns)

	var conditions []string
	var args []interface{}
	argNum := 1

	if filter.DocType != "" {
		conditions = append(conditions, fmt.Sprintf("detected_type = $%d", argNum))
		args = append(args, filter.DocType)
		argNum++
	}
	if filter.Since != nil {
		conditions = append(conditions, fmt.Sprintf("extracted_at >= $%d", argNum))
		args = append(args, *filter.Since)
		argNum++
	}
	if filter.Until != nil {
		conditions = append(conditions, fmt.Sprintf("extracted_at <= $%d", argNum))
		args = append(args, *filter.Until)
		argNum++
	}

	query += whereClause(conditions)
	query += " ORDER BY extracted_at DESC"

	if filter.Limit > 0 {
		query += fmt.Sprintf(" LIMIT $%d", argNum)
		args = append(args, filter.Limit)
		argNum++
	}
	if filter.Offset > 0 {
		query += fmt.Sprintf(" OFFSET $%d", argNum)
		args = append(args, filter.Offset)
	}

	return query, args
}

// whereClause joins conditions into a WHERE fragment, or returns "" for none
func whereClause(conditions []string) string {
	if len(conditions) == 0 {
		return ""
	}
	return " WHERE " + strings.Join(conditions, " AND ")
}

// ListDocuments retrieves documents matching the filter, newest first
func (db *DB) ListDocuments(ctx context.Context, filter DocumentFilter) ([]types.Document, error) {
	query, args := buildDocumentQuery(filter)

	rows, err := db.pool.Query(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

// GetDocument retrieves a document by ID, returning nil when absent
func (db *DB) GetDocument(ctx context.Context, id uuid.UUID) (*types.Document, error) {
	row := db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM documents WHERE id = $1`, documentColumns), id)
	return scanDocumentRow(row)
}

// GetDocumentByHash retrieves the canonical document for a content hash,
// returning nil when the hash is unknown
func (db *DB) GetDocumentByHash(ctx context.Context, hash string) (*types.Document, error) {
	row := db.pool.QueryRow(ctx,
		fmt.Sprintf(`SELECT %s FROM documents
		 WHERE id = (SELECT canonical_document_id FROM content_hashes WHERE hash = $1)`,
			documentColumns), hash)
	return scanDocumentRow(row)
}

// AppendClassification records a reclassification: a new history entry plus an
// update of the document's mirror columns, in one transaction. History is
// append-only; earlier entries are never touched.
func (db *DB) AppendClassification(ctx context.Context, docID uuid.UUID, docType types.DocType, score float64, version string) error {
	tx, err := db.pool.Begin(ctx)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() { _ = tx.Rollback(ctx) }()

	_, err = tx.Exec(ctx,
		`INSERT INTO classifications (id, document_id, doc_type, score, classifier_version)
		 VALUES ($1, $2, $3, $4, $5)`,
		uuid.New(), docID, docType, score, version)
	if err != nil {
		return fmt.Errorf("failed to append classification: %w", err)
	}

	result, err := tx.Exec(ctx,
		`UPDATE documents
		 SET detected_type = $2, classification_score = $3, classifier_version = $4
		 WHERE id = $1`,
		docID, docType, score, version)
	if err != nil {
		return fmt.Errorf("failed to update document classification: %w", err)
	}
	if result.RowsAffected() == 0 {
		return fmt.Errorf("document not found: %s", docID)
	}

	if err := tx.Commit(ctx); err != nil {
		return fmt.Errorf("failed to commit reclassification: %w", err)
	}
	return nil
}

// ListClassifications retrieves a document's classification history, oldest first
func (db *DB) ListClassifications(ctx context.Context, docID uuid.UUID) ([]types.Classification, error) {
	rows, err := db.pool.Query(ctx,
		`SELECT id, document_id, doc_type, score, classifier_version, classified_at
		 FROM classifications WHERE document_id = $1 ORDER BY classified_at ASC`, docID)
	if err != nil {
		return nil, fmt.Errorf("failed to list classifications: %w", err)
	}
	defer rows.Close()

	var history []types.Classification
	for rows.Next() {
		var c types.Classification
		err := rows.Scan(&c.ID, &c.DocumentID, &c.DocType, &c.Score, &c.ClassifierVersion, &c.ClassifiedAt)
		if err != nil {
			return nil, fmt.Errorf("failed to scan classification: %w", err)
		}
		history = append(history, c)
	}
	return history, nil
}

// ListDocumentsForReclassify streams documents whose stored classifier version
// differs from current, in batches
func (db *DB) ListDocumentsForReclassify(ctx context.Context, currentVersion string, limit int) ([]types.Document, error) {
	rows, err := db.pool.Query(ctx,
		fmt.Sprintf(`SELECT %s FROM documents
		 WHERE classifier_version <> $1
		 ORDER BY extracted_at ASC LIMIT $2`, documentColumns),
		currentVersion, limit)
	if err != nil {
		return nil, fmt.Errorf("failed to list documents for reclassification: %w", err)
	}
	defer rows.Close()

	var docs []types.Document
	for rows.Next() {
		doc, err := scanDocument(rows)
		if err != nil {
			return nil, err
		}
		docs = append(docs, *doc)
	}
	return docs, nil
}

func scanDocument(rows pgx.Rows) (*types.Document, error) {
	var doc types.Document
	err := rows.Scan(&doc.ID, &doc.ContentHash, &doc.Text, &doc.DetectedType,
		&doc.ClassificationScore, &doc.ClassifierVersion, &doc.ExtractedAt,
		&doc.ExportedAt, &doc.ExportBatchID)
	if err != nil {
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &doc, nil
}

func scanDocumentRow(row pgx.Row) (*types.Document, error) {
	var doc types.Document
	err := row.Scan(&doc.ID, &doc.ContentHash, &doc.Text, &doc.DetectedType,
		&doc.ClassificationScore, &doc.ClassifierVersion, &doc.ExtractedAt,
		&doc.ExportedAt, &doc.ExportBatchID)
	if err != nil {
		if err == pgx.ErrNoRows {
			return nil, nil
		}
		return nil, fmt.Errorf("failed to scan document: %w", err)
	}
	return &doc, nil
}
