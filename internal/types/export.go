package types

import (
	"time"

	"github.com/google/uuid"
)

// ExportFilter selects catalog records for an export batch
type ExportFilter struct {
	DocType      DocType    `json:"doc_type,omitempty"`
	Since        *time.Time `json:"since,omitempty"`
	Until        *time.Time `json:"until,omitempty"`
	NotExported  bool       `json:"not_exported,omitempty"`
	Limit        int        `json:"limit,omitempty"`
}

// Provenance records where an exported document came from
type Provenance struct {
	SourceID uuid.UUID `json:"source_id"`
	OriginID string    `json:"origin_id"`
}

// ExportRecord pairs one document with its entities and source provenance
type ExportRecord struct {
	Document   Document     `json:"document"`
	Entities   []Entity     `json:"entities"`
	Provenance []Provenance `json:"provenance"`
}

// ExportBatch is the self-describing hand-off format consumed by downstream
// enrichment and admin tooling. Re-running the same filter with no new
// documents produces an empty batch.
type ExportBatch struct {
	BatchID    uuid.UUID      `json:"batch_id"`
	ExportedAt time.Time      `json:"exported_at"`
	Filter     ExportFilter   `json:"filter"`
	Records    []ExportRecord `json:"records"`
}
