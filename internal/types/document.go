package types

import (
	"time"

	"github.com/google/uuid"
)

// DocType is the classification outcome for an extracted document
type DocType string

const (
	DocTypeResume         DocType = "resume"
	DocTypeJobDescription DocType = "job_description"
	// DocTypeUnknown is a deliberate below-threshold outcome, not an error
	DocTypeUnknown DocType = "unknown"
)

// UnitStatus is the terminal state of a fetched raw unit
type UnitStatus string

const (
	UnitExtracted        UnitStatus = "extracted"
	UnitDuplicate        UnitStatus = "duplicate"
	UnitFailedExtraction UnitStatus = "failed_extraction"
)

// RawUnit is an immutable fetched artifact (message or file) prior to extraction.
// OriginID is the provider-stable identifier (IMAP UID or file path) and is
// unique per source, which makes refetching idempotent.
type RawUnit struct {
	ID         uuid.UUID  `json:"id"`
	SourceID   uuid.UUID  `json:"source_id"`
	OriginID   string     `json:"origin_id"`
	FetchedAt  time.Time  `json:"fetched_at"`
	Size       int64      `json:"size"`
	ContentRef string     `json:"content_ref"` // subject line or file path, for provenance
	DocumentID *uuid.UUID `json:"document_id,omitempty"`
	Status     UnitStatus `json:"status"`
	Error      string     `json:"error,omitempty"`
}

// ContentHash maps a versioned content digest to its canonical document.
// Globally unique; many RawUnits may map to one hash.
type ContentHash struct {
	Hash                string    `json:"hash"`
	Algorithm           string    `json:"algorithm"`
	CanonicalDocumentID uuid.UUID `json:"canonical_document_id"`
}

// Document is the canonical, deduplicated text record derived from one or more
// RawUnits sharing a content hash. The classification columns mirror the latest
// entry in the append-only classification history.
type Document struct {
	ID                  uuid.UUID  `json:"id"`
	ContentHash         string     `json:"content_hash"`
	Text                string     `json:"text"`
	DetectedType        DocType    `json:"detected_type"`
	ClassificationScore float64    `json:"classification_score"`
	ClassifierVersion   string     `json:"classifier_version"`
	ExtractedAt         time.Time  `json:"extracted_at"`
	ExportedAt          *time.Time `json:"exported_at,omitempty"`
	ExportBatchID       *uuid.UUID `json:"export_batch_id,omitempty"`
}

// Classification is one append-only entry in a document's classification history.
// Reclassification appends a new record rather than mutating history.
type Classification struct {
	ID                uuid.UUID `json:"id"`
	DocumentID        uuid.UUID `json:"document_id"`
	DocType           DocType   `json:"doc_type"`
	Score             float64   `json:"score"`
	ClassifierVersion string    `json:"classifier_version"`
	ClassifiedAt      time.Time `json:"classified_at"`
}
