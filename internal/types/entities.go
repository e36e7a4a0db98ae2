package types

import (
	"time"

	"github.com/google/uuid"
)

// EntityType names one structured entity family extracted from document text
type EntityType string

const (
	EntityEmail      EntityType = "email"
	EntityPhone      EntityType = "phone"
	EntityName       EntityType = "name_candidate"
	EntitySkill      EntityType = "skill_mention"
	EntityEducation  EntityType = "education"
	EntityExperience EntityType = "experience"
)

// Entity is one extracted value, upserted keyed by (document_id, type, value)
// so re-extraction is non-duplicating.
type Entity struct {
	ID               uuid.UUID  `json:"id"`
	DocumentID       uuid.UUID  `json:"document_id"`
	Type             EntityType `json:"type"`
	Value            string     `json:"value"`
	ExtractionMethod string     `json:"extraction_method"`
	CreatedAt        time.Time  `json:"created_at"`
}
