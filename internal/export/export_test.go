package export

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/docharvest/internal/schemas"
	"github.com/jonathan/docharvest/internal/types"
)

func sampleBatch() *types.ExportBatch {
	docID := uuid.New()
	srcID := uuid.New()
	return &types.ExportBatch{
		BatchID:    uuid.New(),
		ExportedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Filter:     types.ExportFilter{DocType: types.DocTypeResume, NotExported: true},
		Records: []types.ExportRecord{
			{
				Document: types.Document{
					ID:                  docID,
					ContentHash:         strings.Repeat("ab", 32),
					Text:                "Jane Doe\n5 years experience\nBSc Computer Science",
					DetectedType:        types.DocTypeResume,
					ClassificationScore: 7,
					ClassifierVersion:   "heuristic-v1+terms-2024-06",
					ExtractedAt:         time.Date(2024, 5, 30, 9, 0, 0, 0, time.UTC),
				},
				Entities: []types.Entity{
					{
						ID:               uuid.New(),
						DocumentID:       docID,
						Type:             types.EntityEmail,
						Value:            "jane@example.com",
						ExtractionMethod: "regex",
						CreatedAt:        time.Date(2024, 5, 30, 9, 0, 1, 0, time.UTC),
					},
				},
				Provenance: []types.Provenance{
					{SourceID: srcID, OriginID: "uid:42"},
				},
			},
		},
	}
}

func TestSerialize_ValidBatch(t *testing.T) {
	data, err := Serialize(sampleBatch())
	require.NoError(t, err)

	var roundTrip types.ExportBatch
	require.NoError(t, json.Unmarshal(data, &roundTrip))
	assert.Len(t, roundTrip.Records, 1)
	assert.Equal(t, "uid:42", roundTrip.Records[0].Provenance[0].OriginID)
}

func TestSerialize_EmptyBatchIsValid(t *testing.T) {
	batch := sampleBatch()
	batch.Records = []types.ExportRecord{}

	data, err := Serialize(batch)
	require.NoError(t, err)
	assert.Contains(t, string(data), `"records": []`)
}

func TestSerialize_RejectsEmptyDocumentText(t *testing.T) {
	batch := sampleBatch()
	batch.Records[0].Document.Text = ""

	_, err := Serialize(batch)
	require.Error(t, err)

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestSerialize_RejectsMalformedHash(t *testing.T) {
	batch := sampleBatch()
	batch.Records[0].Document.ContentHash = "not-a-hash"

	_, err := Serialize(batch)

	var validationErr *schemas.ValidationError
	require.ErrorAs(t, err, &validationErr)
}

func TestWrite_File(t *testing.T) {
	path := filepath.Join(t.TempDir(), "batch.json")

	require.NoError(t, write([]byte(`{"ok": true}`), path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Equal(t, `{"ok": true}`, string(data))
}

func TestBatchSchema_IsValidJSON(t *testing.T) {
	var v interface{}
	assert.NoError(t, json.Unmarshal(BatchSchema(), &v))
}
