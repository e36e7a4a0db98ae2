package observability

import (
	"bytes"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"

	"github.com/jonathan/docharvest/internal/pipeline"
	"github.com/jonathan/docharvest/internal/types"
)

func TestPrintSyncSummary(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	started := time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC)
	summary := &pipeline.Summary{
		StartedAt: started,
		EndedAt:   started.Add(3 * time.Second),
		Sources: []pipeline.SourceSummary{
			{
				Address:          "jane@example.com",
				Kind:             types.SourceMailbox,
				Processed:        12,
				NewDocuments:     8,
				Duplicates:       3,
				Failed:           1,
				NewByType:        map[string]int{"resume": 6, "job_description": 2},
				WindowsCompleted: 1,
			},
			{
				Address:       "/srv/archive",
				Kind:          types.SourceDirectory,
				WindowsFailed: 1,
				Errors:        []string{"walk failed: permission denied"},
			},
		},
	}

	p.PrintSyncSummary(summary)
	output := buf.String()

	assert.Contains(t, output, "SYNC SUMMARY")
	assert.Contains(t, output, "jane@example.com")
	assert.Contains(t, output, "processed: 12")
	assert.Contains(t, output, "resume=6")
	assert.Contains(t, output, "permission denied")
}

func TestPrintSyncSummary_Nil(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintSyncSummary(nil)

	assert.Empty(t, buf.String())
}

func TestPrintCursors_FlagsStalled(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	cursors := []types.SyncCursor{
		{
			WindowStart: time.Date(2011, 1, 1, 0, 0, 0, 0, time.UTC),
			WindowEnd:   time.Date(2011, 12, 31, 0, 0, 0, 0, time.UTC),
			Status:      types.CursorStalled,
			Attempts:    3,
			LastError:   "search timed out",
		},
		{
			WindowStart:    time.Date(2012, 1, 1, 0, 0, 0, 0, time.UTC),
			WindowEnd:      time.Date(2012, 12, 31, 0, 0, 0, 0, time.UTC),
			Status:         types.CursorCompleted,
			ItemsProcessed: 40,
		},
	}

	p.PrintCursors(cursors)
	output := buf.String()

	assert.Contains(t, output, "SYNC CURSORS")
	assert.Contains(t, output, "! 2011-01-01..2011-12-31")
	assert.Contains(t, output, "search timed out")
	assert.Contains(t, output, "completed")
}

func TestPrintCursors_Empty(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	p.PrintCursors(nil)

	assert.Empty(t, buf.String())
}

func TestPrintSources(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	lastSync := time.Date(2024, 5, 30, 8, 15, 0, 0, time.UTC)
	sources := []types.Source{
		{Address: "jane@example.com", Kind: types.SourceMailbox, Active: true, LastSyncAt: &lastSync},
		{Address: "/srv/archive", Kind: types.SourceDirectory, Active: false, AuthFailures: 3},
	}

	p.PrintSources(sources)
	output := buf.String()

	assert.Contains(t, output, "SOURCES")
	assert.Contains(t, output, "2024-05-30 08:15")
	assert.Contains(t, output, "disabled")
	assert.Contains(t, output, "never")
}

func TestPrintDocument(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	doc := &types.Document{
		ID:                  uuid.New(),
		ContentHash:         "deadbeefdeadbeefdeadbeefdeadbeef",
		Text:                "Jane Doe\n5 years experience",
		DetectedType:        types.DocTypeResume,
		ClassificationScore: 7,
		ClassifierVersion:   "heuristic-v1+terms-2024-06",
	}
	entities := []types.Entity{
		{Type: types.EntityEmail, Value: "jane@example.com"},
	}

	p.PrintDocument(doc, entities)
	output := buf.String()

	assert.Contains(t, output, "DOCUMENT")
	assert.Contains(t, output, "resume")
	assert.Contains(t, output, "Jane Doe")
	assert.Contains(t, output, "jane@example.com")
	// Only the first line of text appears
	assert.NotContains(t, output, "5 years experience")
}

func TestPrintExportBatch(t *testing.T) {
	var buf bytes.Buffer
	p := NewPrinter(&buf)

	batch := &types.ExportBatch{
		BatchID:    uuid.New(),
		ExportedAt: time.Date(2024, 6, 1, 12, 0, 0, 0, time.UTC),
		Filter:     types.ExportFilter{DocType: types.DocTypeResume, NotExported: true},
		Records:    make([]types.ExportRecord, 2),
	}

	p.PrintExportBatch(batch)
	output := buf.String()

	assert.Contains(t, output, "EXPORT BATCH")
	assert.Contains(t, output, "Records:  2")
	assert.Contains(t, output, "not yet exported")
}
