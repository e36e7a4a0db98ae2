package db

import (
	"strings"
	"testing"
	"time"

	"github.com/jonathan/docharvest/internal/types"
)

func TestWhereClause(t *testing.T) {
	tests := []struct {
		name       string
		conditions []string
		expected   string
	}{
		{"empty", nil, ""},
		{"single", []string{"a = $1"}, " WHERE a = $1"},
		{"multiple", []string{"a = $1", "b = $2"}, " WHERE a = $1 AND b = $2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result := whereClause(tt.conditions)
			if result != tt.expected {
				t.Errorf("whereClause() = %q, want %q", result, tt.expected)
			}
		})
	}
}

func TestBuildDocumentQuery_NoFilter(t *testing.T) {
	query, args := buildDocumentQuery(DocumentFilter{})

	if strings.Contains(query, "WHERE") {
		t.Errorf("Expected no WHERE clause, got %q", query)
	}
	if !strings.Contains(query, "ORDER BY extracted_at DESC") {
		t.Errorf("Expected ordering, got %q", query)
	}
	if len(args) != 0 {
		t.Errorf("Expected no args, got %d", len(args))
	}
}

func TestBuildDocumentQuery_AllFilters(t *testing.T) {
	since := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	until := time.Date(2023, 12, 31, 0, 0, 0, 0, time.UTC)

	query, args := buildDocumentQuery(DocumentFilter{
		DocType: types.DocTypeResume,
		Since:   &since,
		Until:   &until,
		Limit:   50,
		Offset:  100,
	})

	for _, fragment := range []string{
		"detected_type = $1",
		"extracted_at >= $2",
		"extracted_at <= $3",
		"LIMIT $4",
		"OFFSET $5",
	} {
		if !strings.Contains(query, fragment) {
			t.Errorf("Expected query to contain %q, got %q", fragment, query)
		}
	}
	if len(args) != 5 {
		t.Errorf("Expected 5 args, got %d", len(args))
	}
	if args[0] != types.DocTypeResume {
		t.Errorf("Expected first arg to be doc type, got %v", args[0])
	}
}

func TestBuildDocumentQuery_PlaceholderNumbering(t *testing.T) {
	// Limit without Since/Until must still number placeholders contiguously
	query, args := buildDocumentQuery(DocumentFilter{
		DocType: types.DocTypeJobDescription,
		Limit:   10,
	})

	if !strings.Contains(query, "detected_type = $1") {
		t.Errorf("Expected $1 placeholder, got %q", query)
	}
	if !strings.Contains(query, "LIMIT $2") {
		t.Errorf("Expected LIMIT $2, got %q", query)
	}
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
}

func TestBuildExportQuery_NotExported(t *testing.T) {
	query, args := buildExportQuery(types.ExportFilter{
		DocType:     types.DocTypeResume,
		NotExported: true,
		Limit:       200,
	})

	if !strings.Contains(query, "exported_at IS NULL") {
		t.Errorf("Expected unexported predicate, got %q", query)
	}
	if !strings.Contains(query, "FOR UPDATE") {
		t.Errorf("Expected row locking, got %q", query)
	}
	if !strings.Contains(query, "ORDER BY extracted_at ASC") {
		t.Errorf("Expected oldest-first ordering, got %q", query)
	}
	// NotExported takes no placeholder
	if len(args) != 2 {
		t.Errorf("Expected 2 args, got %d", len(args))
	}
}

func TestBuildExportQuery_Everything(t *testing.T) {
	query, args := buildExportQuery(types.ExportFilter{})

	if strings.Contains(query, "WHERE") {
		t.Errorf("Expected no WHERE clause, got %q", query)
	}
	if len(args) != 0 {
		t.Errorf("Expected no args, got %d", len(args))
	}
}
