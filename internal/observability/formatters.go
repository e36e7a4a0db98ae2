// Package observability provides formatted output utilities for verbose CLI mode.
package observability

import (
	"fmt"
	"io"
	"strings"

	"github.com/jonathan/docharvest/internal/pipeline"
	"github.com/jonathan/docharvest/internal/types"
)

const (
	// boxWidth is the default width for formatted output boxes
	boxWidth = 60
	// maxItemsToShow is the default number of items to display in lists
	maxItemsToShow = 5
)

// Printer handles formatted output for verbose mode
type Printer struct {
	out io.Writer
}

// NewPrinter creates a new Printer that writes to the given writer
func NewPrinter(out io.Writer) *Printer {
	return &Printer{out: out}
}

// printBox prints a formatted box with a title and content
//
//nolint:errcheck // writing to stdout; errors are not recoverable
func (p *Printer) printBox(title string, content string) {
	border := strings.Repeat("─", boxWidth-2)
	fmt.Fprintf(p.out, "┌%s┐\n", border)
	fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, title)
	fmt.Fprintf(p.out, "├%s┤\n", border)

	lines := strings.Split(content, "\n")
	for _, line := range lines {
		// Truncate long lines
		if len(line) > boxWidth-4 {
			line = line[:boxWidth-7] + "..."
		}
		fmt.Fprintf(p.out, "│ %-*s │\n", boxWidth-4, line)
	}

	fmt.Fprintf(p.out, "└%s┘\n", border)
}

// PrintSyncSummary outputs the per-source outcome of a sync invocation.
func (p *Printer) PrintSyncSummary(summary *pipeline.Summary) {
	if summary == nil {
		return
	}

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf("Duration: %s\n", summary.EndedAt.Sub(summary.StartedAt).Round(1e6)))
	sb.WriteString("\n")

	for _, src := range summary.Sources {
		sb.WriteString(fmt.Sprintf("%s (%s)\n", src.Address, src.Kind))
		sb.WriteString(fmt.Sprintf("  processed: %d  new: %d  duplicate: %d  failed: %d\n",
			src.Processed, src.NewDocuments, src.Duplicates, src.Failed))
		if len(src.NewByType) > 0 {
			var parts []string
			for docType, n := range src.NewByType {
				parts = append(parts, fmt.Sprintf("%s=%d", docType, n))
			}
			sb.WriteString(fmt.Sprintf("  new by type: %s\n", strings.Join(parts, " ")))
		}
		sb.WriteString(fmt.Sprintf("  windows: %d completed, %d skipped, %d failed\n",
			src.WindowsCompleted, src.WindowsSkipped, src.WindowsFailed))
		if src.WindowsTruncated > 0 {
			sb.WriteString(fmt.Sprintf("  %d window(s) hit the batch cap; re-run to continue\n", src.WindowsTruncated))
		}
		for _, errMsg := range src.Errors {
			sb.WriteString(fmt.Sprintf("  error: %s\n", errMsg))
		}
	}

	p.printBox("SYNC SUMMARY", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintCursors outputs sync cursor state, flagging stalled windows.
func (p *Printer) PrintCursors(cursors []types.SyncCursor) {
	if len(cursors) == 0 {
		return
	}

	var sb strings.Builder
	for _, cur := range cursors {
		marker := " "
		if cur.Status == types.CursorStalled {
			marker = "!"
		}
		sb.WriteString(fmt.Sprintf("%s %s..%s %-11s p=%d d=%d f=%d a=%d\n",
			marker,
			cur.WindowStart.Format("2006-01-02"), cur.WindowEnd.Format("2006-01-02"),
			cur.Status, cur.ItemsProcessed, cur.ItemsSkippedDuplicate, cur.ItemsFailed, cur.Attempts))
		if cur.LastError != "" {
			sb.WriteString(fmt.Sprintf("    last error: %s\n", cur.LastError))
		}
	}

	p.printBox("SYNC CURSORS", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintSources outputs the registered source inventory.
func (p *Printer) PrintSources(sources []types.Source) {
	if len(sources) == 0 {
		return
	}

	var sb strings.Builder
	for _, src := range sources {
		state := "active"
		if !src.Active {
			state = "disabled"
		}
		lastSync := "never"
		if src.LastSyncAt != nil {
			lastSync = src.LastSyncAt.Format("2006-01-02 15:04")
		}
		sb.WriteString(fmt.Sprintf("%s (%s) %s\n", src.Address, src.Kind, state))
		sb.WriteString(fmt.Sprintf("  last sync: %s  auth failures: %d\n", lastSync, src.AuthFailures))
	}

	p.printBox("SOURCES", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintDocument outputs one document's classification and a text preview.
func (p *Printer) PrintDocument(doc *types.Document, entities []types.Entity) {
	if doc == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Type:    %s (score %.0f)\n", doc.DetectedType, doc.ClassificationScore))
	sb.WriteString(fmt.Sprintf("Version: %s\n", doc.ClassifierVersion))
	sb.WriteString(fmt.Sprintf("Hash:    %.16s...\n", doc.ContentHash))

	preview := doc.Text
	if idx := strings.IndexByte(preview, '\n'); idx > 0 {
		preview = preview[:idx]
	}
	sb.WriteString(fmt.Sprintf("Text:    %s\n", preview))

	if len(entities) > 0 {
		sb.WriteString("\nEntities:\n")
		count := min(len(entities), maxItemsToShow)
		for i := 0; i < count; i++ {
			sb.WriteString(fmt.Sprintf("  • %s: %s\n", entities[i].Type, entities[i].Value))
		}
		if len(entities) > maxItemsToShow {
			sb.WriteString(fmt.Sprintf("  ... and %d more\n", len(entities)-maxItemsToShow))
		}
	}

	p.printBox("DOCUMENT", strings.TrimSuffix(sb.String(), "\n"))
}

// PrintExportBatch outputs a short receipt for one export batch.
func (p *Printer) PrintExportBatch(batch *types.ExportBatch) {
	if batch == nil {
		return
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("Batch:    %s\n", batch.BatchID))
	sb.WriteString(fmt.Sprintf("Exported: %s\n", batch.ExportedAt.Format("2006-01-02 15:04:05")))
	sb.WriteString(fmt.Sprintf("Records:  %d\n", len(batch.Records)))
	if batch.Filter.DocType != "" {
		sb.WriteString(fmt.Sprintf("Filter:   %s", batch.Filter.DocType))
		if batch.Filter.NotExported {
			sb.WriteString(", not yet exported")
		}
		sb.WriteString("\n")
	}

	p.printBox("EXPORT BATCH", strings.TrimSuffix(sb.String(), "\n"))
}
