// Package extract converts raw fetched bytes into normalized plain text.
package extract

import (
	"strings"

	"github.com/gabriel-vasile/mimetype"
)

// Format is the detected content format of a raw unit
type Format string

const (
	FormatPDF     Format = "pdf"
	FormatDOCX    Format = "docx"
	FormatHTML    Format = "html"
	FormatPlain   Format = "plain"
	FormatTabular Format = "tabular" // CSV/TSV spreadsheet rows
	FormatUnknown Format = "unknown"
)

// Detect identifies the content format from magic bytes. The extension hint is
// advisory only: it breaks ties for text-like content (CSV vs plain) but never
// overrides a binary signature.
func Detect(data []byte, hint string) Format {
	mtype := mimetype.Detect(data)

	switch {
	case mtype.Is("application/pdf"):
		return FormatPDF
	case mtype.Is("application/vnd.openxmlformats-officedocument.wordprocessingml.document"):
		return FormatDOCX
	case mtype.Is("text/html"):
		return FormatHTML
	case mtype.Is("text/csv"), mtype.Is("text/tab-separated-values"):
		return FormatTabular
	}

	if strings.HasPrefix(mtype.String(), "text/") {
		switch strings.ToLower(strings.TrimPrefix(hint, ".")) {
		case "csv", "tsv":
			return FormatTabular
		case "html", "htm":
			return FormatHTML
		}
		return FormatPlain
	}

	// A bare .docx rename of a plain zip still detects as zip; treat it as
	// unsupported rather than trusting the extension.
	return FormatUnknown
}
