package extract

import (
	"bytes"
	"encoding/csv"
	"io"
	"strings"
)

// extractTabular flattens spreadsheet rows (CSV or TSV) into one line per
// row, cells joined by single spaces. Ragged rows are tolerated; the point is
// to surface cell text to the classifier, not to preserve table structure.
func extractTabular(data []byte) (string, error) {
	delimiter := ','
	if bytes.ContainsRune(bytes.SplitN(data, []byte("\n"), 2)[0], '\t') {
		delimiter = '\t'
	}

	reader := csv.NewReader(bytes.NewReader(data))
	reader.Comma = delimiter
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	var sb strings.Builder
	for {
		record, err := reader.Read()
		if err == io.EOF {
			break
		}
		if err != nil {
			return "", &ExtractionError{Format: FormatTabular, Message: "failed to parse rows", Cause: err}
		}

		line := strings.TrimSpace(strings.Join(record, " "))
		if line == "" {
			continue
		}
		sb.WriteString(line)
		sb.WriteString("\n")
	}

	return sb.String(), nil
}
