package extract

import (
	"bytes"

	"github.com/ledongthuc/pdf"
)

// extractPDF pulls plain text from a PDF body
func extractPDF(data []byte) (string, error) {
	return mustNotPanic(FormatPDF, func() (string, error) {
		reader, err := pdf.NewReader(bytes.NewReader(data), int64(len(data)))
		if err != nil {
			return "", &ExtractionError{Format: FormatPDF, Message: "failed to open PDF", Cause: err}
		}

		plain, err := reader.GetPlainText()
		if err != nil {
			return "", &ExtractionError{Format: FormatPDF, Message: "failed to read PDF text", Cause: err}
		}

		var buf bytes.Buffer
		if _, err := buf.ReadFrom(plain); err != nil {
			return "", &ExtractionError{Format: FormatPDF, Message: "failed to buffer PDF text", Cause: err}
		}
		return buf.String(), nil
	})
}
