package extract

import "fmt"

// Result holds the outcome of extracting one raw unit
type Result struct {
	Format Format
	Text   string // normalized plain text
	Hash   string // digest over the normalized text
}

// Extract converts raw bytes into normalized plain text, dispatching on the
// detected format. The hint (file extension or MIME part type) is advisory
// only. Failures return a typed *ExtractionError so the pipeline can record
// the unit as failed without aborting the batch.
func Extract(data []byte, hint string) (*Result, error) {
	if len(data) == 0 {
		return nil, &ExtractionError{Format: FormatUnknown, Message: "empty content"}
	}

	format := Detect(data, hint)

	var text string
	var err error
	switch format {
	case FormatPDF:
		text, err = extractPDF(data)
	case FormatDOCX:
		text, err = extractDOCX(data)
	case FormatHTML:
		text, err = extractHTML(data)
	case FormatTabular:
		text, err = extractTabular(data)
	case FormatPlain:
		text = string(data)
	default:
		return nil, &ExtractionError{
			Format:  format,
			Message: "no extractor for detected format",
			Cause:   &UnsupportedFormatError{Detected: string(format)},
		}
	}
	if err != nil {
		return nil, err
	}

	normalized := Normalize(text)
	if normalized == "" {
		return nil, &ExtractionError{Format: format, Message: "extraction produced no text"}
	}

	return &Result{
		Format: format,
		Text:   normalized,
		Hash:   Hash(normalized),
	}, nil
}

// HashOnly normalizes and hashes already-plain text, for callers that bypass
// format dispatch (e.g. message bodies decoded by the MIME reader).
func HashOnly(text string) (*Result, error) {
	normalized := Normalize(text)
	if normalized == "" {
		return nil, &ExtractionError{Format: FormatPlain, Message: "empty after normalization"}
	}
	return &Result{Format: FormatPlain, Text: normalized, Hash: Hash(normalized)}, nil
}

// mustNotPanic converts an extractor panic into a typed error. The PDF reader
// in particular panics on some malformed cross-reference tables.
func mustNotPanic(format Format, fn func() (string, error)) (text string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = &ExtractionError{
				Format:  format,
				Message: fmt.Sprintf("extractor panic: %v", r),
			}
		}
	}()
	return fn()
}
