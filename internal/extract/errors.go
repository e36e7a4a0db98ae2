package extract

import "fmt"

// ExtractionError represents a per-unit extraction failure. It is terminal for
// the unit (unless the source bytes change, which changes the hash and creates
// a new unit) and must never abort the enclosing batch.
type ExtractionError struct {
	Format  Format
	Message string
	Cause   error
}

func (e *ExtractionError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("extraction failed (%s): %s: %v", e.Format, e.Message, e.Cause)
	}
	return fmt.Sprintf("extraction failed (%s): %s", e.Format, e.Message)
}

func (e *ExtractionError) Unwrap() error {
	return e.Cause
}

// UnsupportedFormatError indicates bytes whose detected format has no extractor
type UnsupportedFormatError struct {
	Detected string
}

func (e *UnsupportedFormatError) Error() string {
	return fmt.Sprintf("unsupported format: %s", e.Detected)
}
