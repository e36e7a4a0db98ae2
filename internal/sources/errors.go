package sources

import "fmt"

// ConfigurationError represents an invalid source declaration. It is terminal
// and raised before any I/O begins.
type ConfigurationError struct {
	Source  string
	Message string
	Cause   error
}

func (e *ConfigurationError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("configuration error (%s): %s: %v", e.Source, e.Message, e.Cause)
	}
	return fmt.Sprintf("configuration error (%s): %s", e.Source, e.Message)
}

func (e *ConfigurationError) Unwrap() error {
	return e.Cause
}
