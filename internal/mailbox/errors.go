package mailbox

import "fmt"

// AuthError represents a terminal authentication failure. The source should
// be disabled (never deleted) until reconfigured; retrying cannot help.
type AuthError struct {
	Message             string
	AppPasswordRequired bool
	Cause               error
}

func (e *AuthError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("authentication failed: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("authentication failed: %s", e.Message)
}

func (e *AuthError) Unwrap() error {
	return e.Cause
}

// NetError represents a transient network or protocol failure, retryable
// with backoff.
type NetError struct {
	Message string
	Cause   error
}

func (e *NetError) Error() string {
	if e.Cause != nil {
		return fmt.Sprintf("network error: %s: %v", e.Message, e.Cause)
	}
	return fmt.Sprintf("network error: %s", e.Message)
}

func (e *NetError) Unwrap() error {
	return e.Cause
}
