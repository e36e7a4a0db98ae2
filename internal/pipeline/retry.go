package pipeline

import (
	"context"
	"errors"
	"time"

	"github.com/jonathan/docharvest/internal/mailbox"
)

// retryable reports whether an error is worth another attempt. Credential
// failures are terminal; only network-class failures retry.
func retryable(err error) bool {
	var netErr *mailbox.NetError
	return errors.As(err, &netErr)
}

// withRetry runs fn up to attempts times with doubling backoff, honoring
// context cancellation between attempts. Non-retryable errors return
// immediately.
func withRetry(ctx context.Context, attempts int, backoff time.Duration, fn func() error) error {
	if attempts < 1 {
		attempts = 1
	}

	var err error
	for i := 0; i < attempts; i++ {
		if i > 0 {
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(backoff):
			}
			backoff *= 2
		}

		if err = fn(); err == nil {
			return nil
		}
		if !retryable(err) {
			return err
		}
	}
	return err
}
