// Package common holds the sentinel errors, retry helper and logging helpers
// shared by the ledger, the engine and the API.
package common

import (
	"context"
	"errors"
)

// Storage errors. Backends wrap these so callers can branch with errors.Is.
var (
	ErrNotFound          = errors.New("not found")
	ErrDuplicateEntry    = errors.New("duplicate entry")
	ErrDatabaseCorrupted = errors.New("database corrupted")
	ErrStoreUnavailable  = errors.New("store unavailable")
)

// Configuration errors.
var (
	ErrMissingConfig = errors.New("missing configuration")
	ErrInvalidConfig = errors.New("invalid configuration")
)

// IsRetryable reports whether err is worth another attempt. A busy or locked
// store is; anything caused by the caller's context is not.
func IsRetryable(err error) bool {
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		return false
	}
	if errors.Is(err, ErrStoreUnavailable) {
		return true
	}

	var retryableErr *RetryableError
	if errors.As(err, &retryableErr) {
		return retryableErr.Retryable
	}

	return false
}
