package hh

import (
	"errors"
	"fmt"
)

var (
	// ErrRateLimited indicates the API kept returning 429 until the retry
	// budget was exhausted.
	ErrRateLimited = errors.New("hh: rate limit exceeded")

	// ErrNotFound indicates a vacancy vanished upstream (404 on detail fetch).
	ErrNotFound = errors.New("hh: not found")
)

// UpstreamError is returned for any non-200, non-429 response. These are hard
// failures and are never retried.
type UpstreamError struct {
	StatusCode int
	Body       string
}

func (e *UpstreamError) Error() string {
	return fmt.Sprintf("hh: API returned %d: %s", e.StatusCode, e.Body)
}

// TransportError is returned when a request kept failing at the network level
// (timeout, connection error) until the retry budget was exhausted.
type TransportError struct {
	Attempts int
	Err      error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("hh: request failed after %d attempts: %v", e.Attempts, e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}
