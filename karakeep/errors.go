package karakeep

import (
	"errors"
	"fmt"
)

// Sentinel errors for specific API conditions, compared with errors.Is.
var (
	// ErrUnauthorized is returned when the server rejects the credentials
	// (HTTP 401 or 403).
	ErrUnauthorized = errors.New("unauthorized: invalid or missing API key")

	// ErrNotFound is returned when the addressed entity does not exist
	// (HTTP 404). Deleting an already-deleted bookmark surfaces this;
	// callers may treat it as already-deleted.
	ErrNotFound = errors.New("not found")

	// ErrCursorStalled is returned by the pagination walker when the server
	// hands back the same non-empty cursor twice in a row, which would loop
	// forever if followed.
	ErrCursorStalled = errors.New("pagination cursor did not advance")
)

// APIError represents a non-2xx response from the API that does not map to a
// sentinel error. The raw body is kept as-is: Karakeep error payloads vary in
// shape, and the body is only ever used for diagnosis.
type APIError struct {
	StatusCode int
	Body       string
}

func (e *APIError) Error() string {
	return fmt.Sprintf("karakeep API error (HTTP %d): %s", e.StatusCode, e.Body)
}

// IsClientError returns true for 4xx HTTP status codes.
func (e *APIError) IsClientError() bool {
	return e.StatusCode >= 400 && e.StatusCode < 500
}

// NetworkError wraps a connection-level failure: the request never produced
// an HTTP response (dial failure, timeout, broken connection).
type NetworkError struct {
	Method string
	URL    string
	Err    error
}

func (e *NetworkError) Error() string {
	return fmt.Sprintf("request %s %s failed: %v", e.Method, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error { return e.Err }

// ValidationError reports a response body that did not match the expected
// shape while validation was enabled. Raw holds the body verbatim so callers
// can inspect what the server actually sent.
type ValidationError struct {
	Raw []byte
	Err error
}

func (e *ValidationError) Error() string {
	return fmt.Sprintf("invalid response: %v", e.Err)
}

func (e *ValidationError) Unwrap() error { return e.Err }
