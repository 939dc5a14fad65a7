package graphql

import (
	"errors"
	"fmt"
)

// TransportError is a network-level failure: no response was received.
// Transport errors are retryable.
type TransportError struct {
	Err error
}

func (e *TransportError) Error() string {
	return fmt.Sprintf("graphql: network error: %v", e.Err)
}

func (e *TransportError) Unwrap() error {
	return e.Err
}

// StatusError is a non-200 HTTP response. Not retryable within the same
// pass, but it does not block the next scheduled pass.
type StatusError struct {
	StatusCode int
	URL        string
}

func (e *StatusError) Error() string {
	return fmt.Sprintf("graphql: HTTP %d (URL: %s)", e.StatusCode, e.URL)
}

// DecodeError is a malformed or unexpected response shape from a 200
// response. Not retryable; a logic error logged with type context.
type DecodeError struct {
	Type string
	Err  error
}

func (e *DecodeError) Error() string {
	return fmt.Sprintf("graphql: decoding %s: %v", e.Type, e.Err)
}

func (e *DecodeError) Unwrap() error {
	return e.Err
}

// IsRetryable reports whether the error is worth retrying. Only
// network-level transport failures qualify: HTTP status and decode
// errors are deterministic within a pass.
func IsRetryable(err error) bool {
	var te *TransportError
	return errors.As(err, &te)
}
