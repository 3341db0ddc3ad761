package ticketing

import (
	"errors"
	"fmt"
)

// RemoteError is a rejection the upstream API answered with. The message is the
// server-provided, human-readable text and must reach the user verbatim. Never
// retried automatically: re-submission risks duplicate transactions.
type RemoteError struct {
	Status  int
	Message string
}

// Error implements the error interface.
func (e *RemoteError) Error() string {
	return fmt.Sprintf("ticketing: upstream rejected (%d): %s", e.Status, e.Message)
}

// TransportError means no response arrived at all. The caller shows a generic
// connectivity message and defers to an explicit user retry.
type TransportError struct {
	Err error
}

// Error implements the error interface.
func (e *TransportError) Error() string {
	return fmt.Sprintf("ticketing: upstream unreachable: %v", e.Err)
}

// Unwrap allows errors.Is/As to inspect the underlying error.
func (e *TransportError) Unwrap() error {
	return e.Err
}

// AsRemote extracts a RemoteError if err carries one.
func AsRemote(err error) (*RemoteError, bool) {
	var target *RemoteError
	ok := errors.As(err, &target)
	return target, ok
}

// IsTransport reports whether err is a transport-level failure.
func IsTransport(err error) bool {
	var target *TransportError
	return errors.As(err, &target)
}
