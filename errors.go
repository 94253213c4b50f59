package jsonrpc

import (
	"errors"
	"fmt"
)

// ErrEmptyBatch is returned by ExecuteBatch when no calls are given.
var ErrEmptyBatch = errors.New("jsonrpc: empty batch")

// TransportError reports that the HTTP collaborator failed to connect, send
// or receive. The round trip is not retried.
type TransportError struct {
	URL string
	Err error
}

// Error returns the error message in string format.
func (e *TransportError) Error() string {
	return fmt.Sprintf("jsonrpc: transport %s: %v", e.URL, e.Err)
}

// Unwrap returns the collaborator's error.
func (e *TransportError) Unwrap() error { return e.Err }

// DecodeError reports a reply body that could not be parsed into a single or
// batch response shape. The raw reply is not retried or repaired.
type DecodeError struct {
	Err error
}

// Error returns the error message in string format.
func (e *DecodeError) Error() string {
	return fmt.Sprintf("jsonrpc: decode reply: %v", e.Err)
}

// Unwrap returns the underlying parse error.
func (e *DecodeError) Unwrap() error { return e.Err }
