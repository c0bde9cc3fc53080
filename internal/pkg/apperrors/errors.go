package apperrors

import "errors"

// Standard application errors
var (
	// ErrConfig is returned when a descriptor, token list or setting is malformed or unreadable.
	ErrConfig = errors.New("configuration error")

	// ErrTransport is returned when an RPC or block-explorer call fails.
	ErrTransport = errors.New("transport error")

	// ErrNotFound is returned when a requested resource is not found.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidInput is returned when the input provided by the client is invalid.
	ErrInvalidInput = errors.New("invalid input provided")

	// ErrTimeout is returned when an operation times out.
	ErrTimeout = errors.New("operation timed out")

	// ErrInternal is returned for unexpected internal system errors.
	ErrInternal = errors.New("internal system error")
)
