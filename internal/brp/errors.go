package brp

import (
	"errors"
)

// Sentinel errors for BRP client operations.
// These are used for error identification and testing.
// For creating domain errors with context, wrap these with DomainError from internal/errors.
var (
	// ErrTransport indicates the HTTP round trip to the BRP endpoint failed
	// (connection refused, timeout, or a non-2xx status).
	ErrTransport = errors.New("brp transport error")

	// ErrInvalidResponse indicates the BRP endpoint returned a body that is
	// not a well-formed JSON-RPC envelope.
	ErrInvalidResponse = errors.New("invalid brp response")

	// ErrInvalidPort indicates a port value outside the 16-bit unsigned range.
	ErrInvalidPort = errors.New("invalid brp port")
)
