package errors

import "errors"

// Domain errors
var (
	// Target errors
	ErrEmptyTarget       = errors.New("target cannot be empty")
	ErrInvalidPort       = errors.New("invalid port")
	ErrUnsupportedScheme = errors.New("unsupported URL scheme")
	ErrInvalidHost       = errors.New("invalid host")
	ErrNoTargets         = errors.New("no targets specified (use --target, --targets or --input)")

	// Probe errors
	ErrHandshakeIncomplete = errors.New("TLS handshake did not complete")
	ErrInvalidRedirect     = errors.New("invalid redirect location")

	// Output errors
	ErrUnsupportedFormat = errors.New("unsupported output format")
)
