package models

import "errors"

// Error taxonomy for the certificate core. Key and signing errors are
// operator-facing and must never be forwarded verbatim to an untrusted
// caller; the public surface only ever sees the outcome states.
var (
	ErrValidation = errors.New("validation failed")
	ErrKey        = errors.New("signing key unavailable")
	ErrSigning    = errors.New("signing operation failed")
	ErrStore      = errors.New("store unavailable")
	ErrNotFound   = errors.New("certificate not found")
	ErrIntegrity  = errors.New("stored certificate failed integrity check")
)
