// Package apperrors defines the sentinel errors shared between the service
// and handler layers. Repositories report absence with nil values, services
// turn absence and policy violations into one of these, and handlers map
// them onto HTTP statuses.
package apperrors

import "errors"

var (
	// ErrConflict signals a duplicate unique field (409).
	ErrConflict = errors.New("conflict")
	// ErrNotFound signals a missing entity or an empty required result (404).
	ErrNotFound = errors.New("not found")
	// ErrUnauthorized signals missing, invalid or expired credentials, or a
	// role mismatch (401).
	ErrUnauthorized = errors.New("unauthorized")
	// ErrBadRequest signals a missing required parameter (400).
	ErrBadRequest = errors.New("bad request")
	// ErrInvalidToken signals a token that failed signature, expiry or
	// purpose checks (401).
	ErrInvalidToken = errors.New("invalid token")
	// ErrUploadFailed signals a third-party upload failure (500).
	ErrUploadFailed = errors.New("upload failed")
)
