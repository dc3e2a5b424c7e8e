// Package common defines shared constants and sentinel errors used across
// the docvault server layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Repository-level errors.
	ErrorNotFound = errors.New("not found")

	// ErrorStorage marks a failure of the backing store. Retryable.
	ErrorStorage = errors.New("storage error")

	// ErrVersionConflict is returned by compare-and-swap writes whose
	// expected version no longer matches the stored one.
	ErrVersionConflict = errors.New("version conflict")

	// Service-level errors. These are the only ones that cross the API
	// boundary as client errors.
	ErrorValidation       = errors.New("validation error")
	ErrorNotFoundOrDenied = errors.New("not found or access denied")
	ErrorConflict         = errors.New("conflict")

	// ErrorDecryption covers a wrong or corrupted key and tampered
	// ciphertext. Not retryable with the same inputs.
	ErrorDecryption = errors.New("decryption failure")

	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")

	// Auth errors (invalid or malformed token, expired token).
	ErrInvalidToken = errors.New("invalid token")
	ErrTokenExpired = errors.New("token expired")
)
