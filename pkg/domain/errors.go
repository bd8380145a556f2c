package domain

import "errors"

var (
	// ErrConflict is returned when a resource that must be unique already
	// exists (duplicate account type per owner, duplicate email or username).
	ErrConflict = errors.New("resource already exists")

	// ErrNotFound is returned when a resource does not exist or does not
	// belong to the caller. Ownership failures deliberately map here rather
	// than to a forbidden error so foreign account ids are indistinguishable
	// from nonexistent ones.
	ErrNotFound = errors.New("resource not found")

	// ErrInvalidState is returned when a resource's status does not permit
	// the operation, such as funding an inactive account.
	ErrInvalidState = errors.New("resource state does not permit this operation")

	// ErrValidation is returned when input is rejected before any business
	// operation runs: malformed amounts, unknown account types, bad funding
	// sources.
	ErrValidation = errors.New("validation failed")

	// ErrResourceExhausted is returned when the account number retry budget
	// is spent without finding a free number. Transient infrastructure
	// signal; the caller can only retry.
	ErrResourceExhausted = errors.New("failed to generate a unique identifier")

	// ErrInternal is returned when a write succeeded but the confirming read
	// failed, or on any other unexpected store error. The service never
	// substitutes synthesized data for a failed re-read.
	ErrInternal = errors.New("internal error")

	// ErrUnauthenticated is returned when a bearer token is missing, invalid,
	// or its session has expired or is inside the expiry buffer.
	ErrUnauthenticated = errors.New("unauthenticated")
)
