// Package common defines shared constants and sentinel errors used across the
// holder and requester sides of quickauth. Callers should use errors.Is to
// match these values.
package common

import "errors"

var (
	// Lookup errors. Absence is usually reported as a zero value; ErrNotFound
	// is only returned where the caller explicitly asked for a row.
	ErrNotFound = errors.New("not found")

	// Input errors (empty required field), detected before any store access.
	ErrValidation = errors.New("validation error")

	// Identity errors.
	ErrConflict    = errors.New("username already exists")
	ErrAuthFailure = errors.New("invalid username/credential")

	// Transport errors.
	ErrUnreachablePeer = errors.New("identity holder unreachable")

	// State machine misuse.
	ErrInvalidTransition = errors.New("invalid transition")
	ErrStaleContinuation = errors.New("stale continuation token")
	ErrAlreadyResolved   = errors.New("request already resolved")
)
