// Package common defines shared constants and sentinel errors used across
// the LingoPal client layers. Callers should use errors.Is to match these
// values.
package common

import "errors"

var (
	// Storage-level errors.
	ErrorNotFound = errors.New("not found")

	// Service-level errors (generic/internal flow control).
	ErrorInternal     = errors.New("internal error")
	ErrorUnauthorized = errors.New("unauthorized")
	ErrorUnavailable  = errors.New("server unavailable")

	// Auth errors (invalid or malformed token).
	ErrInvalidToken = errors.New("invalid token")

	// Token lifecycle errors.
	ErrTokenExpired           = errors.New("token expired")
	ErrRefreshRejected        = errors.New("refresh token rejected")
	ErrInvalidRefreshResponse = errors.New("invalid refresh response")
)
