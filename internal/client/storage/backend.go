// Package storage provides the pluggable key/value persistence used by the
// credential store and the boot sequencer.
//
// Two backends exist: a secure one that seals values at rest with a
// device-local secret, and a general one backed by the client's sqlite
// settings database. A factory picks the backend for each slot at process
// start; nothing above this package may assume which implementation is
// active.
package storage

import "context"

// Well-known slot keys. The keys, not the values, are the contract with
// the rest of the application.
const (
	KeyAccessToken  = "accessToken"
	KeyRefreshToken = "refreshToken"

	KeyHasLoggedIn           = "hasLoggedIn"
	KeyHasDonePlacementTest  = "hasDonePlacementTest"
	KeyHasFinishedOnboarding = "hasFinishedOnboarding"
	KeyHasFinishedSetup      = "hasFinishedSetup"
	KeyLastAppOpenDate       = "lastAppOpenDate"
	KeyUserLanguage          = "userLanguage"
	KeyDeviceID              = "deviceId"
)

// Service identifiers for the secure backend. Access and refresh tokens are
// deliberately kept under distinct services so one slot cannot be read
// through the other's namespace.
const (
	ServiceAccess  = "lingopal.access"
	ServiceRefresh = "lingopal.refresh"
)

// Backend is a minimal asynchronous key/value store.
//
// Get returns ("", nil) when the key is absent; values are never stored as
// empty strings. Any read/write error propagates to the caller.
type Backend interface {
	Set(ctx context.Context, key, value string) error
	Get(ctx context.Context, key string) (string, error)
	Remove(ctx context.Context, key string) error
}
