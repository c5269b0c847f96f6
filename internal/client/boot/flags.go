// Package boot orchestrates application startup: it initializes the
// credential store, decides session validity, fetches the profile, and
// computes the initial route from the persisted boot flags.
package boot

import (
	"context"

	"github.com/lingopal/lingopal-client/internal/client/storage"
	"github.com/lingopal/lingopal-client/internal/logging"
)

// Flags are the independent boolean/string flags persisted in general
// storage. Each is owned by a different part of the app; the boot
// sequencer only reads them (except lastAppOpenDate, written once per
// boot).
type Flags struct {
	HasLoggedIn           bool
	HasDonePlacementTest  bool
	HasFinishedOnboarding bool
	HasFinishedSetup      bool
	LastAppOpenDate       string
	UserLanguage          string
}

// ReadFlags loads all boot flags. A failed read of any individual flag
// degrades to that flag's zero value; startup must never crash on flag
// state.
func ReadFlags(ctx context.Context, general storage.Backend, log logging.Logger) Flags {
	read := func(key string) string {
		v, err := general.Get(ctx, key)
		if err != nil {
			log.Warn(ctx, "failed to read boot flag", "flag", key, "err", err)
			return ""
		}
		return v
	}

	return Flags{
		HasLoggedIn:           read(storage.KeyHasLoggedIn) == "true",
		HasDonePlacementTest:  read(storage.KeyHasDonePlacementTest) == "true",
		HasFinishedOnboarding: read(storage.KeyHasFinishedOnboarding) == "true",
		HasFinishedSetup:      read(storage.KeyHasFinishedSetup) == "true",
		LastAppOpenDate:       read(storage.KeyLastAppOpenDate),
		UserLanguage:          read(storage.KeyUserLanguage),
	}
}
