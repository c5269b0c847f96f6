package boot

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/lingopal/lingopal-client/internal/client/api"
	"github.com/lingopal/lingopal-client/internal/client/credentials"
	"github.com/lingopal/lingopal-client/internal/client/storage"
	"github.com/lingopal/lingopal-client/internal/client/token"
	"github.com/lingopal/lingopal-client/internal/logging"
)

// dateLayout is the ISO date format used for lastAppOpenDate.
const dateLayout = "2006-01-02"

// ProfileFetcher retrieves the canonical user profile by id. The main API
// client satisfies it.
type ProfileFetcher interface {
	Profile(ctx context.Context, userID string) (*api.Profile, error)
}

// Result is the terminal state of one boot.
type Result struct {
	Route         Route
	Authenticated bool
	Profile       *api.Profile
}

// Sequencer runs the startup state machine. It is constructed once and
// triggered once per application launch; a second Run on the same
// instance is a no-op.
type Sequencer struct {
	creds    *credentials.Store
	profiles ProfileFetcher
	general  storage.Backend
	log      logging.Logger

	now    func() time.Time
	locale func() string

	done atomic.Bool
}

// SequencerOption configures optional Sequencer collaborators.
type SequencerOption func(*Sequencer)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) SequencerOption {
	return func(s *Sequencer) { s.now = now }
}

// WithLocaleSource overrides system-locale resolution, for tests.
func WithLocaleSource(locale func() string) SequencerOption {
	return func(s *Sequencer) { s.locale = locale }
}

func NewSequencer(creds *credentials.Store, profiles ProfileFetcher, general storage.Backend, log logging.Logger, opts ...SequencerOption) *Sequencer {
	s := &Sequencer{
		creds:    creds,
		profiles: profiles,
		general:  general,
		log:      log,
		now:      time.Now,
		locale:   api.SystemLocale,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Run computes the boot result and hands it to apply. The apply callback
// fires at most once per Sequencer, and only while ctx is still live: a
// result arriving after the initiating context was torn down is dropped,
// never applied to later state. An unrecoverable failure degrades to the
// pre-authentication entry route, never to a crash.
func (s *Sequencer) Run(ctx context.Context, apply func(Result)) {
	result := s.run(ctx)

	if ctx.Err() != nil {
		s.log.Debug(ctx, "boot superseded, dropping result", "route", result.Route.Name)
		return
	}
	if !s.done.CompareAndSwap(false, true) {
		return
	}
	s.log.Info(ctx, "boot finished", "route", result.Route.Name, "authenticated", result.Authenticated)
	apply(result)
}

func (s *Sequencer) run(ctx context.Context) Result {
	// Flags are read before credential initialization: a failed restore
	// resets hasLoggedIn, and the route decision needs the pre-reset value
	// to distinguish an expired session from a fresh install.
	flags := ReadFlags(ctx, s.general, s.log)
	valid := s.creds.Initialize(ctx)

	// A previously-authenticated session that could not be restored goes
	// straight back to the sign-in entry.
	if !valid && flags.HasLoggedIn {
		if err := s.creds.ClearTokens(ctx); err != nil {
			s.log.Warn(ctx, "failed to clear expired session", "err", err)
		}
		return Result{Route: Route{Name: RouteAppLaunch, SkipToAuth: true}}
	}

	s.ensureUserLanguage(ctx, flags)
	firstOpenToday := s.touchLastAppOpen(ctx, flags.LastAppOpenDate)

	if valid && s.creds.AccessToken() != "" {
		result, err := s.authenticated(ctx, flags, firstOpenToday)
		if err != nil {
			// A token that decodes as valid but cannot produce a profile is
			// a server-side inconsistency local retry will not fix.
			s.log.Error(ctx, "boot failed after valid token, degrading to auth entry", "err", err)
			_ = s.creds.ClearTokens(ctx)
			return Result{Route: Route{Name: RouteAppLaunch, SkipToAuth: true}}
		}
		return result
	}

	return Result{Route: Decide(false, nil, flags, firstOpenToday)}
}

func (s *Sequencer) authenticated(ctx context.Context, flags Flags, firstOpenToday bool) (Result, error) {
	claims, err := token.Decode(s.creds.AccessToken())
	if err != nil {
		return Result{}, fmt.Errorf("failed to decode adopted token: %w", err)
	}

	profile, err := s.profiles.Profile(ctx, claims.SubjectID)
	if err != nil {
		return Result{}, fmt.Errorf("profile fetch failed: %w", err)
	}
	profile.Roles = claims.Roles

	if err := s.general.Set(ctx, storage.KeyHasLoggedIn, "true"); err != nil {
		s.log.Warn(ctx, "failed to persist hasLoggedIn", "err", err)
	}

	return Result{
		Route:         Decide(true, claims, flags, firstOpenToday),
		Authenticated: true,
		Profile:       profile,
	}, nil
}

// ensureUserLanguage persists a system-locale default exactly once; an
// already-set value is never re-evaluated.
func (s *Sequencer) ensureUserLanguage(ctx context.Context, flags Flags) {
	if flags.UserLanguage != "" {
		return
	}
	if err := s.general.Set(ctx, storage.KeyUserLanguage, s.locale()); err != nil {
		s.log.Warn(ctx, "failed to persist user language", "err", err)
	}
}

// touchLastAppOpen reports whether this is the first open today and writes
// today's date unconditionally, before any route decision, so the
// bookkeeping cannot be skipped by an early return in the caller.
func (s *Sequencer) touchLastAppOpen(ctx context.Context, lastOpen string) bool {
	today := s.now().Format(dateLayout)
	firstOpenToday := lastOpen != today

	if err := s.general.Set(ctx, storage.KeyLastAppOpenDate, today); err != nil {
		s.log.Warn(ctx, "failed to persist last app open date", "err", err)
	}
	return firstOpenToday
}
