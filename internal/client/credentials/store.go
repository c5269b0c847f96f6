// Package credentials holds the process-wide access/refresh token pair and
// keeps it in sync with persistent storage.
//
// The Store is constructed once at application start and injected into
// whatever composes the application root; it is read at startup and never
// disposed. Only the Store's own methods mutate the pair (single-writer
// discipline); everything else reads through AccessToken or subscribes to
// change notifications. SetTokens/ClearTokens are not internally serialized
// against each other — call sites (login, refresh, logout) are sequential
// by construction.
package credentials

import (
	"context"
	"errors"
	"strings"
	"sync"
	"time"

	"github.com/lingopal/lingopal-client/internal/client/storage"
	"github.com/lingopal/lingopal-client/internal/client/token"
	"github.com/lingopal/lingopal-client/internal/logging"
)

// Pair is the current token pair. Empty strings mean "absent"; values are
// always trimmed and never stored as empty strings.
type Pair struct {
	Access  string
	Refresh string
}

// Refresher exchanges a refresh token for a new token pair. It is a
// separate collaborator so the store never depends on the main API client
// (which itself may trigger refresh on 401).
type Refresher interface {
	Refresh(ctx context.Context, refreshToken string) (access, refresh string, err error)
}

// Store is the reactive credential holder.
type Store struct {
	access  storage.Backend
	refresh storage.Backend
	general storage.Backend

	refresher Refresher
	log       logging.Logger
	now       func() time.Time

	mu          sync.RWMutex
	pair        Pair
	initialized bool
	subscribers []func(Pair)
}

// Option configures optional Store collaborators.
type Option func(*Store)

// WithClock overrides the wall clock, for tests.
func WithClock(now func() time.Time) Option {
	return func(s *Store) { s.now = now }
}

// NewStore builds a Store over the given slot backends. The access and
// refresh slots may live on different backends; the general backend holds
// the hasLoggedIn/hasDonePlacementTest flags.
func NewStore(backends *storage.Set, refresher Refresher, log logging.Logger, opts ...Option) *Store {
	s := &Store{
		access:    backends.Access,
		refresh:   backends.Refresh,
		general:   backends.General,
		refresher: refresher,
		log:       log,
		now:       time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// SetTokens persists the pair and adopts it in memory. Empty or
// whitespace-only values count as absent and erase their slot. If either
// value is present, hasLoggedIn is marked in general storage.
//
// The operation is atomic from the caller's point of view: any storage
// failure surfaces as an error and in-memory state stays untouched.
// Already-written slots are not rolled back (documented best-effort).
func (s *Store) SetTokens(ctx context.Context, access, refresh string) error {
	access = strings.TrimSpace(access)
	refresh = strings.TrimSpace(refresh)

	if err := s.writeSlot(ctx, s.access, storage.KeyAccessToken, access); err != nil {
		return err
	}
	if err := s.writeSlot(ctx, s.refresh, storage.KeyRefreshToken, refresh); err != nil {
		return err
	}
	if access != "" || refresh != "" {
		if err := s.general.Set(ctx, storage.KeyHasLoggedIn, "true"); err != nil {
			return err
		}
	}

	s.adopt(Pair{Access: access, Refresh: refresh})
	return nil
}

func (s *Store) writeSlot(ctx context.Context, b storage.Backend, key, value string) error {
	if value == "" {
		return b.Remove(ctx, key)
	}
	return b.Set(ctx, key, value)
}

// ClearTokens erases both slots and resets the login flags. In-memory state
// is cleared unconditionally, even when a storage delete fails, so the
// application can never believe it is still logged in after a clear. Any
// storage errors are joined into the returned error.
func (s *Store) ClearTokens(ctx context.Context) error {
	err := errors.Join(
		s.access.Remove(ctx, storage.KeyAccessToken),
		s.refresh.Remove(ctx, storage.KeyRefreshToken),
		s.general.Set(ctx, storage.KeyHasLoggedIn, "false"),
		s.general.Set(ctx, storage.KeyHasDonePlacementTest, "false"),
	)

	s.adopt(Pair{})
	return err
}

// Initialize is the startup entry point. It reads the stored pair, adopts
// it when the access token still decodes as unexpired, otherwise attempts
// a refresh, and otherwise reports an unauthenticated state. Storage read
// failures count as "no stored credential". Refresh failure, or any
// unexpected panic, degrades to a full clear.
//
// The method is idempotent: after a true result a repeated call finds the
// freshly adopted (still valid) token and short-circuits without any
// network call.
func (s *Store) Initialize(ctx context.Context) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			s.log.Error(ctx, "credential initialization panicked", "panic", r)
			_ = s.ClearTokens(ctx)
			ok = false
		}
	}()

	access := s.readSlot(ctx, s.access, storage.KeyAccessToken)
	refresh := s.readSlot(ctx, s.refresh, storage.KeyRefreshToken)

	if access != "" {
		claims, err := token.Decode(access)
		if err == nil {
			if err = claims.Check(s.now()); err == nil {
				s.adopt(Pair{Access: access, Refresh: refresh})
				return true
			}
		}
		// err is common.ErrInvalidToken or common.ErrTokenExpired here.
		s.log.Info(ctx, "stored access token not usable", "err", err)
	}

	if refresh != "" {
		newAccess, newRefresh, err := s.refresher.Refresh(ctx, refresh)
		if err != nil {
			s.log.Warn(ctx, "token refresh failed", "err", err)
			_ = s.ClearTokens(ctx)
			return false
		}
		if err := s.SetTokens(ctx, newAccess, newRefresh); err != nil {
			s.log.Error(ctx, "failed to persist refreshed tokens", "err", err)
			_ = s.ClearTokens(ctx)
			return false
		}
		return true
	}

	s.markInitialized()
	return false
}

func (s *Store) readSlot(ctx context.Context, b storage.Backend, key string) string {
	v, err := b.Get(ctx, key)
	if err != nil {
		// Fail open to logged-out, not closed to a crash.
		s.log.Warn(ctx, "failed to read stored credential, treating as absent", "slot", key, "err", err)
		return ""
	}
	return strings.TrimSpace(v)
}

// AccessToken is a synchronous read of the current in-memory access token,
// for callers that cannot await storage (e.g. request interceptors).
// Empty string means no token.
func (s *Store) AccessToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.Access
}

// RefreshToken returns the current in-memory refresh token.
func (s *Store) RefreshToken() string {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.pair.Refresh
}

// Initialized reports whether Initialize has completed at least once.
func (s *Store) Initialized() bool {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.initialized
}

// Subscribe registers fn to run after every adopted change to the pair.
// Subscribers are invoked synchronously, outside the store's lock.
func (s *Store) Subscribe(fn func(Pair)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.subscribers = append(s.subscribers, fn)
}

func (s *Store) adopt(p Pair) {
	s.mu.Lock()
	s.pair = p
	s.initialized = true
	subs := make([]func(Pair), len(s.subscribers))
	copy(subs, s.subscribers)
	s.mu.Unlock()

	for _, fn := range subs {
		fn(p)
	}
}

func (s *Store) markInitialized() {
	s.mu.Lock()
	s.initialized = true
	s.mu.Unlock()
}
