package credentials

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingopal/lingopal-client/internal/client/storage"
	"github.com/lingopal/lingopal-client/internal/logging"
)

// ---- fakes ----

// memBackend is an in-memory storage.Backend with per-operation failure
// injection.
type memBackend struct {
	mu   sync.Mutex
	data map[string]string

	setErr    error
	getErr    error
	removeErr error
}

func newMemBackend() *memBackend {
	return &memBackend{data: make(map[string]string)}
}

func (m *memBackend) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.setErr != nil {
		return m.setErr
	}
	m.data[key] = value
	return nil
}

func (m *memBackend) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.getErr != nil {
		return "", m.getErr
	}
	return m.data[key], nil
}

func (m *memBackend) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.removeErr != nil {
		return m.removeErr
	}
	delete(m.data, key)
	return nil
}

func (m *memBackend) get(key string) string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key]
}

func (m *memBackend) has(key string) bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	_, ok := m.data[key]
	return ok
}

// fakeRefresher counts calls and returns a canned pair or error.
type fakeRefresher struct {
	calls   int
	access  string
	refresh string
	err     error
}

func (f *fakeRefresher) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	f.calls++
	if f.err != nil {
		return "", "", f.err
	}
	return f.access, f.refresh, nil
}

type fixture struct {
	access  *memBackend
	refresh *memBackend
	general *memBackend
	ref     *fakeRefresher
	store   *Store
}

func setup(t *testing.T, opts ...Option) *fixture {
	t.Helper()
	f := &fixture{
		access:  newMemBackend(),
		refresh: newMemBackend(),
		general: newMemBackend(),
		ref:     &fakeRefresher{},
	}
	set := &storage.Set{Access: f.access, Refresh: f.refresh, General: f.general}
	f.store = NewStore(set, f.ref, logging.Nop{}, opts...)
	return f
}

// signedToken builds a structurally valid token with the given expiry.
func signedToken(t *testing.T, exp time.Time) string {
	t.Helper()
	tok := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": "u-1",
		"exp":    exp.Unix(),
	})
	s, err := tok.SignedString([]byte("k"))
	require.NoError(t, err)
	return s
}

// ---- SetTokens ----

func TestSetTokens_PersistsBothSlotsAndMarksLoggedIn(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetTokens(ctx, "acc", "ref"))

	assert.Equal(t, "acc", f.access.get(storage.KeyAccessToken))
	assert.Equal(t, "ref", f.refresh.get(storage.KeyRefreshToken))
	assert.Equal(t, "true", f.general.get(storage.KeyHasLoggedIn))
	assert.Equal(t, "acc", f.store.AccessToken())
	assert.Equal(t, "ref", f.store.RefreshToken())
}

func TestSetTokens_TrimsAndTreatsEmptyAsAbsent(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetTokens(ctx, "  acc  ", "   "))

	assert.Equal(t, "acc", f.access.get(storage.KeyAccessToken))
	assert.False(t, f.refresh.has(storage.KeyRefreshToken), "blank refresh must erase the slot")
	assert.Equal(t, "acc", f.store.AccessToken())
	assert.Empty(t, f.store.RefreshToken())
}

func TestSetTokens_BothEmpty_DoesNotMarkLoggedIn(t *testing.T) {
	f := setup(t)

	require.NoError(t, f.store.SetTokens(context.Background(), "", ""))

	assert.False(t, f.general.has(storage.KeyHasLoggedIn))
}

func TestSetTokens_PartialWriteFailure_RejectsWithoutRollback(t *testing.T) {
	f := setup(t)
	f.refresh.setErr = errors.New("disk full")

	err := f.store.SetTokens(context.Background(), "acc", "ref")
	require.Error(t, err)

	// Best effort: the access slot write is not rolled back, but in-memory
	// state stays untouched.
	assert.Equal(t, "acc", f.access.get(storage.KeyAccessToken))
	assert.Empty(t, f.store.AccessToken())
}

// ---- ClearTokens ----

func TestClearTokens_ErasesSlotsAndResetsFlags(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetTokens(ctx, "acc", "ref"))
	require.NoError(t, f.general.Set(ctx, storage.KeyHasDonePlacementTest, "true"))

	require.NoError(t, f.store.ClearTokens(ctx))

	assert.False(t, f.access.has(storage.KeyAccessToken))
	assert.False(t, f.refresh.has(storage.KeyRefreshToken))
	assert.Equal(t, "false", f.general.get(storage.KeyHasLoggedIn))
	assert.Equal(t, "false", f.general.get(storage.KeyHasDonePlacementTest))
	assert.Empty(t, f.store.AccessToken())
}

func TestClearTokens_StorageFailure_StillClearsMemoryAndFlags(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.store.SetTokens(ctx, "acc", "ref"))

	f.access.removeErr = errors.New("delete failed")
	f.refresh.removeErr = errors.New("delete failed")

	err := f.store.ClearTokens(ctx)
	require.Error(t, err)

	assert.Empty(t, f.store.AccessToken(), "memory must be cleared even when storage delete fails")
	assert.Equal(t, "false", f.general.get(storage.KeyHasLoggedIn))
}

// ---- Initialize ----

func TestInitialize_ValidStoredToken_AdoptsWithoutRefresh(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	valid := signedToken(t, time.Now().Add(time.Hour))
	require.NoError(t, f.access.Set(ctx, storage.KeyAccessToken, valid))
	require.NoError(t, f.refresh.Set(ctx, storage.KeyRefreshToken, "ref"))

	ok := f.store.Initialize(ctx)

	assert.True(t, ok)
	assert.Equal(t, 0, f.ref.calls, "valid token must not trigger a refresh")
	assert.Equal(t, valid, f.store.AccessToken())
	assert.True(t, f.store.Initialized())
}

func TestInitialize_Idempotent_SecondCallSkipsNetwork(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.access.Set(ctx, storage.KeyAccessToken, signedToken(t, time.Now().Add(time.Hour))))

	first := f.store.Initialize(ctx)
	second := f.store.Initialize(ctx)

	assert.True(t, first)
	assert.Equal(t, first, second)
	assert.Equal(t, 0, f.ref.calls)
}

func TestInitialize_ExpiredToken_RefreshSucceeds(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.access.Set(ctx, storage.KeyAccessToken, signedToken(t, time.Now().Add(-time.Hour))))
	require.NoError(t, f.refresh.Set(ctx, storage.KeyRefreshToken, "old-ref"))
	f.ref.access = signedToken(t, time.Now().Add(time.Hour))
	f.ref.refresh = "new-ref"

	ok := f.store.Initialize(ctx)

	assert.True(t, ok)
	assert.Equal(t, 1, f.ref.calls)
	assert.Equal(t, f.ref.access, f.access.get(storage.KeyAccessToken))
	assert.Equal(t, "new-ref", f.refresh.get(storage.KeyRefreshToken))
	assert.Equal(t, "true", f.general.get(storage.KeyHasLoggedIn))
}

func TestInitialize_RefreshRejected_ClearsEverything(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.access.Set(ctx, storage.KeyAccessToken, signedToken(t, time.Now().Add(-time.Hour))))
	require.NoError(t, f.refresh.Set(ctx, storage.KeyRefreshToken, "revoked"))
	f.ref.err = errors.New("401 unauthorized")

	ok := f.store.Initialize(ctx)

	assert.False(t, ok)
	assert.False(t, f.access.has(storage.KeyAccessToken), "access slot must be empty after failed refresh")
	assert.False(t, f.refresh.has(storage.KeyRefreshToken), "refresh slot must be empty after failed refresh")
	assert.Equal(t, "false", f.general.get(storage.KeyHasLoggedIn))
}

func TestInitialize_NoTokens_ReturnsFalseWithoutClearing(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.general.Set(ctx, storage.KeyHasDonePlacementTest, "true"))

	ok := f.store.Initialize(ctx)

	assert.False(t, ok)
	assert.Equal(t, 0, f.ref.calls)
	// Case "nothing stored" is not a failure: flags stay as they were.
	assert.Equal(t, "true", f.general.get(storage.KeyHasDonePlacementTest))
	assert.True(t, f.store.Initialized())
}

func TestInitialize_ReadFailure_TreatedAsNoCredential(t *testing.T) {
	f := setup(t)
	f.access.getErr = errors.New("keychain locked")
	f.refresh.getErr = errors.New("keychain locked")

	ok := f.store.Initialize(context.Background())

	assert.False(t, ok, "read failure must fail open to logged-out")
}

func TestInitialize_MalformedStoredToken_NoRefreshToken_ReturnsFalse(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	require.NoError(t, f.access.Set(ctx, storage.KeyAccessToken, "not-a-jwt"))

	ok := f.store.Initialize(ctx)

	assert.False(t, ok)
	assert.Equal(t, 0, f.ref.calls)
}

func TestInitialize_ExpiryBoundary_TokenIsExpired(t *testing.T) {
	now := time.Unix(1_800_000_000, 0)
	f := setup(t, WithClock(func() time.Time { return now }))
	ctx := context.Background()
	require.NoError(t, f.access.Set(ctx, storage.KeyAccessToken, signedToken(t, now)))

	ok := f.store.Initialize(ctx)

	assert.False(t, ok, "exp == now must be treated as expired")
}

// ---- notifications ----

func TestSubscribe_NotifiedOnSetAndClear(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	var got []Pair
	f.store.Subscribe(func(p Pair) { got = append(got, p) })

	require.NoError(t, f.store.SetTokens(ctx, "acc", "ref"))
	require.NoError(t, f.store.ClearTokens(ctx))

	require.Len(t, got, 2)
	assert.Equal(t, Pair{Access: "acc", Refresh: "ref"}, got[0])
	assert.Equal(t, Pair{}, got[1])
}
