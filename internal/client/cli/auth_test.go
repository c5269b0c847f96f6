package cli

import (
	"bufio"
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingopal/lingopal-client/internal/client/api"
	"github.com/lingopal/lingopal-client/internal/client/credentials"
	"github.com/lingopal/lingopal-client/internal/client/storage"
	"github.com/lingopal/lingopal-client/internal/logging"
)

func stubInputs(t *testing.T, email string, password []byte) {
	t.Helper()
	origST, origGP := getSimpleText, getPassword
	getSimpleText = func(_ *bufio.Reader, _ string, _ io.Writer) (string, error) { return email, nil }
	getPassword = func(_ io.Writer) ([]byte, error) { return password, nil }
	t.Cleanup(func() {
		getSimpleText = origST
		getPassword = origGP
	})
}

func silencePrint(t *testing.T) {
	t.Helper()
	orig := printlnFn
	printlnFn = func(...any) {}
	t.Cleanup(func() { printlnFn = orig })
}

type memBackend struct {
	mu   sync.Mutex
	data map[string]string
}

func newMemBackend() *memBackend { return &memBackend{data: make(map[string]string)} }

func (m *memBackend) Set(ctx context.Context, key, value string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.data[key] = value
	return nil
}

func (m *memBackend) Get(ctx context.Context, key string) (string, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.data[key], nil
}

func (m *memBackend) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

type noRefresh struct{}

func (noRefresh) Refresh(ctx context.Context, refreshToken string) (string, string, error) {
	return "", "", nil
}

func newTestApp(t *testing.T, baseURL string) *App {
	t.Helper()
	set := &storage.Set{Access: newMemBackend(), Refresh: newMemBackend(), General: newMemBackend()}
	creds := credentials.NewStore(set, noRefresh{}, logging.Nop{})
	return &App{
		creds:  creds,
		api:    api.NewClient(baseURL, time.Second, creds, logging.Nop{}),
		reader: bufio.NewReader(nil),
		log:    logging.Nop{},
	}
}

func TestLogin_StoresIssuedTokens(t *testing.T) {
	silencePrint(t)
	stubInputs(t, "alice@example.org", []byte("secret"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/auth/login", r.URL.Path)
		var body map[string]string
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		assert.Equal(t, "alice@example.org", body["email"])
		assert.Equal(t, "secret", body["password"])
		json.NewEncoder(w).Encode(map[string]any{
			"token": "acc-1", "refreshToken": "ref-1", "authenticated": true,
		})
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)

	require.NoError(t, a.Login(context.Background()))
	assert.Equal(t, "acc-1", a.creds.AccessToken())
	assert.Equal(t, "ref-1", a.creds.RefreshToken())
	assert.True(t, a.isLoggedIn())
}

func TestLogin_RejectedLeavesSessionEmpty(t *testing.T) {
	silencePrint(t)
	stubInputs(t, "alice@example.org", []byte("wrong"))

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusUnauthorized)
	}))
	defer srv.Close()

	a := newTestApp(t, srv.URL)

	require.Error(t, a.Login(context.Background()))
	assert.Empty(t, a.creds.AccessToken())
	assert.False(t, a.isLoggedIn())
}

func TestLogout_ClearsSession(t *testing.T) {
	silencePrint(t)

	a := newTestApp(t, "http://unused.invalid")
	require.NoError(t, a.creds.SetTokens(context.Background(), "acc", "ref"))

	require.NoError(t, a.Logout(context.Background()))
	assert.Empty(t, a.creds.AccessToken())
	assert.False(t, a.isLoggedIn())
}
