package api

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lingopal/lingopal-client/internal/common"
)

// memBackend is a minimal in-memory storage.Backend for device-id tests.
type memBackend struct {
	mu     sync.Mutex
	data   map[string]string
	setErr error
}

func newMemBackend() *memBackend { return &memBackend{data: make(map[string]string)} }

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
	return m.data[key], nil
}

func (m *memBackend) Remove(ctx context.Context, key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.data, key)
	return nil
}

func stubHardwareID(t *testing.T, id string, err error) {
	t.Helper()
	orig := hardwareID
	hardwareID = func() (string, error) { return id, err }
	t.Cleanup(func() { hardwareID = orig })
}

func TestDeviceID_PrefersHardwareID(t *testing.T) {
	stubHardwareID(t, "hw-uuid", nil)

	id := DeviceID(context.Background(), newMemBackend())
	assert.Equal(t, "hw-uuid", id)
}

func TestDeviceID_GeneratesAndPersistsPerInstallID(t *testing.T) {
	stubHardwareID(t, "", errors.New("not available"))
	b := newMemBackend()
	ctx := context.Background()

	first := DeviceID(ctx, b)
	require.NotEmpty(t, first)
	require.NotEqual(t, common.UnknownDeviceID, first)

	second := DeviceID(ctx, b)
	assert.Equal(t, first, second, "per-install id must be stable across calls")
}

func TestDeviceID_StorageFailure_FallsBackToSentinel(t *testing.T) {
	stubHardwareID(t, "", errors.New("not available"))
	b := newMemBackend()
	b.setErr = errors.New("readonly")

	id := DeviceID(context.Background(), b)
	assert.Equal(t, common.UnknownDeviceID, id)
}

func TestSystemLocale_NormalizesPosixForm(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "ru_RU.UTF-8")

	assert.Equal(t, "ru-RU", SystemLocale())
}

func TestSystemLocale_FallsBackToDefault(t *testing.T) {
	t.Setenv("LC_ALL", "")
	t.Setenv("LC_MESSAGES", "")
	t.Setenv("LANG", "C")

	assert.Equal(t, common.DefaultLocale, SystemLocale())
}

func TestNormalizeLocale(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"en_US.UTF-8", "en-US"},
		{"de_DE@euro", "de-DE"},
		{"fr", "fr"},
		{"POSIX", ""},
		{"", ""},
	}
	for _, tc := range tests {
		assert.Equal(t, tc.want, normalizeLocale(tc.in), "input %q", tc.in)
	}
}
