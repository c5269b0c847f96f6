package storage

import (
	"context"
	"crypto/rand"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"

	"github.com/lingopal/lingopal-client/internal/cryptox"
	"github.com/lingopal/lingopal-client/internal/filex"
)

const deviceSecretFile = ".device.secret"

// SecureBackend stores each value as a sealed file under
// <dir>/<service>/<key>.sealed. Values are encrypted with AES-GCM under a
// key derived (argon2id) from a per-device secret, so a copied file is
// useless off-device. Access and refresh slots use distinct service
// directories.
type SecureBackend struct {
	dir     string
	service string
	secret  []byte
}

// sealedValue is the on-disk envelope for one slot.
type sealedValue struct {
	Salt       []byte `json:"salt"`
	Nonce      []byte `json:"nonce"`
	Ciphertext []byte `json:"ciphertext"`
}

// NewSecureBackend opens (creating if needed) the sealed store for one
// service namespace. The per-device secret is created on first use with
// mode 0600; failure to create or read it means the platform cannot host
// a secure store and the caller should fall back to the general backend.
func NewSecureBackend(dir, service string) (*SecureBackend, error) {
	secret, err := loadOrCreateDeviceSecret(dir)
	if err != nil {
		return nil, fmt.Errorf("secure store unavailable: %w", err)
	}
	return &SecureBackend{dir: dir, service: service, secret: secret}, nil
}

func loadOrCreateDeviceSecret(dir string) ([]byte, error) {
	if err := filex.EnsureDir(dir); err != nil {
		return nil, err
	}
	path := filepath.Join(dir, deviceSecretFile)

	secret, err := os.ReadFile(path)
	if err == nil && len(secret) == 32 {
		return secret, nil
	}
	if err != nil && !os.IsNotExist(err) {
		return nil, err
	}

	secret = make([]byte, 32)
	if _, err := rand.Read(secret); err != nil {
		return nil, err
	}
	if err := filex.WriteSecretFile(path, secret); err != nil {
		return nil, err
	}
	return secret, nil
}

func (b *SecureBackend) path(key string) string {
	return filepath.Join(b.dir, b.service, key+".sealed")
}

func (b *SecureBackend) Set(ctx context.Context, key, value string) error {
	salt := make([]byte, 16)
	if _, err := rand.Read(salt); err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}

	derived := cryptox.DeriveKey(b.secret, salt)
	ciphertext, nonce, err := cryptox.Seal([]byte(value), derived, []byte(b.service))
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}

	envelope := sealedValue{
		Salt:       salt,
		Nonce:      nonce,
		Ciphertext: ciphertext,
	}
	data, err := json.Marshal(envelope)
	if err != nil {
		return fmt.Errorf("failed to seal %s: %w", key, err)
	}

	if err := filex.WriteSecretFile(b.path(key), data); err != nil {
		return fmt.Errorf("failed to write %s: %w", key, err)
	}
	return nil
}

func (b *SecureBackend) Get(ctx context.Context, key string) (string, error) {
	data, err := os.ReadFile(b.path(key))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("failed to read %s: %w", key, err)
	}

	var envelope sealedValue
	if err := json.Unmarshal(data, &envelope); err != nil {
		return "", fmt.Errorf("failed to unseal %s: %w", key, err)
	}

	derived := cryptox.DeriveKey(b.secret, envelope.Salt)
	plaintext, err := cryptox.Open(envelope.Ciphertext, envelope.Nonce, derived, []byte(b.service))
	if err != nil {
		return "", fmt.Errorf("failed to unseal %s: %w", key, err)
	}
	return string(plaintext), nil
}

func (b *SecureBackend) Remove(ctx context.Context, key string) error {
	err := os.Remove(b.path(key))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("failed to remove %s: %w", key, err)
	}
	return nil
}
