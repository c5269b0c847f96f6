// Package cryptox wraps the primitives used to seal local secrets:
// argon2id key derivation and AES-256-GCM authenticated encryption.
package cryptox

import (
	"crypto/aes"
	"crypto/cipher"
	"crypto/rand"

	"golang.org/x/crypto/argon2"
)

// DeriveKey stretches a device secret into a 32-byte AES key using
// argon2id. The same secret/salt pair always yields the same key.
func DeriveKey(secret, salt []byte) []byte {
	return argon2.IDKey(secret, salt, 1, 64*1024, 4, 32)
}

// Seal encrypts plaintext with AES-GCM under key, binding aad into the
// authentication tag. A fresh random nonce is generated per call and
// returned alongside the ciphertext.
//
// The key must be a valid AES key length (16, 24, or 32 bytes).
func Seal(plaintext, key, aad []byte) (ciphertext, nonce []byte, err error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, nil, err
	}

	nonce = make([]byte, gcm.NonceSize())
	if _, err := rand.Read(nonce); err != nil {
		return nil, nil, err
	}

	return gcm.Seal(nil, nonce, plaintext, aad), nonce, nil
}

// Open decrypts a Seal envelope. Decryption fails if the ciphertext was
// tampered with or the aad differs from the one given to Seal.
func Open(ciphertext, nonce, key, aad []byte) ([]byte, error) {
	gcm, err := newGCM(key)
	if err != nil {
		return nil, err
	}
	return gcm.Open(nil, nonce, ciphertext, aad)
}

func newGCM(key []byte) (cipher.AEAD, error) {
	block, err := aes.NewCipher(key)
	if err != nil {
		return nil, err
	}
	return cipher.NewGCM(block)
}
