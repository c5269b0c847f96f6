package common

import (
	"crypto/rand"
	"encoding/hex"
)

// MakeRandHexString returns size random bytes hex-encoded, so the result
// is 2*size characters long. Used for request correlation ids.
func MakeRandHexString(size int) (string, error) {
	b := make([]byte, size)
	if _, err := rand.Read(b); err != nil {
		return "", err
	}
	return hex.EncodeToString(b), nil
}

// WipeByteArray zeroes b in place so secrets such as passwords do not
// linger in memory after use. A nil slice is left alone.
func WipeByteArray(b []byte) {
	for i := range b {
		b[i] = 0
	}
}
