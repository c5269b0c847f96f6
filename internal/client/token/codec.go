// Package token decodes access tokens into their claims without verifying
// the signature. The client trusts transport security; it only needs the
// subject id, roles, and expiry to assess validity and pick an initial
// screen before the full profile arrives.
package token

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"

	"github.com/lingopal/lingopal-client/internal/common"
)

// Role names carried in token claims.
const (
	RoleAdmin   = "ROLE_ADMIN"
	RoleTeacher = "ROLE_TEACHER"
)

// Claims is the decoded payload of an access token.
type Claims struct {
	SubjectID string
	Roles     []string
	// ExpiresAt is the expiry instant in epoch seconds; zero when the token
	// carries no exp claim.
	ExpiresAt int64
}

// rawClaims mirrors the backend's token payload. The subject may arrive
// either as the registered "sub" claim or as a custom userId field.
type rawClaims struct {
	jwt.RegisteredClaims
	UserID string   `json:"userId"`
	Roles  []string `json:"roles"`
}

// Decode structurally parses tokenString and extracts its claims. No
// signature or issuer verification is performed. Malformed input yields
// common.ErrInvalidToken; Decode never panics.
func Decode(tokenString string) (*Claims, error) {
	raw := &rawClaims{}
	parser := jwt.NewParser()
	if _, _, err := parser.ParseUnverified(tokenString, raw); err != nil {
		return nil, fmt.Errorf("%w: %v", common.ErrInvalidToken, err)
	}

	subject := raw.UserID
	if subject == "" {
		subject = raw.Subject
	}

	var expiresAt int64
	if raw.ExpiresAt != nil {
		expiresAt = raw.ExpiresAt.Unix()
	}

	return &Claims{
		SubjectID: subject,
		Roles:     raw.Roles,
		ExpiresAt: expiresAt,
	}, nil
}

// Check returns nil when the claims are unexpired at the given instant,
// and common.ErrTokenExpired otherwise. A token whose exp equals now
// exactly is treated as expired.
func (c *Claims) Check(now time.Time) error {
	if c.ExpiresAt > now.Unix() {
		return nil
	}
	return common.ErrTokenExpired
}

// Valid reports whether the claims are unexpired at the given instant.
func (c *Claims) Valid(now time.Time) bool {
	return c.Check(now) == nil
}

// HasRole reports whether the claims carry the given role.
func (c *Claims) HasRole(role string) bool {
	for _, r := range c.Roles {
		if r == role {
			return true
		}
	}
	return false
}
