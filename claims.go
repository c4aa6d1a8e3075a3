package sochx

import (
	"time"

	"github.com/golang-jwt/jwt/v5"
)

// JWTClaims carries the decoded credential fields: subject id, email, role,
// issuance and expiry. Validity is fully determined by signature and expiry
// at verification time; there is no server-side session record.
type JWTClaims struct {
	jwt.RegisteredClaims
	Email    string   `json:"email,omitempty"`
	UserRole UserRole `json:"role,omitempty"`
}

// Subject returns the identity id encoded in the credential.
func (c *JWTClaims) Subject() string {
	return c.RegisteredClaims.Subject
}

// UserID is an alias for Subject.
func (c *JWTClaims) UserID() string {
	return c.Subject()
}

// Role returns the role claim.
func (c *JWTClaims) Role() UserRole {
	return c.UserRole
}

// Expires returns the expiry instant, zero when absent.
func (c *JWTClaims) Expires() time.Time {
	if c.RegisteredClaims.ExpiresAt != nil {
		return c.RegisteredClaims.ExpiresAt.Time
	}
	return time.Time{}
}

// IssuedAt returns the issuance instant, zero when absent.
func (c *JWTClaims) IssuedAt() time.Time {
	if c.RegisteredClaims.IssuedAt != nil {
		return c.RegisteredClaims.IssuedAt.Time
	}
	return time.Time{}
}
