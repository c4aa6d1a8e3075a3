package sochx

import (
	"context"
	"fmt"
	"time"
)

type Logger interface {
	Debug(format string, args ...any)
	Info(format string, args ...any)
	Warn(format string, args ...any)
	Error(format string, args ...any)
}

// Config holds the runtime options the server consumes. Values are opaque to
// this package; cmd/server provides an env-backed implementation.
type Config interface {
	GetSigningKey() string
	GetTokenExpiration() time.Duration
	IsProduction() bool
	GetCORSOrigin() string
	GetFrontendURL() string
	GetGoogleClientID() string
}

// Identity is the minimal view of an account a credential is issued for.
type Identity interface {
	ID() string
	Email() string
	Role() UserRole
}

// TokenService signs and verifies the session credential.
type TokenService interface {
	Issue(identity Identity) (string, error)
	Verify(token string) (*JWTClaims, error)
}

// PasswordAuthenticator abstracts password hashing so cost factors or
// primitives can be swapped without touching flow logic.
type PasswordAuthenticator interface {
	HashPassword(password string) (string, error)
	ComparePasswordAndHash(password, hash string) error
}

// SecretGenerator produces unguessable opaque tokens. n is the entropy in
// bytes before encoding.
type SecretGenerator interface {
	Generate(n int) (string, error)
}

// Mailer delivers out-of-band messages. Delivery failures must never leak
// whether the recipient exists.
type Mailer interface {
	SendPasswordReset(ctx context.Context, email, token string) error
}

// Broadcaster pushes an event to every connection joined to a group. Emit is
// best-effort and must not block on slow receivers.
type Broadcaster interface {
	Emit(group, event string, payload any)
}

// NewLogger returns the default stdout logger.
func NewLogger() Logger {
	return defLogger{}
}

type defLogger struct{}

func (d defLogger) Error(format string, args ...any) {
	fmt.Printf("[ERR] SOCHX "+newline(format), args...)
}

func (d defLogger) Warn(format string, args ...any) {
	fmt.Printf("[WRN] SOCHX "+newline(format), args...)
}

func (d defLogger) Info(format string, args ...any) {
	fmt.Printf("[INF] SOCHX "+newline(format), args...)
}

func (d defLogger) Debug(format string, args ...any) {
	fmt.Printf("[DBG] SOCHX "+newline(format), args...)
}

func newline(s string) string {
	if len(s) > 0 && s[len(s)-1] != '\n' {
		s += "\n"
	}
	return s
}
