package sochx

import (
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/goliatone/go-errors"
)

// DefaultTokenExpiration is the session credential lifetime.
const DefaultTokenExpiration = 7 * 24 * time.Hour

// HMACTokenService implements TokenService with HS256 and a process-wide
// signing secret. Verification is pure and stateless, no I/O.
type HMACTokenService struct {
	signingKey      []byte
	tokenExpiration time.Duration
	logger          Logger
	now             func() time.Time
}

// NewTokenService creates a TokenService. A zero expiration falls back to
// DefaultTokenExpiration.
func NewTokenService(signingKey []byte, tokenExpiration time.Duration, logger Logger) *HMACTokenService {
	if logger == nil {
		logger = defLogger{}
	}
	if tokenExpiration <= 0 {
		tokenExpiration = DefaultTokenExpiration
	}
	return &HMACTokenService{
		signingKey:      signingKey,
		tokenExpiration: tokenExpiration,
		logger:          logger,
		now:             time.Now,
	}
}

// WithClock overrides the time source. Tests use it to mint expired tokens.
func (ts *HMACTokenService) WithClock(now func() time.Time) *HMACTokenService {
	if now != nil {
		ts.now = now
	}
	return ts
}

// Issue signs a credential carrying {sub, email, role, iat, exp}.
func (ts *HMACTokenService) Issue(identity Identity) (string, error) {
	if identity == nil {
		return "", errors.New("identity is required", errors.CategoryBadInput)
	}

	now := ts.now()
	claims := &JWTClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   identity.ID(),
			IssuedAt:  jwt.NewNumericDate(now),
			ExpiresAt: jwt.NewNumericDate(now.Add(ts.tokenExpiration)),
		},
		Email:    identity.Email(),
		UserRole: identity.Role(),
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signed, err := token.SignedString(ts.signingKey)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to sign JWT")
	}

	return signed, nil
}

// Verify parses and validates a credential, returning structured claims. It
// fails with ErrTokenExpired past the expiry instant and ErrTokenMalformed
// for every other parse or signature failure.
func (ts *HMACTokenService) Verify(tokenString string) (*JWTClaims, error) {
	token, err := jwt.ParseWithClaims(tokenString, &JWTClaims{}, func(t *jwt.Token) (any, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			ts.logger.Error("TokenService verify encountered unexpected signing method: %v", t.Header["alg"])
			return nil, fmt.Errorf("unexpected signing method: %v", t.Header["alg"])
		}
		return ts.signingKey, nil
	}, jwt.WithTimeFunc(ts.now))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, ErrTokenExpired
		}
		return nil, errors.Wrap(err, ErrTokenMalformed.Category, ErrTokenMalformed.Message).
			WithTextCode(ErrTokenMalformed.TextCode).
			WithCode(errors.CodeUnauthorized)
	}

	claims, ok := token.Claims.(*JWTClaims)
	if !ok || !token.Valid {
		ts.logger.Error("TokenService verify could not decode claims")
		return nil, ErrTokenMalformed
	}

	return claims, nil
}
