package sochx

import (
	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"
)

const (
	currentUserLocal = "current_user"
	claimsLocal      = "claims"
)

// CurrentUser is the minimal identity view exposed to downstream handlers
// after authentication.
type CurrentUser struct {
	ID    uuid.UUID `json:"id"`
	Email string    `json:"email"`
	Role  UserRole  `json:"role"`
}

// WithCurrentUser stores the authenticated identity on the request.
func WithCurrentUser(c *fiber.Ctx, user CurrentUser) {
	c.Locals(currentUserLocal, user)
}

// CurrentUserFrom finds the authenticated identity on the request.
func CurrentUserFrom(c *fiber.Ctx) (CurrentUser, bool) {
	raw, ok := c.Locals(currentUserLocal).(CurrentUser)
	return raw, ok
}

// WithClaims stores the verified credential claims on the request.
func WithClaims(c *fiber.Ctx, claims *JWTClaims) {
	c.Locals(claimsLocal, claims)
}

// ClaimsFrom finds the verified credential claims on the request.
func ClaimsFrom(c *fiber.Ctx) (*JWTClaims, bool) {
	raw, ok := c.Locals(claimsLocal).(*JWTClaims)
	return raw, ok
}
