package sochx

import (
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
)

// SessionCookieName is the cookie carrying the session credential. The
// realtime handshake reads the same name out of the raw Cookie header.
const SessionCookieName = "access_token"

// SessionCookieMaxAge is the cookie lifetime, matching the credential expiry.
const SessionCookieMaxAge = 7 * 24 * time.Hour

const bearerScheme = "Bearer "

// SessionTransport resolves the effective credential for a request and
// attaches or clears the session cookie on responses. Cookie attributes are
// environment dependent: Secure + SameSite=Strict in production, SameSite=Lax
// in development.
type SessionTransport struct {
	production bool
}

func NewSessionTransport(production bool) *SessionTransport {
	return &SessionTransport{production: production}
}

// TokenFromRequest prefers the session cookie and falls back to a
// bearer-scheme authorization header. Empty string means no credential.
func (t *SessionTransport) TokenFromRequest(c *fiber.Ctx) string {
	if token := c.Cookies(SessionCookieName); token != "" {
		return token
	}

	header := c.Get(fiber.HeaderAuthorization)
	if strings.HasPrefix(header, bearerScheme) {
		return strings.TrimPrefix(header, bearerScheme)
	}

	return ""
}

// Attach sets the session cookie on the response.
func (t *SessionTransport) Attach(c *fiber.Ctx, token string) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    token,
		MaxAge:   int(SessionCookieMaxAge.Seconds()),
		Expires:  time.Now().Add(SessionCookieMaxAge),
		HTTPOnly: true,
		Secure:   t.production,
		SameSite: t.sameSite(),
	})
}

// Clear removes the session cookie with matching attributes.
func (t *SessionTransport) Clear(c *fiber.Ctx) {
	c.Cookie(&fiber.Cookie{
		Name:     SessionCookieName,
		Value:    "",
		MaxAge:   -1,
		Expires:  time.Now().Add(-time.Hour * (24 * 365)),
		HTTPOnly: true,
		Secure:   t.production,
		SameSite: t.sameSite(),
	})
}

func (t *SessionTransport) sameSite() string {
	if t.production {
		return fiber.CookieSameSiteStrictMode
	}
	return fiber.CookieSameSiteLaxMode
}
