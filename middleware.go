package sochx

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// Guard is the route protection layer. Authenticate resolves and verifies the
// request credential and loads the live account; RequireRole layers a role
// check on top of an authenticated request.
type Guard struct {
	tokens    TokenService
	transport *SessionTransport
	users     Users
	logger    Logger
}

func NewGuard(tokens TokenService, transport *SessionTransport, users Users, logger Logger) *Guard {
	if logger == nil {
		logger = defLogger{}
	}
	return &Guard{
		tokens:    tokens,
		transport: transport,
		users:     users,
		logger:    logger,
	}
}

// Authenticate rejects requests without a verifiable credential. The role
// authorized downstream is the one stored on the account now, not the role
// frozen into the credential at issuance.
func (g *Guard) Authenticate(c *fiber.Ctx) error {
	token := g.transport.TokenFromRequest(c)
	if token == "" {
		return ErrAuthenticationRequired
	}

	claims, err := g.tokens.Verify(token)
	if err != nil {
		g.logger.Debug("guard rejected credential: %v", err)
		return ErrInvalidOrExpiredToken
	}

	record, err := g.users.GetByID(c.UserContext(), claims.Subject())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load identity")
	}

	id, err := uuid.Parse(claims.Subject())
	if err != nil {
		return ErrTokenMalformed
	}

	WithClaims(c, claims)
	WithCurrentUser(c, CurrentUser{
		ID:    id,
		Email: record.Email,
		Role:  record.Role,
	})

	return c.Next()
}

// RequireRole returns middleware allowing only the given roles. It must run
// after Authenticate.
func (g *Guard) RequireRole(allowed ...UserRole) fiber.Handler {
	return func(c *fiber.Ctx) error {
		user, ok := CurrentUserFrom(c)
		if !ok {
			return ErrAuthenticationRequired
		}

		if !user.Role.In(allowed...) {
			g.logger.Debug("guard denied role %s, allowed %v", user.Role, allowed)
			return ErrInsufficientPermissions
		}

		return c.Next()
	}
}
