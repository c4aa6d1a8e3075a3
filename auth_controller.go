package sochx

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

// resetRequestedMessage is returned for every forgot-password request so the
// response never discloses whether the email belongs to an account.
const resetRequestedMessage = "If an account exists with that email, a password reset link has been sent."

// AuthController serves registration, login, Google sign-in, session and
// password recovery endpoints.
type AuthController struct {
	Logger    Logger
	Repo      RepositoryManager
	Tokens    TokenService
	Transport *SessionTransport
	Hasher    PasswordAuthenticator
	Reset     *PasswordResetFlow
	Google    GoogleVerifier
}

func (a *AuthController) Register(router fiber.Router, guard *Guard) {
	group := router.Group("/auth")

	group.Post("/register", a.RegisterAccount)
	group.Post("/login", a.Login)
	group.Post("/google", a.GoogleLogin)
	group.Post("/logout", a.Logout)
	group.Post("/forgot-password", a.ForgotPassword)
	group.Post("/reset-password", a.ResetPassword)
	group.Get("/me", guard.Authenticate, a.Me)
}

// RegisterPayload is the account creation request.
type RegisterPayload struct {
	Email    string   `form:"email" json:"email"`
	Password string   `form:"password" json:"password"`
	FullName string   `form:"full_name" json:"full_name"`
	Role     UserRole `form:"role" json:"role"`
}

// Validate will validate the payload. Admin accounts cannot be
// self-registered.
func (r RegisterPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, validation.Length(6, 100), is.Email),
			validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
			validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
			validation.Field(&r.Role, validation.In(RoleStudentResearcher, RoleMentor)),
		)
	}, "Invalid registration payload")
}

func (a *AuthController) RegisterAccount(c *fiber.Ctx) error {
	payload := new(RegisterPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()

	if _, err := a.Repo.Users().GetByEmail(ctx, payload.Email); err == nil {
		return ErrEmailAlreadyInUse
	} else if !repository.IsRecordNotFound(err) {
		return errors.Wrap(err, errors.CategoryInternal, "failed to check email")
	}

	hash, err := a.Hasher.HashPassword(payload.Password)
	if err != nil {
		return err
	}

	record, err := a.Repo.Users().Create(ctx, &User{
		Email:        payload.Email,
		PasswordHash: hash,
		FullName:     payload.FullName,
		Role:         payload.Role,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	return a.respondWithSession(c, record, fiber.StatusCreated)
}

// LoginPayload is the credential login request.
type LoginPayload struct {
	Email    string `form:"email" json:"email"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r LoginPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
			validation.Field(&r.Password, validation.Required),
		)
	}, "Invalid login payload")
}

// Login authenticates with email and password. All failure modes collapse
// into ErrInvalidCredentials.
func (a *AuthController) Login(c *fiber.Ctx) error {
	payload := new(LoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	record, err := a.Repo.Users().GetByEmail(c.UserContext(), payload.Email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up account")
	}

	if record.PasswordHash == "" {
		return ErrInvalidCredentials
	}

	if err := a.Hasher.ComparePasswordAndHash(payload.Password, record.PasswordHash); err != nil {
		a.Logger.Debug("login failed for %s", payload.Email)
		return ErrInvalidCredentials
	}

	return a.respondWithSession(c, record, fiber.StatusOK)
}

// GoogleLoginPayload carries the Google-issued identity token.
type GoogleLoginPayload struct {
	Credential string `form:"credential" json:"credential"`
}

// Validate will validate the payload
func (r GoogleLoginPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Credential, validation.Required),
		)
	}, "Invalid google login payload")
}

// GoogleLogin signs in with a verified Google identity token. It links the
// Google subject to an existing account by email, or provisions a new
// account on first sign-in.
func (a *AuthController) GoogleLogin(c *fiber.Ctx) error {
	payload := new(GoogleLoginPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()

	profile, err := a.Google.VerifyIDToken(ctx, payload.Credential)
	if err != nil {
		a.Logger.Debug("google login rejected: %v", err)
		return ErrInvalidCredentials
	}

	record, err := a.Repo.Users().GetByGoogleID(ctx, profile.Subject)
	if err == nil {
		return a.respondWithSession(c, record, fiber.StatusOK)
	}
	if !repository.IsRecordNotFound(err) {
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up account")
	}

	record, err = a.Repo.Users().GetByEmail(ctx, profile.Email)
	if err == nil {
		record.GoogleID = profile.Subject
		if record, err = a.Repo.Users().Update(ctx, record); err != nil {
			return errors.Wrap(err, errors.CategoryInternal, "failed to link account")
		}
		return a.respondWithSession(c, record, fiber.StatusOK)
	}
	if !repository.IsRecordNotFound(err) {
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up account")
	}

	record, err = a.Repo.Users().Create(ctx, &User{
		Email:           profile.Email,
		GoogleID:        profile.Subject,
		FullName:        profile.Name,
		ProfilePhotoURL: profile.Picture,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create account")
	}

	return a.respondWithSession(c, record, fiber.StatusCreated)
}

// Logout clears the session cookie. The credential itself stays valid until
// expiry; there is no server-side revocation.
func (a *AuthController) Logout(c *fiber.Ctx) error {
	a.Transport.Clear(c)
	return c.JSON(fiber.Map{"message": "Logged out"})
}

// ForgotPasswordPayload requests a recovery token.
type ForgotPasswordPayload struct {
	Email string `form:"email" json:"email"`
}

// Validate will validate the payload
func (r ForgotPasswordPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Email, validation.Required, is.Email),
		)
	}, "Invalid password reset payload")
}

func (a *AuthController) ForgotPassword(c *fiber.Ctx) error {
	payload := new(ForgotPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	if err := a.Reset.RequestReset(c.UserContext(), payload.Email); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": resetRequestedMessage})
}

// ResetPasswordPayload redeems a recovery token.
type ResetPasswordPayload struct {
	Token    string `form:"token" json:"token"`
	Password string `form:"password" json:"password"`
}

// Validate will validate the payload
func (r ResetPasswordPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Token, validation.Required),
			validation.Field(&r.Password, validation.Required, validation.Length(8, 100)),
		)
	}, "Invalid password reset payload")
}

func (a *AuthController) ResetPassword(c *fiber.Ctx) error {
	payload := new(ResetPasswordPayload)

	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	if err := a.Reset.Redeem(c.UserContext(), payload.Token, payload.Password); err != nil {
		return err
	}

	return c.JSON(fiber.Map{"message": "Password has been reset"})
}

// Me returns the authenticated account.
func (a *AuthController) Me(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	record, err := a.Repo.Users().GetByID(c.UserContext(), user.ID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}

	return c.JSON(fiber.Map{"user": record})
}

func (a *AuthController) respondWithSession(c *fiber.Ctx, record *User, status int) error {
	token, err := a.Tokens.Issue(record.AsIdentity())
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to issue session")
	}

	a.Transport.Attach(c, token)

	return c.Status(status).JSON(fiber.Map{
		"user":  record,
		"token": token,
	})
}
