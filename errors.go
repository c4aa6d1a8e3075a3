package sochx

import "github.com/goliatone/go-errors"

const (
	TextCodeAuthRequired      = "auth_required"
	TextCodeTokenInvalid      = "token_invalid"
	TextCodeTokenExpired      = "token_expired"
	TextCodeTokenMalformed    = "token_malformed"
	TextCodeIdentityNotFound  = "identity_not_found"
	TextCodeForbidden         = "insufficient_permissions"
	TextCodeBadCredentials    = "invalid_credentials"
	TextCodeResetTokenInvalid = "reset_token_invalid"
	TextCodeEmailExists       = "email_in_use"
)

// ErrAuthenticationRequired is returned when a request carries no credential.
var ErrAuthenticationRequired = errors.New("Authentication required", errors.CategoryAuth).
	WithTextCode(TextCodeAuthRequired).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidOrExpiredToken folds every credential verification failure into a
// single caller-visible error.
var ErrInvalidOrExpiredToken = errors.New("Invalid or expired token", errors.CategoryAuth).
	WithTextCode(TextCodeTokenInvalid).
	WithCode(errors.CodeUnauthorized)

// ErrTokenExpired is returned by TokenService when a credential is past its
// expiry instant.
var ErrTokenExpired = errors.New("token is expired", errors.CategoryAuth).
	WithTextCode(TextCodeTokenExpired).
	WithCode(errors.CodeUnauthorized)

// ErrTokenMalformed is returned by TokenService when a credential cannot be
// parsed or its signature does not match.
var ErrTokenMalformed = errors.New("token is malformed", errors.CategoryAuth).
	WithTextCode(TextCodeTokenMalformed).
	WithCode(errors.CodeUnauthorized)

// ErrIdentityNotFound is returned when a valid credential references an
// account that no longer exists.
var ErrIdentityNotFound = errors.New("User not found", errors.CategoryAuth).
	WithTextCode(TextCodeIdentityNotFound).
	WithCode(errors.CodeUnauthorized)

// ErrInsufficientPermissions is returned on a role mismatch.
var ErrInsufficientPermissions = errors.New("Insufficient permissions", errors.CategoryAuthz).
	WithTextCode(TextCodeForbidden).
	WithCode(errors.CodeForbidden)

// ErrInvalidCredentials is the uniform login failure, identical for unknown
// email, password-less account, and wrong password.
var ErrInvalidCredentials = errors.New("Invalid credentials", errors.CategoryAuth).
	WithTextCode(TextCodeBadCredentials).
	WithCode(errors.CodeUnauthorized)

// ErrInvalidOrExpiredResetToken covers missing, expired and already-consumed
// recovery tokens.
var ErrInvalidOrExpiredResetToken = errors.New("Invalid or expired token", errors.CategoryValidation).
	WithTextCode(TextCodeResetTokenInvalid).
	WithCode(errors.CodeBadRequest)

// ErrEmailAlreadyInUse is returned on the registration path only.
var ErrEmailAlreadyInUse = errors.New("Email already in use", errors.CategoryConflict).
	WithTextCode(TextCodeEmailExists).
	WithCode(errors.CodeConflict)
