package sochx

import (
	"github.com/goliatone/go-errors"
	"golang.org/x/crypto/bcrypt"
)

// DefaultBcryptCost matches the cost the platform has always used; existing
// hashes keep verifying if it changes.
const DefaultBcryptCost = 10

// BcryptAuthenticator implements PasswordAuthenticator with bcrypt.
type BcryptAuthenticator struct {
	cost int
}

func NewBcryptAuthenticator(cost int) *BcryptAuthenticator {
	if cost < bcrypt.MinCost || cost > bcrypt.MaxCost {
		cost = DefaultBcryptCost
	}
	return &BcryptAuthenticator{cost: cost}
}

// HashPassword will generate a password hash.
func (b *BcryptAuthenticator) HashPassword(password string) (string, error) {
	if password == "" {
		return "", errors.New("password must not be empty", errors.CategoryValidation)
	}

	h, err := bcrypt.GenerateFromPassword([]byte(password), b.cost)
	if err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to hash password")
	}

	return string(h), nil
}

// ComparePasswordAndHash validates the given cleartext password against the
// stored hash.
func (b *BcryptAuthenticator) ComparePasswordAndHash(password, hash string) error {
	if err := bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)); err != nil {
		if errors.Is(err, bcrypt.ErrMismatchedHashAndPassword) {
			return ErrInvalidCredentials
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to compare password hash")
	}
	return nil
}
