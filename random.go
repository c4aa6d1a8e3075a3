package sochx

import (
	"crypto/rand"
	"encoding/hex"

	"github.com/goliatone/go-errors"
)

// ResetTokenBytes is the entropy of a recovery token before hex encoding.
// 32 bytes keeps the token comfortably unguessable.
const ResetTokenBytes = 32

// HexSecretGenerator implements SecretGenerator with crypto/rand.
type HexSecretGenerator struct{}

// Generate returns n random bytes hex encoded.
func (HexSecretGenerator) Generate(n int) (string, error) {
	if n <= 0 {
		return "", errors.New("secret length must be positive", errors.CategoryBadInput)
	}

	buf := make([]byte, n)
	if _, err := rand.Read(buf); err != nil {
		return "", errors.Wrap(err, errors.CategoryInternal, "failed to read random bytes")
	}

	return hex.EncodeToString(buf), nil
}
