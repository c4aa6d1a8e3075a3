package sochx_test

import (
	"encoding/hex"
	"testing"

	sochx "github.com/sochx/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHexSecretGenerator(t *testing.T) {
	gen := sochx.HexSecretGenerator{}

	t.Run("generates hex of twice the byte length", func(t *testing.T) {
		secret, err := gen.Generate(sochx.ResetTokenBytes)
		require.NoError(t, err)
		assert.Len(t, secret, sochx.ResetTokenBytes*2)

		_, err = hex.DecodeString(secret)
		assert.NoError(t, err)
	})

	t.Run("successive secrets differ", func(t *testing.T) {
		first, err := gen.Generate(16)
		require.NoError(t, err)
		second, err := gen.Generate(16)
		require.NoError(t, err)
		assert.NotEqual(t, first, second)
	})

	t.Run("rejects non-positive lengths", func(t *testing.T) {
		_, err := gen.Generate(0)
		assert.Error(t, err)
		_, err = gen.Generate(-5)
		assert.Error(t, err)
	})
}
