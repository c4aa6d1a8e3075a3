package sochx_test

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	sochx "github.com/sochx/platform"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/crypto/bcrypt"
)

func TestPasswordResetFlow_RequestReset(t *testing.T) {
	hasher := sochx.NewBcryptAuthenticator(bcrypt.MinCost)

	t.Run("stores a token and mails the link", func(t *testing.T) {
		account := &sochx.User{ID: uuid.New(), Email: "ada@example.com", FullName: "Ada"}
		repo := newFakeRepo(account)
		mailer := &fakeMailer{}

		flow := sochx.NewPasswordResetFlow(repo, hasher, fixedSecrets{token: "reset-token-1"}, mailer, noopLogger{})

		err := flow.RequestReset(context.Background(), "ada@example.com")
		require.NoError(t, err)

		count, err := repo.passwordResets.CountForUser(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)

		require.Len(t, mailer.sent, 1)
		assert.Equal(t, "ada@example.com", mailer.sent[0].email)
		assert.Equal(t, "reset-token-1", mailer.sent[0].token)
	})

	t.Run("unknown email succeeds without side effects", func(t *testing.T) {
		repo := newFakeRepo()
		mailer := &fakeMailer{}

		flow := sochx.NewPasswordResetFlow(repo, hasher, fixedSecrets{token: "unused"}, mailer, noopLogger{})

		err := flow.RequestReset(context.Background(), "nobody@example.com")
		require.NoError(t, err)
		assert.Empty(t, mailer.sent)
	})

	t.Run("mail delivery failure is swallowed", func(t *testing.T) {
		account := &sochx.User{ID: uuid.New(), Email: "ada@example.com"}
		repo := newFakeRepo(account)
		mailer := &fakeMailer{sendErr: errors.New("smtp down")}

		flow := sochx.NewPasswordResetFlow(repo, hasher, fixedSecrets{token: "reset-token-2"}, mailer, noopLogger{})

		err := flow.RequestReset(context.Background(), "ada@example.com")
		require.NoError(t, err)

		count, err := repo.passwordResets.CountForUser(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, 1, count)
	})

	t.Run("repeated requests keep every outstanding token", func(t *testing.T) {
		account := &sochx.User{ID: uuid.New(), Email: "ada@example.com"}
		repo := newFakeRepo(account)
		mailer := &fakeMailer{}

		first := sochx.NewPasswordResetFlow(repo, hasher, fixedSecrets{token: "token-a"}, mailer, noopLogger{})
		second := sochx.NewPasswordResetFlow(repo, hasher, fixedSecrets{token: "token-b"}, mailer, noopLogger{})

		require.NoError(t, first.RequestReset(context.Background(), "ada@example.com"))
		require.NoError(t, second.RequestReset(context.Background(), "ada@example.com"))

		count, err := repo.passwordResets.CountForUser(context.Background(), account.ID)
		require.NoError(t, err)
		assert.Equal(t, 2, count)
	})
}

func TestPasswordResetFlow_Redeem(t *testing.T) {
	hasher := sochx.NewBcryptAuthenticator(bcrypt.MinCost)
	ctx := context.Background()

	seed := func(t *testing.T, repo *fakeRepo, account *sochx.User, token string, expiresAt time.Time) {
		_, err := repo.passwordResets.Create(ctx, &sochx.PasswordResetToken{
			Token:     token,
			UserID:    account.ID,
			ExpiresAt: expiresAt,
		})
		require.NoError(t, err)
	}

	t.Run("updates the password and removes all tokens", func(t *testing.T) {
		account := &sochx.User{ID: uuid.New(), Email: "ada@example.com"}
		repo := newFakeRepo(account)
		seed(t, repo, account, "good-token", time.Now().Add(30*time.Minute))
		seed(t, repo, account, "other-token", time.Now().Add(30*time.Minute))

		flow := sochx.NewPasswordResetFlow(repo, hasher, sochx.HexSecretGenerator{}, &fakeMailer{}, noopLogger{})

		err := flow.Redeem(ctx, "good-token", "brand-new-password")
		require.NoError(t, err)

		assert.NoError(t, hasher.ComparePasswordAndHash("brand-new-password", account.PasswordHash))

		count, err := repo.passwordResets.CountForUser(ctx, account.ID)
		require.NoError(t, err)
		assert.Zero(t, count)
	})

	t.Run("rejects an unknown token", func(t *testing.T) {
		repo := newFakeRepo()
		flow := sochx.NewPasswordResetFlow(repo, hasher, sochx.HexSecretGenerator{}, &fakeMailer{}, noopLogger{})

		err := flow.Redeem(ctx, "missing-token", "whatever-password")
		assert.ErrorIs(t, err, sochx.ErrInvalidOrExpiredResetToken)
	})

	t.Run("rejects an expired token and keeps the password", func(t *testing.T) {
		account := &sochx.User{ID: uuid.New(), Email: "ada@example.com", PasswordHash: "original-hash"}
		repo := newFakeRepo(account)
		seed(t, repo, account, "stale-token", time.Now().Add(-time.Minute))

		flow := sochx.NewPasswordResetFlow(repo, hasher, sochx.HexSecretGenerator{}, &fakeMailer{}, noopLogger{})

		err := flow.Redeem(ctx, "stale-token", "whatever-password")
		assert.ErrorIs(t, err, sochx.ErrInvalidOrExpiredResetToken)
		assert.Equal(t, "original-hash", account.PasswordHash)
	})

	t.Run("a token cannot be redeemed twice", func(t *testing.T) {
		account := &sochx.User{ID: uuid.New(), Email: "ada@example.com"}
		repo := newFakeRepo(account)
		seed(t, repo, account, "one-shot", time.Now().Add(30*time.Minute))

		flow := sochx.NewPasswordResetFlow(repo, hasher, sochx.HexSecretGenerator{}, &fakeMailer{}, noopLogger{})

		require.NoError(t, flow.Redeem(ctx, "one-shot", "first-password"))

		err := flow.Redeem(ctx, "one-shot", "second-password")
		assert.ErrorIs(t, err, sochx.ErrInvalidOrExpiredResetToken)
		assert.NoError(t, hasher.ComparePasswordAndHash("first-password", account.PasswordHash))
	})
}
