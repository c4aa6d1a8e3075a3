package sochx

import (
	"context"
	"time"

	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/uptrace/bun"
)

// ResetTokenTTL is how long a recovery token stays redeemable.
const ResetTokenTTL = 60 * time.Minute

// PasswordResetFlow implements time-boxed password recovery. Requesting a
// reset never discloses whether the email belongs to an account; redeeming
// runs in one transaction so a token cannot be consumed twice.
type PasswordResetFlow struct {
	repo    RepositoryManager
	hasher  PasswordAuthenticator
	secrets SecretGenerator
	mailer  Mailer
	logger  Logger
	now     func() time.Time
}

func NewPasswordResetFlow(repo RepositoryManager, hasher PasswordAuthenticator, secrets SecretGenerator, mailer Mailer, logger Logger) *PasswordResetFlow {
	if logger == nil {
		logger = defLogger{}
	}
	return &PasswordResetFlow{
		repo:    repo,
		hasher:  hasher,
		secrets: secrets,
		mailer:  mailer,
		logger:  logger,
		now:     time.Now,
	}
}

// WithClock overrides the time source for tests.
func (f *PasswordResetFlow) WithClock(now func() time.Time) *PasswordResetFlow {
	if now != nil {
		f.now = now
	}
	return f
}

// RequestReset mints a recovery token for the account behind email and mails
// it. Unknown emails and delivery failures are swallowed so the response is
// identical in every case. Outstanding tokens for the same account stay
// valid; they are all invalidated together on redemption.
func (f *PasswordResetFlow) RequestReset(ctx context.Context, email string) error {
	record, err := f.repo.Users().GetByEmail(ctx, email)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			f.logger.Debug("password reset requested for unknown email")
			return nil
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to look up account")
	}

	token, err := f.secrets.Generate(ResetTokenBytes)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to generate reset token")
	}

	_, err = f.repo.PasswordResetTokens().Create(ctx, &PasswordResetToken{
		Token:     token,
		UserID:    record.ID,
		ExpiresAt: f.now().Add(ResetTokenTTL),
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to store reset token")
	}

	if err := f.mailer.SendPasswordReset(ctx, record.Email, token); err != nil {
		f.logger.Error("password reset mail delivery failed: %v", err)
	}

	return nil
}

// Redeem exchanges a recovery token for a new password. Lookup, expiry check,
// hash update and token invalidation all run in one transaction. Every
// outstanding token for the account is deleted, not just the redeemed one.
func (f *PasswordResetFlow) Redeem(ctx context.Context, token, newPassword string) error {
	hash, err := f.hasher.HashPassword(newPassword)
	if err != nil {
		return err
	}

	return f.repo.RunInTx(ctx, nil, func(ctx context.Context, tx bun.Tx) error {
		record, err := f.repo.PasswordResetTokens().GetByTokenTx(ctx, tx, token)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidOrExpiredResetToken
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to look up reset token")
		}

		if record.Expired(f.now()) {
			return ErrInvalidOrExpiredResetToken
		}

		if err := f.repo.Users().ResetPasswordTx(ctx, tx, record.UserID, hash); err != nil {
			if repository.IsRecordNotFound(err) {
				return ErrInvalidOrExpiredResetToken
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to update password")
		}

		return f.repo.PasswordResetTokens().DeleteForUserTx(ctx, tx, record.UserID)
	})
}
