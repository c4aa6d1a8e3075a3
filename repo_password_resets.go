package sochx

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// PasswordResetTokens is the recovery-token store. Redemption runs inside a
// transaction so lookup and delete-many cannot race a concurrent redemption.
type PasswordResetTokens interface {
	Create(ctx context.Context, record *PasswordResetToken) (*PasswordResetToken, error)
	GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*PasswordResetToken, error)
	DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error
	CountForUser(ctx context.Context, userID uuid.UUID) (int, error)
}

type passwordResets struct {
	repository.Repository[*PasswordResetToken]
	db *bun.DB
}

var _ PasswordResetTokens = (*passwordResets)(nil)

func NewPasswordResetTokensRepository(db *bun.DB) PasswordResetTokens {
	repo := repository.NewRepository[*PasswordResetToken](db, repository.ModelHandlers[*PasswordResetToken]{
		NewRecord: func() *PasswordResetToken { return &PasswordResetToken{} },
		GetID: func(record *PasswordResetToken) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *PasswordResetToken, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
		GetIdentifier: func() string {
			return "token"
		},
	})

	return &passwordResets{
		Repository: repo,
		db:         db,
	}
}

func (a *passwordResets) Create(ctx context.Context, record *PasswordResetToken) (*PasswordResetToken, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *passwordResets) GetByTokenTx(ctx context.Context, tx bun.IDB, token string) (*PasswordResetToken, error) {
	record := &PasswordResetToken{}

	err := tx.NewSelect().
		Model(record).
		Where("?TableAlias.token = ?", token).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound()
		}
		return nil, err
	}

	return record, nil
}

// DeleteForUserTx removes every outstanding token for the identity, not only
// the one being redeemed.
func (a *passwordResets) DeleteForUserTx(ctx context.Context, tx bun.IDB, userID uuid.UUID) error {
	_, err := tx.NewDelete().
		Model((*PasswordResetToken)(nil)).
		Where("user_id = ?", userID).
		Exec(ctx)

	return err
}

func (a *passwordResets) CountForUser(ctx context.Context, userID uuid.UUID) (int, error) {
	return a.db.NewSelect().
		Model((*PasswordResetToken)(nil)).
		Where("user_id = ?", userID).
		Count(ctx)
}
