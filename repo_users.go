package sochx

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

var resetUserPasswordSQL = `UPDATE "users" AS "usr"
SET
	"password_hash" = ?,
	"updated_at" = CURRENT_TIMESTAMP
WHERE
	"usr"."id" = ?
RETURNING *;`

// Users is the identity store.
type Users interface {
	GetByID(ctx context.Context, id string) (*User, error)
	GetByEmail(ctx context.Context, email string) (*User, error)
	GetByGoogleID(ctx context.Context, googleID string) (*User, error)
	Create(ctx context.Context, record *User) (*User, error)
	Update(ctx context.Context, record *User) (*User, error)
	ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error
	List(ctx context.Context, limit int) ([]*User, error)
	ListOthers(ctx context.Context, exclude uuid.UUID, limit int) ([]*User, error)
	ListIDs(ctx context.Context) ([]uuid.UUID, error)
	Count(ctx context.Context) (int, error)
}

type users struct {
	repository.Repository[*User]
	db *bun.DB
}

var _ Users = (*users)(nil)

func NewUsersRepository(db *bun.DB) Users {
	repo := repository.NewRepository[*User](db, repository.ModelHandlers[*User]{
		NewRecord: func() *User { return &User{} },
		GetID: func(u *User) uuid.UUID {
			if u == nil {
				return uuid.Nil
			}
			return u.ID
		},
		SetID: func(u *User, id uuid.UUID) {
			if u != nil {
				u.ID = id
			}
		},
		GetIdentifier: func() string {
			return "email"
		},
	})

	return &users{
		Repository: repo,
		db:         db,
	}
}

func (a *users) GetByID(ctx context.Context, id string) (*User, error) {
	return a.getByColumn(ctx, "id", id)
}

func (a *users) GetByEmail(ctx context.Context, email string) (*User, error) {
	return a.getByColumn(ctx, "email", email)
}

func (a *users) GetByGoogleID(ctx context.Context, googleID string) (*User, error) {
	return a.getByColumn(ctx, "google_id", googleID)
}

func (a *users) getByColumn(ctx context.Context, column, value string) (*User, error) {
	record := &User{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias."+column+" = ?", value).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{column: value})
		}
		return nil, err
	}

	return record, nil
}

func (a *users) Create(ctx context.Context, record *User) (*User, error) {
	prepareUserDefaults(record)
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *users) Update(ctx context.Context, record *User) (*User, error) {
	now := time.Now()
	record.UpdatedAt = &now
	return a.Repository.UpdateTx(ctx, a.db, record, repository.UpdateByID(record.ID.String()))
}

func (a *users) ResetPasswordTx(ctx context.Context, tx bun.IDB, id uuid.UUID, passwordHash string) error {
	res, err := a.Repository.RawTx(ctx, tx, resetUserPasswordSQL, passwordHash, id.String())
	if err != nil {
		return err
	}

	if len(res) == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}

func (a *users) List(ctx context.Context, limit int) ([]*User, error) {
	var records []*User

	err := a.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	return records, err
}

func (a *users) ListOthers(ctx context.Context, exclude uuid.UUID, limit int) ([]*User, error) {
	var records []*User

	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.id != ?", exclude).
		Limit(limit).
		Scan(ctx)

	return records, err
}

func (a *users) ListIDs(ctx context.Context) ([]uuid.UUID, error) {
	var ids []uuid.UUID

	err := a.db.NewSelect().
		Model((*User)(nil)).
		Column("id").
		Scan(ctx, &ids)

	return ids, err
}

func (a *users) Count(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*User)(nil)).Count(ctx)
}

func prepareUserDefaults(record *User) {
	if record == nil {
		return
	}

	if record.Role == "" {
		record.Role = RoleStudentResearcher
	}

	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
}
