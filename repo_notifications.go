package sochx

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Notifications is the notification store. Rows are created by the
// dispatcher, marked read by their owner, never deleted.
type Notifications interface {
	Create(ctx context.Context, record *Notification) (*Notification, error)
	ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error)
	MarkRead(ctx context.Context, id, userID uuid.UUID) error
}

type notifications struct {
	repository.Repository[*Notification]
	db *bun.DB
}

var _ Notifications = (*notifications)(nil)

func NewNotificationsRepository(db *bun.DB) Notifications {
	repo := repository.NewRepository[*Notification](db, repository.ModelHandlers[*Notification]{
		NewRecord: func() *Notification { return &Notification{} },
		GetID: func(record *Notification) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Notification, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	return &notifications{
		Repository: repo,
		db:         db,
	}
}

func (a *notifications) Create(ctx context.Context, record *Notification) (*Notification, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CreatedAt == nil {
		now := time.Now()
		record.CreatedAt = &now
	}
	return a.Repository.CreateTx(ctx, a.db, record)
}

func (a *notifications) ListForUser(ctx context.Context, userID uuid.UUID, limit int) ([]*Notification, error) {
	var records []*Notification

	err := a.db.NewSelect().
		Model(&records).
		Where("?TableAlias.user_id = ?", userID).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	return records, err
}

// MarkRead scopes the update to the owner so one user cannot mark another
// user's notification. A miss, unknown id or foreign owner alike, reports
// not-found.
func (a *notifications) MarkRead(ctx context.Context, id, userID uuid.UUID) error {
	res, err := a.db.NewUpdate().
		Model((*Notification)(nil)).
		Set("read_at = ?", time.Now()).
		Where("id = ?", id).
		Where("user_id = ?", userID).
		Exec(ctx)

	if err != nil {
		return err
	}

	affected, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if affected == 0 {
		return repository.NewRecordNotFound().
			WithMetadata(map[string]any{"id": id.String()})
	}

	return nil
}
