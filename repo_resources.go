package sochx

import (
	"context"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Resources is the curated-resource store.
type Resources interface {
	List(ctx context.Context, limit int) ([]*Resource, error)
	Create(ctx context.Context, record *Resource) (*Resource, error)
	UpsertBookmark(ctx context.Context, record *ResourceBookmark) (*ResourceBookmark, error)
	RecordView(ctx context.Context, record *ResourceView) error
}

type resources struct {
	repository.Repository[*Resource]
	db *bun.DB
}

var _ Resources = (*resources)(nil)

func NewResourcesRepository(db *bun.DB) Resources {
	repo := repository.NewRepository[*Resource](db, repository.ModelHandlers[*Resource]{
		NewRecord: func() *Resource { return &Resource{} },
		GetID: func(record *Resource) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Resource, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	return &resources{
		Repository: repo,
		db:         db,
	}
}

func (a *resources) List(ctx context.Context, limit int) ([]*Resource, error) {
	var records []*Resource

	err := a.db.NewSelect().
		Model(&records).
		Order("created_at DESC").
		Limit(limit).
		Scan(ctx)

	return records, err
}

func (a *resources) Create(ctx context.Context, record *Resource) (*Resource, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.Repository.CreateTx(ctx, a.db, record)
}

// UpsertBookmark is idempotent: bookmarking twice keeps the original row.
func (a *resources) UpsertBookmark(ctx context.Context, record *ResourceBookmark) (*ResourceBookmark, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	_, err := a.db.NewInsert().
		Model(record).
		On("CONFLICT (resource_id, user_id) DO NOTHING").
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	stored := &ResourceBookmark{}
	err = a.db.NewSelect().
		Model(stored).
		Where("?TableAlias.resource_id = ?", record.ResourceID).
		Where("?TableAlias.user_id = ?", record.UserID).
		Limit(1).
		Scan(ctx)

	return stored, err
}

func (a *resources) RecordView(ctx context.Context, record *ResourceView) error {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}

	_, err := a.db.NewInsert().Model(record).Exec(ctx)
	return err
}
