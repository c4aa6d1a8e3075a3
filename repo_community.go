package sochx

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Community is the discussion store.
type Community interface {
	ListThreads(ctx context.Context, limit int) ([]*DiscussionThread, error)
	CreateThread(ctx context.Context, record *DiscussionThread) (*DiscussionThread, error)
	GetThread(ctx context.Context, id uuid.UUID) (*DiscussionThread, error)
	CreatePost(ctx context.Context, record *DiscussionPost) (*DiscussionPost, error)
	GetPost(ctx context.Context, id uuid.UUID) (*DiscussionPost, error)
	TouchThread(ctx context.Context, id uuid.UUID) error
	CountThreads(ctx context.Context) (int, error)
}

type community struct {
	threads repository.Repository[*DiscussionThread]
	posts   repository.Repository[*DiscussionPost]
	db      *bun.DB
}

var _ Community = (*community)(nil)

func NewCommunityRepository(db *bun.DB) Community {
	threads := repository.NewRepository[*DiscussionThread](db, repository.ModelHandlers[*DiscussionThread]{
		NewRecord: func() *DiscussionThread { return &DiscussionThread{} },
		GetID: func(record *DiscussionThread) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *DiscussionThread, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	posts := repository.NewRepository[*DiscussionPost](db, repository.ModelHandlers[*DiscussionPost]{
		NewRecord: func() *DiscussionPost { return &DiscussionPost{} },
		GetID: func(record *DiscussionPost) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *DiscussionPost, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	return &community{
		threads: threads,
		posts:   posts,
		db:      db,
	}
}

func (a *community) ListThreads(ctx context.Context, limit int) ([]*DiscussionThread, error) {
	var records []*DiscussionThread

	err := a.db.NewSelect().
		Model(&records).
		Order("updated_at DESC").
		Limit(limit).
		Scan(ctx)

	return records, err
}

func (a *community) CreateThread(ctx context.Context, record *DiscussionThread) (*DiscussionThread, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.threads.CreateTx(ctx, a.db, record)
}

// GetThread loads the thread with posts in chronological order.
func (a *community) GetThread(ctx context.Context, id uuid.UUID) (*DiscussionThread, error) {
	record := &DiscussionThread{}

	err := a.db.NewSelect().
		Model(record).
		Relation("Posts", func(q *bun.SelectQuery) *bun.SelectQuery {
			return q.Order("created_at ASC")
		}).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *community) CreatePost(ctx context.Context, record *DiscussionPost) (*DiscussionPost, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	return a.posts.CreateTx(ctx, a.db, record)
}

func (a *community) GetPost(ctx context.Context, id uuid.UUID) (*DiscussionPost, error) {
	record := &DiscussionPost{}

	err := a.db.NewSelect().
		Model(record).
		Where("?TableAlias.id = ?", id).
		Limit(1).
		Scan(ctx)

	if err != nil {
		if repository.IsRecordNotFound(err) {
			return nil, repository.NewRecordNotFound().
				WithMetadata(map[string]any{"id": id.String()})
		}
		return nil, err
	}

	return record, nil
}

func (a *community) TouchThread(ctx context.Context, id uuid.UUID) error {
	_, err := a.db.NewUpdate().
		Model((*DiscussionThread)(nil)).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	return err
}

func (a *community) CountThreads(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*DiscussionThread)(nil)).Count(ctx)
}
