package sochx

import (
	"context"
	"time"

	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

// Projects is the project and stage-progress store.
type Projects interface {
	CreateTx(ctx context.Context, tx bun.IDB, record *Project) (*Project, error)
	CreateStagesTx(ctx context.Context, tx bun.IDB, stages []*StageProgress) error
	ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*Project, error)
	GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*Project, error)
	UpsertStage(ctx context.Context, record *StageProgress) (*StageProgress, error)
	SetCurrentStage(ctx context.Context, id uuid.UUID, stage JourneyStage) error
	Count(ctx context.Context) (int, error)
}

type projects struct {
	repository.Repository[*Project]
	db *bun.DB
}

var _ Projects = (*projects)(nil)

func NewProjectsRepository(db *bun.DB) Projects {
	repo := repository.NewRepository[*Project](db, repository.ModelHandlers[*Project]{
		NewRecord: func() *Project { return &Project{} },
		GetID: func(record *Project) uuid.UUID {
			if record == nil {
				return uuid.Nil
			}
			return record.ID
		},
		SetID: func(record *Project, id uuid.UUID) {
			if record != nil {
				record.ID = id
			}
		},
	})

	return &projects{
		Repository: repo,
		db:         db,
	}
}

func (a *projects) CreateTx(ctx context.Context, tx bun.IDB, record *Project) (*Project, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	if record.CurrentStage == "" {
		record.CurrentStage = StageExploration
	}
	return a.Repository.CreateTx(ctx, tx, record)
}

func (a *projects) CreateStagesTx(ctx context.Context, tx bun.IDB, stages []*StageProgress) error {
	for _, s := range stages {
		if s.ID == uuid.Nil {
			s.ID = uuid.New()
		}
	}

	_, err := tx.NewInsert().Model(&stages).Exec(ctx)
	return err
}

func (a *projects) ListForOwner(ctx context.Context, ownerID uuid.UUID) ([]*Project, error) {
	var records []*Project

	err := a.db.NewSelect().
		Model(&records).
		Relation("Stages").
		Where("?TableAlias.owner_id = ?", ownerID).
		Order("created_at DESC").
		Scan(ctx)

	return records, err
}

func (a *projects) GetForOwner(ctx context.Context, id, ownerID uuid.UUID) (*Project, error) {
	record := &Project{}

	err := a.db.NewSelect().
		Model(record).
		Relation("Stages").
		Where("?TableAlias.id = ?", id).
		Where("?TableAlias.owner_id = ?", ownerID).
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

// UpsertStage inserts or replaces the (project, stage) progress row.
func (a *projects) UpsertStage(ctx context.Context, record *StageProgress) (*StageProgress, error) {
	if record.ID == uuid.Nil {
		record.ID = uuid.New()
	}
	now := time.Now()
	record.UpdatedAt = &now

	_, err := a.db.NewInsert().
		Model(record).
		On("CONFLICT (project_id, stage) DO UPDATE").
		Set("completion = EXCLUDED.completion").
		Set("milestone_title = EXCLUDED.milestone_title").
		Set("milestone_due_date = EXCLUDED.milestone_due_date").
		Set("notes = EXCLUDED.notes").
		Set("updated_at = EXCLUDED.updated_at").
		Exec(ctx)

	if err != nil {
		return nil, err
	}

	stored := &StageProgress{}
	err = a.db.NewSelect().
		Model(stored).
		Where("?TableAlias.project_id = ?", record.ProjectID).
		Where("?TableAlias.stage = ?", record.Stage).
		Limit(1).
		Scan(ctx)

	return stored, err
}

func (a *projects) SetCurrentStage(ctx context.Context, id uuid.UUID, stage JourneyStage) error {
	_, err := a.db.NewUpdate().
		Model((*Project)(nil)).
		Set("current_stage = ?", stage).
		Set("updated_at = ?", time.Now()).
		Where("id = ?", id).
		Exec(ctx)

	return err
}

func (a *projects) Count(ctx context.Context) (int, error) {
	return a.db.NewSelect().Model((*Project)(nil)).Count(ctx)
}
