package sochx

import (
	"context"
	"fmt"
	"time"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
	"github.com/uptrace/bun"
)

const stageCompletionMax = 100

// ProjectsController serves project and stage-progress endpoints. Every
// route is owner scoped.
type ProjectsController struct {
	Logger     Logger
	Repo       RepositoryManager
	Dispatcher *NotificationDispatcher
}

func (a *ProjectsController) Register(router fiber.Router, guard *Guard) {
	group := router.Group("/projects", guard.Authenticate)

	group.Get("/", a.List)
	group.Post("/", a.Create)
	group.Get("/:id", a.Show)
	group.Put("/:id/stage", a.SetCurrentStage)
	group.Put("/:id/stages/:stage", a.UpdateStage)
}

// ProjectCreatePayload is the new project request.
type ProjectCreatePayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	Field       string `form:"field" json:"field"`
	Objective   string `form:"objective" json:"objective"`
	ProposalURL string `form:"proposal_url" json:"proposal_url"`
}

// Validate will validate the payload
func (r ProjectCreatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
		)
	}, "Invalid project payload")
}

// Create stores the project and seeds one progress row per pipeline stage,
// all in one transaction.
func (a *ProjectsController) Create(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	payload := new(ProjectCreatePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	record := &Project{
		OwnerID:     user.ID,
		Title:       payload.Title,
		Description: payload.Description,
		Field:       payload.Field,
		Objective:   payload.Objective,
		ProposalURL: payload.ProposalURL,
	}

	err := a.Repo.RunInTx(c.UserContext(), nil, func(ctx context.Context, tx bun.Tx) error {
		stored, err := a.Repo.Projects().CreateTx(ctx, tx, record)
		if err != nil {
			return err
		}
		record = stored

		stages := make([]*StageProgress, 0, len(AllJourneyStages()))
		for _, stage := range AllJourneyStages() {
			stages = append(stages, &StageProgress{
				ProjectID: record.ID,
				Stage:     stage,
			})
		}

		return a.Repo.Projects().CreateStagesTx(ctx, tx, stages)
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create project")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"project": record})
}

func (a *ProjectsController) List(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	records, err := a.Repo.Projects().ListForOwner(c.UserContext(), user.ID)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list projects")
	}

	return c.JSON(fiber.Map{"projects": records})
}

func (a *ProjectsController) Show(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid project id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	record, err := a.Repo.Projects().GetForOwner(c.UserContext(), id, user.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Project not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load project")
	}

	return c.JSON(fiber.Map{"project": record})
}

// CurrentStagePayload moves the project pointer along the pipeline.
type CurrentStagePayload struct {
	Stage JourneyStage `form:"stage" json:"stage"`
}

// Validate will validate the payload
func (r CurrentStagePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Stage, validation.Required, validation.By(validateJourneyStage)),
		)
	}, "Invalid stage payload")
}

func (a *ProjectsController) SetCurrentStage(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid project id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	payload := new(CurrentStagePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()

	record, err := a.Repo.Projects().GetForOwner(ctx, id, user.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Project not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load project")
	}

	if err := a.Repo.Projects().SetCurrentStage(ctx, record.ID, payload.Stage); err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update stage")
	}

	record.CurrentStage = payload.Stage
	return c.JSON(fiber.Map{"project": record})
}

// StageUpdatePayload updates one stage's progress.
type StageUpdatePayload struct {
	Completion       int    `form:"completion" json:"completion"`
	MilestoneTitle   string `form:"milestone_title" json:"milestone_title"`
	MilestoneDueDate string `form:"milestone_due_date" json:"milestone_due_date"`
	Notes            string `form:"notes" json:"notes"`
}

// Validate will validate the payload
func (r StageUpdatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Completion, validation.Min(0), validation.Max(stageCompletionMax)),
		)
	}, "Invalid stage progress payload")
}

// UpdateStage upserts the (project, stage) progress row. Reaching full
// completion dispatches a milestone notification to the owner.
func (a *ProjectsController) UpdateStage(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid project id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	stage := JourneyStage(c.Params("stage"))
	if !stage.IsValid() {
		return errors.New("unknown journey stage", errors.CategoryValidation).
			WithCode(errors.CodeBadRequest)
	}

	payload := new(StageUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()

	project, err := a.Repo.Projects().GetForOwner(ctx, id, user.ID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Project not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load project")
	}

	record := &StageProgress{
		ProjectID:      project.ID,
		Stage:          stage,
		Completion:     payload.Completion,
		MilestoneTitle: payload.MilestoneTitle,
		Notes:          payload.Notes,
	}

	if payload.MilestoneDueDate != "" {
		due, err := parseDate(payload.MilestoneDueDate)
		if err != nil {
			return errors.New("Invalid milestone due date", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest)
		}
		record.MilestoneDueDate = &due
	}

	stored, err := a.Repo.Projects().UpsertStage(ctx, record)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update stage progress")
	}

	if stored.Completion >= stageCompletionMax && a.Dispatcher != nil {
		message := fmt.Sprintf("You completed the %s stage of %s", stage, project.Title)
		if _, err := a.Dispatcher.Dispatch(ctx, user.ID, NotificationMilestoneCompleted, message, map[string]any{
			"project_id": project.ID.String(),
			"stage":      string(stage),
		}); err != nil {
			a.Logger.Error("milestone notification failed: %v", err)
		}
	}

	return c.JSON(fiber.Map{"stage": stored})
}

// parseDate accepts RFC3339 timestamps and bare dates.
func parseDate(value string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339, value); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02", value)
}
