package sochx

import (
	"context"
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/go-ozzo/ozzo-validation/is"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/google/uuid"
)

// ResourcesController serves the curated resource library. Publishing is
// restricted to admins; targeted recommendations to mentors and admins.
type ResourcesController struct {
	Logger     Logger
	Repo       RepositoryManager
	Dispatcher *NotificationDispatcher
}

func (a *ResourcesController) Register(router fiber.Router, guard *Guard) {
	group := router.Group("/resources", guard.Authenticate)

	group.Get("/", a.List)
	group.Post("/", guard.RequireRole(RoleAdmin), a.Create)
	group.Post("/:id/bookmark", a.Bookmark)
	group.Post("/:id/view", a.RecordView)
	group.Post("/:id/recommend", guard.RequireRole(RoleMentor, RoleAdmin), a.Recommend)
}

func (a *ResourcesController) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)

	records, err := a.Repo.Resources().List(c.UserContext(), limit)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list resources")
	}

	return c.JSON(fiber.Map{"resources": records})
}

// ResourceCreatePayload publishes a resource.
type ResourceCreatePayload struct {
	Title       string `form:"title" json:"title"`
	Description string `form:"description" json:"description"`
	URL         string `form:"url" json:"url"`
	Subject     string `form:"subject" json:"subject"`
	Difficulty  string `form:"difficulty" json:"difficulty"`
}

// Validate will validate the payload
func (r ResourceCreatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
			validation.Field(&r.URL, validation.Required, is.URL),
		)
	}, "Invalid resource payload")
}

func (a *ResourcesController) Create(c *fiber.Ctx) error {
	payload := new(ResourceCreatePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()

	record, err := a.Repo.Resources().Create(ctx, &Resource{
		Title:       payload.Title,
		Description: payload.Description,
		URL:         payload.URL,
		Subject:     payload.Subject,
		Difficulty:  payload.Difficulty,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create resource")
	}

	a.announce(ctx, record)

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"resource": record})
}

// announce notifies every user about a newly published resource. Failures are
// logged; publication itself already succeeded.
func (a *ResourcesController) announce(ctx context.Context, record *Resource) {
	if a.Dispatcher == nil {
		return
	}

	ids, err := a.Repo.Users().ListIDs(ctx)
	if err != nil {
		a.Logger.Error("failed to list users for resource announcement: %v", err)
		return
	}

	message := fmt.Sprintf("New resource available: %s", record.Title)
	for _, id := range ids {
		if _, err := a.Dispatcher.Dispatch(ctx, id, NotificationResourceRecommendation, message, map[string]any{
			"resource_id": record.ID.String(),
		}); err != nil {
			a.Logger.Error("resource announcement failed for %s: %v", id, err)
		}
	}
}

func (a *ResourcesController) Bookmark(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid resource id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	record, err := a.Repo.Resources().UpsertBookmark(c.UserContext(), &ResourceBookmark{
		ResourceID: id,
		UserID:     user.ID,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to bookmark resource")
	}

	return c.JSON(fiber.Map{"bookmark": record})
}

func (a *ResourcesController) RecordView(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid resource id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	err = a.Repo.Resources().RecordView(c.UserContext(), &ResourceView{
		ResourceID: id,
		UserID:     user.ID,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to record view")
	}

	return c.SendStatus(fiber.StatusNoContent)
}

// RecommendPayload pushes a resource at a specific user.
type RecommendPayload struct {
	UserID string `form:"user_id" json:"user_id"`
	Note   string `form:"note" json:"note"`
}

// Validate will validate the payload
func (r RecommendPayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.UserID, validation.Required, is.UUID),
		)
	}, "Invalid recommendation payload")
}

func (a *ResourcesController) Recommend(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid resource id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	payload := new(RecommendPayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	recipient, err := uuid.Parse(payload.UserID)
	if err != nil {
		return errors.New("Invalid user id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	message := "A resource was recommended to you"
	if payload.Note != "" {
		message = fmt.Sprintf("%s: %s", message, payload.Note)
	}

	record, err := a.Dispatcher.Dispatch(c.UserContext(), recipient, NotificationResourceRecommendation, message, map[string]any{
		"resource_id": id.String(),
	})
	if err != nil {
		return err
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"notification": record})
}
