package sochx

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// NotificationsController serves the owner's notification feed.
type NotificationsController struct {
	Logger Logger
	Repo   RepositoryManager
}

func (a *NotificationsController) Register(router fiber.Router, guard *Guard) {
	group := router.Group("/notifications", guard.Authenticate)

	group.Get("/", a.List)
	group.Put("/:id/read", a.MarkRead)
}

func (a *NotificationsController) List(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	limit := c.QueryInt("limit", defaultListLimit)

	records, err := a.Repo.Notifications().ListForUser(c.UserContext(), user.ID, limit)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list notifications")
	}

	return c.JSON(fiber.Map{"notifications": records})
}

func (a *NotificationsController) MarkRead(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid notification id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	if err := a.Repo.Notifications().MarkRead(c.UserContext(), id, user.ID); err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Notification not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to mark notification read")
	}

	return c.SendStatus(fiber.StatusNoContent)
}
