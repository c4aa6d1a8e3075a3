package sochx

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
)

const adminUserListLimit = 100

// AdminController serves user listings and platform aggregates for admins.
type AdminController struct {
	Logger Logger
	Repo   RepositoryManager
}

func (a *AdminController) Register(router fiber.Router, guard *Guard) {
	group := router.Group("/admin", guard.Authenticate, guard.RequireRole(RoleAdmin))

	group.Get("/users", a.Users)
	group.Get("/analytics", a.Analytics)
}

func (a *AdminController) Users(c *fiber.Ctx) error {
	records, err := a.Repo.Users().List(c.UserContext(), adminUserListLimit)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}

	return c.JSON(fiber.Map{"users": records})
}

func (a *AdminController) Analytics(c *fiber.Ctx) error {
	ctx := c.UserContext()

	users, err := a.Repo.Users().Count(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to count users")
	}

	projects, err := a.Repo.Projects().Count(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to count projects")
	}

	threads, err := a.Repo.Community().CountThreads(ctx)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to count threads")
	}

	return c.JSON(fiber.Map{
		"stats": fiber.Map{
			"users":    users,
			"projects": projects,
			"threads":  threads,
		},
	})
}
