package sochx

import (
	"fmt"

	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

// CommunityController serves discussion threads and posts.
type CommunityController struct {
	Logger     Logger
	Repo       RepositoryManager
	Dispatcher *NotificationDispatcher
}

func (a *CommunityController) Register(router fiber.Router, guard *Guard) {
	group := router.Group("/community", guard.Authenticate)

	group.Get("/threads", a.ListThreads)
	group.Post("/threads", a.CreateThread)
	group.Get("/threads/:id", a.ShowThread)
	group.Post("/threads/:id/posts", a.CreatePost)
}

func (a *CommunityController) ListThreads(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)

	records, err := a.Repo.Community().ListThreads(c.UserContext(), limit)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list threads")
	}

	return c.JSON(fiber.Map{"threads": records})
}

// ThreadCreatePayload opens a new discussion thread.
type ThreadCreatePayload struct {
	Title    string `form:"title" json:"title"`
	Category string `form:"category" json:"category"`
}

// Validate will validate the payload
func (r ThreadCreatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Title, validation.Required, validation.Length(1, 300)),
			validation.Field(&r.Category, validation.Required, validation.Length(1, 100)),
		)
	}, "Invalid thread payload")
}

func (a *CommunityController) CreateThread(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	payload := new(ThreadCreatePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	record, err := a.Repo.Community().CreateThread(c.UserContext(), &DiscussionThread{
		Title:       payload.Title,
		Category:    payload.Category,
		CreatedByID: user.ID,
	})
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create thread")
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"thread": record})
}

func (a *CommunityController) ShowThread(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid thread id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	record, err := a.Repo.Community().GetThread(c.UserContext(), id)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Thread not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load thread")
	}

	return c.JSON(fiber.Map{"thread": record})
}

// PostCreatePayload adds a post to a thread. ParentID marks a reply.
type PostCreatePayload struct {
	Content  string `form:"content" json:"content"`
	ParentID string `form:"parent_id" json:"parent_id"`
}

// Validate will validate the payload
func (r PostCreatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.Content, validation.Required, validation.Length(1, 10000)),
		)
	}, "Invalid post payload")
}

// CreatePost stores the post, bumps the thread's activity timestamp, and
// notifies the author being replied to. Self-replies do not notify.
func (a *CommunityController) CreatePost(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	threadID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid thread id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	payload := new(PostCreatePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()

	thread, err := a.Repo.Community().GetThread(ctx, threadID)
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("Thread not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load thread")
	}

	record := &DiscussionPost{
		ThreadID: thread.ID,
		AuthorID: user.ID,
		Content:  payload.Content,
	}

	recipient := thread.CreatedByID

	if payload.ParentID != "" {
		parentID, err := uuid.Parse(payload.ParentID)
		if err != nil {
			return errors.New("Invalid parent post id", errors.CategoryBadInput).
				WithCode(errors.CodeBadRequest)
		}

		parent, err := a.Repo.Community().GetPost(ctx, parentID)
		if err != nil {
			if repository.IsRecordNotFound(err) {
				return errors.New("Parent post not found", errors.CategoryNotFound).
					WithCode(errors.CodeNotFound)
			}
			return errors.Wrap(err, errors.CategoryInternal, "failed to load parent post")
		}

		if parent.ThreadID != thread.ID {
			return errors.New("Parent post belongs to another thread", errors.CategoryValidation).
				WithCode(errors.CodeBadRequest)
		}

		record.ParentID = &parent.ID
		recipient = parent.AuthorID
	}

	record, err = a.Repo.Community().CreatePost(ctx, record)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to create post")
	}

	if err := a.Repo.Community().TouchThread(ctx, thread.ID); err != nil {
		a.Logger.Error("failed to touch thread %s: %v", thread.ID, err)
	}

	if recipient != user.ID && a.Dispatcher != nil {
		message := fmt.Sprintf("New reply in %q", thread.Title)
		if _, err := a.Dispatcher.Dispatch(ctx, recipient, NotificationCommunityReply, message, map[string]any{
			"thread_id": thread.ID.String(),
			"post_id":   record.ID.String(),
		}); err != nil {
			a.Logger.Error("reply notification failed: %v", err)
		}
	}

	return c.Status(fiber.StatusCreated).JSON(fiber.Map{"post": record})
}
