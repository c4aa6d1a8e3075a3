package sochx

import (
	validation "github.com/go-ozzo/ozzo-validation"
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
	"github.com/google/uuid"
)

const defaultListLimit = 50

// UsersController serves profile endpoints.
type UsersController struct {
	Logger Logger
	Repo   RepositoryManager
}

func (a *UsersController) Register(router fiber.Router, guard *Guard) {
	group := router.Group("/users", guard.Authenticate)

	group.Get("/", a.List)
	group.Get("/me", a.Me)
	group.Put("/me", a.UpdateProfile)
	group.Get("/:id", a.Show)
}

// Me returns the caller's own profile.
func (a *UsersController) Me(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	record, err := a.Repo.Users().GetByID(c.UserContext(), user.ID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}

	return c.JSON(fiber.Map{"user": record})
}

func (a *UsersController) List(c *fiber.Ctx) error {
	limit := c.QueryInt("limit", defaultListLimit)

	records, err := a.Repo.Users().List(c.UserContext(), limit)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list users")
	}

	return c.JSON(fiber.Map{"users": records})
}

func (a *UsersController) Show(c *fiber.Ctx) error {
	id, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return errors.New("Invalid user id", errors.CategoryBadInput).
			WithCode(errors.CodeBadRequest)
	}

	record, err := a.Repo.Users().GetByID(c.UserContext(), id.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return errors.New("User not found", errors.CategoryNotFound).
				WithCode(errors.CodeNotFound)
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load user")
	}

	return c.JSON(fiber.Map{"user": record})
}

// ProfileUpdatePayload carries the self-service profile fields. Email, role
// and password are not editable here.
type ProfileUpdatePayload struct {
	FullName             string       `form:"full_name" json:"full_name"`
	AcademicLevel        string       `form:"academic_level" json:"academic_level"`
	IntendedFieldOfStudy string       `form:"intended_field_of_study" json:"intended_field_of_study"`
	ResearchInterests    []string     `form:"research_interests" json:"research_interests"`
	SkillTags            []string     `form:"skill_tags" json:"skill_tags"`
	ProfilePhotoURL      string       `form:"profile_photo_url" json:"profile_photo_url"`
	CurrentJourneyStage  JourneyStage `form:"current_journey_stage" json:"current_journey_stage"`
}

// Validate will validate the payload
func (r ProfileUpdatePayload) Validate() *errors.Error {
	return errors.ValidateWithOzzo(func() error {
		return validation.ValidateStruct(&r,
			validation.Field(&r.FullName, validation.Required, validation.Length(1, 200)),
			validation.Field(&r.CurrentJourneyStage, validation.By(validateJourneyStage)),
		)
	}, "Invalid profile payload")
}

func validateJourneyStage(value any) error {
	stage, _ := value.(JourneyStage)
	if stage == "" {
		return nil
	}
	if !stage.IsValid() {
		return errors.New("unknown journey stage", errors.CategoryValidation)
	}
	return nil
}

func (a *UsersController) UpdateProfile(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	payload := new(ProfileUpdatePayload)
	if err := c.BodyParser(payload); err != nil {
		return errors.Wrap(err, errors.CategoryBadInput, "Failed to parse request body").
			WithCode(errors.CodeBadRequest)
	}

	if err := payload.Validate(); err != nil {
		return err
	}

	ctx := c.UserContext()

	record, err := a.Repo.Users().GetByID(ctx, user.ID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load account")
	}

	record.FullName = payload.FullName
	record.AcademicLevel = payload.AcademicLevel
	record.IntendedFieldOfStudy = payload.IntendedFieldOfStudy
	record.ResearchInterests = payload.ResearchInterests
	record.SkillTags = payload.SkillTags
	record.ProfilePhotoURL = payload.ProfilePhotoURL
	if payload.CurrentJourneyStage != "" {
		record.CurrentJourneyStage = payload.CurrentJourneyStage
	}

	record, err = a.Repo.Users().Update(ctx, record)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to update profile")
	}

	return c.JSON(fiber.Map{"user": record})
}
