package sochx

import (
	"github.com/gofiber/fiber/v2"
	"github.com/goliatone/go-errors"
	"github.com/goliatone/go-repository-bun"
)

const defaultMatchLimit = 20
const matchCandidatePool = 200

// MatchingController serves ranked collaborator suggestions.
type MatchingController struct {
	Logger Logger
	Repo   RepositoryManager
}

func (a *MatchingController) Register(router fiber.Router, guard *Guard) {
	router.Get("/matching/suggested", guard.Authenticate, a.Matches)
}

func (a *MatchingController) Matches(c *fiber.Ctx) error {
	user, ok := CurrentUserFrom(c)
	if !ok {
		return ErrAuthenticationRequired
	}

	limit := c.QueryInt("limit", defaultMatchLimit)
	if limit <= 0 {
		limit = defaultMatchLimit
	}
	ctx := c.UserContext()

	profile, err := a.Repo.Users().GetByID(ctx, user.ID.String())
	if err != nil {
		if repository.IsRecordNotFound(err) {
			return ErrIdentityNotFound
		}
		return errors.Wrap(err, errors.CategoryInternal, "failed to load profile")
	}

	candidates, err := a.Repo.Users().ListOthers(ctx, user.ID, matchCandidatePool)
	if err != nil {
		return errors.Wrap(err, errors.CategoryInternal, "failed to list candidates")
	}

	return c.JSON(fiber.Map{"matches": RankMatches(profile, candidates, limit)})
}
