// Package profile provides the handlers for public user profiles and the
// paged views of a user's questions and answers.
package profile

import (
	"errors"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/db/controller/question"
	"github.com/devflowhq/devflow/internal/db/controller/user"
	"github.com/devflowhq/devflow/internal/web/handler"
)

// Path is the base path for user profiles. The :id parameter is the user's
// identity provider id.
const Path = handler.RootPath + "profile/:id"

// Service serves user profiles.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	app.Get(Path, s.Info)
	app.Get(Path+"/questions", s.Questions)
	app.Get(Path+"/answers", s.Answers)
}

// Info returns the user's profile with their contribution counts.
func (s *Service) Info(c *fiber.Ctx) error {
	info, err := user.GetInfo(s.db, c.Params("id"))
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return notFound(c)
		}

		log.Error().Err(err).Msg("profile info failed")

		return internalError(c, "Failed to load profile")
	}

	return c.JSON(info)
}

// Questions returns a page of the questions the user asked, most viewed first.
func (s *Service) Questions(c *fiber.Ctx) error {
	u, err := user.GetByExternalID(s.db, c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("profile lookup failed")

		return internalError(c, "Failed to load profile")
	}

	if u == nil {
		return notFound(c)
	}

	result, err := user.GetQuestions(s.db, u.ID, c.QueryInt("page", 1), c.QueryInt("pageSize", question.DefaultPageSize))
	if err != nil {
		return internalError(c, "Failed to load questions")
	}

	return c.JSON(result)
}

// Answers returns a page of the answers the user wrote, most upvoted first.
func (s *Service) Answers(c *fiber.Ctx) error {
	u, err := user.GetByExternalID(s.db, c.Params("id"))
	if err != nil {
		log.Error().Err(err).Msg("profile lookup failed")

		return internalError(c, "Failed to load profile")
	}

	if u == nil {
		return notFound(c)
	}

	result, err := user.GetAnswers(s.db, u.ID, c.QueryInt("page", 1), c.QueryInt("pageSize", question.DefaultPageSize))
	if err != nil {
		return internalError(c, "Failed to load answers")
	}

	return c.JSON(result)
}

func notFound(c *fiber.Ctx) error {
	return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
		"error": "User not found",
	})
}

func internalError(c *fiber.Ctx, msg string) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": msg,
	})
}
