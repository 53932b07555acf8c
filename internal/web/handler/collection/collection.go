// Package collection provides the handlers for the signed-in user's saved
// questions: the paged collection view and the bookmark toggle.
package collection

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/db/controller/user"
	"github.com/devflowhq/devflow/internal/web/handler"
	authmiddleware "github.com/devflowhq/devflow/internal/web/middleware/auth"
)

const (
	// Path is the path of the saved questions view.
	Path = handler.RootPath + "collection"

	// SavePath is the path of the bookmark toggle.
	SavePath = handler.RootPath + "api/questions/:id/save"
)

// Service serves the signed-in user's saved questions.
type Service struct {
	handler.Service
	cfg *config.Config
	db  *gorm.DB
	rev user.Revalidator
}

// Handler is the exported instance.
var Handler = Service{}

// Init registers routes. The revalidator may be nil when the page cache is
// disabled.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB, rev user.Revalidator) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg
	s.rev = rev

	app.Get(Path, s.List)
	app.Post(SavePath, s.ToggleSave)
}

// List returns a page of the current user's saved questions, optionally
// filtered by a title search and ordered by a named sort filter.
func (s *Service) List(c *fiber.Ctx) error {
	currentUser := authmiddleware.CurrentUser(c)
	if currentUser == nil {
		return unauthorized(c)
	}

	result, err := user.GetSavedQuestions(s.db, user.SavedQuestionsParams{
		ExternalID:  currentUser.ExternalID,
		SearchQuery: c.Query("q"),
		Filter:      c.Query("filter"),
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("pageSize", user.DefaultPageSize),
	})
	if err != nil {
		if errors.Is(err, user.ErrUserNotFound) {
			return unauthorized(c)
		}

		log.Error().Err(err).Msg("collection list failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load saved questions",
		})
	}

	return c.JSON(result)
}

// ToggleSave toggles the question's membership in the current user's saved
// set. Two toggles from the same state return to that state.
func (s *Service) ToggleSave(c *fiber.Ctx) error {
	currentUser := authmiddleware.CurrentUser(c)
	if currentUser == nil {
		return unauthorized(c)
	}

	questionID, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || questionID == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid question id",
		})
	}

	var in struct {
		Path string `json:"path"`
	}

	// The body is optional, it only carries the page path to refresh.
	_ = c.BodyParser(&in)

	err = user.ToggleSave(s.db, s.rev, user.ToggleSaveParams{
		UserID:     currentUser.ID,
		QuestionID: questionID,
		Path:       in.Path,
	})
	if err != nil {
		if errors.Is(err, user.ErrQuestionNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Question not found",
			})
		}

		if errors.Is(err, user.ErrUserNotFound) {
			return unauthorized(c)
		}

		log.Error().Err(err).Uint64("question_id", questionID).Msg("toggle save failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to toggle bookmark",
		})
	}

	return c.JSON(fiber.Map{
		"ok": true,
	})
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
