// Package tags provides the handler for the public tag directory.
package tags

import (
	"errors"
	"strconv"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/db/controller/tag"
	"github.com/devflowhq/devflow/internal/db/models"
	"github.com/devflowhq/devflow/internal/web/handler"
)

// Path is the base path for the tag directory.
const Path = handler.RootPath + "tags"

// Service serves the tag directory.
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

	app.Get(Path, s.List)
	app.Get(Path+"/:id", s.Get)
}

// List returns all tags ordered by name.
func (s *Service) List(c *fiber.Ctx) error {
	tags, err := tag.GetAll(s.db)
	if err != nil {
		log.Error().Err(err).Msg("tag list failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load tags",
		})
	}

	return c.JSON(fiber.Map{
		"tags": tags,
	})
}

// Get returns a single tag by id.
func (s *Service) Get(c *fiber.Ctx) error {
	id, err := strconv.ParseUint(c.Params("id"), 10, 64)
	if err != nil || id == 0 {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid tag id",
		})
	}

	var t models.Tag
	if err := s.db.First(&t, id).Error; err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return c.Status(fiber.StatusNotFound).JSON(fiber.Map{
				"error": "Tag not found",
			})
		}

		log.Error().Err(err).Uint64("tag_id", id).Msg("tag lookup failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load tag",
		})
	}

	return c.JSON(t)
}
