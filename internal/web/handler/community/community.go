// Package community provides the handler for the community user list.
package community

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/db/controller/user"
	"github.com/devflowhq/devflow/internal/web/handler"
)

// Path is the base path for the community user list.
const Path = handler.RootPath + "community"

// Service lists the community members.
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
}

// List returns a page of the community user list, optionally filtered by a
// search query and ordered by a named sort filter.
func (s *Service) List(c *fiber.Ctx) error {
	result, err := user.GetAll(s.db, user.ListParams{
		SearchQuery: c.Query("q"),
		Filter:      c.Query("filter"),
		Page:        c.QueryInt("page", 1),
		PageSize:    c.QueryInt("pageSize", user.DefaultPageSize),
	})
	if err != nil {
		log.Error().Err(err).Msg("community list failed")

		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Failed to load users",
		})
	}

	return c.JSON(result)
}
