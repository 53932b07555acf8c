package daemon

import (
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/db/controller/tag"
)

// defaultTags are created on first start so the tag directory is never empty.
var defaultTags = []string{
	"javascript",
	"typescript",
	"react",
	"nextjs",
	"nodejs",
	"go",
	"python",
	"sql",
	"css",
	"html",
}

func seed(_ *config.Config, db *gorm.DB) {
	for _, name := range defaultTags {
		if _, err := tag.GetOrCreate(db, name); err != nil {
			log.Warn().Err(err).Str("tag", name).Msg("failed to seed tag")
		}
	}
}
