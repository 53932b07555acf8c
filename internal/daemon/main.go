// Package daemon bootstraps the application: database, session store,
// page cache storage and the web service.
package daemon

import (
	"fmt"

	"github.com/gofiber/storage"
	storagemysql "github.com/gofiber/storage/mysql/v2"
	"github.com/rs/zerolog/log"
	gormmysql "gorm.io/driver/mysql"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/db/dsn"
	"github.com/devflowhq/devflow/internal/db/models"
	"github.com/devflowhq/devflow/internal/web"
	"github.com/devflowhq/devflow/internal/web/session"
)

// Daemon represents the main application daemon.
type Daemon struct {
	cfg        *config.Config
	webService *web.Service
}

// Start starts the Daemon's web service and blocks until shutdown.
func (d *Daemon) Start() error {
	go d.webService.WaitShutdown()

	return d.webService.Start(fmt.Sprintf(":%d", d.cfg.Webserver.Port))
}

// New creates a new Daemon instance with the provided configuration.
func New(cfg *config.Config) *Daemon {
	if cfg == nil {
		log.Fatal().Msg("config is nil")
		return nil
	}

	dbDriver := gormmysql.Open(dsn.Create(cfg)) // open db with gorm mysql driver

	db, err := gorm.Open(dbDriver, &gorm.Config{})
	if err != nil {
		panic("failed to connect database")
	}

	if err = db.AutoMigrate(
		&models.User{},
		&models.Question{},
		&models.Answer{},
		&models.Tag{},
	); err != nil {
		panic("failed to migrate database")
	}

	seed(cfg, db)

	// Initialize fiber session store
	sessionStorage := storagemysql.New(storagemysql.Config{
		ConnectionURI: dsn.Create(cfg),
		Table:         "sessions",
	})

	session.Init(sessionStorage)

	// Page cache entries live in their own table so a cache flush cannot
	// touch sessions.
	var cacheStorage storage.Storage

	if cfg.Webserver.CacheEnabled {
		cacheStorage = storagemysql.New(storagemysql.Config{
			ConnectionURI: dsn.Create(cfg),
			Table:         "page_cache",
		})
	}

	return &Daemon{
		cfg:        cfg,
		webService: web.New(cfg, db, cacheStorage),
	}
}
