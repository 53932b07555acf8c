// Package web wires the fiber application: middleware chain, page cache,
// route handlers and the graceful shutdown sequence.
package web

import (
	"errors"
	"net/http"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/storage"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/auth"
	"github.com/devflowhq/devflow/internal/config"
	fiberlogger "github.com/devflowhq/devflow/internal/logger/adapter/fiber"
	"github.com/devflowhq/devflow/internal/web/cache"
	oidchandler "github.com/devflowhq/devflow/internal/web/handler/auth/oidc"
	"github.com/devflowhq/devflow/internal/web/handler/collection"
	"github.com/devflowhq/devflow/internal/web/handler/community"
	"github.com/devflowhq/devflow/internal/web/handler/profile"
	"github.com/devflowhq/devflow/internal/web/handler/tags"
	"github.com/devflowhq/devflow/internal/web/handler/webhook"
	authmiddleware "github.com/devflowhq/devflow/internal/web/middleware/auth"
)

// CheckAlivePath is the liveness endpoint used by load balancers.
const CheckAlivePath = "/checkalive"

// defaultCacheExpiry is used when no cache lifetime is configured.
const defaultCacheExpiry = time.Minute

// Service represents the web service.
type Service struct {
	App          *fiber.App
	cfg          *config.Config
	fastShutDown bool
	alive        atomic.Bool
	db           *gorm.DB
	authService  *auth.Service
}

// Start starts the web service on the given address.
func (s *Service) Start(addr string) error {
	var doneFiber = make(chan bool)

	go func() {
		if err := s.App.Listen(addr); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Msgf("fiber listen error: %v", err)
		}

		doneFiber <- true
	}()

	<-doneFiber // wait for fiber to stop

	return nil
}

// WaitShutdown waits for graceful shutdown of the web service.
func (s *Service) WaitShutdown() {
	irqSig := make(chan os.Signal, 1)
	signal.Notify(irqSig, syscall.SIGINT, syscall.SIGTERM)

	sig := <-irqSig
	log.Info().Msgf("shutdown request (signal: %v)", sig)

	// Graceful shutdown for reverse proxies: set status to fail, so checkalive returns fail.
	if !s.fastShutDown {
		log.Info().Msgf(
			"graceful shutdown: return 503 while %d seconds to let LB to remove this pod from active targets",
			s.cfg.Webserver.ShutDownTime,
		)

		s.alive.Store(false)
		time.Sleep(time.Duration(s.cfg.Webserver.ShutDownTime) * time.Second)
	}

	// stop fiber http server
	serverShutdown := make(chan struct{})

	go func() {
		log.Info().Msg("stopping http server ...")

		err := s.App.Shutdown()
		if err != nil {
			log.Error().Err(err).Msg("")
		}

		serverShutdown <- struct{}{}
	}()

	<-serverShutdown
	log.Info().Msg("http server was stopped ... good bye...")
}

// New creates a new web service with the given configuration. The cache
// storage may be nil when the page cache is disabled.
func New(cfg *config.Config, db *gorm.DB, cacheStorage storage.Storage) *Service {
	if cfg == nil {
		panic("config cannot be nil")
	}

	if db == nil {
		panic("db cannot be nil")
	}

	app := fiber.New(
		fiber.Config{
			ReadBufferSize: 8192,
			AppName:        cfg.Title,
			CaseSensitive:  true,
			Prefork:        false,
			Immutable:      true,
		},
	)

	// access log first so every request is recorded
	app.Use(fiberlogger.New(fiberlogger.Config{
		Config:        cfg.Log,
		CheckAliveURI: CheckAlivePath,
	}))

	if !cfg.Webserver.DisableRecover {
		app.Use(recover.New())
	}

	authService := auth.NewService(db)

	// session gating: public and webhook routes pass, everything else is
	// default-deny
	app.Use(authmiddleware.New(authmiddleware.Config{
		PublicRoutes:  cfg.Auth.PublicRoutes,
		IgnoredRoutes: cfg.Auth.IgnoredRoutes,
		Validator:     authService,
	}))

	var rev *cache.Revalidator

	if cfg.Webserver.CacheEnabled && cacheStorage != nil {
		expiration := cfg.Webserver.CacheExpiryTime
		if expiration <= 0 {
			expiration = defaultCacheExpiry
		}

		app.Use(cache.New(cacheStorage, expiration))

		rev = cache.NewRevalidator(cacheStorage)
	}

	service := &Service{
		cfg:         cfg,
		App:         app,
		db:          db,
		authService: authService,
	}

	service.alive.Store(true)

	// init handlers (they register their own routes)
	oidchandler.Handler.Init(app, cfg, db)
	community.Handler.Init(app, cfg, db)
	profile.Handler.Init(app, cfg, db)
	tags.Handler.Init(app, cfg, db)
	collection.Handler.Init(app, cfg, db, rev)
	webhook.Handler.Init(app, cfg, db, rev)

	app.Get(CheckAlivePath, func(c *fiber.Ctx) error {
		if !service.alive.Load() {
			return c.SendStatus(fiber.StatusServiceUnavailable)
		}

		return c.SendString("OK")
	})

	return service
}
