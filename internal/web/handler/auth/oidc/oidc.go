package oidc

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/auth"
	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/web/handler"
	"github.com/devflowhq/devflow/internal/web/session"
)

const (
	// LoginPath is the path to initiate the sign-in flow.
	LoginPath = handler.RootPath + "auth/oidc/login"

	// CallbackPath is the path the provider redirects back to.
	CallbackPath = handler.RootPath + "auth/oidc/callback"

	// LogoutPath is the path to end the session.
	LogoutPath = handler.RootPath + "auth/oidc/logout"

	// stateTTL bounds how long a login attempt may take.
	stateTTL = 5 * time.Minute
)

// Service is the identity provider sign-in handler.
type Service struct {
	handler.Service
	cfg          *config.Config
	db           *gorm.DB
	oidcProvider *auth.OIDCProvider

	stateMu    sync.Mutex
	stateStore map[string]time.Time
}

// Handler is the exported instance.
var Handler = Service{
	stateStore: make(map[string]time.Time),
}

// Init initializes the provider client and registers routes.
func (s *Service) Init(app *fiber.App, cfg *config.Config, db *gorm.DB) {
	if app == nil || cfg == nil || db == nil {
		log.Fatal().Msg(handler.ErrNilACDFatalLogMsg)
		return
	}

	s.db = db
	s.cfg = cfg

	if s.stateStore == nil {
		s.stateStore = make(map[string]time.Time)
	}

	if !cfg.Auth.OIDC.Enabled {
		log.Info().Msg("identity provider sign-in is disabled by configuration")
		return
	}

	oidcConfig := auth.OIDCConfig{
		Enabled:      cfg.Auth.OIDC.Enabled,
		ProviderURL:  cfg.Auth.OIDC.ProviderURL,
		ClientID:     cfg.Auth.OIDC.ClientID,
		ClientSecret: cfg.Auth.OIDC.ClientSecret,
		RedirectURL:  cfg.Auth.OIDC.RedirectURL,
		Scopes:       cfg.Auth.OIDC.Scopes,
	}

	oidcProvider, err := auth.NewOIDCProvider(context.Background(), &oidcConfig, db)
	if err != nil {
		if errors.Is(err, auth.ErrOIDCDisabled) {
			log.Info().Msg("identity provider sign-in is disabled by configuration")
		} else {
			log.Warn().Err(err).Msg("failed to initialize identity provider, sign-in will be unavailable")
		}

		return
	}

	s.oidcProvider = oidcProvider

	log.Info().Msg("identity provider sign-in initialized")

	app.Get(LoginPath, s.Login)
	app.Get(CallbackPath, s.Callback)
	app.Get(LogoutPath, s.Logout)

	go s.cleanupStates()
}

// Login starts the sign-in flow by redirecting to the identity provider.
func (s *Service) Login(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return unavailable(c)
	}

	state, err := auth.GenerateStateToken()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate state token")

		return internalError(c)
	}

	s.stateMu.Lock()
	s.stateStore[state] = time.Now().Add(stateTTL)
	s.stateMu.Unlock()

	return c.Redirect(s.oidcProvider.GetAuthURL(state))
}

// Callback completes the sign-in flow: it validates the state token,
// exchanges the code, provisions or refreshes the local user record and
// issues the session cookie.
func (s *Service) Callback(c *fiber.Ctx) error {
	if s.oidcProvider == nil {
		return unavailable(c)
	}

	code := c.Query("code")
	state := c.Query("state")

	if code == "" || state == "" {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid callback parameters",
		})
	}

	if !s.consumeState(state) {
		log.Warn().Msg("invalid or expired state token in sign-in callback")

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid state token",
		})
	}

	authenticatedUser, err := s.oidcProvider.HandleCallback(context.Background(), code)
	if err != nil {
		log.Error().Err(err).Msg("identity provider sign-in failed")

		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
			"error": "Authentication failed",
		})
	}

	sessionID, err := session.GenerateSessionID()
	if err != nil {
		log.Error().Err(err).Msg("failed to generate session id")

		return internalError(c)
	}

	userSession := &session.Data{
		User: *authenticatedUser,
	}

	if err = userSession.Write(sessionID, s.cfg.Webserver.Session.ExpiryTime); err != nil {
		log.Error().Err(err).Msg("failed to write session")

		return internalError(c)
	}

	cookieSettings := &fiber.Cookie{
		Name:     "session",
		Value:    sessionID,
		MaxAge:   int(s.cfg.Webserver.Session.ExpiryTime.Seconds()),
		Secure:   true,
		HTTPOnly: true,
		SameSite: "Lax",
	}

	if s.cfg.DevMode {
		cookieSettings.Secure = false
	}

	c.Cookie(cookieSettings)

	log.Info().Str("username", authenticatedUser.Username).Msg("user signed in")

	return c.Redirect(handler.RootPath)
}

// Logout destroys the session and redirects to the provider's end-session
// URL when it advertises one.
func (s *Service) Logout(c *fiber.Ctx) error {
	if sessionID := c.Cookies("session"); sessionID != "" {
		if err := session.Destroy(sessionID); err != nil {
			log.Warn().Err(err).Msg("failed to destroy session")
		}
	}

	c.ClearCookie("session")

	if s.oidcProvider != nil {
		logoutURL := s.oidcProvider.GetLogoutURL("", s.cfg.Webserver.URL)
		if logoutURL != "" {
			return c.Redirect(logoutURL)
		}
	}

	return c.Redirect(handler.RootPath)
}

// consumeState validates and removes a state token. A token is single-use.
func (s *Service) consumeState(state string) bool {
	s.stateMu.Lock()
	defer s.stateMu.Unlock()

	expiration, exists := s.stateStore[state]
	if !exists {
		return false
	}

	delete(s.stateStore, state)

	return time.Now().Before(expiration)
}

func unavailable(c *fiber.Ctx) error {
	return c.Status(fiber.StatusServiceUnavailable).JSON(fiber.Map{
		"error": "Sign-in is not available",
	})
}

func internalError(c *fiber.Ctx) error {
	return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
		"error": "Internal server error",
	})
}

// cleanupStates periodically removes expired state tokens.
func (s *Service) cleanupStates() {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()

	for range ticker.C {
		now := time.Now()

		s.stateMu.Lock()

		for state, expiration := range s.stateStore {
			if now.After(expiration) {
				delete(s.stateStore, state)
			}
		}

		s.stateMu.Unlock()
	}
}
