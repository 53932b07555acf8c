package auth

import (
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/devflowhq/devflow/internal/db/models"
)

// CurrentUserKey is the fiber.Locals key holding the authenticated user.
const CurrentUserKey = "CurrentUser"

// DefaultPublicRoutes is the canonical allow-list: routes anyone may browse
// without signing in.
var DefaultPublicRoutes = []string{
	"/",
	"/question/:id",
	"/tags",
	"/tags/:id",
	"/profile/:id",
	"/community",
	"/jobs",
	"/api/webhooks",
	"/checkalive",
	"/auth/oidc/login",
	"/auth/oidc/callback",
	"/auth/oidc/logout",
}

// DefaultIgnoredRoutes is the canonical ignore-list: integration endpoints
// that carry their own verification and must never be session-gated.
var DefaultIgnoredRoutes = []string{
	"/api/webhooks",
	"/api/chatgpt",
}

// SessionValidator resolves a session id to the logged-in user.
type SessionValidator interface {
	ValidateSession(sessionID string) (*models.User, error)
}

// Config configures the auth gating middleware.
type Config struct {
	// PublicRoutes bypass authentication entirely. Empty means DefaultPublicRoutes.
	PublicRoutes []string
	// IgnoredRoutes are skipped for integration endpoints. Empty means DefaultIgnoredRoutes.
	IgnoredRoutes []string
	// Validator checks the session of every request not matched above.
	Validator SessionValidator
}

// New creates the auth gating middleware: allow-listed and ignored routes
// pass through untouched, everything else is default-deny and requires a
// valid session. Allow-list evaluation happens before any provider check so
// public and webhook traffic is never needlessly gated.
func New(cfg Config) fiber.Handler {
	public := cfg.PublicRoutes
	if len(public) == 0 {
		public = DefaultPublicRoutes
	}

	ignored := cfg.IgnoredRoutes
	if len(ignored) == 0 {
		ignored = DefaultIgnoredRoutes
	}

	return func(c *fiber.Ctx) error {
		path := c.Path()

		if MatchAny(ignored, path) || MatchAny(public, path) {
			return c.Next()
		}

		sessionID := c.Cookies("session")
		if sessionID == "" {
			return unauthorized(c)
		}

		currentUser, err := cfg.Validator.ValidateSession(sessionID)
		if err != nil {
			log.Warn().Err(err).Str("path", path).Msg("session validation failed")

			return unauthorized(c)
		}

		// Add the current user to locals for handler access
		c.Locals(CurrentUserKey, currentUser)

		return c.Next()
	}
}

// CurrentUser returns the authenticated user stored by the middleware,
// or nil for public routes.
func CurrentUser(c *fiber.Ctx) *models.User {
	currentUser, _ := c.Locals(CurrentUserKey).(*models.User)

	return currentUser
}

// MatchAny reports whether the path matches any of the route patterns.
func MatchAny(patterns []string, path string) bool {
	for _, pattern := range patterns {
		if MatchRoute(pattern, path) {
			return true
		}
	}

	return false
}

// MatchRoute reports whether path matches pattern. Matching is segment-wise:
// a ":param" segment matches exactly one non-empty path segment, every other
// segment must match literally (case-insensitive).
func MatchRoute(pattern, path string) bool {
	patternSegs := splitPath(pattern)
	pathSegs := splitPath(path)

	if len(patternSegs) != len(pathSegs) {
		return false
	}

	for i, seg := range patternSegs {
		if strings.HasPrefix(seg, ":") {
			if pathSegs[i] == "" {
				return false
			}

			continue
		}

		if !strings.EqualFold(seg, pathSegs[i]) {
			return false
		}
	}

	return true
}

func splitPath(p string) []string {
	p = strings.Trim(p, "/")
	if p == "" {
		return nil
	}

	return strings.Split(p, "/")
}

func unauthorized(c *fiber.Ctx) error {
	return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
		"error": "Unauthorized",
	})
}
