// Package cache provides the page cache for public GET routes and the
// invalidation collaborator mutations use to refresh a cached page.
package cache

import (
	"time"

	"github.com/gofiber/fiber/v2"
	fibercache "github.com/gofiber/fiber/v2/middleware/cache"
	"github.com/gofiber/storage"
	"github.com/rs/zerolog/log"

	authmiddleware "github.com/devflowhq/devflow/internal/web/middleware/auth"
)

const keyPrefix = "page:"

// Key returns the storage key for a logical page path.
func Key(path string) string {
	return keyPrefix + path
}

// New creates the page cache middleware over the given storage backend.
// Only anonymous bare-path GET requests are cached; entries expire after the
// given duration.
func New(st storage.Storage, expiration time.Duration) fiber.Handler {
	return fibercache.New(fibercache.Config{
		Storage:    st,
		Expiration: expiration,
		KeyGenerator: func(c *fiber.Ctx) string {
			return Key(c.Path())
		},
		Next: skip,
	})
}

// skip reports whether a request must bypass the cache. Responses for an
// authenticated user are per-user and must never be shared, and requests
// with a query string (search, filter, page variants) would collide on the
// path key, so only anonymous bare-path GET requests are cacheable.
func skip(c *fiber.Ctx) bool {
	return c.Method() != fiber.MethodGet ||
		len(c.Request().URI().QueryString()) > 0 ||
		authmiddleware.CurrentUser(c) != nil
}

// Revalidator invalidates cached pages by logical path.
// Invalidation is fire-and-forget: failures are logged and swallowed, they
// never roll back or fail the mutation that triggered them.
type Revalidator struct {
	storage storage.Storage
}

// NewRevalidator creates a Revalidator over the given storage backend.
func NewRevalidator(st storage.Storage) *Revalidator {
	return &Revalidator{storage: st}
}

// Revalidate drops the cached rendering of the page at the given path.
func (r *Revalidator) Revalidate(path string) {
	if r == nil || r.storage == nil || path == "" {
		return
	}

	key := Key(path)

	if err := r.storage.Delete(key); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("page cache invalidation failed")
	}

	// the cache middleware stores the response body under a separate key
	if err := r.storage.Delete(key + "_body"); err != nil {
		log.Warn().Err(err).Str("path", path).Msg("page cache body invalidation failed")
	}
}
