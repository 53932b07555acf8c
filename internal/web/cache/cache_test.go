package cache_test

import (
	"fmt"
	"io"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/devflowhq/devflow/internal/db/models"
	"github.com/devflowhq/devflow/internal/web/cache"
	authmiddleware "github.com/devflowhq/devflow/internal/web/middleware/auth"
)

// memStorage is a minimal in-memory storage backend for tests.
type memStorage struct {
	mu      sync.Mutex
	entries map[string][]byte
}

func newMemStorage() *memStorage {
	return &memStorage{entries: map[string][]byte{}}
}

func (m *memStorage) Get(key string) ([]byte, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	return m.entries[key], nil
}

func (m *memStorage) Set(key string, val []byte, _ time.Duration) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries[key] = val

	return nil
}

func (m *memStorage) Delete(key string) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	delete(m.entries, key)

	return nil
}

func (m *memStorage) Reset() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.entries = map[string][]byte{}

	return nil
}

func (m *memStorage) Close() error { return nil }

func TestPageCacheAndRevalidate(t *testing.T) {
	st := newMemStorage()

	hits := 0

	app := fiber.New()
	app.Use(cache.New(st, time.Minute))
	app.Get("/community", func(c *fiber.Ctx) error {
		hits++
		return c.SendString(fmt.Sprintf("render %d", hits))
	})

	get := func() string {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, "/community", nil))
		require.NoError(t, err)

		buf := make([]byte, 64)
		n, _ := resp.Body.Read(buf)

		return string(buf[:n])
	}

	// first request renders, second is served from cache
	assert.Equal(t, "render 1", get())
	assert.Equal(t, "render 1", get())
	assert.Equal(t, 1, hits)

	// invalidation forces a fresh render
	cache.NewRevalidator(st).Revalidate("/community")
	assert.Equal(t, "render 2", get())
	assert.Equal(t, 2, hits)
}

// sessionValidator maps session ids to users.
type sessionValidator struct {
	users map[string]*models.User
}

func (s *sessionValidator) ValidateSession(sessionID string) (*models.User, error) {
	u, ok := s.users[sessionID]
	if !ok {
		return nil, assert.AnError
	}

	return u, nil
}

// The cache sits behind the auth gate, so a cached page must never carry one
// signed-in user's response to another.
func TestCacheSkipsAuthenticatedRequests(t *testing.T) {
	st := newMemStorage()

	validator := &sessionValidator{users: map[string]*models.User{
		"session-ada":   {ID: 1, Username: "ada"},
		"session-grace": {ID: 2, Username: "grace"},
	}}

	app := fiber.New()
	app.Use(authmiddleware.New(authmiddleware.Config{Validator: validator}))
	app.Use(cache.New(st, time.Minute))
	app.Get("/collection", func(c *fiber.Ctx) error {
		return c.SendString("saved questions of " + authmiddleware.CurrentUser(c).Username)
	})

	get := func(sessionID string) string {
		req := httptest.NewRequest(fiber.MethodGet, "/collection", nil)
		req.AddCookie(&http.Cookie{Name: "session", Value: sessionID})

		resp, err := app.Test(req)
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		return string(body)
	}

	assert.Equal(t, "saved questions of ada", get("session-ada"))
	assert.Equal(t, "saved questions of grace", get("session-grace"))
	assert.Equal(t, "saved questions of ada", get("session-ada"))
}

// Query variants of a list endpoint must not collapse to one cache entry.
func TestCacheSkipsQueryVariants(t *testing.T) {
	st := newMemStorage()

	hits := 0

	app := fiber.New()
	app.Use(cache.New(st, time.Minute))
	app.Get("/community", func(c *fiber.Ctx) error {
		hits++
		return c.SendString("page " + c.Query("page", "1"))
	})

	get := func(target string) string {
		resp, err := app.Test(httptest.NewRequest(fiber.MethodGet, target, nil))
		require.NoError(t, err)

		body, err := io.ReadAll(resp.Body)
		require.NoError(t, err)

		return string(body)
	}

	assert.Equal(t, "page 1", get("/community?page=1"))
	assert.Equal(t, "page 2", get("/community?page=2"))

	// the bare path is still served from cache
	assert.Equal(t, "page 1", get("/community"))
	assert.Equal(t, "page 1", get("/community"))
	assert.Equal(t, 3, hits)
}

func TestRevalidateIsFireAndForget(t *testing.T) {
	// nil receiver, nil storage and empty path must all be harmless
	var nilRev *cache.Revalidator
	nilRev.Revalidate("/community")

	cache.NewRevalidator(nil).Revalidate("/community")
	cache.NewRevalidator(newMemStorage()).Revalidate("")
}
