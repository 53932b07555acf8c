// Package webhook provides the receiver for identity provider user lifecycle
// events. The provider pushes signed user.created, user.updated and
// user.deleted events which are mirrored into the local user store.
package webhook

import (
	"encoding/json"
	"errors"
	"strconv"
	"strings"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/config"
	"github.com/devflowhq/devflow/internal/db/controller/user"
	"github.com/devflowhq/devflow/internal/web/handler"
)

const (
	// Path is the path of the identity provider webhook receiver.
	Path = handler.RootPath + "api/webhooks"

	// Timestamp tolerance against replayed deliveries.
	maxClockSkew = 5 * time.Minute
)

// Supported event types.
const (
	EventUserCreated = "user.created"
	EventUserUpdated = "user.updated"
	EventUserDeleted = "user.deleted"
)

// Event is the envelope of a provider webhook delivery.
type Event struct {
	Type string    `json:"type"`
	Data EventData `json:"data"`
}

// EventData carries the user payload of a lifecycle event.
type EventData struct {
	ID             string         `json:"id"`
	Username       string         `json:"username"`
	FirstName      string         `json:"first_name"`
	LastName       string         `json:"last_name"`
	ImageURL       string         `json:"image_url"`
	EmailAddresses []EmailAddress `json:"email_addresses"`
}

// EmailAddress is one of the user's provider-side email addresses.
type EmailAddress struct {
	EmailAddress string `json:"email_address"`
}

// Service receives and applies identity provider events.
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

	if cfg.Webhook.Secret == "" {
		log.Warn().Msg("webhook secret is not configured, webhook receiver is disabled")
		return
	}

	app.Post(Path, s.Receive)
}

// Receive verifies a webhook delivery and applies the event to the user store.
func (s *Service) Receive(c *fiber.Ctx) error {
	body := c.Body()

	err := VerifySignature(
		s.cfg.Webhook.Secret,
		c.Get(HeaderID),
		c.Get(HeaderTimestamp),
		c.Get(HeaderSignature),
		body,
	)
	if err != nil {
		log.Warn().Err(err).Msg("webhook signature rejected")

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid signature",
		})
	}

	if err := checkTimestamp(c.Get(HeaderTimestamp)); err != nil {
		log.Warn().Err(err).Msg("webhook timestamp rejected")

		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Stale timestamp",
		})
	}

	var event Event
	if err := json.Unmarshal(body, &event); err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{
			"error": "Invalid payload",
		})
	}

	if err := s.apply(event); err != nil {
		log.Error().Err(err).Str("type", event.Type).Str("external_id", event.Data.ID).
			Msg("webhook event failed")

		// Non-2xx makes the provider redeliver the event.
		return c.Status(fiber.StatusInternalServerError).JSON(fiber.Map{
			"error": "Event processing failed",
		})
	}

	return c.JSON(fiber.Map{
		"ok": true,
	})
}

// apply mirrors one lifecycle event into the user store. Unknown event types
// are acknowledged without effect so the provider does not redeliver them.
func (s *Service) apply(event Event) error {
	switch event.Type {
	case EventUserCreated:
		_, err := user.Create(s.db, user.CreateParams{
			ExternalID: event.Data.ID,
			Name:       event.Data.displayName(),
			Username:   event.Data.username(),
			Email:      event.Data.primaryEmail(),
			Picture:    event.Data.ImageURL,
		})

		return err

	case EventUserUpdated:
		return user.Update(s.db, s.rev, user.UpdateParams{
			ExternalID: event.Data.ID,
			Name:       event.Data.displayName(),
			Username:   event.Data.Username,
			Email:      event.Data.primaryEmail(),
			Picture:    event.Data.ImageURL,
			Path:       "/profile/" + event.Data.ID,
		})

	case EventUserDeleted:
		_, err := user.Delete(s.db, event.Data.ID)
		if err != nil && !errors.Is(err, user.ErrUserNotFound) {
			return err
		}

		return nil
	}

	log.Debug().Str("type", event.Type).Msg("ignoring unhandled webhook event")

	return nil
}

func checkTimestamp(raw string) error {
	ts, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return ErrBadTimestamp
	}

	delta := time.Since(time.Unix(ts, 0))
	if delta > maxClockSkew || delta < -maxClockSkew {
		return ErrBadTimestamp
	}

	return nil
}

func (d EventData) displayName() string {
	return strings.TrimSpace(strings.TrimSpace(d.FirstName) + " " + strings.TrimSpace(d.LastName))
}

// username falls back to the primary email so a created account always has a
// usable handle.
func (d EventData) username() string {
	if d.Username != "" {
		return d.Username
	}

	return d.primaryEmail()
}

func (d EventData) primaryEmail() string {
	if len(d.EmailAddresses) == 0 {
		return ""
	}

	return d.EmailAddresses[0].EmailAddress
}
