package config

import (
	"time"

	"github.com/devflowhq/devflow/internal/logger"
)

// Session settings.
type Session struct {
	ExpiryTime time.Duration
}

// Config overall data structure.
type Config struct {
	DevMode   bool // enable dev mode for development
	DB        DB
	Log       logger.Log
	Title     string
	Webserver Webserver
	Auth      Auth
	Webhook   Webhook
}

// Webserver implement webserver settings.
type Webserver struct {
	CacheEnabled    bool          // true = enable page cache, false = disable cache
	CacheExpiryTime time.Duration // lifetime of a cached page
	DisableRecover  bool          // disable recover middleware
	Domain          string        // domain name for the webserver
	Port            int           // listening port for the webserver
	ShutDownTime    int           // wait time for shutdown
	URL             string        // base url for the webserver
	Session         Session       // session settings
}

// OIDC holds the external identity provider settings.
type OIDC struct {
	Enabled      bool
	ProviderURL  string // discovery url of the identity provider
	ClientID     string
	ClientSecret string
	RedirectURL  string
	Scopes       []string
}

// Auth holds the route gating policy and the identity provider settings.
//
// PublicRoutes bypass authentication entirely, IgnoredRoutes are skipped
// for integration endpoints (webhook receivers), everything else is
// default-deny. Empty lists fall back to the canonical defaults in the
// auth middleware package.
type Auth struct {
	PublicRoutes  []string
	IgnoredRoutes []string
	OIDC          OIDC
}

// Webhook holds the settings for the identity provider webhook receiver.
type Webhook struct {
	// Secret is the shared signing secret used to verify webhook payloads.
	Secret string
}
