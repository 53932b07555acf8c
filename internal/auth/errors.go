package auth

import "errors"

var (
	// ErrNoIDToken is returned when the OAuth2 token response doesn't contain an ID token.
	// This typically indicates a misconfigured OIDC provider or an incomplete authentication flow.
	ErrNoIDToken = errors.New("no id_token in token response")

	// ErrOIDCDisabled is returned when OIDC is disabled via configuration.
	ErrOIDCDisabled = errors.New("oidc authentication is disabled")

	// ErrSessionInvalid is returned when a session id is missing, unknown or expired.
	ErrSessionInvalid = errors.New("session is invalid")

	// ErrUserNotFound is returned when a session references a user that no longer exists.
	ErrUserNotFound = errors.New("user not found")
)
