// Package auth provides the authentication gating middleware for the web application.
//
// The middleware enforces a single canonical policy:
//   - routes on the public allow-list bypass authentication entirely
//   - routes on the ignore-list (webhook and integration receivers that carry
//     their own payload verification) are never session-gated
//   - every other route is default-deny: the request must carry a session
//     cookie that the identity provider backed session service validates,
//     otherwise it is blocked with 401 before it reaches application logic
//
// Route patterns support ":param" wildcard segments, e.g. "/profile/:id".
// Allow-list membership is evaluated before the session check so public and
// webhook traffic never pays for a provider round-trip.
//
// Usage:
//
//	app.Use(authmiddleware.New(authmiddleware.Config{Validator: authService}))
//
// On success the middleware stores the current user in fiber.Locals under
// CurrentUserKey for handlers to pick up.
package auth
