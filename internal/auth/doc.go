// Package auth integrates the external identity provider.
//
// Authentication is wholly delegated: users sign in at the OIDC provider,
// the callback exchanges the authorization code, verifies the ID token and
// provisions or refreshes the local user record keyed by the provider's
// subject identifier. The package also owns session validation, which the
// auth middleware consults for every non-public route.
//
// There is no local credential storage; a user account exists exactly as a
// mirror of the provider identity plus the community data attached to it.
package auth
