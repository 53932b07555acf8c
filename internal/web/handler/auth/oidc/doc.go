// Package oidc provides the sign-in handlers for the external identity
// provider: login redirect, callback and logout.
package oidc
