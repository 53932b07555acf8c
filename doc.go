// Package main provides the entry point for the DevFlow backend.
// It initializes and runs a web server using the Fiber framework that
// exposes the Q&A data-access operations (users, questions, answers, tags)
// through a JSON API. The application uses gorm for data persistence and
// delegates authentication to an external OIDC identity provider.
package main
