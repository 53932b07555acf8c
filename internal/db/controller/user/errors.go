package user

import "errors"

var (
	// ErrUserNotFound is returned when a user cannot be found in the database.
	ErrUserNotFound = errors.New("user not found")
	// ErrQuestionNotFound is returned when a save toggle references a question that does not exist.
	ErrQuestionNotFound = errors.New("question not found")
	// ErrExternalIDEmpty is returned when an operation keyed by the identity provider id receives an empty id.
	ErrExternalIDEmpty = errors.New("external id cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)
