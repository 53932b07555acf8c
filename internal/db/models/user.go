package models

import (
	"time"
)

// User represents a member of the Q&A community.
// Accounts are provisioned by the external identity provider: the provider's
// subject identifier (ExternalID) is the global join key used by webhooks and
// the sign-in callback, not the internal record ID.
type User struct {
	// ID is the unique internal identifier for the user.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// ExternalID is the identity provider's subject identifier. It is globally
	// unique and is the key all provider-facing operations use.
	ExternalID string `gorm:"size:255;not null;uniqueIndex" json:"externalId"`
	// Name is the user's display name.
	Name string `gorm:"size:100;not null" json:"name"`
	// Username is the unique handle shown next to posts.
	Username string `gorm:"unique;size:100;not null" json:"username"`
	// Email is the user's email address.
	Email string `gorm:"size:255" json:"email,omitempty"`
	// Picture is the URL of the user's avatar image.
	Picture string `gorm:"size:512" json:"picture,omitempty"`
	// Reputation is the score earned through questions, answers and votes.
	Reputation int `gorm:"not null;default:0" json:"reputation"`
	// Saved holds the questions the user bookmarked. Membership is a set:
	// saving an already saved question is a no-op, toggling removes it.
	Saved []Question `gorm:"many2many:user_saved_questions" json:"saved,omitempty"`
	// JoinedAt is the timestamp of the first identity provider sign-in event.
	JoinedAt time.Time `gorm:"autoCreateTime" json:"joinedAt"`
	// UpdatedAt is the timestamp when the user was last updated (managed by GORM).
	UpdatedAt time.Time `json:"-"`
}
