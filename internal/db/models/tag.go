// Package models contains database model definitions.
package models

// Tag represents a topic label that can be attached to questions.
type Tag struct {
	ID          uint64 `gorm:"primaryKey" json:"id"`
	Name        string `gorm:"unique;size:100;not null" json:"name"`
	Description string `gorm:"size:255" json:"description,omitempty"`
}
