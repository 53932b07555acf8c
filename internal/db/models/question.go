package models

import "time"

// Question represents a question post.
// Vote and answer tallies are denormalized counters so list sorting does not
// need to aggregate over votes or answers.
type Question struct {
	// ID is the unique identifier for the question.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// Title is the question headline used for search matching.
	Title string `gorm:"size:255;not null" json:"title"`
	// Content is the question body.
	Content string `gorm:"type:text" json:"content,omitempty"`
	// AuthorID is the internal ID of the user who asked the question.
	AuthorID uint64 `gorm:"index;not null" json:"authorId"`
	// Author is the asking user (foreign key association).
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE" json:"author,omitempty"`
	// Tags are the labels attached to the question.
	Tags []Tag `gorm:"many2many:question_tags" json:"tags,omitempty"`
	// Views counts how often the question was opened.
	Views int64 `gorm:"not null;default:0" json:"views"`
	// Upvotes counts the upvotes on the question.
	Upvotes int `gorm:"not null;default:0" json:"upvotes"`
	// Downvotes counts the downvotes on the question.
	Downvotes int `gorm:"not null;default:0" json:"downvotes"`
	// AnswerCount counts the answers posted for the question.
	AnswerCount int `gorm:"not null;default:0" json:"answerCount"`
	// CreatedAt is the timestamp when the question was asked (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
}
