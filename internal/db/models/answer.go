package models

import "time"

// Answer represents an answer to a question.
type Answer struct {
	// ID is the unique identifier for the answer.
	ID uint64 `gorm:"primaryKey" json:"id"`
	// QuestionID is the ID of the question this answer belongs to.
	QuestionID uint64 `gorm:"index;not null" json:"questionId"`
	// Question is the answered question (foreign key association).
	Question *Question `gorm:"foreignKey:QuestionID;references:ID;constraint:OnUpdate:CASCADE" json:"question,omitempty"`
	// AuthorID is the internal ID of the user who wrote the answer.
	AuthorID uint64 `gorm:"index;not null" json:"authorId"`
	// Author is the answering user (foreign key association).
	Author *User `gorm:"foreignKey:AuthorID;references:ID;constraint:OnUpdate:CASCADE" json:"author,omitempty"`
	// Content is the answer body.
	Content string `gorm:"type:text" json:"content,omitempty"`
	// Upvotes counts the upvotes on the answer.
	Upvotes int `gorm:"not null;default:0" json:"upvotes"`
	// Downvotes counts the downvotes on the answer.
	Downvotes int `gorm:"not null;default:0" json:"downvotes"`
	// CreatedAt is the timestamp when the answer was posted (managed by GORM).
	CreatedAt time.Time `json:"createdAt"`
}
