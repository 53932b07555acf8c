// Package answer provides data-access operations for answer records.
package answer

import (
	"errors"

	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/db/controller/query"
	"github.com/devflowhq/devflow/internal/db/models"
)

const (
	// DefaultPageSize for author-scoped answer lists.
	DefaultPageSize = 10

	authorQueryPattern = "author_id = ?"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// ByAuthorResult is a page of one author's answers.
type ByAuthorResult struct {
	TotalAnswers int64           `json:"totalAnswers"`
	Answers      []models.Answer `json:"answers"`
	IsNext       bool            `json:"isNext"`
}

// CountByAuthor counts the answers written by the given user.
func CountByAuthor(db *gorm.DB, authorID uint64) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.Answer{}).Where(authorQueryPattern, authorID).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// ByAuthor returns a page of the given user's answers, most upvoted first,
// with the answered question and the author expanded.
func ByAuthor(db *gorm.DB, authorID uint64, page, pageSize int) (*ByAuthorResult, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	page, pageSize = query.Normalize(page, pageSize, DefaultPageSize)
	offset := query.Offset(page, pageSize)

	total, err := CountByAuthor(db, authorID)
	if err != nil {
		return nil, err
	}

	var answers []models.Answer

	err = db.Where(authorQueryPattern, authorID).
		Preload("Question").
		Preload("Author").
		Order("upvotes DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&answers).Error
	if err != nil {
		return nil, err
	}

	return &ByAuthorResult{
		TotalAnswers: total,
		Answers:      answers,
		IsNext:       query.HasNext(total, offset, len(answers)),
	}, nil
}
