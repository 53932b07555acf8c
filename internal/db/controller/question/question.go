// Package question provides data-access operations for question records.
package question

import (
	"errors"

	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/db/controller/query"
	"github.com/devflowhq/devflow/internal/db/models"
)

const (
	// DefaultPageSize for author-scoped question lists.
	DefaultPageSize = 10

	authorQueryPattern = "author_id = ?"
)

// Named sort filters for question lists.
const (
	FilterMostRecent   = "most_recent"
	FilterOldest       = "oldest"
	FilterMostVoted    = "most_voted"
	FilterMostViewed   = "most_viewed"
	FilterMostAnswered = "most_answered"
)

var (
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// OrderClause maps a named sort filter to an explicit order clause.
// An unknown or empty filter returns "", meaning store natural order.
func OrderClause(filter string) string {
	switch filter {
	case FilterMostRecent:
		return "created_at DESC"
	case FilterOldest:
		return "created_at ASC"
	case FilterMostVoted:
		return "upvotes DESC"
	case FilterMostViewed:
		return "views DESC"
	case FilterMostAnswered:
		return "answer_count DESC"
	}

	return ""
}

// ByAuthorResult is a page of one author's questions.
type ByAuthorResult struct {
	TotalQuestions int64             `json:"totalQuestions"`
	Questions      []models.Question `json:"questions"`
	IsNext         bool              `json:"isNext"`
}

// CountByAuthor counts the questions asked by the given user.
func CountByAuthor(db *gorm.DB, authorID uint64) (int64, error) {
	if db == nil {
		return 0, ErrDBNil
	}

	var total int64
	if err := db.Model(&models.Question{}).Where(authorQueryPattern, authorID).Count(&total).Error; err != nil {
		return 0, err
	}

	return total, nil
}

// ByAuthor returns a page of the given user's questions, most viewed first,
// ties broken by upvotes, with tags and author expanded.
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

	var questions []models.Question

	err = db.Where(authorQueryPattern, authorID).
		Preload("Tags").
		Preload("Author").
		Order("views DESC, upvotes DESC").
		Offset(offset).
		Limit(pageSize).
		Find(&questions).Error
	if err != nil {
		return nil, err
	}

	return &ByAuthorResult{
		TotalQuestions: total,
		Questions:      questions,
		IsNext:         query.HasNext(total, offset, len(questions)),
	}, nil
}

// DeleteByAuthor deletes all questions asked by the given user, including
// their tag attachments and any bookmarks other users hold on them.
// It is expected to run inside the caller's transaction so the cascade is
// not observable half-applied.
func DeleteByAuthor(db *gorm.DB, authorID uint64) error {
	if db == nil {
		return ErrDBNil
	}

	var ids []uint64
	if err := db.Model(&models.Question{}).Where(authorQueryPattern, authorID).Pluck("id", &ids).Error; err != nil {
		return err
	}

	if len(ids) == 0 {
		return nil
	}

	if err := db.Exec("DELETE FROM question_tags WHERE question_id IN ?", ids).Error; err != nil {
		return err
	}

	if err := db.Exec("DELETE FROM user_saved_questions WHERE question_id IN ?", ids).Error; err != nil {
		return err
	}

	return db.Delete(&models.Question{}, ids).Error
}
