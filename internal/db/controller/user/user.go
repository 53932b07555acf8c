// Package user provides the data-access operations for user records:
// lookup and lifecycle keyed by the identity provider id, the community
// listing, saved-question bookmarks and the per-user contribution views.
package user

import (
	"errors"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog/log"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/db/controller/answer"
	"github.com/devflowhq/devflow/internal/db/controller/query"
	"github.com/devflowhq/devflow/internal/db/controller/question"
	"github.com/devflowhq/devflow/internal/db/models"
)

const (
	// DefaultPageSize for the community user list and saved questions.
	DefaultPageSize = 20

	externalIDQueryPattern = "external_id = ?"
	searchQueryPattern     = "LOWER(name) LIKE ? ESCAPE '!' OR LOWER(username) LIKE ? ESCAPE '!'"
	titleSearchPattern     = "LOWER(questions.title) LIKE ? ESCAPE '!'"
	savedJoinPattern       = "JOIN user_saved_questions ON user_saved_questions.question_id = questions.id"
)

// Named sort filters for the community user list.
const (
	FilterNewUsers        = "new_users"
	FilterOldUsers        = "old_users"
	FilterTopContributors = "top_contributors"
)

var validate = validator.New() //nolint:gochecknoglobals

// GetByExternalID retrieves a user by their identity provider id.
// A missing user is not a fault: the result is (nil, nil).
func GetByExternalID(db *gorm.DB, externalID string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if externalID == "" {
		return nil, ErrExternalIDEmpty
	}

	var u models.User

	err := db.Where(externalIDQueryPattern, externalID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, nil
		}

		log.Error().Err(err).Str("external_id", externalID).Msg("get user failed")

		return nil, err
	}

	return &u, nil
}

// Create provisions a new user record, typically driven by the identity
// provider's first sign-in event or its user.created webhook.
func Create(db *gorm.DB, params CreateParams) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	if err := validate.Struct(params); err != nil {
		return nil, err
	}

	u := models.User{
		ExternalID: params.ExternalID,
		Name:       params.Name,
		Username:   params.Username,
		Email:      params.Email,
		Picture:    params.Picture,
	}

	if err := db.Create(&u).Error; err != nil {
		log.Error().Err(err).Str("external_id", params.ExternalID).Msg("create user failed")

		return nil, err
	}

	return &u, nil
}

// Update applies a partial profile update to the user with the given identity
// provider id, then refreshes the cached page at params.Path.
func Update(db *gorm.DB, rev Revalidator, params UpdateParams) error {
	if db == nil {
		return ErrDBNil
	}

	if err := validate.Struct(params); err != nil {
		return err
	}

	fields := map[string]interface{}{}

	if params.Name != "" {
		fields["name"] = params.Name
	}

	if params.Username != "" {
		fields["username"] = params.Username
	}

	if params.Email != "" {
		fields["email"] = params.Email
	}

	if params.Picture != "" {
		fields["picture"] = params.Picture
	}

	if len(fields) > 0 {
		err := db.Model(&models.User{}).Where(externalIDQueryPattern, params.ExternalID).Updates(fields).Error
		if err != nil {
			log.Error().Err(err).Str("external_id", params.ExternalID).Msg("update user failed")

			return err
		}
	}

	revalidate(rev, params.Path)

	return nil
}

// Delete removes the user with the given identity provider id together with
// every question they asked. The cascade runs in a single transaction so a
// fault between the steps cannot leave questions referencing a deleted user.
func Delete(db *gorm.DB, externalID string) (*models.User, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if externalID == "" {
		return nil, ErrExternalIDEmpty
	}

	var u models.User

	err := db.Where(externalIDQueryPattern, externalID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		log.Error().Err(err).Str("external_id", externalID).Msg("delete user lookup failed")

		return nil, err
	}

	err = db.Transaction(func(tx *gorm.DB) error {
		if err := question.DeleteByAuthor(tx, u.ID); err != nil {
			return err
		}

		// drop the user's own bookmark join rows
		if err := tx.Model(&u).Association("Saved").Clear(); err != nil {
			return err
		}

		// TODO: cascade delete of the user's answers once answer removal
		// also reconciles the AnswerCount counters on their questions.

		return tx.Delete(&u).Error
	})
	if err != nil {
		log.Error().Err(err).Str("external_id", externalID).Msg("delete user cascade failed")

		return nil, err
	}

	return &u, nil
}

// GetAll returns a page of the community user list, optionally filtered by a
// case-insensitive substring search over name and username and ordered by a
// named sort filter. An unknown filter keeps the store's natural order.
func GetAll(db *gorm.DB, params ListParams) (*ListResult, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	page, pageSize := query.Normalize(params.Page, params.PageSize, DefaultPageSize)
	offset := query.Offset(page, pageSize)

	tx := db.Model(&models.User{})

	if params.SearchQuery != "" {
		like := query.LikePattern(params.SearchQuery)
		tx = tx.Where(searchQueryPattern, like, like)
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Msg("count users failed")

		return nil, err
	}

	switch params.Filter {
	case FilterNewUsers:
		tx = tx.Order("joined_at DESC")
	case FilterOldUsers:
		tx = tx.Order("joined_at ASC")
	case FilterTopContributors:
		tx = tx.Order("reputation DESC")
	}

	var users []models.User
	if err := tx.Offset(offset).Limit(pageSize).Find(&users).Error; err != nil {
		log.Error().Err(err).Msg("query users failed")

		return nil, err
	}

	return &ListResult{
		Users:  users,
		IsNext: query.HasNext(total, offset, len(users)),
	}, nil
}

// ToggleSave toggles membership of a question in the user's saved set and
// refreshes the cached page at params.Path. The toggle is a set operation:
// two toggles from the same state return to that state.
func ToggleSave(db *gorm.DB, rev Revalidator, params ToggleSaveParams) error {
	if db == nil {
		return ErrDBNil
	}

	if err := validate.Struct(params); err != nil {
		return err
	}

	var u models.User

	err := db.First(&u, params.UserID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrUserNotFound
		}

		log.Error().Err(err).Uint64("user_id", params.UserID).Msg("toggle save lookup failed")

		return err
	}

	var q models.Question

	err = db.First(&q, params.QuestionID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return ErrQuestionNotFound
		}

		log.Error().Err(err).Uint64("question_id", params.QuestionID).Msg("toggle save lookup failed")

		return err
	}

	var saved int64

	err = db.Table("user_saved_questions").
		Where("user_id = ? AND question_id = ?", u.ID, q.ID).
		Count(&saved).Error
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("toggle save membership check failed")

		return err
	}

	if saved > 0 {
		err = db.Model(&u).Association("Saved").Delete(&q)
	} else {
		err = db.Model(&u).Association("Saved").Append(&q)
	}

	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Uint64("question_id", q.ID).Msg("toggle save failed")

		return err
	}

	revalidate(rev, params.Path)

	return nil
}

// GetSavedQuestions returns a page of the questions the user bookmarked,
// optionally filtered by a title search and ordered by a named sort filter,
// each with tags and author expanded.
func GetSavedQuestions(db *gorm.DB, params SavedQuestionsParams) (*SavedQuestionsResult, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if params.ExternalID == "" {
		return nil, ErrExternalIDEmpty
	}

	var u models.User

	err := db.Where(externalIDQueryPattern, params.ExternalID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		log.Error().Err(err).Str("external_id", params.ExternalID).Msg("saved questions lookup failed")

		return nil, err
	}

	page, pageSize := query.Normalize(params.Page, params.PageSize, DefaultPageSize)
	offset := query.Offset(page, pageSize)

	tx := db.Model(&models.Question{}).
		Select("questions.*").
		Joins(savedJoinPattern).
		Where("user_saved_questions.user_id = ?", u.ID)

	if params.SearchQuery != "" {
		tx = tx.Where(titleSearchPattern, query.LikePattern(params.SearchQuery))
	}

	var total int64
	if err := tx.Count(&total).Error; err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("count saved questions failed")

		return nil, err
	}

	if order := question.OrderClause(params.Filter); order != "" {
		tx = tx.Order(order)
	}

	var questions []models.Question

	err = tx.Preload("Tags").
		Preload("Author").
		Offset(offset).
		Limit(pageSize).
		Find(&questions).Error
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("query saved questions failed")

		return nil, err
	}

	return &SavedQuestionsResult{
		Questions: questions,
		IsNext:    query.HasNext(total, offset, len(questions)),
	}, nil
}

// GetInfo returns the user with the given identity provider id together with
// the number of questions and answers they authored.
func GetInfo(db *gorm.DB, externalID string) (*Info, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if externalID == "" {
		return nil, ErrExternalIDEmpty
	}

	var u models.User

	err := db.Where(externalIDQueryPattern, externalID).First(&u).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		log.Error().Err(err).Str("external_id", externalID).Msg("user info lookup failed")

		return nil, err
	}

	totalQuestions, err := question.CountByAuthor(db, u.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("count questions failed")

		return nil, err
	}

	totalAnswers, err := answer.CountByAuthor(db, u.ID)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", u.ID).Msg("count answers failed")

		return nil, err
	}

	return &Info{
		User:           &u,
		TotalQuestions: totalQuestions,
		TotalAnswers:   totalAnswers,
	}, nil
}

// GetQuestions returns a page of the questions asked by the user with the
// given internal id, most viewed first.
func GetQuestions(db *gorm.DB, userID uint64, page, pageSize int) (*question.ByAuthorResult, error) {
	result, err := question.ByAuthor(db, userID, page, pageSize)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("query user questions failed")

		return nil, err
	}

	return result, nil
}

// GetAnswers returns a page of the answers written by the user with the
// given internal id, most upvoted first.
func GetAnswers(db *gorm.DB, userID uint64, page, pageSize int) (*answer.ByAuthorResult, error) {
	result, err := answer.ByAuthor(db, userID, page, pageSize)
	if err != nil {
		log.Error().Err(err).Uint64("user_id", userID).Msg("query user answers failed")

		return nil, err
	}

	return result, nil
}

// revalidate triggers cache invalidation of the given page path.
// Failures inside the Revalidator never propagate to the caller.
func revalidate(rev Revalidator, path string) {
	if rev == nil || path == "" {
		return
	}

	rev.Revalidate(path)
}
