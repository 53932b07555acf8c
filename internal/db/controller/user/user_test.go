package user

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/db/models"
)

// setupTestDB creates an in-memory SQLite database for testing.
func setupTestDB(t *testing.T) *gorm.DB {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{})
	require.NoError(t, err, "failed to create test database")

	// Migrate the schema
	err = db.AutoMigrate(&models.User{}, &models.Question{}, &models.Answer{}, &models.Tag{})
	require.NoError(t, err, "failed to migrate test database")

	return db
}

// seedUser inserts a user and returns it with its assigned ID.
func seedUser(t *testing.T, db *gorm.DB, u models.User) models.User {
	t.Helper()

	err := db.Create(&u).Error
	require.NoError(t, err, "failed to seed user")

	return u
}

// seedQuestion inserts a question and returns it with its assigned ID.
func seedQuestion(t *testing.T, db *gorm.DB, q models.Question) models.Question {
	t.Helper()

	err := db.Create(&q).Error
	require.NoError(t, err, "failed to seed question")

	return q
}

// recordingRevalidator records the paths it was asked to refresh.
type recordingRevalidator struct {
	paths []string
}

func (r *recordingRevalidator) Revalidate(path string) {
	r.paths = append(r.paths, path)
}

func TestGetByExternalID(t *testing.T) {
	db := setupTestDB(t)
	seeded := seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Ada Lovelace", Username: "ada"})

	testCases := []struct {
		name          string
		dbParam       *gorm.DB
		externalID    string
		expectedError error
		expectNil     bool
	}{
		{name: "nil database", dbParam: nil, externalID: "idp_1", expectedError: ErrDBNil, expectNil: true},
		{name: "empty external id", dbParam: db, externalID: "", expectedError: ErrExternalIDEmpty, expectNil: true},
		{name: "missing user is not a fault", dbParam: db, externalID: "idp_unknown", expectNil: true},
		{name: "found", dbParam: db, externalID: "idp_1"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			u, err := GetByExternalID(tc.dbParam, tc.externalID)

			if tc.expectedError != nil {
				require.ErrorIs(t, err, tc.expectedError)
			} else {
				require.NoError(t, err)
			}

			if tc.expectNil {
				assert.Nil(t, u)
			} else {
				require.NotNil(t, u)
				assert.Equal(t, seeded.ID, u.ID)
				assert.Equal(t, "ada", u.Username)
			}
		})
	}
}

func TestCreate(t *testing.T) {
	db := setupTestDB(t)

	created, err := Create(db, CreateParams{
		ExternalID: "idp_new",
		Name:       "Grace Hopper",
		Username:   "grace",
		Email:      "grace@example.com",
	})
	require.NoError(t, err)
	require.NotNil(t, created)
	assert.NotZero(t, created.ID)
	assert.False(t, created.JoinedAt.IsZero(), "JoinedAt should be set on create")

	// missing required fields
	_, err = Create(db, CreateParams{ExternalID: "idp_incomplete"})
	require.Error(t, err)

	// duplicate identity provider id
	_, err = Create(db, CreateParams{ExternalID: "idp_new", Name: "Other", Username: "other"})
	require.Error(t, err)
}

func TestUpdate(t *testing.T) {
	db := setupTestDB(t)
	seeded := seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Old Name", Username: "old"})

	rev := &recordingRevalidator{}

	err := Update(db, rev, UpdateParams{
		ExternalID: "idp_1",
		Name:       "New Name",
		Path:       "/profile/idp_1",
	})
	require.NoError(t, err)

	var u models.User
	require.NoError(t, db.First(&u, seeded.ID).Error)
	assert.Equal(t, "New Name", u.Name)
	assert.Equal(t, "old", u.Username, "unset fields stay unchanged")
	assert.Equal(t, []string{"/profile/idp_1"}, rev.paths)

	// nil revalidator must not break the mutation
	err = Update(db, nil, UpdateParams{ExternalID: "idp_1", Username: "renamed"})
	require.NoError(t, err)
	require.NoError(t, db.First(&u, seeded.ID).Error)
	assert.Equal(t, "renamed", u.Username)

	// external id is required
	err = Update(db, rev, UpdateParams{Name: "nobody"})
	require.Error(t, err)
}

func TestDelete(t *testing.T) {
	db := setupTestDB(t)

	owner := seedUser(t, db, models.User{ExternalID: "idp_owner", Name: "Owner", Username: "owner"})
	other := seedUser(t, db, models.User{ExternalID: "idp_other", Name: "Other", Username: "other"})

	tagGo := models.Tag{Name: "go"}
	require.NoError(t, db.Create(&tagGo).Error)

	q1 := seedQuestion(t, db, models.Question{Title: "owned one", AuthorID: owner.ID, Tags: []models.Tag{tagGo}})
	q2 := seedQuestion(t, db, models.Question{Title: "owned two", AuthorID: owner.ID})
	kept := seedQuestion(t, db, models.Question{Title: "kept", AuthorID: other.ID})

	// another user bookmarked one of the doomed questions
	require.NoError(t, db.Model(&other).Association("Saved").Append(&q1))

	t.Run("missing user yields not found and deletes nothing", func(t *testing.T) {
		deleted, err := Delete(db, "idp_ghost")
		require.ErrorIs(t, err, ErrUserNotFound)
		assert.Nil(t, deleted)

		var count int64
		require.NoError(t, db.Model(&models.Question{}).Count(&count).Error)
		assert.EqualValues(t, 3, count)
	})

	t.Run("empty external id", func(t *testing.T) {
		_, err := Delete(db, "")
		require.ErrorIs(t, err, ErrExternalIDEmpty)
	})

	t.Run("cascade removes the user and their questions only", func(t *testing.T) {
		deleted, err := Delete(db, "idp_owner")
		require.NoError(t, err)
		require.NotNil(t, deleted)
		assert.Equal(t, owner.ID, deleted.ID)

		var users int64
		require.NoError(t, db.Model(&models.User{}).Count(&users).Error)
		assert.EqualValues(t, 1, users)

		var remaining []models.Question
		require.NoError(t, db.Find(&remaining).Error)
		require.Len(t, remaining, 1)
		assert.Equal(t, kept.ID, remaining[0].ID)

		// join rows referencing the deleted questions are gone too
		var joinRows int64
		require.NoError(t, db.Table("user_saved_questions").Count(&joinRows).Error)
		assert.EqualValues(t, 0, joinRows)

		var tagRows int64
		require.NoError(t, db.Table("question_tags").Where("question_id = ?", q1.ID).Count(&tagRows).Error)
		assert.EqualValues(t, 0, tagRows)

		_ = q2 // deleted together with q1 via the cascade
	})
}

func TestGetAllPagination(t *testing.T) {
	db := setupTestDB(t)

	for i := 0; i < 45; i++ {
		seedUser(t, db, models.User{
			ExternalID: fmt.Sprintf("idp_%02d", i),
			Name:       fmt.Sprintf("Member %02d", i),
			Username:   fmt.Sprintf("member%02d", i),
		})
	}

	// page=2, pageSize=20, totalMatches=45 -> skip=20, 20 rows, isNext true
	result, err := GetAll(db, ListParams{Page: 2, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, result.Users, 20)
	assert.True(t, result.IsNext)

	// last page: 45 > 40+5 is false
	result, err = GetAll(db, ListParams{Page: 3, PageSize: 20})
	require.NoError(t, err)
	assert.Len(t, result.Users, 5)
	assert.False(t, result.IsNext)

	// defaults: page 1, size 20
	result, err = GetAll(db, ListParams{})
	require.NoError(t, err)
	assert.Len(t, result.Users, 20)
	assert.True(t, result.IsNext)
}

func TestGetAllSearchAndSort(t *testing.T) {
	db := setupTestDB(t)

	now := time.Now()
	seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Ada Lovelace", Username: "ada", Reputation: 10, JoinedAt: now.Add(-48 * time.Hour)})
	seedUser(t, db, models.User{ExternalID: "idp_2", Name: "Grace Hopper", Username: "grace", Reputation: 30, JoinedAt: now.Add(-24 * time.Hour)})
	seedUser(t, db, models.User{ExternalID: "idp_3", Name: "Radia Perlman", Username: "radia_100%", Reputation: 20, JoinedAt: now})

	t.Run("case-insensitive substring search on name and username", func(t *testing.T) {
		result, err := GetAll(db, ListParams{SearchQuery: "GRACE"})
		require.NoError(t, err)
		require.Len(t, result.Users, 1)
		assert.Equal(t, "grace", result.Users[0].Username)
	})

	t.Run("like metacharacters are matched literally", func(t *testing.T) {
		result, err := GetAll(db, ListParams{SearchQuery: "100%"})
		require.NoError(t, err)
		require.Len(t, result.Users, 1)
		assert.Equal(t, "radia_100%", result.Users[0].Username)

		// a bare wildcard must not match everything
		result, err = GetAll(db, ListParams{SearchQuery: "%"})
		require.NoError(t, err)
		assert.Len(t, result.Users, 1)
	})

	t.Run("top contributors sorts by reputation descending", func(t *testing.T) {
		result, err := GetAll(db, ListParams{Filter: FilterTopContributors})
		require.NoError(t, err)
		require.Len(t, result.Users, 3)

		for i := 1; i < len(result.Users); i++ {
			assert.GreaterOrEqual(t, result.Users[i-1].Reputation, result.Users[i].Reputation)
		}
	})

	t.Run("new users sorts by join time descending", func(t *testing.T) {
		result, err := GetAll(db, ListParams{Filter: FilterNewUsers})
		require.NoError(t, err)
		require.Len(t, result.Users, 3)
		assert.Equal(t, "radia_100%", result.Users[0].Username)
	})

	t.Run("unknown filter returns natural order without failing", func(t *testing.T) {
		result, err := GetAll(db, ListParams{Filter: "bogus"})
		require.NoError(t, err)
		assert.Len(t, result.Users, 3)
	})
}

func TestToggleSave(t *testing.T) {
	db := setupTestDB(t)

	u := seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Ada", Username: "ada"})
	q1 := seedQuestion(t, db, models.Question{Title: "first", AuthorID: u.ID})
	q3 := seedQuestion(t, db, models.Question{Title: "third", AuthorID: u.ID})

	require.NoError(t, db.Model(&u).Association("Saved").Append(&q1))
	require.NoError(t, db.Model(&u).Association("Saved").Append(&q3))

	rev := &recordingRevalidator{}

	savedIDs := func() map[uint64]bool {
		var saved []models.Question
		require.NoError(t, db.Model(&u).Association("Saved").Find(&saved))

		ids := map[uint64]bool{}
		for _, q := range saved {
			ids[q.ID] = true
		}

		return ids
	}

	// saved=[q1,q3]; toggling q1 removes it
	err := ToggleSave(db, rev, ToggleSaveParams{UserID: u.ID, QuestionID: q1.ID, Path: "/collection"})
	require.NoError(t, err)
	ids := savedIDs()
	assert.False(t, ids[q1.ID])
	assert.True(t, ids[q3.ID])

	// toggling q1 again adds it back exactly once
	err = ToggleSave(db, rev, ToggleSaveParams{UserID: u.ID, QuestionID: q1.ID, Path: "/collection"})
	require.NoError(t, err)
	ids = savedIDs()
	assert.True(t, ids[q1.ID])
	assert.True(t, ids[q3.ID])

	var joinRows int64
	require.NoError(t, db.Table("user_saved_questions").Where("user_id = ?", u.ID).Count(&joinRows).Error)
	assert.EqualValues(t, 2, joinRows, "membership is a set, not an append log")

	assert.Equal(t, []string{"/collection", "/collection"}, rev.paths)

	// unknown user
	err = ToggleSave(db, rev, ToggleSaveParams{UserID: 9999, QuestionID: q1.ID})
	require.ErrorIs(t, err, ErrUserNotFound)

	// unknown question
	err = ToggleSave(db, rev, ToggleSaveParams{UserID: u.ID, QuestionID: 9999})
	require.ErrorIs(t, err, ErrQuestionNotFound)
}

func TestToggleSaveValidatesParams(t *testing.T) {
	db := setupTestDB(t)

	u := seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Ada", Username: "ada"})
	q := seedQuestion(t, db, models.Question{Title: "first", AuthorID: u.ID})

	// missing user id
	err := ToggleSave(db, nil, ToggleSaveParams{QuestionID: q.ID})
	assert.Error(t, err)

	// missing question id
	err = ToggleSave(db, nil, ToggleSaveParams{UserID: u.ID})
	assert.Error(t, err)

	var joinRows int64
	require.NoError(t, db.Table("user_saved_questions").Count(&joinRows).Error)
	assert.Zero(t, joinRows, "rejected params must not touch the store")
}

func TestGetSavedQuestions(t *testing.T) {
	db := setupTestDB(t)

	author := seedUser(t, db, models.User{ExternalID: "idp_author", Name: "Author", Username: "author"})
	reader := seedUser(t, db, models.User{ExternalID: "idp_reader", Name: "Reader", Username: "reader"})

	tagGo := models.Tag{Name: "go"}
	require.NoError(t, db.Create(&tagGo).Error)

	qa := seedQuestion(t, db, models.Question{Title: "How to use generics", AuthorID: author.ID, Upvotes: 5, Tags: []models.Tag{tagGo}})
	qb := seedQuestion(t, db, models.Question{Title: "Index tuning", AuthorID: author.ID, Upvotes: 9})
	qc := seedQuestion(t, db, models.Question{Title: "Generics pitfalls", AuthorID: author.ID, Upvotes: 1})
	unsaved := seedQuestion(t, db, models.Question{Title: "Unsaved", AuthorID: author.ID})

	require.NoError(t, db.Model(&reader).Association("Saved").Append(&qa, &qb, &qc))

	t.Run("unknown user propagates the fault", func(t *testing.T) {
		_, err := GetSavedQuestions(db, SavedQuestionsParams{ExternalID: "idp_ghost"})
		require.ErrorIs(t, err, ErrUserNotFound)
	})

	t.Run("returns only saved questions with tags and author expanded", func(t *testing.T) {
		result, err := GetSavedQuestions(db, SavedQuestionsParams{ExternalID: "idp_reader"})
		require.NoError(t, err)
		require.Len(t, result.Questions, 3)
		assert.False(t, result.IsNext)

		for _, q := range result.Questions {
			assert.NotEqual(t, unsaved.ID, q.ID)
			require.NotNil(t, q.Author)
			assert.Equal(t, author.ID, q.Author.ID)
		}
	})

	t.Run("title search narrows the saved set", func(t *testing.T) {
		result, err := GetSavedQuestions(db, SavedQuestionsParams{ExternalID: "idp_reader", SearchQuery: "generics"})
		require.NoError(t, err)
		require.Len(t, result.Questions, 2)
	})

	t.Run("most voted sorts by upvotes descending", func(t *testing.T) {
		result, err := GetSavedQuestions(db, SavedQuestionsParams{ExternalID: "idp_reader", Filter: "most_voted"})
		require.NoError(t, err)
		require.Len(t, result.Questions, 3)
		assert.Equal(t, qb.ID, result.Questions[0].ID)
		assert.Equal(t, qa.ID, result.Questions[1].ID)
		assert.Equal(t, qc.ID, result.Questions[2].ID)
	})

	t.Run("pagination flags a next page", func(t *testing.T) {
		result, err := GetSavedQuestions(db, SavedQuestionsParams{ExternalID: "idp_reader", Page: 1, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, result.Questions, 2)
		assert.True(t, result.IsNext)

		result, err = GetSavedQuestions(db, SavedQuestionsParams{ExternalID: "idp_reader", Page: 2, PageSize: 2})
		require.NoError(t, err)
		assert.Len(t, result.Questions, 1)
		assert.False(t, result.IsNext)
	})
}

func TestGetInfo(t *testing.T) {
	db := setupTestDB(t)

	u := seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Ada", Username: "ada"})
	other := seedUser(t, db, models.User{ExternalID: "idp_2", Name: "Grace", Username: "grace"})

	q := seedQuestion(t, db, models.Question{Title: "mine", AuthorID: u.ID})
	seedQuestion(t, db, models.Question{Title: "theirs", AuthorID: other.ID})

	require.NoError(t, db.Create(&models.Answer{QuestionID: q.ID, AuthorID: u.ID}).Error)
	require.NoError(t, db.Create(&models.Answer{QuestionID: q.ID, AuthorID: u.ID}).Error)
	require.NoError(t, db.Create(&models.Answer{QuestionID: q.ID, AuthorID: other.ID}).Error)

	info, err := GetInfo(db, "idp_1")
	require.NoError(t, err)
	require.NotNil(t, info.User)
	assert.Equal(t, u.ID, info.User.ID)
	assert.EqualValues(t, 1, info.TotalQuestions)
	assert.EqualValues(t, 2, info.TotalAnswers)

	_, err = GetInfo(db, "idp_ghost")
	require.ErrorIs(t, err, ErrUserNotFound)
}

func TestGetQuestions(t *testing.T) {
	db := setupTestDB(t)

	u := seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Ada", Username: "ada"})

	for i := 0; i < 12; i++ {
		seedQuestion(t, db, models.Question{
			Title:    fmt.Sprintf("question %02d", i),
			AuthorID: u.ID,
			Views:    int64(i),
			Upvotes:  i % 3,
		})
	}

	// default page size is 10
	result, err := GetQuestions(db, u.ID, 0, 0)
	require.NoError(t, err)
	assert.EqualValues(t, 12, result.TotalQuestions)
	assert.Len(t, result.Questions, 10)
	assert.True(t, result.IsNext)

	for i := 1; i < len(result.Questions); i++ {
		assert.GreaterOrEqual(t, result.Questions[i-1].Views, result.Questions[i].Views)
	}

	result, err = GetQuestions(db, u.ID, 2, 10)
	require.NoError(t, err)
	assert.Len(t, result.Questions, 2)
	assert.False(t, result.IsNext)
}

func TestGetAnswers(t *testing.T) {
	db := setupTestDB(t)

	u := seedUser(t, db, models.User{ExternalID: "idp_1", Name: "Ada", Username: "ada"})
	q := seedQuestion(t, db, models.Question{Title: "answered", AuthorID: u.ID})

	for i := 0; i < 3; i++ {
		require.NoError(t, db.Create(&models.Answer{QuestionID: q.ID, AuthorID: u.ID, Upvotes: i * 5}).Error)
	}

	result, err := GetAnswers(db, u.ID, 1, 10)
	require.NoError(t, err)
	assert.EqualValues(t, 3, result.TotalAnswers)
	require.Len(t, result.Answers, 3)
	assert.False(t, result.IsNext)

	for i := 1; i < len(result.Answers); i++ {
		assert.GreaterOrEqual(t, result.Answers[i-1].Upvotes, result.Answers[i].Upvotes)
	}

	// the answered question and author are expanded
	require.NotNil(t, result.Answers[0].Question)
	assert.Equal(t, "answered", result.Answers[0].Question.Title)
	require.NotNil(t, result.Answers[0].Author)
	assert.Equal(t, "ada", result.Answers[0].Author.Username)
}
