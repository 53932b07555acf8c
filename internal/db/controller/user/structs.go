package user

import "github.com/devflowhq/devflow/internal/db/models"

// Revalidator invalidates a cached page at a logical path after a mutation.
// Invalidation is fire-and-forget: implementations log failures but never
// surface them, and a failed invalidation never rolls back the mutation.
type Revalidator interface {
	Revalidate(path string)
}

// CreateParams is the payload for provisioning a new user record.
type CreateParams struct {
	ExternalID string `json:"externalId" validate:"required"`
	Name       string `json:"name"       validate:"required"`
	Username   string `json:"username"   validate:"required"`
	Email      string `json:"email"      validate:"omitempty,email"`
	Picture    string `json:"picture"    validate:"omitempty,url"`
}

// UpdateParams carries a partial profile update for the user with the given
// identity provider id. Zero-valued fields are left unchanged.
// Path names the cached page to refresh after the update commits.
type UpdateParams struct {
	ExternalID string `json:"externalId" validate:"required"`
	Name       string `json:"name"`
	Username   string `json:"username"`
	Email      string `json:"email"    validate:"omitempty,email"`
	Picture    string `json:"picture"  validate:"omitempty,url"`
	Path       string `json:"path"`
}

// ListParams selects a page of the community user list.
type ListParams struct {
	SearchQuery string
	Filter      string
	Page        int
	PageSize    int
}

// ListResult is one page of users plus the offset pagination flag.
type ListResult struct {
	Users  []models.User `json:"users"`
	IsNext bool          `json:"isNext"`
}

// ToggleSaveParams toggles membership of a question in a user's saved set.
// Path names the cached page to refresh after the toggle commits.
type ToggleSaveParams struct {
	UserID     uint64 `json:"userId"     validate:"required"`
	QuestionID uint64 `json:"questionId" validate:"required"`
	Path       string `json:"path"`
}

// SavedQuestionsParams selects a page of a user's saved questions.
type SavedQuestionsParams struct {
	ExternalID  string
	SearchQuery string
	Filter      string
	Page        int
	PageSize    int
}

// SavedQuestionsResult is one page of saved questions, each with tags and
// author expanded.
type SavedQuestionsResult struct {
	Questions []models.Question `json:"questions"`
	IsNext    bool              `json:"isNext"`
}

// Info aggregates a user's profile with their contribution counts.
type Info struct {
	User           *models.User `json:"user"`
	TotalQuestions int64        `json:"totalQuestions"`
	TotalAnswers   int64        `json:"totalAnswers"`
}
