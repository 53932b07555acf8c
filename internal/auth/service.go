package auth

import (
	"errors"

	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/db/models"
	"github.com/devflowhq/devflow/internal/web/session"
)

// Service validates sessions issued after an identity provider sign-in.
type Service struct {
	db *gorm.DB
}

// NewService creates a new auth service.
func NewService(db *gorm.DB) *Service {
	return &Service{db: db}
}

// ValidateSession resolves a session id to the logged-in user.
// It fails with ErrSessionInvalid for missing, unknown or expired sessions
// and re-checks the user record so sessions of deleted accounts die with them.
func (s *Service) ValidateSession(sessionID string) (*models.User, error) {
	if sessionID == "" {
		return nil, ErrSessionInvalid
	}

	data := new(session.Data)
	if err := data.Read(sessionID); err != nil {
		return nil, ErrSessionInvalid
	}

	if data.User.ID == 0 {
		return nil, ErrSessionInvalid
	}

	var u models.User

	err := s.db.First(&u, data.User.ID).Error
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, ErrUserNotFound
		}

		return nil, err
	}

	return &u, nil
}
