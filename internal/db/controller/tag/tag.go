// Package tag provides data-access operations for tag records.
package tag

import (
	"errors"

	"gorm.io/gorm"

	"github.com/devflowhq/devflow/internal/db/models"
)

const (
	nameQueryPattern = "name = ?"
)

var (
	// ErrTagNameEmpty is returned when a tag operation receives an empty name.
	ErrTagNameEmpty = errors.New("tag name cannot be empty")
	// ErrDBNil is returned when the database connection is nil.
	ErrDBNil = errors.New("database connection is nil")
)

// GetAll retrieves all tags ordered by name.
func GetAll(db *gorm.DB) ([]models.Tag, error) {
	if db == nil {
		return nil, ErrDBNil
	}

	var tags []models.Tag
	if err := db.Order("name ASC").Find(&tags).Error; err != nil {
		return nil, err
	}

	return tags, nil
}

// GetOrCreate returns the tag with the given name, creating it if missing.
func GetOrCreate(db *gorm.DB, name string) (*models.Tag, error) {
	if db == nil {
		return nil, ErrDBNil
	}
	if name == "" {
		return nil, ErrTagNameEmpty
	}

	var t models.Tag

	err := db.Where(nameQueryPattern, name).First(&t).Error
	if err == nil {
		return &t, nil
	}
	if !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, err
	}

	t = models.Tag{Name: name}
	if err := db.Create(&t).Error; err != nil {
		return nil, err
	}

	return &t, nil
}
