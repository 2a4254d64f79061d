// Package profile lets users see and rename themselves.
package profile

import (
	"context"
	"errors"
	"fmt"

	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/models"
	"gorm.io/gorm"
)

const msgUsernameTaken = "Username sudah digunakan"

// Store updates user profiles.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// UpdateUsername renames userID. The name must not belong to any other user;
// keeping one's own name is allowed.
func (s *Store) UpdateUsername(ctx context.Context, userID, username string) error {
	db := s.db.WithContext(ctx)

	var taken int64
	err := db.Model(&models.User{}).
		Where("username = ? AND id <> ?", username, userID).
		Count(&taken).Error
	if err != nil {
		return apperr.Persistence(fmt.Errorf("check username: %w", err))
	}
	if taken > 0 {
		return usernameTaken()
	}

	res := db.Model(&models.User{}).Where("id = ?", userID).Update("username", username)
	if errors.Is(res.Error, gorm.ErrDuplicatedKey) {
		// Lost a race against another rename; the unique index decides
		return usernameTaken()
	}
	if res.Error != nil {
		return apperr.Persistence(fmt.Errorf("update username: %w", res.Error))
	}
	if res.RowsAffected == 0 {
		return apperr.ErrUnauthenticated
	}
	return nil
}

func usernameTaken() error {
	return apperr.Invalid(msgUsernameTaken, apperr.FieldErrors{"username": msgUsernameTaken})
}
