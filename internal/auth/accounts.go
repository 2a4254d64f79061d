package auth

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/markbates/goth"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const usernameAttempts = 5

// Accounts turns a completed OAuth login into a User row.
type Accounts struct {
	db         *gorm.DB
	adminEmail string
	username   func() string
}

// NewAccounts creates an Accounts store. A login with adminEmail creates an ADMIN user.
func NewAccounts(db *gorm.DB, adminEmail string) *Accounts {
	return &Accounts{
		db:         db,
		adminEmail: strings.ToLower(strings.TrimSpace(adminEmail)),
		username:   GenerateUsername,
	}
}

// GenerateUsername returns a random lower-case username.
func GenerateUsername() string {
	return strings.ToLower(gofakeit.Username())
}

// Upsert finds the user by email or creates it with a generated username, then records
// the provider identity and its tokens.
func (a *Accounts) Upsert(ctx context.Context, gothUser goth.User) (*models.User, error) {
	email := strings.ToLower(strings.TrimSpace(gothUser.Email))
	if email == "" {
		return nil, errors.New("provider returned no email")
	}

	var user models.User
	err := a.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		now := time.Now().UTC()

		err := tx.Where("email = ?", email).First(&user).Error
		switch {
		case errors.Is(err, gorm.ErrRecordNotFound):
			if err := a.create(tx, &user, email, now); err != nil {
				return err
			}
		case err != nil:
			return fmt.Errorf("failed to find user: %w", err)
		default:
			if err := tx.Model(&user).Update("last_login_at", now).Error; err != nil {
				return fmt.Errorf("failed to update last login: %w", err)
			}
		}

		if gothUser.UserID == "" {
			return nil
		}
		identity := models.AuthIdentity{
			UserID:         user.ID,
			Provider:       gothUser.Provider,
			ProviderUserID: gothUser.UserID,
			AccessToken:    gothUser.AccessToken,
			RefreshToken:   gothUser.RefreshToken,
		}
		if !gothUser.ExpiresAt.IsZero() {
			expiry := gothUser.ExpiresAt.UTC()
			identity.TokenExpiry = &expiry
		}
		err = tx.Clauses(clause.OnConflict{
			Columns:   []clause.Column{{Name: "provider"}, {Name: "provider_user_id"}},
			DoUpdates: clause.AssignmentColumns([]string{"access_token", "refresh_token", "token_expiry", "updated_at"}),
		}).Create(&identity).Error
		if err != nil {
			return fmt.Errorf("failed to save auth identity: %w", err)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return &user, nil
}

func (a *Accounts) create(tx *gorm.DB, user *models.User, email string, now time.Time) error {
	roleName := models.RoleMember
	if a.adminEmail != "" && email == a.adminEmail {
		roleName = models.RoleAdmin
	}

	var role models.Role
	if err := tx.Where("name = ?", roleName).First(&role).Error; err != nil {
		return fmt.Errorf("failed to load role %s: %w", roleName, err)
	}

	for attempt := 0; attempt < usernameAttempts; attempt++ {
		username := a.username()
		if attempt > 0 {
			username = fmt.Sprintf("%s%d", username, gofakeit.Number(10, 9999))
		}

		var taken int64
		if err := tx.Model(&models.User{}).Where("username = ?", username).Count(&taken).Error; err != nil {
			return fmt.Errorf("failed to check username: %w", err)
		}
		if taken > 0 {
			continue
		}

		*user = models.User{
			Email:       email,
			Username:    username,
			RoleID:      role.ID,
			LastLoginAt: &now,
		}
		if err := tx.Omit(clause.Associations).Create(user).Error; err != nil {
			return fmt.Errorf("failed to create user: %w", err)
		}
		user.Role = role
		return nil
	}
	return fmt.Errorf("failed to generate a free username after %d attempts", usernameAttempts)
}
