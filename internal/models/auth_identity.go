package models

import (
	"time"

	"github.com/jimdaga/kamus/internal/crypto"
	"gorm.io/gorm"
)

var encryptor *crypto.TokenEncryptor

// InitEncryption initializes the token encryptor for the models package.
// Must be called before any database operations involving AuthIdentity.
func InitEncryption(encryptionKey string) error {
	var err error
	encryptor, err = crypto.NewTokenEncryptor(encryptionKey)
	return err
}

// AuthIdentity links a user to an OAuth provider account. Tokens are stored encrypted.
type AuthIdentity struct {
	ID             string `gorm:"primaryKey;size:20"`
	UserID         string `gorm:"not null;index;size:20"`
	Provider       string `gorm:"not null;uniqueIndex:idx_auth_identities_provider_user,priority:1"` // e.g., "google"
	ProviderUserID string `gorm:"not null;uniqueIndex:idx_auth_identities_provider_user,priority:2"`
	AccessToken    string `gorm:"type:text"` // stored encrypted
	RefreshToken   string `gorm:"type:text"` // stored encrypted
	TokenExpiry    *time.Time
	CreatedAt      time.Time `gorm:"not null"`
	UpdatedAt      time.Time `gorm:"not null"`
}

// BeforeCreate assigns an id when none is set.
func (a *AuthIdentity) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&a.ID)
}

// BeforeSave encrypts tokens before saving to database.
func (a *AuthIdentity) BeforeSave(tx *gorm.DB) error {
	if encryptor == nil {
		// Encryption is optional in development and tests
		return nil
	}

	if a.AccessToken != "" {
		encrypted, err := encryptor.Encrypt(a.AccessToken)
		if err != nil {
			return err
		}
		a.AccessToken = encrypted
	}

	if a.RefreshToken != "" {
		encrypted, err := encryptor.Encrypt(a.RefreshToken)
		if err != nil {
			return err
		}
		a.RefreshToken = encrypted
	}

	return nil
}

// AfterFind decrypts tokens after loading from database
func (a *AuthIdentity) AfterFind(tx *gorm.DB) error {
	if encryptor == nil {
		return nil
	}

	if a.AccessToken != "" {
		decrypted, err := encryptor.Decrypt(a.AccessToken)
		if err != nil {
			return err
		}
		a.AccessToken = decrypted
	}

	if a.RefreshToken != "" {
		decrypted, err := encryptor.Decrypt(a.RefreshToken)
		if err != nil {
			return err
		}
		a.RefreshToken = decrypted
	}

	return nil
}
