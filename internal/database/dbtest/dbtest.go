// Package dbtest provides an in-memory SQLite database with the application schema
// and small fixtures for store and handler tests.
package dbtest

import (
	"fmt"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jimdaga/kamus/internal/database"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// New opens a fresh database, migrates every model and seeds the ADMIN and MEMBER roles.
func New(t *testing.T) *gorm.DB {
	t.Helper()

	dsn := fmt.Sprintf("file:%s?mode=memory&cache=shared&_foreign_keys=1", uuid.NewString())
	db, err := gorm.Open(sqlite.Open(dsn), database.NewConfig(nil))
	require.NoError(t, err)

	sqlDB, err := db.DB()
	require.NoError(t, err)
	// A single connection keeps the shared in-memory database alive and avoids table locks
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { sqlDB.Close() })

	require.NoError(t, db.AutoMigrate(models.All()...))
	require.NoError(t, db.Create(&[]models.Role{
		{Name: models.RoleAdmin},
		{Name: models.RoleMember},
	}).Error)

	return db
}

// Role returns the id of the named role.
func Role(t *testing.T, db *gorm.DB, name string) string {
	t.Helper()
	var role models.Role
	require.NoError(t, db.Where("name = ?", name).First(&role).Error)
	return role.ID
}

// CreateUser inserts a user with the given username and role name.
func CreateUser(t *testing.T, db *gorm.DB, username, role string) models.User {
	t.Helper()
	user := models.User{
		Email:    username + "@kamus.test",
		Username: username,
		RoleID:   Role(t, db, role),
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&user).Error)
	return user
}

// CreateDefinition inserts a definition owned by userID. A nil approvedAt leaves it pending.
func CreateDefinition(t *testing.T, db *gorm.DB, userID, word string, createdAt time.Time, approvedAt *time.Time) models.Definition {
	t.Helper()
	def := models.Definition{
		Word:       word,
		Definition: "arti dari " + word,
		Example:    "contoh " + word,
		UserID:     userID,
		CreatedAt:  createdAt.UTC(),
		ApprovedAt: approvedAt,
	}
	require.NoError(t, db.Omit(clause.Associations).Create(&def).Error)
	return def
}

// At returns a pointer to base shifted by offset, in UTC.
func At(base time.Time, offset time.Duration) *time.Time {
	t := base.Add(offset).UTC()
	return &t
}
