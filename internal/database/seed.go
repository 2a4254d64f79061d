package database

import (
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/brianvoe/gofakeit/v7"
	"github.com/jimdaga/kamus/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const (
	seedEmailDomain = "seed.kamus.local"
	seedMembers     = 20
	seedPending     = 5
)

// EnsureRoles creates the ADMIN and MEMBER roles when they are missing.
func EnsureRoles(db *gorm.DB) error {
	for _, name := range []string{models.RoleAdmin, models.RoleMember} {
		role := models.Role{Name: name}
		if err := db.Where("name = ?", name).FirstOrCreate(&role).Error; err != nil {
			return fmt.Errorf("failed to ensure role %s: %w", name, err)
		}
	}
	return nil
}

// SeedDevData populates the database with development test data: an admin,
// members who each own an approved definition, and a few pending submissions.
// Idempotent: skips if data already exists.
func SeedDevData(db *gorm.DB, logger *slog.Logger, adminEmail string) error {
	if err := EnsureRoles(db); err != nil {
		return err
	}

	var existing int64
	if err := db.Model(&models.User{}).Where("email LIKE ?", "%@"+seedEmailDomain).Count(&existing).Error; err != nil {
		return fmt.Errorf("failed to check seed data: %w", err)
	}
	if existing > 0 {
		logger.Info("seed data already exists, skipping")
		return nil
	}

	var admin, member models.Role
	if err := db.Where("name = ?", models.RoleAdmin).First(&admin).Error; err != nil {
		return err
	}
	if err := db.Where("name = ?", models.RoleMember).First(&member).Error; err != nil {
		return err
	}

	faker := gofakeit.New(42)
	now := time.Now().UTC()

	return db.Transaction(func(tx *gorm.DB) error {
		if adminEmail == "" {
			adminEmail = "admin@" + seedEmailDomain
		}
		adminUser := models.User{
			Email:    strings.ToLower(adminEmail),
			Username: "admin",
			RoleID:   admin.ID,
		}
		if err := tx.Omit(clause.Associations).Where("email = ?", adminUser.Email).FirstOrCreate(&adminUser).Error; err != nil {
			return fmt.Errorf("failed to seed admin: %w", err)
		}

		members := make([]models.User, 0, seedMembers)
		for i := 0; i < seedMembers; i++ {
			members = append(members, models.User{
				Email:    fmt.Sprintf("member%02d@%s", i, seedEmailDomain),
				Username: fmt.Sprintf("%s%02d", strings.ToLower(faker.Username()), i),
				RoleID:   member.ID,
			})
		}
		if err := tx.Omit(clause.Associations).Create(&members).Error; err != nil {
			return fmt.Errorf("failed to seed members: %w", err)
		}

		defs := make([]models.Definition, 0, seedMembers+seedPending)
		for i, m := range members {
			approvedAt := now.Add(-time.Duration(i) * time.Hour)
			defs = append(defs, seedDefinition(faker, m.ID, approvedAt.Add(-time.Hour), &approvedAt))
		}
		for i := 0; i < seedPending; i++ {
			defs = append(defs, seedDefinition(faker, members[i].ID, now.Add(-time.Duration(i)*time.Minute), nil))
		}
		if err := tx.Omit(clause.Associations).Create(&defs).Error; err != nil {
			return fmt.Errorf("failed to seed definitions: %w", err)
		}

		logger.Info("seeded dev data",
			"admin", adminUser.Email,
			"members", len(members),
			"approved", seedMembers,
			"pending", seedPending,
		)
		return nil
	})
}

func seedDefinition(faker *gofakeit.Faker, userID string, createdAt time.Time, approvedAt *time.Time) models.Definition {
	word := faker.Word()
	return models.Definition{
		Word:       word,
		Definition: faker.Sentence(8),
		Example:    word + " " + faker.Sentence(5),
		UserID:     userID,
		CreatedAt:  createdAt,
		ApprovedAt: approvedAt,
	}
}
