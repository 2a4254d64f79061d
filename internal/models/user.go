package models

import (
	"time"

	"gorm.io/gorm"
)

// Role names
const (
	RoleAdmin  = "ADMIN"
	RoleMember = "MEMBER"
)

// Role is a named permission set. Users reference exactly one role.
type Role struct {
	ID        string    `gorm:"primaryKey;size:20"`
	Name      string    `gorm:"uniqueIndex;not null"`
	CreatedAt time.Time `gorm:"not null"`
}

// BeforeCreate assigns an id when none is set.
func (r *Role) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&r.ID)
}

// User represents a community member. Created on first successful Google login.
type User struct {
	ID          string    `gorm:"primaryKey;size:20"`
	Email       string    `gorm:"uniqueIndex;not null"`
	Username    string    `gorm:"uniqueIndex;not null"`
	RoleID      string    `gorm:"not null;index;size:20"`
	Role        Role      `gorm:"constraint:OnDelete:RESTRICT;"`
	CreatedAt   time.Time `gorm:"not null"`
	UpdatedAt   time.Time `gorm:"not null"`
	LastLoginAt *time.Time

	// Associations
	AuthIdentities []AuthIdentity `gorm:"constraint:OnDelete:CASCADE;"`
}

// BeforeCreate assigns an id when none is set.
func (u *User) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&u.ID)
}

// IsAdmin reports whether the loaded role is ADMIN. Role must be preloaded.
func (u *User) IsAdmin() bool {
	return u.Role.Name == RoleAdmin
}
