package models

import (
	"time"

	"gorm.io/gorm"
)

// ReactionType is either LIKE or DISLIKE.
type ReactionType string

const (
	ReactionLike    ReactionType = "LIKE"
	ReactionDislike ReactionType = "DISLIKE"
)

// Valid reports whether t is a known reaction type.
func (t ReactionType) Valid() bool {
	return t == ReactionLike || t == ReactionDislike
}

// Reaction records one user's reaction to one definition.
// The (definition_id, user_id) pair is unique; toggling mutates the row in place.
// A reaction counts toward aggregates only while DeletedAt is nil.
type Reaction struct {
	ID           string       `gorm:"primaryKey;size:20"`
	Type         ReactionType `gorm:"type:text;not null"`
	UserID       string       `gorm:"not null;size:20;uniqueIndex:idx_reactions_definition_user,priority:2"`
	User         User         `gorm:"constraint:OnDelete:CASCADE;"`
	DefinitionID string       `gorm:"not null;size:20;uniqueIndex:idx_reactions_definition_user,priority:1"`
	Definition   Definition   `gorm:"constraint:OnDelete:CASCADE;"`
	CreatedAt    time.Time    `gorm:"not null"`
	DeletedAt    *time.Time   `gorm:"index"`
}

// BeforeCreate assigns an id when none is set.
func (r *Reaction) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&r.ID)
}

// All returns every model in dependency order, for AutoMigrate in tests and tools.
func All() []interface{} {
	return []interface{}{&Role{}, &User{}, &AuthIdentity{}, &Definition{}, &Reaction{}}
}
