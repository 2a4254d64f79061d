package models

import (
	"time"

	"gorm.io/gorm"
)

// Definition is a user-submitted meaning of a word.
//
// A definition starts pending (ApprovedAt == nil) and becomes visible once an admin
// approves it. ApprovedAt is never cleared. DeletedAt is a soft-delete marker that
// every read path honors.
type Definition struct {
	ID         string     `gorm:"primaryKey;size:20" json:"id"`
	Word       string     `gorm:"type:text;not null" json:"word"`
	Definition string     `gorm:"type:text;not null" json:"definition"`
	Example    string     `gorm:"type:text;not null" json:"example"`
	UserID     string     `gorm:"not null;index;size:20" json:"-"`
	User       User       `gorm:"constraint:OnDelete:CASCADE;" json:"-"`
	CreatedAt  time.Time  `gorm:"not null;index" json:"createdAt"`
	ApprovedAt *time.Time `gorm:"index" json:"approvedAt"`
	DeletedAt  *time.Time `gorm:"index" json:"-"`
}

// BeforeCreate assigns an id when none is set.
func (d *Definition) BeforeCreate(tx *gorm.DB) error {
	return ensureID(&d.ID)
}

// Visible reports whether the definition may appear in public feeds.
func (d *Definition) Visible() bool {
	return d.ApprovedAt != nil && d.DeletedAt == nil
}

// Pending reports whether the definition is waiting in the moderation queue.
func (d *Definition) Pending() bool {
	return d.ApprovedAt == nil && d.DeletedAt == nil
}
