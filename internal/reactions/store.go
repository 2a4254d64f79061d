// Package reactions records LIKE/DISLIKE reactions and aggregates them onto definitions.
package reactions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/definitions"
	"github.com/jimdaga/kamus/internal/models"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

// Store persists reactions. Each (definition, user) pair owns at most one row.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// SetReaction makes userID's reaction to definitionID active with type t, or retracts it.
//
// It is a single upsert on the (definition_id, user_id) unique index, so concurrent
// calls for the same pair serialize in the database. Retracting only stamps deleted_at;
// the previous type is kept on the row.
func (s *Store) SetReaction(ctx context.Context, userID, definitionID string, t models.ReactionType, active bool) error {
	if !t.Valid() {
		return apperr.Validation(apperr.FieldErrors{"type": fmt.Sprintf("unknown reaction type %q", t)})
	}

	db := s.db.WithContext(ctx)

	var exists int64
	err := db.Model(&models.Definition{}).
		Where("id = ? AND deleted_at IS NULL", definitionID).
		Count(&exists).Error
	if err != nil {
		return apperr.Persistence(fmt.Errorf("check definition %s: %w", definitionID, err))
	}
	if exists == 0 {
		return apperr.NotFound(definitions.MsgNotFound)
	}

	row := models.Reaction{
		Type:         t,
		UserID:       userID,
		DefinitionID: definitionID,
	}
	var updates clause.Set
	if active {
		updates = clause.Assignments(map[string]interface{}{"type": t, "deleted_at": nil})
	} else {
		now := time.Now().UTC()
		row.DeletedAt = &now
		updates = clause.Assignments(map[string]interface{}{"deleted_at": now})
	}

	err = db.Omit(clause.Associations).Clauses(clause.OnConflict{
		Columns:   []clause.Column{{Name: "definition_id"}, {Name: "user_id"}},
		DoUpdates: updates,
	}).Create(&row).Error
	if errors.Is(err, gorm.ErrForeignKeyViolated) {
		// The definition vanished between the check and the upsert
		return apperr.NotFound(definitions.MsgNotFound)
	}
	if err != nil {
		return apperr.Persistence(fmt.Errorf("set reaction on %s: %w", definitionID, err))
	}
	return nil
}
