// Package definitions stores submitted word definitions and serves the
// keyset-paginated views over them.
package definitions

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/jimdaga/kamus/internal/pagination"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

const table = "definitions"

// MsgNotFound is shown when a definition id does not resolve.
const MsgNotFound = "Definisi tidak ditemukan"

// Store persists definitions.
type Store struct {
	db *gorm.DB
}

// NewStore creates a Store backed by db.
func NewStore(db *gorm.DB) *Store {
	return &Store{db: db}
}

// Create inserts a pending definition owned by userID and returns its id.
func (s *Store) Create(ctx context.Context, word, definition, example, userID string) (string, error) {
	def := models.Definition{
		Word:       word,
		Definition: definition,
		Example:    example,
		UserID:     userID,
	}
	if err := s.db.WithContext(ctx).Omit(clause.Associations).Create(&def).Error; err != nil {
		return "", apperr.Persistence(fmt.Errorf("create definition: %w", err))
	}
	return def.ID, nil
}

// FindVisiblePage pages through approved, non-deleted definitions, newest approval first.
func (s *Store) FindVisiblePage(ctx context.Context, req pagination.Request) (pagination.Page[models.Definition], error) {
	return s.page(ctx, s.visible(ctx), pagination.VisibleOrdering, req)
}

// FindUserPage pages through userID's visible definitions in feed order.
func (s *Store) FindUserPage(ctx context.Context, userID string, req pagination.Request) (pagination.Page[models.Definition], error) {
	q := s.visible(ctx).Where("definitions.user_id = ?", userID)
	return s.page(ctx, q, pagination.VisibleOrdering, req)
}

// FindPendingPage pages through the moderation queue, oldest submission first.
func (s *Store) FindPendingPage(ctx context.Context, req pagination.Request) (pagination.Page[models.Definition], error) {
	return s.page(ctx, s.pending(ctx), pagination.QueueOrdering, req)
}

// FindByID loads a non-deleted definition with its author.
// Unless includeUnapproved is set, pending definitions are reported as not found.
func (s *Store) FindByID(ctx context.Context, id string, includeUnapproved bool) (*models.Definition, error) {
	q := s.db.WithContext(ctx).Preload("User").
		Where("definitions.id = ? AND definitions.deleted_at IS NULL", id)
	if !includeUnapproved {
		q = q.Where("definitions.approved_at IS NOT NULL")
	}

	var def models.Definition
	err := q.First(&def).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.NotFound(MsgNotFound)
	}
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("find definition %s: %w", id, err))
	}
	return &def, nil
}

// Approve stamps approved_at on a pending definition. It reports whether the row
// changed; an already-approved definition keeps its original timestamp.
func (s *Store) Approve(ctx context.Context, id string) (bool, error) {
	res := s.db.WithContext(ctx).Model(&models.Definition{}).
		Where("id = ? AND approved_at IS NULL AND deleted_at IS NULL", id).
		Update("approved_at", time.Now().UTC())
	if res.Error != nil {
		return false, apperr.Persistence(fmt.Errorf("approve definition %s: %w", id, res.Error))
	}
	if res.RowsAffected > 0 {
		return true, nil
	}

	// Nothing changed: either already approved or not there at all
	if _, err := s.FindByID(ctx, id, true); err != nil {
		return false, err
	}
	return false, nil
}

// CountPending returns the size of the moderation queue.
func (s *Store) CountPending(ctx context.Context) (int64, error) {
	var n int64
	if err := s.pending(ctx).Count(&n).Error; err != nil {
		return 0, apperr.Persistence(fmt.Errorf("count pending definitions: %w", err))
	}
	return n, nil
}

func (s *Store) visible(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Definition{}).
		Where("definitions.approved_at IS NOT NULL AND definitions.deleted_at IS NULL")
}

func (s *Store) pending(ctx context.Context) *gorm.DB {
	return s.db.WithContext(ctx).Model(&models.Definition{}).
		Where("definitions.approved_at IS NULL AND definitions.deleted_at IS NULL")
}

func (s *Store) page(ctx context.Context, q *gorm.DB, o pagination.Ordering, req pagination.Request) (pagination.Page[models.Definition], error) {
	page, err := pagination.Fetch(q.Preload("User"), table, o, req, func(d models.Definition) string { return d.ID })
	if err != nil {
		return page, apperr.Persistence(fmt.Errorf("page %s: %w", table, err))
	}
	return page, nil
}
