package auth

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/models"
	"gorm.io/gorm"
)

// Identity is the resolved user behind a session.
type Identity struct {
	ID       string `json:"id"`
	Username string `json:"username"`
	Email    string `json:"email"`
	Role     string `json:"role"`
}

// IsAdmin reports whether the identity carries the ADMIN role.
func (i *Identity) IsAdmin() bool {
	return i != nil && i.Role == models.RoleAdmin
}

// Resolver maps the user id stored in a session cookie to an Identity.
type Resolver struct {
	db     *gorm.DB
	logger *slog.Logger
}

// NewResolver creates a Resolver backed by db.
func NewResolver(db *gorm.DB, logger *slog.Logger) *Resolver {
	if logger == nil {
		logger = slog.Default()
	}
	return &Resolver{db: db, logger: logger}
}

// Resolve returns the identity for sessionUserID, or nil when the session is empty,
// the user no longer exists, or the lookup fails. Lookup failures are logged.
func (r *Resolver) Resolve(ctx context.Context, sessionUserID string) *Identity {
	identity, err := r.lookup(ctx, sessionUserID)
	if err != nil {
		if !errors.Is(err, apperr.ErrUnauthenticated) {
			r.logger.Error("failed to resolve session user", "user_id", sessionUserID, "error", err)
		}
		return nil
	}
	return identity
}

// RequireUser returns the id of the session's user or apperr.ErrUnauthenticated.
func (r *Resolver) RequireUser(ctx context.Context, sessionUserID string) (string, error) {
	identity, err := r.lookup(ctx, sessionUserID)
	if err != nil {
		return "", err
	}
	return identity.ID, nil
}

// RequireAdmin returns the session's identity when it has the ADMIN role.
// It fails with apperr.ErrUnauthenticated like RequireUser, and apperr.ErrForbidden otherwise.
func (r *Resolver) RequireAdmin(ctx context.Context, sessionUserID string) (*Identity, error) {
	identity, err := r.lookup(ctx, sessionUserID)
	if err != nil {
		return nil, err
	}
	if !identity.IsAdmin() {
		return nil, apperr.Forbidden()
	}
	return identity, nil
}

func (r *Resolver) lookup(ctx context.Context, sessionUserID string) (*Identity, error) {
	if sessionUserID == "" {
		return nil, apperr.ErrUnauthenticated
	}

	var user models.User
	err := r.db.WithContext(ctx).Preload("Role").Where("id = ?", sessionUserID).First(&user).Error
	if errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, apperr.ErrUnauthenticated
	}
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load session user: %w", err))
	}

	return &Identity{
		ID:       user.ID,
		Username: user.Username,
		Email:    user.Email,
		Role:     user.Role.Name,
	}, nil
}
