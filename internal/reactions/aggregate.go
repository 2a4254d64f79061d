package reactions

import (
	"context"
	"fmt"
	"time"

	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/models"
)

// Counts is the number of active reactions of each type.
type Counts struct {
	Likes    int64 `json:"likes"`
	Dislikes int64 `json:"dislikes"`
}

// Own is the viewer's active reaction to a definition.
type Own struct {
	ID   string              `json:"id"`
	Type models.ReactionType `json:"type"`
}

// Author is the public part of a definition's owner.
type Author struct {
	Username string `json:"username"`
}

// DefinitionView is a definition as rendered in feeds, with its reactions attached.
type DefinitionView struct {
	ID                  string     `json:"id"`
	Word                string     `json:"word"`
	Definition          string     `json:"definition"`
	Example             string     `json:"example"`
	CreatedAt           time.Time  `json:"createdAt"`
	ApprovedAt          *time.Time `json:"approvedAt"`
	User                Author     `json:"user"`
	Reaction            Counts     `json:"reaction"`
	CurrentUserReaction *Own       `json:"currentUserReaction"`
}

// CountsFor returns like/dislike counts for ids in one grouped query.
// Definitions without active reactions are absent from the map; read them as zero.
func (s *Store) CountsFor(ctx context.Context, ids []string) (map[string]Counts, error) {
	counts := make(map[string]Counts, len(ids))
	if len(ids) == 0 {
		return counts, nil
	}

	var rows []struct {
		DefinitionID string
		Likes        int64
		Dislikes     int64
	}
	err := s.db.WithContext(ctx).Model(&models.Reaction{}).
		Select(`definition_id,
			COUNT(CASE WHEN type = ? THEN 1 END) AS likes,
			COUNT(CASE WHEN type = ? THEN 1 END) AS dislikes`,
			models.ReactionLike, models.ReactionDislike).
		Where("definition_id IN ? AND deleted_at IS NULL", ids).
		Group("definition_id").
		Scan(&rows).Error
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("count reactions: %w", err))
	}

	for _, r := range rows {
		counts[r.DefinitionID] = Counts{Likes: r.Likes, Dislikes: r.Dislikes}
	}
	return counts, nil
}

// CurrentUserReaction returns userID's active reactions to ids, keyed by definition id.
// An empty userID (anonymous viewer) yields an empty map without a query.
func (s *Store) CurrentUserReaction(ctx context.Context, userID string, ids []string) (map[string]Own, error) {
	own := make(map[string]Own)
	if userID == "" || len(ids) == 0 {
		return own, nil
	}

	var rows []models.Reaction
	err := s.db.WithContext(ctx).
		Select("id", "type", "definition_id").
		Where("user_id = ? AND definition_id IN ? AND deleted_at IS NULL", userID, ids).
		Find(&rows).Error
	if err != nil {
		return nil, apperr.Persistence(fmt.Errorf("load reactions of %s: %w", userID, err))
	}

	for _, r := range rows {
		own[r.DefinitionID] = Own{ID: r.ID, Type: r.Type}
	}
	return own, nil
}

// Annotate joins counts and the viewer's reactions onto defs, preserving order.
func Annotate(defs []models.Definition, counts map[string]Counts, own map[string]Own) []DefinitionView {
	views := make([]DefinitionView, 0, len(defs))
	for _, d := range defs {
		view := DefinitionView{
			ID:         d.ID,
			Word:       d.Word,
			Definition: d.Definition,
			Example:    d.Example,
			CreatedAt:  d.CreatedAt,
			ApprovedAt: d.ApprovedAt,
			User:       Author{Username: d.User.Username},
			Reaction:   counts[d.ID],
		}
		if r, ok := own[d.ID]; ok {
			r := r
			view.CurrentUserReaction = &r
		}
		views = append(views, view)
	}
	return views
}

// View loads counts and the viewer's reactions for defs and annotates them.
func (s *Store) View(ctx context.Context, viewerID string, defs []models.Definition) ([]DefinitionView, error) {
	ids := make([]string, len(defs))
	for i, d := range defs {
		ids[i] = d.ID
	}

	counts, err := s.CountsFor(ctx, ids)
	if err != nil {
		return nil, err
	}
	own, err := s.CurrentUserReaction(ctx, viewerID, ids)
	if err != nil {
		return nil, err
	}
	return Annotate(defs, counts, own), nil
}
