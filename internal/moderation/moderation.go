// Package moderation implements the admin review of submitted definitions.
//
// A definition is Pending until an admin approves it and Approved afterwards.
// There is no way back: approval never clears or moves approved_at.
package moderation

import (
	"context"

	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/definitions"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/jimdaga/kamus/internal/pagination"
	"github.com/jimdaga/kamus/internal/reactions"
)

// Service runs the moderation workflow.
type Service struct {
	definitions *definitions.Store
	bus         *events.Bus
	pageSize    int
}

// NewService creates a moderation Service.
func NewService(defs *definitions.Store, bus *events.Bus, pageSize int) *Service {
	return &Service{definitions: defs, bus: bus, pageSize: pageSize}
}

// Queue returns a page of pending definitions, oldest submission first.
func (s *Service) Queue(ctx context.Context, req pagination.Request) (pagination.Page[reactions.DefinitionView], error) {
	page, err := s.definitions.FindPendingPage(ctx, req.Normalized(s.pageSize))
	if err != nil {
		return pagination.Page[reactions.DefinitionView]{}, err
	}
	// Pending definitions cannot have been seen in feeds, so there is nothing to aggregate
	return pagination.Map(page, reactions.Annotate(page.Data, nil, nil)), nil
}

// Detail returns any non-deleted definition, pending or approved.
func (s *Service) Detail(ctx context.Context, id string) (*models.Definition, error) {
	return s.definitions.FindByID(ctx, id, true)
}

// Approve moves a pending definition to Approved on behalf of admin.
// Approving an already approved definition succeeds without changing it.
func (s *Service) Approve(ctx context.Context, admin *auth.Identity, id string) error {
	changed, err := s.definitions.Approve(ctx, id)
	if err != nil {
		return err
	}
	if changed {
		s.bus.Publish(ctx, events.Event{
			Kind:         events.DefinitionApproved,
			DefinitionID: id,
			UserID:       admin.ID,
		})
	}
	return nil
}
