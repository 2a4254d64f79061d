// Package feed composes definition pages with reaction aggregates for the public views.
package feed

import (
	"context"

	"github.com/jimdaga/kamus/internal/definitions"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/jimdaga/kamus/internal/pagination"
	"github.com/jimdaga/kamus/internal/reactions"
)

// Page is one page of annotated definitions.
type Page = pagination.Page[reactions.DefinitionView]

// Feed serves the home feed, a user's own definitions and single-definition refreshes.
type Feed struct {
	definitions *definitions.Store
	reactions   *reactions.Store
	pageSize    int
}

// New creates a Feed. pageSize applies to requests that carry no limit.
func New(defs *definitions.Store, reacts *reactions.Store, pageSize int) *Feed {
	return &Feed{definitions: defs, reactions: reacts, pageSize: pageSize}
}

// Home returns a page of every visible definition as seen by viewerID ("" for anonymous).
func (f *Feed) Home(ctx context.Context, viewerID string, req pagination.Request) (Page, error) {
	page, err := f.definitions.FindVisiblePage(ctx, req.Normalized(f.pageSize))
	if err != nil {
		return Page{}, err
	}
	return f.annotate(ctx, viewerID, page)
}

// Mine returns a page of userID's own visible definitions.
func (f *Feed) Mine(ctx context.Context, userID string, req pagination.Request) (Page, error) {
	page, err := f.definitions.FindUserPage(ctx, userID, req.Normalized(f.pageSize))
	if err != nil {
		return Page{}, err
	}
	return f.annotate(ctx, userID, page)
}

// Single returns one visible definition, annotated for viewerID.
func (f *Feed) Single(ctx context.Context, viewerID, id string) (*reactions.DefinitionView, error) {
	def, err := f.definitions.FindByID(ctx, id, false)
	if err != nil {
		return nil, err
	}
	views, err := f.reactions.View(ctx, viewerID, []models.Definition{*def})
	if err != nil {
		return nil, err
	}
	return &views[0], nil
}

func (f *Feed) annotate(ctx context.Context, viewerID string, page pagination.Page[models.Definition]) (Page, error) {
	views, err := f.reactions.View(ctx, viewerID, page.Data)
	if err != nil {
		return Page{}, err
	}
	return pagination.Map(page, views), nil
}
