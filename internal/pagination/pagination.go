// Package pagination implements keyset ("seek") pagination over GORM queries.
//
// A page request carries the id of the last row the client saw. The next page starts
// strictly after that row in the view's ordering, so rows inserted elsewhere in the
// ordering never shift the page boundaries the way OFFSET would.
package pagination

import (
	"fmt"

	"gorm.io/gorm"
)

const (
	// DefaultLimit is used when a request does not carry a positive limit.
	DefaultLimit = 10
	// MaxLimit caps a single page.
	MaxLimit = 100
)

// Ordering is the primary sort key of a view. Ties are always broken by id ascending.
type Ordering struct {
	Column     string
	Descending bool
}

var (
	// VisibleOrdering orders public feeds: newest approvals first.
	VisibleOrdering = Ordering{Column: "approved_at", Descending: true}
	// QueueOrdering orders the moderation queue: oldest submissions first.
	QueueOrdering = Ordering{Column: "created_at"}
)

// Request asks for the page after Cursor. An empty Cursor means the first page.
type Request struct {
	Cursor string
	Limit  int
}

// Normalized returns r with the limit clamped to (0, MaxLimit], using fallback when unset.
func (r Request) Normalized(fallback int) Request {
	if fallback <= 0 {
		fallback = DefaultLimit
	}
	if r.Limit <= 0 {
		r.Limit = fallback
	}
	if r.Limit > MaxLimit {
		r.Limit = MaxLimit
	}
	return r
}

// Page is one slice of an ordered collection.
// EndCursor is nil when Data is empty; clients stop once HasNextPage is false.
type Page[T any] struct {
	Data        []T     `json:"data"`
	HasNextPage bool    `json:"hasNextPage"`
	EndCursor   *string `json:"endCursor"`
}

// Fetch runs q as a keyset page over table in ordering o.
// q must already carry the view's filters; Fetch adds the seek predicate, ordering and limit.
func Fetch[T any](q *gorm.DB, table string, o Ordering, req Request, idOf func(T) string) (Page[T], error) {
	req = req.Normalized(DefaultLimit)

	if req.Cursor != "" {
		q = q.Where(o.seekPredicate(table), req.Cursor, req.Cursor, req.Cursor)
	}

	var rows []T
	err := q.Order(o.orderBy(table)).
		Limit(req.Limit + 1).
		Find(&rows).Error
	if err != nil {
		return Page[T]{}, err
	}

	return Trim(rows, req.Limit, idOf), nil
}

// Trim turns limit+1 fetched rows into a page: the extra row only signals HasNextPage.
func Trim[T any](rows []T, limit int, idOf func(T) string) Page[T] {
	page := Page[T]{Data: rows}
	if len(rows) > limit {
		page.HasNextPage = true
		page.Data = rows[:limit]
	}
	if len(page.Data) == 0 {
		page.Data = []T{}
		page.HasNextPage = false
		return page
	}

	endCursor := idOf(page.Data[len(page.Data)-1])
	page.EndCursor = &endCursor
	return page
}

// Map keeps the page metadata of p and replaces its rows with data.
// data must be derived from p.Data in the same order.
func Map[T, U any](p Page[T], data []U) Page[U] {
	if data == nil {
		data = []U{}
	}
	return Page[U]{
		Data:        data,
		HasNextPage: p.HasNextPage,
		EndCursor:   p.EndCursor,
	}
}

func (o Ordering) orderBy(table string) string {
	dir := "ASC"
	if o.Descending {
		dir = "DESC"
	}
	return fmt.Sprintf("%s.%s %s, %s.id ASC", table, o.Column, dir, table)
}

// seekPredicate selects rows strictly after the cursor row. The cursor row's sort key is
// read with a subquery; a cursor naming no row compares against NULL and matches nothing.
func (o Ordering) seekPredicate(table string) string {
	cmp := ">"
	if o.Descending {
		cmp = "<"
	}
	key := fmt.Sprintf("(SELECT cur.%s FROM %s cur WHERE cur.id = ?)", o.Column, table)
	return fmt.Sprintf("(%s.%s %s %s OR (%s.%s = %s AND %s.id > ?))",
		table, o.Column, cmp, key,
		table, o.Column, key, table)
}
