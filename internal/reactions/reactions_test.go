package reactions

import (
	"context"
	"log/slog"
	"net/http"
	"net/url"
	"sync"
	"testing"
	"time"

	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/auth/authtest"
	"github.com/jimdaga/kamus/internal/database/dbtest"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"
)

type fixture struct {
	db    *gorm.DB
	store *Store
	u1    models.User
	u2    models.User
	def   models.Definition
}

func newFixture(t *testing.T) fixture {
	db := dbtest.New(t)
	u1 := dbtest.CreateUser(t, db, "satu", models.RoleMember)
	u2 := dbtest.CreateUser(t, db, "dua", models.RoleMember)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	def := dbtest.CreateDefinition(t, db, u1.ID, "foo", base, dbtest.At(base, time.Hour))
	return fixture{db: db, store: NewStore(db), u1: u1, u2: u2, def: def}
}

func (f fixture) rows(t *testing.T) []models.Reaction {
	t.Helper()
	var rows []models.Reaction
	require.NoError(t, f.db.Where("definition_id = ?", f.def.ID).Find(&rows).Error)
	return rows
}

func (f fixture) counts(t *testing.T) Counts {
	t.Helper()
	counts, err := f.store.CountsFor(context.Background(), []string{f.def.ID})
	require.NoError(t, err)
	return counts[f.def.ID]
}

func TestLikeRetractDislike(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	assert.Equal(t, Counts{}, f.counts(t))

	require.NoError(t, f.store.SetReaction(ctx, f.u2.ID, f.def.ID, models.ReactionLike, true))
	assert.Equal(t, Counts{Likes: 1}, f.counts(t))

	require.NoError(t, f.store.SetReaction(ctx, f.u2.ID, f.def.ID, models.ReactionLike, false))
	assert.Equal(t, Counts{}, f.counts(t))

	own, err := f.store.CurrentUserReaction(ctx, f.u2.ID, []string{f.def.ID})
	require.NoError(t, err)
	assert.Empty(t, own)

	require.NoError(t, f.store.SetReaction(ctx, f.u2.ID, f.def.ID, models.ReactionDislike, true))
	assert.Equal(t, Counts{Dislikes: 1}, f.counts(t))

	own, err = f.store.CurrentUserReaction(ctx, f.u2.ID, []string{f.def.ID})
	require.NoError(t, err)
	require.Contains(t, own, f.def.ID)
	assert.Equal(t, models.ReactionDislike, own[f.def.ID].Type)

	rows := f.rows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, own[f.def.ID].ID, rows[0].ID)
}

func TestRetractKeepsTypeAndFirstRetractIsInactive(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	require.NoError(t, f.store.SetReaction(ctx, f.u1.ID, f.def.ID, models.ReactionDislike, false))
	rows := f.rows(t)
	require.Len(t, rows, 1)
	assert.NotNil(t, rows[0].DeletedAt)
	assert.Equal(t, Counts{}, f.counts(t))

	require.NoError(t, f.store.SetReaction(ctx, f.u1.ID, f.def.ID, models.ReactionLike, true))
	require.NoError(t, f.store.SetReaction(ctx, f.u1.ID, f.def.ID, models.ReactionDislike, false))
	rows = f.rows(t)
	require.Len(t, rows, 1)
	assert.Equal(t, models.ReactionLike, rows[0].Type)
	assert.NotNil(t, rows[0].DeletedAt)
}

func TestExclusivityUnderToggles(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	type call struct {
		typ    models.ReactionType
		active bool
	}
	calls := []call{
		{models.ReactionLike, true},
		{models.ReactionDislike, true},
		{models.ReactionDislike, false},
		{models.ReactionLike, true},
		{models.ReactionLike, true},
		{models.ReactionDislike, true},
	}

	for _, c := range calls {
		require.NoError(t, f.store.SetReaction(ctx, f.u2.ID, f.def.ID, c.typ, c.active))
	}

	rows := f.rows(t)
	require.Len(t, rows, 1)
	assert.Nil(t, rows[0].DeletedAt)
	assert.Equal(t, models.ReactionDislike, rows[0].Type)
	assert.Equal(t, Counts{Dislikes: 1}, f.counts(t))
}

func TestConcurrentUpsertsKeepOneRow(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()

	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 8; i++ {
		typ := models.ReactionLike
		if i%2 == 1 {
			typ = models.ReactionDislike
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			errs <- f.store.SetReaction(ctx, f.u2.ID, f.def.ID, typ, true)
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		require.NoError(t, err)
	}

	assert.Len(t, f.rows(t), 1)
	c := f.counts(t)
	assert.EqualValues(t, 1, c.Likes+c.Dislikes)
}

func TestSetReactionUnknownDefinition(t *testing.T) {
	f := newFixture(t)

	err := f.store.SetReaction(context.Background(), f.u2.ID, "missing", models.ReactionLike, true)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	err = f.store.SetReaction(context.Background(), f.u2.ID, f.def.ID, models.ReactionType("LOVE"), true)
	assert.ErrorIs(t, err, apperr.ErrValidation)
}

func TestAggregationCountsOnlyActiveRows(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	u3 := dbtest.CreateUser(t, f.db, "tiga", models.RoleMember)
	base := time.Date(2024, 5, 1, 0, 0, 0, 0, time.UTC)
	quiet := dbtest.CreateDefinition(t, f.db, f.u1.ID, "sepi", base, dbtest.At(base, time.Minute))

	require.NoError(t, f.store.SetReaction(ctx, f.u1.ID, f.def.ID, models.ReactionLike, true))
	require.NoError(t, f.store.SetReaction(ctx, f.u2.ID, f.def.ID, models.ReactionLike, true))
	require.NoError(t, f.store.SetReaction(ctx, u3.ID, f.def.ID, models.ReactionDislike, true))
	require.NoError(t, f.store.SetReaction(ctx, u3.ID, quiet.ID, models.ReactionLike, false))

	counts, err := f.store.CountsFor(ctx, []string{f.def.ID, quiet.ID})
	require.NoError(t, err)
	assert.Equal(t, Counts{Likes: 2, Dislikes: 1}, counts[f.def.ID])
	assert.NotContains(t, counts, quiet.ID)

	empty, err := f.store.CountsFor(ctx, nil)
	require.NoError(t, err)
	assert.Empty(t, empty)

	var defs []models.Definition
	require.NoError(t, f.db.Preload("User").Order("approved_at DESC").Find(&defs).Error)
	views, err := f.store.View(ctx, u3.ID, defs)
	require.NoError(t, err)
	require.Len(t, views, 2)

	assert.Equal(t, f.def.ID, views[0].ID)
	assert.Equal(t, "satu", views[0].User.Username)
	assert.Equal(t, Counts{Likes: 2, Dislikes: 1}, views[0].Reaction)
	require.NotNil(t, views[0].CurrentUserReaction)
	assert.Equal(t, models.ReactionDislike, views[0].CurrentUserReaction.Type)

	assert.Equal(t, Counts{}, views[1].Reaction)
	assert.Nil(t, views[1].CurrentUserReaction)

	anonymous, err := f.store.View(ctx, "", defs)
	require.NoError(t, err)
	assert.Nil(t, anonymous[0].CurrentUserReaction)
}

func TestAnnotateIsPure(t *testing.T) {
	defs := []models.Definition{{ID: "a", Word: "alpha"}, {ID: "b", Word: "beta"}}
	views := Annotate(defs,
		map[string]Counts{"b": {Likes: 3}},
		map[string]Own{"a": {ID: "r1", Type: models.ReactionLike}},
	)

	require.Len(t, views, 2)
	assert.Equal(t, Counts{}, views[0].Reaction)
	assert.Equal(t, &Own{ID: "r1", Type: models.ReactionLike}, views[0].CurrentUserReaction)
	assert.Equal(t, Counts{Likes: 3}, views[1].Reaction)
	assert.Nil(t, views[1].CurrentUserReaction)

	assert.Empty(t, Annotate(nil, nil, nil))
}

func TestHandleSetReaction(t *testing.T) {
	f := newFixture(t)
	bus := events.NewBus(nil)
	var published []events.Event
	bus.Subscribe(func(_ context.Context, e events.Event) { published = append(published, e) })

	r := authtest.NewEngine()
	r.POST("/reactions", auth.RequireUser(auth.NewResolver(f.db, nil)), HandleSetReaction(f.store, bus, slog.Default()))
	cookies := authtest.Login(t, r, f.u2.ID)

	w := authtest.PostForm(r, "/reactions", url.Values{"id": {f.def.ID}, "type": {"LIKE"}, "subaction": {"upsert"}}, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"status":true,"message":"Berhasil menambahkan reaksi definisi"}`, w.Body.String())
	assert.Equal(t, events.InvalidateTrigger(f.def.ID), w.Header().Get(events.TriggerHeader))
	assert.Equal(t, Counts{Likes: 1}, f.counts(t))
	require.Len(t, published, 1)
	assert.Equal(t, events.ReactionChanged, published[0].Kind)

	w = authtest.PostJSON(r, "/reactions", `{"id":"`+f.def.ID+`","type":"LIKE","subaction":"delete"}`, cookies)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, Counts{}, f.counts(t))

	w = authtest.PostForm(r, "/reactions", url.Values{"type": {"LIKE"}, "subaction": {"upsert"}}, cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "ID wajib disertakan")

	w = authtest.PostForm(r, "/reactions", url.Values{"id": {f.def.ID}, "type": {"LIKE"}}, cookies)
	assert.Equal(t, http.StatusUnprocessableEntity, w.Code)
	assert.Contains(t, w.Body.String(), "Aksi wajib disertakan")

	w = authtest.PostForm(r, "/reactions", url.Values{"id": {"missing"}, "type": {"DISLIKE"}, "subaction": {"upsert"}}, cookies)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Contains(t, w.Body.String(), "Definisi tidak ditemukan")
	assert.Empty(t, w.Header().Get(events.TriggerHeader))
}
