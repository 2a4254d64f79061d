package feed

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"testing"
	"time"

	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/auth/authtest"
	"github.com/jimdaga/kamus/internal/database/dbtest"
	"github.com/jimdaga/kamus/internal/definitions"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/jimdaga/kamus/internal/pagination"
	"github.com/jimdaga/kamus/internal/reactions"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestHomeFeedPagesAndAnnotates(t *testing.T) {
	db := dbtest.New(t)
	author := dbtest.CreateUser(t, db, "penulis", models.RoleMember)
	viewer := dbtest.CreateUser(t, db, "pembaca", models.RoleMember)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)

	var newest models.Definition
	for i := 0; i < 11; i++ {
		newest = dbtest.CreateDefinition(t, db, author.ID, "kata", base, dbtest.At(base, time.Duration(i)*time.Minute))
	}
	dbtest.CreateDefinition(t, db, author.ID, "antri", base, nil)

	reacts := reactions.NewStore(db)
	require.NoError(t, reacts.SetReaction(context.Background(), viewer.ID, newest.ID, models.ReactionLike, true))

	f := New(definitions.NewStore(db), reacts, 10)
	ctx := context.Background()

	first, err := f.Home(ctx, viewer.ID, pagination.Request{})
	require.NoError(t, err)
	require.Len(t, first.Data, 10)
	assert.True(t, first.HasNextPage)
	assert.Equal(t, newest.ID, first.Data[0].ID)
	assert.Equal(t, reactions.Counts{Likes: 1}, first.Data[0].Reaction)
	require.NotNil(t, first.Data[0].CurrentUserReaction)
	assert.Equal(t, "penulis", first.Data[0].User.Username)

	second, err := f.Home(ctx, viewer.ID, pagination.Request{Cursor: *first.EndCursor})
	require.NoError(t, err)
	assert.Len(t, second.Data, 1)
	assert.False(t, second.HasNextPage)

	anon, err := f.Home(ctx, "", pagination.Request{Limit: 1})
	require.NoError(t, err)
	assert.Nil(t, anon.Data[0].CurrentUserReaction)
	assert.Equal(t, reactions.Counts{Likes: 1}, anon.Data[0].Reaction)
}

func TestSingleHidesPending(t *testing.T) {
	db := dbtest.New(t)
	author := dbtest.CreateUser(t, db, "penulis", models.RoleMember)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	pending := dbtest.CreateDefinition(t, db, author.ID, "antri", base, nil)
	visible := dbtest.CreateDefinition(t, db, author.ID, "terbit", base, dbtest.At(base, time.Hour))

	f := New(definitions.NewStore(db), reactions.NewStore(db), 10)

	_, err := f.Single(context.Background(), "", pending.ID)
	assert.ErrorIs(t, err, apperr.ErrNotFound)

	view, err := f.Single(context.Background(), author.ID, visible.ID)
	require.NoError(t, err)
	assert.Equal(t, "terbit", view.Word)
	assert.Equal(t, reactions.Counts{}, view.Reaction)
}

func TestHandlers(t *testing.T) {
	db := dbtest.New(t)
	author := dbtest.CreateUser(t, db, "penulis", models.RoleMember)
	other := dbtest.CreateUser(t, db, "lain", models.RoleMember)
	base := time.Date(2024, 6, 1, 0, 0, 0, 0, time.UTC)
	mine := dbtest.CreateDefinition(t, db, author.ID, "milikku", base, dbtest.At(base, time.Hour))
	dbtest.CreateDefinition(t, db, other.ID, "milikmu", base, dbtest.At(base, 2*time.Hour))

	f := New(definitions.NewStore(db), reactions.NewStore(db), 10)
	resolver := auth.NewResolver(db, nil)
	logger := slog.Default()

	r := authtest.NewEngine()
	r.GET("/", auth.LoadIdentity(resolver), HandleHome(f, logger))
	r.GET("/definitions/:id", auth.LoadIdentity(resolver), HandleSingle(f, logger))
	r.GET("/my-definitions", auth.RequireUser(resolver), HandleMine(f, logger))

	var page struct {
		Data []struct {
			ID   string `json:"id"`
			Word string `json:"word"`
			User struct {
				Username string `json:"username"`
			} `json:"user"`
			Reaction            reactions.Counts `json:"reaction"`
			CurrentUserReaction *reactions.Own   `json:"currentUserReaction"`
		} `json:"data"`
		HasNextPage bool    `json:"hasNextPage"`
		EndCursor   *string `json:"endCursor"`
	}

	w := authtest.Get(r, "/", nil)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	assert.Len(t, page.Data, 2)
	assert.False(t, page.HasNextPage)

	w = authtest.Get(r, "/?cursor="+*page.EndCursor, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.JSONEq(t, `{"data":[],"hasNextPage":false,"endCursor":null}`, w.Body.String())

	w = authtest.Get(r, "/my-definitions", nil)
	assert.Equal(t, http.StatusFound, w.Code)

	cookies := authtest.Login(t, r, author.ID)
	w = authtest.Get(r, "/my-definitions", cookies)
	require.Equal(t, http.StatusOK, w.Code)
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &page))
	require.Len(t, page.Data, 1)
	assert.Equal(t, mine.ID, page.Data[0].ID)

	w = authtest.Get(r, "/definitions/"+mine.ID, nil)
	require.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"word":"milikku"`)

	w = authtest.Get(r, "/definitions/missing", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.JSONEq(t, `{"status":false,"message":"Definisi tidak ditemukan"}`, w.Body.String())
}
