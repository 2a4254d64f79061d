package feed

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/pagination"
)

const msgLoadFailed = "Gagal memuat definisi"

func pageRequest(c *gin.Context) pagination.Request {
	return pagination.Request{Cursor: c.Query("cursor")}
}

// HandleHome serves GET / as {data, hasNextPage, endCursor}.
func HandleHome(f *Feed, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := f.Home(c.Request.Context(), auth.CurrentUserID(c), pageRequest(c))
		if err != nil {
			apperr.JSON(c, logger, err, msgLoadFailed)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleMine serves the logged-in user's own approved definitions.
func HandleMine(f *Feed, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := f.Mine(c.Request.Context(), auth.CurrentUserID(c), pageRequest(c))
		if err != nil {
			apperr.JSON(c, logger, err, msgLoadFailed)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleSingle serves one definition card, used when the page re-fetches a stale card.
func HandleSingle(f *Feed, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		view, err := f.Single(c.Request.Context(), auth.CurrentUserID(c), c.Param("id"))
		if err != nil {
			apperr.JSON(c, logger, err, msgLoadFailed)
			return
		}
		c.JSON(http.StatusOK, view)
	}
}
