package definitions

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/jimdaga/kamus/internal/validation"
)

const (
	msgSubmitted    = "Definisimu akan segera ditinjau"
	msgSubmitFailed = "Gagal menambahkan definisi"
)

type createForm struct {
	Word       string `form:"word" json:"word" validate:"required"`
	Definition string `form:"definition" json:"definition" validate:"required"`
	Example    string `form:"example" json:"example" validate:"required"`
}

var createMessages = validation.Messages{
	"word.required":       "Kata wajib diisi",
	"definition.required": "Definisi wajib diisi",
	"example.required":    "Contoh wajib diisi",
}

// HandleCreate accepts a definition submission from the logged-in user.
// New definitions wait in the moderation queue until an admin approves them.
func HandleCreate(store *Store, bus *events.Bus, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form createForm
		if err := c.ShouldBind(&form); err != nil {
			apperr.JSON(c, logger, apperr.Invalid(msgSubmitFailed, nil), msgSubmitFailed)
			return
		}
		form.Word = strings.TrimSpace(form.Word)
		form.Definition = strings.TrimSpace(form.Definition)
		form.Example = strings.TrimSpace(form.Example)

		if err := validation.Check(form, createMessages); err != nil {
			apperr.JSON(c, logger, err, msgSubmitFailed)
			return
		}

		userID := auth.CurrentUserID(c)
		id, err := store.Create(c.Request.Context(), form.Word, form.Definition, form.Example, userID)
		if err != nil {
			apperr.JSON(c, logger, err, msgSubmitFailed)
			return
		}

		logger.Info("definition submitted", "definition_id", id, "user_id", userID)
		bus.Publish(c.Request.Context(), events.Event{
			Kind:         events.DefinitionSubmitted,
			DefinitionID: id,
			UserID:       userID,
		})

		c.JSON(http.StatusOK, gin.H{"status": true, "message": msgSubmitted, "id": id})
	}
}
