package reactions

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/events"
	"github.com/jimdaga/kamus/internal/models"
	"github.com/jimdaga/kamus/internal/validation"
)

// Subactions accepted by the reaction endpoint
const (
	SubactionUpsert = "upsert"
	SubactionDelete = "delete"
)

const (
	msgReacted     = "Berhasil menambahkan reaksi definisi"
	msgReactFailed = "Gagal menambahkan reaksi definisi"
)

type reactionForm struct {
	ID        string `form:"id" json:"id" validate:"required"`
	Type      string `form:"type" json:"type" validate:"required,oneof=LIKE DISLIKE"`
	Subaction string `form:"subaction" json:"subaction" validate:"required,oneof=upsert delete"`
}

var reactionMessages = validation.Messages{
	"id.required":        "ID wajib disertakan",
	"type.required":      "Tipe wajib disertakan",
	"type.oneof":         "Tipe tidak dikenal",
	"subaction.required": "Aksi wajib disertakan",
	"subaction.oneof":    "Aksi tidak dikenal",
}

// HandleSetReaction applies a like/dislike toggle from the logged-in user and tells the
// page to re-fetch the definition through the HX-Trigger header.
func HandleSetReaction(store *Store, bus *events.Bus, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form reactionForm
		if err := c.ShouldBind(&form); err != nil {
			apperr.JSON(c, logger, apperr.Invalid(msgReactFailed, nil), msgReactFailed)
			return
		}
		if err := validation.Check(form, reactionMessages); err != nil {
			apperr.JSON(c, logger, err, msgReactFailed)
			return
		}

		userID := auth.CurrentUserID(c)
		active := form.Subaction == SubactionUpsert
		err := store.SetReaction(c.Request.Context(), userID, form.ID, models.ReactionType(form.Type), active)
		if err != nil {
			apperr.JSON(c, logger, err, msgReactFailed)
			return
		}

		bus.Publish(c.Request.Context(), events.Event{
			Kind:         events.ReactionChanged,
			DefinitionID: form.ID,
			UserID:       userID,
		})

		c.Header(events.TriggerHeader, events.InvalidateTrigger(form.ID))
		c.JSON(http.StatusOK, gin.H{"status": true, "message": msgReacted})
	}
}
