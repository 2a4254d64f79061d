package profile

import (
	"log/slog"
	"net/http"
	"strings"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/validation"
)

const (
	msgUpdated      = "Berhasil memperbarui data pengguna"
	msgUpdateFailed = "Gagal memperbarui data pengguna"
)

type profileForm struct {
	Username string `form:"username" json:"username" validate:"required,max=32"`
}

var profileMessages = validation.Messages{
	"username.required": "Nama pengguna wajib diisi",
}

// HandleMe returns the optional logged-in user for page chrome.
func HandleMe(c *gin.Context) {
	identity := auth.CurrentIdentity(c)
	if identity == nil {
		c.JSON(http.StatusOK, gin.H{"user": nil})
		return
	}
	c.JSON(http.StatusOK, gin.H{"user": gin.H{
		"username": identity.Username,
		"email":    identity.Email,
		"role":     identity.Role,
	}})
}

// HandleUpdate renames the logged-in user.
func HandleUpdate(store *Store, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form profileForm
		if err := c.ShouldBind(&form); err != nil {
			apperr.JSON(c, logger, apperr.Invalid(msgUpdateFailed, nil), msgUpdateFailed)
			return
		}
		form.Username = strings.TrimSpace(form.Username)

		if err := validation.Check(form, profileMessages); err != nil {
			apperr.JSON(c, logger, err, msgUpdateFailed)
			return
		}

		if err := store.UpdateUsername(c.Request.Context(), auth.CurrentUserID(c), form.Username); err != nil {
			apperr.JSON(c, logger, err, msgUpdateFailed)
			return
		}

		c.JSON(http.StatusOK, gin.H{"status": true, "message": msgUpdated})
	}
}
