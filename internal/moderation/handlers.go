package moderation

import (
	"log/slog"
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/apperr"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/pagination"
	"github.com/jimdaga/kamus/internal/validation"
)

const (
	msgApproved      = "Berhasil menyetujui definisi"
	msgApproveFailed = "Gagal menyetujui definisi"
	msgLoadFailed    = "Gagal memuat definisi"
	msgIDMissing     = "Wajib menyertakan ID"
)

type approveForm struct {
	ID string `form:"id" json:"id" validate:"required"`
}

var approveMessages = validation.Messages{
	"id.required": "ID wajib diisi",
}

// HandleQueue serves the moderation queue.
func HandleQueue(s *Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		page, err := s.Queue(c.Request.Context(), pagination.Request{Cursor: c.Query("cursor")})
		if err != nil {
			apperr.JSON(c, logger, err, msgLoadFailed)
			return
		}
		c.JSON(http.StatusOK, page)
	}
}

// HandleDetail serves one definition for review.
func HandleDetail(s *Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		id := c.Param("id")
		if id == "" {
			c.JSON(http.StatusBadRequest, gin.H{"status": false, "message": msgIDMissing})
			return
		}

		def, err := s.Detail(c.Request.Context(), id)
		if err != nil {
			apperr.JSON(c, logger, err, msgLoadFailed)
			return
		}
		c.JSON(http.StatusOK, gin.H{"data": def})
	}
}

// HandleApprove approves the posted definition id.
func HandleApprove(s *Service, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		var form approveForm
		if err := c.ShouldBind(&form); err != nil {
			apperr.JSON(c, logger, apperr.Invalid(msgApproveFailed, nil), msgApproveFailed)
			return
		}
		if err := validation.Check(form, approveMessages); err != nil {
			apperr.JSON(c, logger, err, msgApproveFailed)
			return
		}

		admin := auth.CurrentIdentity(c)
		if err := s.Approve(c.Request.Context(), admin, form.ID); err != nil {
			apperr.JSON(c, logger, err, msgApproveFailed)
			return
		}

		logger.Info("definition approved", "definition_id", form.ID, "admin_id", admin.ID)
		c.JSON(http.StatusCreated, gin.H{"status": true, "message": msgApproved})
	}
}
