package apperr

import (
	"log/slog"

	"github.com/gin-gonic/gin"
)

// JSON answers the request with err as {"status":false,"message":…,"errors":…}.
// Server-side failures are logged with their cause; the body only carries fallback.
func JSON(c *gin.Context, logger *slog.Logger, err error, fallback string) {
	status := Status(err)
	if status >= 500 {
		logger.Error(fallback,
			"method", c.Request.Method,
			"path", c.Request.URL.Path,
			"error", err,
		)
	}

	body := gin.H{
		"status":  false,
		"message": PublicMessage(err, fallback),
	}
	if fields := Fields(err); len(fields) > 0 {
		body["errors"] = fields
	}
	c.AbortWithStatusJSON(status, body)
}
