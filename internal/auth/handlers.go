package auth

import (
	"log/slog"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/markbates/goth/gothic"
)

// HandleLogin initiates the Google OAuth flow
func HandleLogin(c *gin.Context) {
	// Gothic requires the "provider" query parameter
	q := c.Request.URL.Query()
	q.Set("provider", "google")
	c.Request.URL.RawQuery = q.Encode()

	gothic.BeginAuthHandler(c.Writer, c.Request)
}

// HandleCallback completes the OAuth flow, upserts the user, and stores its id in the session
func HandleCallback(accounts *Accounts, logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		q := c.Request.URL.Query()
		q.Set("provider", "google")
		c.Request.URL.RawQuery = q.Encode()

		gothUser, err := gothic.CompleteUserAuth(c.Writer, c.Request)
		if err != nil {
			logger.Warn("oauth callback failed", "error", err)
			c.Redirect(http.StatusFound, "/?error=auth_failed")
			return
		}

		user, err := accounts.Upsert(c.Request.Context(), gothUser)
		if err != nil {
			logger.Error("failed to upsert user", "email", gothUser.Email, "error", err)
			c.Redirect(http.StatusFound, "/?error=auth_failed")
			return
		}

		session := sessions.Default(c)
		session.Set(SessionUserKey, user.ID)
		if err := session.Save(); err != nil {
			logger.Error("failed to save session", "error", err)
			c.Redirect(http.StatusFound, "/?error=session_failed")
			return
		}

		logger.Info("user authenticated", "user_id", user.ID, "username", user.Username)
		c.Redirect(http.StatusFound, "/")
	}
}

// HandleLogout clears the session and redirects home
func HandleLogout(logger *slog.Logger) gin.HandlerFunc {
	return func(c *gin.Context) {
		session := sessions.Default(c)
		session.Clear()
		session.Options(sessions.Options{Path: "/", MaxAge: -1})

		if err := session.Save(); err != nil {
			logger.Error("failed to clear session", "error", err)
		}

		c.Redirect(http.StatusFound, "/")
	}
}
