package auth

import (
	"log/slog"
	"net/http"

	ginsessions "github.com/gin-contrib/sessions"
	"github.com/gin-contrib/sessions/cookie"
	"github.com/gin-gonic/gin"
	"github.com/gorilla/sessions"
	"github.com/jimdaga/kamus/internal/config"
	"github.com/markbates/goth"
	"github.com/markbates/goth/gothic"
	"github.com/markbates/goth/providers/google"
)

// SessionCookieName is the signed cookie holding the app session.
const SessionCookieName = "__session"

const sessionMaxAge = 86400 * 30

// Sessions returns the gin middleware that loads the signed session cookie.
func Sessions(cfg *config.Config) gin.HandlerFunc {
	store := cookie.NewStore([]byte(cfg.SessionSecret))
	store.Options(ginsessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	})
	return ginsessions.Sessions(SessionCookieName, store)
}

// InitProviders initializes Goth OAuth providers
func InitProviders(cfg *config.Config, logger *slog.Logger) {
	// Gothic keeps the OAuth state in its own gorilla/sessions store, separate from
	// the app session. The default has Secure=true which breaks localhost.
	gothStore := sessions.NewCookieStore([]byte(cfg.SessionSecret))
	gothStore.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   sessionMaxAge,
		HttpOnly: true,
		Secure:   cfg.IsProduction(),
		SameSite: http.SameSiteLaxMode,
	}
	gothic.Store = gothStore

	if cfg.GoogleClientID == "" {
		logger.Warn("GOOGLE_CLIENT_ID not set, OAuth login will not work until credentials are configured")
		return
	}

	goth.UseProviders(
		google.New(
			cfg.GoogleClientID,
			cfg.GoogleClientSecret,
			cfg.GoogleCallbackURL,
			"email",
			"profile",
		),
	)

	logger.Info("goth providers initialized", "providers", "google")
}
