package auth

import (
	"errors"
	"net/http"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/apperr"
)

// SessionUserKey is the session value holding the logged-in user's id.
const SessionUserKey = "user_id"

const identityKey = "identity"

// SessionUserID returns the user id stored in the request's session, or "".
func SessionUserID(c *gin.Context) string {
	id, _ := sessions.Default(c).Get(SessionUserKey).(string)
	return id
}

// CurrentIdentity returns the identity set by LoadIdentity, RequireUser or RequireAdmin.
func CurrentIdentity(c *gin.Context) *Identity {
	v, ok := c.Get(identityKey)
	if !ok {
		return nil
	}
	identity, _ := v.(*Identity)
	return identity
}

// CurrentUserID returns the id of CurrentIdentity, or "".
func CurrentUserID(c *gin.Context) string {
	if identity := CurrentIdentity(c); identity != nil {
		return identity.ID
	}
	return ""
}

// LoadIdentity resolves the optional session user for pages that render for everyone.
func LoadIdentity(r *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		if identity := r.Resolve(c.Request.Context(), SessionUserID(c)); identity != nil {
			c.Set(identityKey, identity)
		}
		c.Next()
	}
}

// RequireUser is a middleware that ensures the user is authenticated
func RequireUser(r *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := r.lookup(c.Request.Context(), SessionUserID(c))
		if err != nil {
			abort(c, r, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

// RequireAdmin ensures the user is authenticated and has the ADMIN role.
func RequireAdmin(r *Resolver) gin.HandlerFunc {
	return func(c *gin.Context) {
		identity, err := r.RequireAdmin(c.Request.Context(), SessionUserID(c))
		if err != nil {
			abort(c, r, err)
			return
		}

		c.Set(identityKey, identity)
		c.Next()
	}
}

func abort(c *gin.Context, r *Resolver, err error) {
	switch {
	case errors.Is(err, apperr.ErrUnauthenticated):
		if c.GetHeader("HX-Request") == "true" {
			// HTMX request: send HX-Redirect header
			c.Header("HX-Redirect", "/")
			c.AbortWithStatus(http.StatusUnauthorized)
			return
		}
		c.Redirect(http.StatusFound, "/")
		c.Abort()
	case errors.Is(err, apperr.ErrForbidden):
		c.AbortWithStatusJSON(http.StatusForbidden, gin.H{"status": false, "message": "Forbidden"})
	default:
		r.logger.Error("failed to authorize request", "path", c.Request.URL.Path, "error", err)
		c.AbortWithStatusJSON(http.StatusInternalServerError, gin.H{"status": false, "message": "Terjadi kesalahan"})
	}
}
