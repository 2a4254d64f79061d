// Package authtest builds gin engines with a working session cookie for handler tests.
package authtest

import (
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/gin-contrib/sessions"
	"github.com/gin-gonic/gin"
	"github.com/jimdaga/kamus/internal/auth"
	"github.com/jimdaga/kamus/internal/config"
	"github.com/stretchr/testify/require"
)

const loginPath = "/__test/login/"

// NewEngine returns a gin engine in test mode with the session middleware installed
// and a route that logs a user id in.
func NewEngine() *gin.Engine {
	gin.SetMode(gin.TestMode)

	r := gin.New()
	r.Use(auth.Sessions(&config.Config{SessionSecret: "authtest-session-secret"}))
	r.GET(loginPath+":id", func(c *gin.Context) {
		session := sessions.Default(c)
		session.Set(auth.SessionUserKey, c.Param("id"))
		if err := session.Save(); err != nil {
			c.Status(http.StatusInternalServerError)
			return
		}
		c.Status(http.StatusNoContent)
	})
	return r
}

// Login returns the session cookies of a logged-in userID.
func Login(t *testing.T, r *gin.Engine, userID string) []*http.Cookie {
	t.Helper()
	w := httptest.NewRecorder()
	r.ServeHTTP(w, httptest.NewRequest(http.MethodGet, loginPath+userID, nil))
	require.Equal(t, http.StatusNoContent, w.Code)
	return w.Result().Cookies()
}

// Get performs a GET request with cookies.
func Get(r *gin.Engine, path string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	return do(r, httptest.NewRequest(http.MethodGet, path, nil), cookies)
}

// PostForm performs a form-encoded POST request with cookies.
func PostForm(r *gin.Engine, path string, form url.Values, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	return do(r, req, cookies)
}

// PostJSON performs a JSON POST request with cookies.
func PostJSON(r *gin.Engine, path, body string, cookies []*http.Cookie) *httptest.ResponseRecorder {
	req := httptest.NewRequest(http.MethodPost, path, strings.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	return do(r, req, cookies)
}

func do(r *gin.Engine, req *http.Request, cookies []*http.Cookie) *httptest.ResponseRecorder {
	for _, c := range cookies {
		req.AddCookie(c)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}
