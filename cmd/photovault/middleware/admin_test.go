package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/taller/photovault/common/config"
)

func adminHandler(t *testing.T, cfg config.AuthConfig, req *http.Request) *httptest.ResponseRecorder {
	t.Helper()

	e := echo.New()
	rec := httptest.NewRecorder()
	next := func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	}
	require.NoError(t, RequireAdmin(cfg)(next)(e.NewContext(req, rec)))
	return rec
}

func TestRequireAdmin(t *testing.T) {
	cfg := config.AuthConfig{
		AdminCookieName:  "admin_session",
		AdminCookieValue: "letmein",
	}

	t.Run("no cookie", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		rec := adminHandler(t, cfg, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("wrong value", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		req.AddCookie(&http.Cookie{Name: "admin_session", Value: "guess"})
		rec := adminHandler(t, cfg, req)
		assert.Equal(t, http.StatusUnauthorized, rec.Code)
	})

	t.Run("valid session", func(t *testing.T) {
		req := httptest.NewRequest(http.MethodDelete, "/", nil)
		req.AddCookie(&http.Cookie{Name: "admin_session", Value: "letmein"})
		rec := adminHandler(t, cfg, req)
		assert.Equal(t, http.StatusOK, rec.Code)
		assert.Equal(t, "ok", rec.Body.String())
	})
}
