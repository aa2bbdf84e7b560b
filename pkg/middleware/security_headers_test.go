package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func serveWithHeaders(t *testing.T, cfg SecurityHeadersConfig) *httptest.ResponseRecorder {
	t.Helper()
	e := echo.New()
	req := httptest.NewRequest(http.MethodGet, "/test", nil)
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)

	handler := SecurityHeaders(cfg)(func(c echo.Context) error {
		return c.String(http.StatusOK, "OK")
	})
	require.NoError(t, handler(c))
	return rec
}

func TestSecurityHeaders_Defaults(t *testing.T) {
	rec := serveWithHeaders(t, SecurityHeadersConfig{})

	csp := rec.Header().Get("Content-Security-Policy")
	assert.Contains(t, csp, "default-src 'none'")
	assert.Contains(t, csp, "style-src 'unsafe-inline'")
	assert.Contains(t, csp, "frame-ancestors 'none'")

	assert.Equal(t, "no-referrer", rec.Header().Get("Referrer-Policy"))
	assert.Contains(t, rec.Header().Get("Permissions-Policy"), "camera=()")
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	assert.Empty(t, rec.Header().Get("Cache-Control"))
}

func TestSecurityHeaders_Overrides(t *testing.T) {
	rec := serveWithHeaders(t, SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'self'",
		ReferrerPolicy:        "same-origin",
		NoStore:               true,
	})

	assert.Equal(t, "default-src 'self'", rec.Header().Get("Content-Security-Policy"))
	assert.Equal(t, "same-origin", rec.Header().Get("Referrer-Policy"))
	assert.Equal(t, DefaultSecurityHeadersConfig().PermissionsPolicy, rec.Header().Get("Permissions-Policy"))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}
