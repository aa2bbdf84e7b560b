package middleware

import (
	"github.com/labstack/echo/v4"
)

// SecurityHeadersConfig holds the policy headers set on every response.
// Empty fields fall back to the defaults.
type SecurityHeadersConfig struct {
	ContentSecurityPolicy string
	ReferrerPolicy        string
	PermissionsPolicy     string
	// NoStore sends Cache-Control: no-store, for routes returning contact data
	NoStore bool
}

// DefaultSecurityHeadersConfig returns the policies for a JSON API that also
// serves self-contained HTML reports.
func DefaultSecurityHeadersConfig() SecurityHeadersConfig {
	return SecurityHeadersConfig{
		ContentSecurityPolicy: "default-src 'none'; style-src 'unsafe-inline'; img-src 'self' data:; " +
			"frame-ancestors 'none'; base-uri 'none'; form-action 'none'",
		ReferrerPolicy:    "no-referrer",
		PermissionsPolicy: "camera=(), microphone=(), geolocation=(), payment=()",
	}
}

// SecurityHeaders sets the CSP, referrer and permissions policies plus
// nosniff on every response.
func SecurityHeaders(config SecurityHeadersConfig) echo.MiddlewareFunc {
	defaults := DefaultSecurityHeadersConfig()
	if config.ContentSecurityPolicy == "" {
		config.ContentSecurityPolicy = defaults.ContentSecurityPolicy
	}
	if config.ReferrerPolicy == "" {
		config.ReferrerPolicy = defaults.ReferrerPolicy
	}
	if config.PermissionsPolicy == "" {
		config.PermissionsPolicy = defaults.PermissionsPolicy
	}

	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			h := c.Response().Header()
			h.Set("Content-Security-Policy", config.ContentSecurityPolicy)
			h.Set("Referrer-Policy", config.ReferrerPolicy)
			h.Set("Permissions-Policy", config.PermissionsPolicy)
			h.Set(echo.HeaderXContentTypeOptions, "nosniff")
			if config.NoStore {
				h.Set("Cache-Control", "no-store")
			}
			return next(c)
		}
	}
}
