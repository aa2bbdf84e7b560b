package middleware

import (
	"context"
	"net/http"
	"strings"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/auth"
	"github.com/easyprospect/api/pkg/models"
)

const validateTimeout = 5 * time.Second

// bearerToken extracts the token from an "Authorization: Bearer ..." header
func bearerToken(c echo.Context) (string, bool) {
	header := c.Request().Header.Get(echo.HeaderAuthorization)
	if header == "" {
		return "", false
	}
	parts := strings.Split(header, " ")
	if len(parts) != 2 || parts[0] != "Bearer" || parts[1] == "" {
		return "", false
	}
	return parts[1], true
}

func setIdentity(c echo.Context, token string, claims *auth.Claims) {
	c.Set("token", token)
	c.Set("token_claims", claims)
	c.Set("user_id", claims.UserID)
	c.Set("user_email", claims.Email)
	c.Set("user_role", claims.Role)
}

// JWTMiddleware requires a valid, unrevoked bearer token and puts the
// caller's identity in the context. blacklist may be nil.
func JWTMiddleware(secret string, blacklist *auth.TokenBlacklist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			if c.Request().Header.Get(echo.HeaderAuthorization) == "" {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "missing_token",
					Message: "Authorization header is required",
				})
			}

			token, ok := bearerToken(c)
			if !ok {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token_format",
					Message: "Authorization header must be 'Bearer {token}'",
				})
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), validateTimeout)
			defer cancel()

			claims, err := auth.ValidateJWTWithBlacklist(ctx, token, secret, blacklist)
			if err != nil {
				return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
					Error:   "invalid_token",
					Message: "Token is invalid or expired",
				})
			}

			setIdentity(c, token, claims)
			return next(c)
		}
	}
}

// OptionalJWT sets the identity when a valid token is present and lets
// anonymous requests through untouched.
func OptionalJWT(secret string, blacklist *auth.TokenBlacklist) echo.MiddlewareFunc {
	return func(next echo.HandlerFunc) echo.HandlerFunc {
		return func(c echo.Context) error {
			token, ok := bearerToken(c)
			if !ok {
				return next(c)
			}

			ctx, cancel := context.WithTimeout(c.Request().Context(), validateTimeout)
			defer cancel()

			if claims, err := auth.ValidateJWTWithBlacklist(ctx, token, secret, blacklist); err == nil {
				setIdentity(c, token, claims)
			}
			return next(c)
		}
	}
}
