package handlers

import (
	"context"
	"net/http"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/auth"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/users"
)

// WelcomeSender emails new accounts
type WelcomeSender interface {
	SendWelcomeEmail(toEmail, toName string, credits int) error
}

// TokenConfig signs identity tokens
type TokenConfig struct {
	Secret          string
	ExpirationHours int
}

// AuthHandler handles authentication endpoints
type AuthHandler struct {
	users     *users.Service
	tokens    TokenConfig
	blacklist *auth.TokenBlacklist
	welcome   WelcomeSender
	log       logger.Logger
	validator *validator.Validate
}

// NewAuthHandler creates a new auth handler. blacklist and welcome may be nil.
func NewAuthHandler(userService *users.Service, tokens TokenConfig, blacklist *auth.TokenBlacklist, welcome WelcomeSender, log logger.Logger) *AuthHandler {
	return &AuthHandler{
		users:     userService,
		tokens:    tokens,
		blacklist: blacklist,
		welcome:   welcome,
		log:       log.With("component", "auth_handler"),
		validator: validator.New(),
	}
}

// Register godoc
// @Summary Register a new user
// @Description Create an account with the signup credits and return a JWT
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.RegisterRequest true "Registration data"
// @Success 201 {object} models.AuthResponse "User registered successfully"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 409 {object} models.ErrorResponse "User already exists"
// @Router /auth/register [post]
func (h *AuthHandler) Register(c echo.Context) error {
	var req models.RegisterRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.Register(ctx, req)
	if err != nil {
		return errors.Respond(c, err)
	}

	// Send welcome email (async)
	if h.welcome != nil {
		go func(email, name string, credits int) {
			if err := h.welcome.SendWelcomeEmail(email, name, credits); err != nil {
				h.log.Warn("welcome email not sent", "user_id", u.ID, "error", err)
			}
		}(u.Email, u.Name, u.Credits)
	}

	return h.issue(c, http.StatusCreated, u)
}

// Login godoc
// @Summary Login user
// @Description Authenticate user with email and password, returns JWT token
// @Tags Authentication
// @Accept json
// @Produce json
// @Param request body models.LoginRequest true "Login credentials"
// @Success 200 {object} models.AuthResponse "Login successful"
// @Failure 400 {object} models.ErrorResponse "Invalid request"
// @Failure 401 {object} models.ErrorResponse "Invalid credentials"
// @Router /auth/login [post]
func (h *AuthHandler) Login(c echo.Context) error {
	var req models.LoginRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	// Validate request
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.Authenticate(ctx, req.Email, req.Password)
	if err != nil {
		return errors.Respond(c, err)
	}

	return h.issue(c, http.StatusOK, u)
}

func (h *AuthHandler) issue(c echo.Context, status int, u *models.User) error {
	token, expiresAt, err := auth.GenerateJWT(u.ID, u.Email, u.Role, h.tokens.Secret, h.tokens.ExpirationHours)
	if err != nil {
		return errors.InternalError(c, err)
	}

	return c.JSON(status, models.AuthResponse{
		User:      *u,
		Token:     token,
		ExpiresAt: expiresAt.Unix(),
	})
}

// Me godoc
// @Summary Current user
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.User
// @Failure 401 {object} models.ErrorResponse
// @Router /auth/me [get]
func (h *AuthHandler) Me(c echo.Context) error {
	// Get user ID from context (set by JWT middleware)
	userID, ok := currentUserID(c)
	if !ok {
		return errors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.Get(ctx, userID)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, u)
}

// Logout godoc
// @Summary Logout
// @Description Revoke the current token until it would have expired
// @Tags Authentication
// @Produce json
// @Security BearerAuth
// @Success 200 {object} map[string]string
// @Router /auth/logout [post]
func (h *AuthHandler) Logout(c echo.Context) error {
	// Get token from context (set by JWT middleware)
	token, ok := c.Get("token").(string)
	if !ok || token == "" {
		return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
			Error:   "missing_token",
			Message: "No token found in request",
		})
	}

	if h.blacklist != nil {
		ttl := time.Duration(h.tokens.ExpirationHours) * time.Hour
		if claims, ok := c.Get("token_claims").(*auth.Claims); ok {
			ttl = claims.Remaining(time.Now())
		}

		ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
		defer cancel()

		if err := h.blacklist.Add(ctx, token, ttl); err != nil {
			return errors.InternalError(c, err)
		}
	}

	return c.JSON(http.StatusOK, map[string]string{
		"message": "Successfully logged out",
	})
}
