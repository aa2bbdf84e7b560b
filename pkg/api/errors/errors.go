// Package errors writes API error responses without leaking internal details.
package errors

import (
	stderrors "errors"
	"net/http"

	sentryecho "github.com/getsentry/sentry-go/echo"
	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
)

// Log receives internal errors before the generic response is sent
var Log logger.Logger = logger.Default()

// Respond maps err to a status and a JSON body. Domain errors keep their
// message; everything else becomes a generic 500.
func Respond(c echo.Context, err error) error {
	if insufficient, ok := domain.AsInsufficientCredits(err); ok {
		return c.JSON(http.StatusPaymentRequired, models.InsufficientCreditsResponse{
			Error:          "insufficient_credits",
			Message:        "Not enough credits for this export",
			CurrentBalance: insufficient.Balance,
			Required:       insufficient.Required,
		})
	}

	switch domain.GetErrorCode(err) {
	case domain.ErrCodeValidation:
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "validation_error",
			Message: message(err),
		})
	case domain.ErrCodeUnauthorized:
		return UnauthorizedError(c)
	case domain.ErrCodeForbidden:
		return ForbiddenError(c)
	case domain.ErrCodeNotFound:
		return c.JSON(http.StatusNotFound, models.ErrorResponse{
			Error:   "not_found",
			Message: message(err),
		})
	case domain.ErrCodeConflict:
		return c.JSON(http.StatusConflict, models.ErrorResponse{
			Error:   "conflict",
			Message: message(err),
		})
	}
	return InternalError(c, err)
}

func message(err error) string {
	var de *domain.DomainError
	if stderrors.As(err, &de) {
		return de.Message
	}
	return ""
}

// ValidationError reports a malformed request body or parameter
func ValidationError(c echo.Context, err error) error {
	Log.Debug("validation failed", "path", c.Request().URL.Path, "error", err)

	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "validation_error",
		Message: "Invalid request data. Please check your input and try again.",
	})
}

// InternalError logs err, reports it to Sentry and sends a generic 500
func InternalError(c echo.Context, err error) error {
	Log.Error("request failed",
		"method", c.Request().Method,
		"path", c.Request().URL.Path,
		"error", err)

	if hub := sentryecho.GetHubFromContext(c); hub != nil {
		hub.CaptureException(err)
	}

	return c.JSON(http.StatusInternalServerError, models.ErrorResponse{
		Error:   "internal_error",
		Message: "An internal error occurred. Please try again later.",
	})
}

// UnauthorizedError sends a generic 401
func UnauthorizedError(c echo.Context) error {
	return c.JSON(http.StatusUnauthorized, models.ErrorResponse{
		Error:   "unauthorized",
		Message: "You are not authorized to access this resource.",
	})
}

// ForbiddenError sends a generic 403
func ForbiddenError(c echo.Context) error {
	return c.JSON(http.StatusForbidden, models.ErrorResponse{
		Error:   "forbidden",
		Message: "You do not have permission to access this resource.",
	})
}
