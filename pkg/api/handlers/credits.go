package handlers

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/credits"
)

// CreditHandler exposes the caller's balance and download history
type CreditHandler struct {
	ledger *credits.Ledger
}

// NewCreditHandler creates a new credit handler
func NewCreditHandler(ledger *credits.Ledger) *CreditHandler {
	return &CreditHandler{ledger: ledger}
}

// Balance godoc
// @Summary Credit balance
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {object} models.CreditBalanceResponse
// @Failure 401 {object} models.ErrorResponse
// @Router /user/credits [get]
func (h *CreditHandler) Balance(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	balance, err := h.ledger.Balance(ctx, userID)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, balance)
}

// Downloads godoc
// @Summary Download history
// @Description The caller's most recent purchases, newest first
// @Tags Credits
// @Produce json
// @Security BearerAuth
// @Success 200 {array} models.Download
// @Router /user/downloads [get]
func (h *CreditHandler) Downloads(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errors.UnauthorizedError(c)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	downloads, err := h.ledger.Downloads(ctx, userID, credits.DefaultHistoryLimit)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, downloads)
}
