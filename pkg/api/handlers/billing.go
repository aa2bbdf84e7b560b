package handlers

import (
	"context"
	"io"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/billing"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/users"
)

// maxWebhookBody caps the Stripe payload read into memory
const maxWebhookBody = 64 << 10

// BillingHandler sells credit packs
type BillingHandler struct {
	billing   *billing.Service
	users     *users.Service
	validator *validator.Validate
}

// NewBillingHandler creates a new billing handler
func NewBillingHandler(billingService *billing.Service, userService *users.Service) *BillingHandler {
	return &BillingHandler{
		billing:   billingService,
		users:     userService,
		validator: validator.New(),
	}
}

// Packs godoc
// @Summary Credit packs
// @Tags Billing
// @Produce json
// @Success 200 {array} models.CreditPack
// @Router /billing/packs [get]
func (h *BillingHandler) Packs(c echo.Context) error {
	return c.JSON(http.StatusOK, h.billing.Packs())
}

// Checkout godoc
// @Summary Buy credits
// @Description Start a Stripe Checkout session for a credit pack
// @Tags Billing
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CheckoutRequest true "Pack"
// @Success 200 {object} models.CheckoutResponse
// @Failure 400 {object} models.ErrorResponse
// @Router /billing/checkout [post]
func (h *BillingHandler) Checkout(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errors.UnauthorizedError(c)
	}

	var req models.CheckoutRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	u, err := h.users.Get(ctx, userID)
	if err != nil {
		return errors.Respond(c, err)
	}

	resp, err := h.billing.CreateCheckoutSession(ctx, u, req.Pack)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, resp)
}

// Webhook godoc
// @Summary Stripe webhook
// @Description Applies paid credit packs. The Stripe-Signature header is verified.
// @Tags Billing
// @Accept json
// @Produce json
// @Success 200 {object} map[string]bool
// @Failure 400 {object} models.ErrorResponse
// @Router /webhooks/stripe [post]
func (h *BillingHandler) Webhook(c echo.Context) error {
	payload, err := io.ReadAll(io.LimitReader(c.Request().Body, maxWebhookBody))
	if err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Failed to read request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.billing.HandleWebhook(ctx, payload, c.Request().Header.Get("Stripe-Signature")); err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, map[string]bool{"received": true})
}
