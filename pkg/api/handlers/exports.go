package handlers

import (
	"context"
	"fmt"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/export"
	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
)

// HeaderCreditsRemaining carries the balance left after a purchase
const HeaderCreditsRemaining = "X-Credits-Remaining"

// ReceiptSender emails purchase receipts
type ReceiptSender interface {
	SendPurchaseReceipt(toEmail, toName string, records, creditsUsed, remaining int, format string) error
}

// PurchaseRequest is the body of a paid export. Exactly one of CompanyIDs
// and Filters is expected; ids win when both are sent.
type PurchaseRequest struct {
	CompanyIDs []int            `json:"company_ids" validate:"max=1000"`
	Filters    *filter.Criteria `json:"filters"`
	Format     string           `json:"format"`
}

// PreviewResponse is a redacted sample plus the quote for the whole filter
type PreviewResponse struct {
	Data []models.Company `json:"data"`
	models.QuoteResponse
}

// ExportHandler handles previews, public exports and paid exports
type ExportHandler struct {
	exports   *export.Service
	receipts  ReceiptSender
	validator *validator.Validate
	log       logger.Logger
}

// NewExportHandler creates a new export handler. receipts may be nil.
func NewExportHandler(exportService *export.Service, receipts ReceiptSender, log logger.Logger) *ExportHandler {
	return &ExportHandler{
		exports:   exportService,
		receipts:  receipts,
		validator: validator.New(),
		log:       log.With("component", "export_handler"),
	}
}

// Preview godoc
// @Summary Preview a filter
// @Description Up to 10 redacted records, the true match count and the price of buying all of them
// @Tags Exports
// @Produce json
// @Param limit query int false "Rows (max 10)"
// @Success 200 {object} PreviewResponse
// @Router /exports/preview [get]
func (h *ExportHandler) Preview(c echo.Context) error {
	criteria, err := filter.ParseQuery(c.QueryParams())
	if err != nil {
		return errors.Respond(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.exports.Preview(ctx, criteria, queryInt(c, "limit", export.PreviewCap))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, PreviewResponse{Data: res.Rows, QuoteResponse: quoteResponse(res.Quote)})
}

// PublicCSV godoc
// @Summary Public CSV export
// @Description Redacted CSV of matching records. preview=true limits it to 10 rows.
// @Tags Exports
// @Produce text/csv
// @Param preview query bool false "Preview size"
// @Success 200 {file} file
// @Router /exports/csv [get]
func (h *ExportHandler) PublicCSV(c echo.Context) error {
	return h.public(c, export.FormatCSV)
}

// PublicDocument godoc
// @Summary Public document export
// @Description Redacted HTML report of matching records. preview=true limits it to 10 rows.
// @Tags Exports
// @Produce text/html
// @Param preview query bool false "Preview size"
// @Success 200 {file} file
// @Router /exports/document [get]
func (h *ExportHandler) PublicDocument(c echo.Context) error {
	return h.public(c, export.FormatDocument)
}

func (h *ExportHandler) public(c echo.Context, format export.Format) error {
	criteria, err := filter.ParseQuery(c.QueryParams())
	if err != nil {
		return errors.Respond(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	file, err := h.exports.Public(ctx, export.PublicRequest{
		Criteria: criteria,
		Format:   format,
		Preview:  queryBool(c, "preview"),
	})
	if err != nil {
		return errors.Respond(c, err)
	}
	return sendFile(c, file)
}

// Purchase godoc
// @Summary Buy an export
// @Description Charges one credit per delivered record and returns the full file. Nothing is charged when the request fails.
// @Tags Exports
// @Accept json
// @Produce octet-stream
// @Security BearerAuth
// @Param request body PurchaseRequest true "Ids or filters, and format"
// @Success 200 {file} file
// @Header 200 {integer} X-Credits-Remaining "Balance after the purchase"
// @Failure 400 {object} models.ErrorResponse
// @Failure 402 {object} models.InsufficientCreditsResponse
// @Failure 404 {object} models.ErrorResponse "Nothing to buy"
// @Router /exports/purchase [post]
func (h *ExportHandler) Purchase(c echo.Context) error {
	userID, ok := currentUserID(c)
	if !ok {
		return errors.UnauthorizedError(c)
	}

	var req PurchaseRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}
	if err := h.validator.Struct(req); err != nil {
		return errors.ValidationError(c, err)
	}
	format, err := export.ParseFormat(req.Format)
	if err != nil {
		return errors.Respond(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	res, err := h.exports.Purchase(ctx, export.PurchaseRequest{
		UserID:     userID,
		CompanyIDs: req.CompanyIDs,
		Criteria:   req.Filters,
		Format:     format,
	})
	if err != nil {
		return errors.Respond(c, err)
	}

	if email, _ := c.Get("user_email").(string); email != "" && h.receipts != nil {
		go func() {
			if err := h.receipts.SendPurchaseReceipt(email, "", res.File.Rows, res.Download.CreditsUsed, res.Remaining, string(format)); err != nil {
				h.log.Warn("purchase receipt not sent", "user_id", userID, "error", err)
			}
		}()
	}

	c.Response().Header().Set(HeaderCreditsRemaining, strconv.Itoa(res.Remaining))
	return sendFile(c, &res.File)
}

func sendFile(c echo.Context, f *export.File) error {
	c.Response().Header().Set(echo.HeaderContentDisposition, fmt.Sprintf("attachment; filename=%q", f.Filename))
	c.Response().Header().Set("X-Total-Count", strconv.Itoa(f.Total))
	return c.Blob(http.StatusOK, f.ContentType, f.Data)
}
