package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/go-playground/validator/v10"
	"github.com/labstack/echo/v4"

	"github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/companies"
	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/quote"
)

// CompanyHandler handles company search, stats and admin creation
type CompanyHandler struct {
	companies *companies.Service
	quotes    *quote.Service
	validator *validator.Validate
}

// NewCompanyHandler creates a new company handler
func NewCompanyHandler(companyService *companies.Service, quoteService *quote.Service) *CompanyHandler {
	return &CompanyHandler{
		companies: companyService,
		quotes:    quoteService,
		validator: validator.New(),
	}
}

// Search godoc
// @Summary Search companies
// @Description Quote a filter and return one page of redacted records. With count_only only the quote is returned.
// @Tags Companies
// @Produce json
// @Param countries query string false "Comma-separated countries (alias: paises)"
// @Param sectors query string false "Comma-separated sectors (alias: setores)"
// @Param search query string false "Free text (alias: busca)"
// @Param page query int false "Page number" default(1)
// @Param limit query int false "Results per page (max 100)" default(20)
// @Param count_only query bool false "Only count and price (alias: apenasContar)"
// @Success 200 {object} models.CompanySearchResponse
// @Success 200 {object} models.QuoteResponse "When count_only=true"
// @Failure 400 {object} models.ErrorResponse
// @Router /companies [get]
func (h *CompanyHandler) Search(c echo.Context) error {
	criteria, err := filter.ParseQuery(c.QueryParams())
	if err != nil {
		return errors.Respond(c, err)
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if queryBool(c, "count_only", "apenasContar") {
		q, err := h.quotes.Quote(ctx, criteria)
		if err != nil {
			return errors.Respond(c, err)
		}
		return c.JSON(http.StatusOK, quoteResponse(q))
	}

	// the page is read fresh, so its total must be too
	q, err := h.quotes.FreshQuote(ctx, criteria)
	if err != nil {
		return errors.Respond(c, err)
	}

	page, limit := companies.NormalizePage(queryInt(c, "page", 1), queryInt(c, "limit", companies.DefaultPageSize))
	rows, err := h.companies.Page(ctx, criteria, page, limit)
	if err != nil {
		return errors.Respond(c, err)
	}

	return c.JSON(http.StatusOK, models.CompanySearchResponse{
		Data:            rows,
		Pagination:      models.NewPaginationInfo(page, limit, q.Total),
		Total:           q.Total,
		PricePerContact: money(q.PricePerContact),
		TotalPrice:      money(q.TotalPrice),
		CreditsNeeded:   q.CreditsRequired,
	})
}

func quoteResponse(q quote.Quote) models.QuoteResponse {
	return models.QuoteResponse{
		Total:           q.Total,
		PricePerContact: money(q.PricePerContact),
		TotalPrice:      money(q.TotalPrice),
		CreditsNeeded:   q.CreditsRequired,
	}
}

// Stats godoc
// @Summary Dataset statistics
// @Description Active record counts by sector, country, continent, Brazilian state, size and business type
// @Tags Companies
// @Produce json
// @Success 200 {object} models.CompanyStats
// @Router /companies/stats [get]
func (h *CompanyHandler) Stats(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	stats, err := h.companies.Stats(ctx)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, stats)
}

// Get godoc
// @Summary Get company
// @Description Redacted detail view of one record
// @Tags Companies
// @Produce json
// @Param id path int true "Company ID"
// @Success 200 {object} models.Company
// @Failure 404 {object} models.ErrorResponse
// @Router /companies/{id} [get]
func (h *CompanyHandler) Get(c echo.Context) error {
	id, err := strconv.Atoi(c.Param("id"))
	if err != nil || id <= 0 {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_id",
			Message: "Company ID must be a positive integer",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	company, err := h.companies.Get(ctx, id)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, company)
}

// Create godoc
// @Summary Create company
// @Description Add a record to the dataset (admin only)
// @Tags Companies
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.CreateCompanyRequest true "Company data"
// @Success 201 {object} models.Company
// @Failure 400 {object} models.ErrorResponse
// @Failure 409 {object} models.ErrorResponse "Email already registered"
// @Router /companies [post]
func (h *CompanyHandler) Create(c echo.Context) error {
	var req models.CreateCompanyRequest
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

	company, err := h.companies.Create(ctx, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, company)
}
