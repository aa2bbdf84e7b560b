package handlers

import (
	"context"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"github.com/easyprospect/api/pkg/api/errors"
	"github.com/easyprospect/api/pkg/lists"
	"github.com/easyprospect/api/pkg/middleware"
	"github.com/easyprospect/api/pkg/models"
)

// ListHandler handles the curated list catalogue
type ListHandler struct {
	lists *lists.Service
}

// NewListHandler creates a new list handler
func NewListHandler(listService *lists.Service) *ListHandler {
	return &ListHandler{lists: listService}
}

// Search godoc
// @Summary Search lists
// @Description Featured lists first, then newest. Inactive lists are returned to admins only.
// @Tags Lists
// @Produce json
// @Param segment query string false "Segment (alias: segmento)"
// @Param region query string false "Region (alias: regiao)"
// @Param country query string false "Country (alias: pais)"
// @Param search query string false "Name or description (alias: busca)"
// @Param price_min query number false "Minimum price (alias: precoMin)"
// @Param price_max query number false "Maximum price (alias: precoMax)"
// @Param featured query bool false "Only featured (alias: destaque)"
// @Success 200 {array} models.List
// @Router /lists [get]
func (h *ListHandler) Search(c echo.Context) error {
	q := models.ListSearch{
		Segment:         queryParam(c, "segment", "segmento"),
		Region:          queryParam(c, "region", "regiao"),
		Country:         queryParam(c, "country", "pais"),
		Search:          queryParam(c, "search", "busca"),
		IncludeInactive: middleware.IsAdmin(c) && queryBool(c, "include_inactive"),
	}

	var err error
	if q.PriceMin, err = queryDecimal(c, "price_min", "precoMin"); err != nil {
		return invalidParam(c, "price_min")
	}
	if q.PriceMax, err = queryDecimal(c, "price_max", "precoMax"); err != nil {
		return invalidParam(c, "price_max")
	}
	if v := queryParam(c, "featured", "destaque"); v != "" {
		featured := v == "true"
		q.Featured = &featured
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	out, err := h.lists.Search(ctx, q)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, out)
}

// Get godoc
// @Summary Get list
// @Tags Lists
// @Produce json
// @Param id path int true "List ID"
// @Success 200 {object} models.List
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{id} [get]
func (h *ListHandler) Get(c echo.Context) error {
	id, ok := listID(c)
	if !ok {
		return invalidParam(c, "id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	l, err := h.lists.Get(ctx, id, middleware.IsAdmin(c))
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Create godoc
// @Summary Create list
// @Tags Lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body models.ListRequest true "List data"
// @Success 201 {object} models.List
// @Failure 400 {object} models.ErrorResponse
// @Failure 403 {object} models.ErrorResponse
// @Router /lists [post]
func (h *ListHandler) Create(c echo.Context) error {
	var req models.ListRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	l, err := h.lists.Create(ctx, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

// Update godoc
// @Summary Update list
// @Tags Lists
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "List ID"
// @Param request body models.ListRequest true "List data"
// @Success 200 {object} models.List
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{id} [put]
func (h *ListHandler) Update(c echo.Context) error {
	id, ok := listID(c)
	if !ok {
		return invalidParam(c, "id")
	}

	var req models.ListRequest
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, models.ErrorResponse{
			Error:   "invalid_request",
			Message: "Invalid request body",
		})
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	l, err := h.lists.Update(ctx, id, req)
	if err != nil {
		return errors.Respond(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Delete godoc
// @Summary Delete list
// @Tags Lists
// @Security BearerAuth
// @Param id path int true "List ID"
// @Success 204
// @Failure 404 {object} models.ErrorResponse
// @Router /lists/{id} [delete]
func (h *ListHandler) Delete(c echo.Context) error {
	id, ok := listID(c)
	if !ok {
		return invalidParam(c, "id")
	}

	ctx, cancel := context.WithTimeout(c.Request().Context(), requestTimeout)
	defer cancel()

	if err := h.lists.Delete(ctx, id); err != nil {
		return errors.Respond(c, err)
	}
	return c.NoContent(http.StatusNoContent)
}

func listID(c echo.Context) (int, bool) {
	id, err := strconv.Atoi(c.Param("id"))
	return id, err == nil && id > 0
}

func queryDecimal(c echo.Context, names ...string) (*decimal.Decimal, error) {
	raw := queryParam(c, names...)
	if raw == "" {
		return nil, nil
	}
	d, err := decimal.NewFromString(raw)
	if err != nil {
		return nil, err
	}
	return &d, nil
}

func invalidParam(c echo.Context, name string) error {
	return c.JSON(http.StatusBadRequest, models.ErrorResponse{
		Error:   "invalid_parameter",
		Message: "Invalid value for " + name,
	})
}
