package handlers

import (
	"strconv"
	"strings"
	"time"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"
)

// requestTimeout bounds the storage work of one request
const requestTimeout = 10 * time.Second

// currentUserID returns the id the JWT middleware put in the context
func currentUserID(c echo.Context) (int, bool) {
	id, ok := c.Get("user_id").(int)
	return id, ok && id > 0
}

// queryParam returns the first non-empty value among names
func queryParam(c echo.Context, names ...string) string {
	for _, name := range names {
		if v := strings.TrimSpace(c.QueryParam(name)); v != "" {
			return v
		}
	}
	return ""
}

func queryInt(c echo.Context, name string, fallback int) int {
	v, err := strconv.Atoi(c.QueryParam(name))
	if err != nil {
		return fallback
	}
	return v
}

func queryBool(c echo.Context, names ...string) bool {
	return queryParam(c, names...) == "true"
}

// money renders a decimal amount for JSON responses
func money(d decimal.Decimal) float64 {
	return d.Round(2).InexactFloat64()
}
