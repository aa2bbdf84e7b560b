package handlers

import (
	"fmt"
	"net/http"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/companies"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/quote"
	"github.com/easyprospect/api/pkg/testdata"
)

func TestCompanySearch_CountOnly(t *testing.T) {
	env := newTestEnv(t)
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 4, Country: "Brazil", Seed: 1})
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 3, Country: "Germany", Seed: 2})
	h := NewCompanyHandler(env.companies, env.quotes)

	c, rec := env.request(http.MethodGet, "/api/v1/companies?paises=Germany&apenasContar=true", nil, nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	q := decode[map[string]any](t, rec)
	assert.EqualValues(t, 3, q["total"])
	assert.EqualValues(t, 3, q["credits_needed"])
	assert.InDelta(t, 0.15, q["price_per_contact"], 1e-9)
	assert.InDelta(t, 0.45, q["total_price"], 1e-9)
	assert.NotContains(t, q, "data")
}

func TestCompanySearch_PageIsRedacted(t *testing.T) {
	env := newTestEnv(t)
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 25, Country: "Brazil", Seed: 3})
	h := NewCompanyHandler(env.companies, env.quotes)

	c, rec := env.request(http.MethodGet, "/api/v1/companies?countries=Brazil&page=2&limit=10", nil, nil)
	require.NoError(t, h.Search(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[models.CompanySearchResponse](t, rec)
	assert.Equal(t, 25, resp.Total)
	assert.Len(t, resp.Data, 10)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.True(t, resp.Pagination.HasNext)
	assert.True(t, resp.Pagination.HasPrev)
	assert.InDelta(t, 0.08, resp.PricePerContact, 1e-9)
	assert.InDelta(t, 2.0, resp.TotalPrice, 1e-9)

	for _, row := range resp.Data {
		if row.Email != "" {
			assert.Contains(t, row.Email, "***@", "listing must never expose full emails")
		}
	}
}

func TestCompanySearch_PageTotalIgnoresCachedCount(t *testing.T) {
	env := newTestEnv(t)
	ids := testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 5, Country: "Chile", Seed: 4})

	mr := miniredis.RunT(t)
	cacheClient := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { cacheClient.Close() })
	quotes := quote.NewService(companies.NewRepository(env.db.DB), cacheClient, logger.Nop())
	h := NewCompanyHandler(env.companies, quotes)

	c, rec := env.request(http.MethodGet, "/api/v1/companies?countries=Chile&count_only=true", nil, nil)
	require.NoError(t, h.Search(c))
	assert.EqualValues(t, 5, decode[models.QuoteResponse](t, rec).Total)

	_, err := env.db.DB.Exec("UPDATE companies SET active = ? WHERE id IN (?, ?)", false, ids[0], ids[1])
	require.NoError(t, err)

	c, rec = env.request(http.MethodGet, "/api/v1/companies?countries=Chile&limit=2", nil, nil)
	require.NoError(t, h.Search(c))
	resp := decode[models.CompanySearchResponse](t, rec)
	assert.Equal(t, 3, resp.Total)
	assert.Equal(t, 2, resp.Pagination.TotalPages)
	assert.Len(t, resp.Data, 2)

	c, rec = env.request(http.MethodGet, "/api/v1/companies?countries=Chile&count_only=true", nil, nil)
	require.NoError(t, h.Search(c))
	assert.EqualValues(t, 3, decode[models.QuoteResponse](t, rec).Total)
}

func TestCompanySearch_InvalidFilter(t *testing.T) {
	env := newTestEnv(t)
	h := NewCompanyHandler(env.companies, env.quotes)

	c, rec := env.request(http.MethodGet, "/api/v1/companies?search="+strings.Repeat("x", 300), nil, nil)
	require.NoError(t, h.Search(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyGet(t *testing.T) {
	env := newTestEnv(t)
	ids := testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 1, Seed: 4})
	h := NewCompanyHandler(env.companies, env.quotes)

	c, rec := env.request(http.MethodGet, "/", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues(fmt.Sprint(ids[0]))
	require.NoError(t, h.Get(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, ids[0], decode[models.Company](t, rec).ID)

	c, rec = env.request(http.MethodGet, "/", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("999999")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	c, rec = env.request(http.MethodGet, "/", nil, nil)
	c.SetParamNames("id")
	c.SetParamValues("abc")
	require.NoError(t, h.Get(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyCreate(t *testing.T) {
	env := newTestEnv(t)
	h := NewCompanyHandler(env.companies, env.quotes)

	body := models.CreateCompanyRequest{
		Name:      "Acme Trading",
		Email:     "contact@acme.test",
		Continent: "South America",
		Country:   "Brazil",
		Sector:    "Retail",
	}

	c, rec := env.request(http.MethodPost, "/api/v1/companies", body, admin())
	require.NoError(t, h.Create(c))
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	assert.Equal(t, "Acme Trading", decode[models.Company](t, rec).Name)

	c, rec = env.request(http.MethodPost, "/api/v1/companies", body, admin())
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusConflict, rec.Code)

	c, rec = env.request(http.MethodPost, "/api/v1/companies", models.CreateCompanyRequest{Name: "No country"}, admin())
	require.NoError(t, h.Create(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestCompanyStats(t *testing.T) {
	env := newTestEnv(t)
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 5, Country: "Portugal", Seed: 5})
	h := NewCompanyHandler(env.companies, env.quotes)

	c, rec := env.request(http.MethodGet, "/api/v1/companies/stats", nil, nil)
	require.NoError(t, h.Stats(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, 5, decode[models.CompanyStats](t, rec).Total)
}
