package handlers

import (
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/testdata"
)

func TestExportPreview(t *testing.T) {
	env := newTestEnv(t)
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 30, Country: "Chile", Seed: 10})
	h := NewExportHandler(env.exports, nil, logger.Nop())

	c, rec := env.request(http.MethodGet, "/api/v1/exports/preview?countries=Chile&limit=50", nil, nil)
	require.NoError(t, h.Preview(c))
	require.Equal(t, http.StatusOK, rec.Code)

	resp := decode[PreviewResponse](t, rec)
	assert.Len(t, resp.Data, 10)
	assert.Equal(t, 30, resp.Total)
	assert.Equal(t, 30, resp.CreditsNeeded)
}

func TestExportPublicCSV_RedactedAndFree(t *testing.T) {
	env := newTestEnv(t)
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 15, Seed: 11})
	h := NewExportHandler(env.exports, nil, logger.Nop())

	c, rec := env.request(http.MethodGet, "/api/v1/exports/csv?preview=true", nil, nil)
	require.NoError(t, h.PublicCSV(c))
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Contains(t, rec.Header().Get("Content-Type"), "text/csv")
	assert.Contains(t, rec.Header().Get("Content-Disposition"), "attachment; filename=\"companies-")
	assert.Equal(t, "15", rec.Header().Get("X-Total-Count"))

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	assert.Len(t, lines, 11, "header plus the preview cap")
	assert.Contains(t, rec.Body.String(), "***@")
}

func TestExportPublicDocument(t *testing.T) {
	env := newTestEnv(t)
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 3, Country: "Japan", Seed: 12})
	h := NewExportHandler(env.exports, nil, logger.Nop())

	c, rec := env.request(http.MethodGet, "/api/v1/exports/document?countries=Japan", nil, nil)
	require.NoError(t, h.PublicDocument(c))
	require.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Header().Get("Content-Type"), "text/html")
	assert.Contains(t, rec.Body.String(), "Japan")
}

func TestExportPurchase_ByIDs(t *testing.T) {
	env := newTestEnv(t)
	ids := testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 5, Seed: 13})
	buyer := testdata.CreateUser(t, env.db, "buyer@easyprospect.test", 10)
	h := NewExportHandler(env.exports, env.email, logger.Nop())

	c, rec := env.request(http.MethodPost, "/api/v1/exports/purchase",
		PurchaseRequest{CompanyIDs: ids[:3], Format: "json"}, &buyer)
	require.NoError(t, h.Purchase(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())

	assert.Equal(t, "7", rec.Header().Get(HeaderCreditsRemaining))
	payload := decode[struct {
		Exported int              `json:"exported"`
		Records  []models.Company `json:"records"`
	}](t, rec)
	assert.Equal(t, 3, payload.Exported)
	for _, r := range payload.Records {
		assert.NotContains(t, r.Email, "***", "purchased data is not redacted")
	}

	assert.Eventually(t, func() bool { return len(env.email.Outbox()) == 1 }, 2*time.Second, 10*time.Millisecond)
	assert.Equal(t, "buyer@easyprospect.test", env.email.Outbox()[0].ToEmail)
}

func TestExportPurchase_ByFilters(t *testing.T) {
	env := newTestEnv(t)
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 4, Country: "Germany", Seed: 14})
	testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 2, Country: "Brazil", Seed: 15})
	buyer := testdata.CreateUser(t, env.db, "filters@easyprospect.test", 4)
	h := NewExportHandler(env.exports, nil, logger.Nop())

	c, rec := env.request(http.MethodPost, "/api/v1/exports/purchase",
		PurchaseRequest{Filters: &filter.Criteria{Countries: []string{"Germany"}}, Format: "csv"}, &buyer)
	require.NoError(t, h.Purchase(c))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "0", rec.Header().Get(HeaderCreditsRemaining))
}

func TestExportPurchase_InsufficientCredits(t *testing.T) {
	env := newTestEnv(t)
	ids := testdata.SeedCompanies(t, env.db, testdata.CompanyGeneratorConfig{Count: 3, Seed: 16})
	buyer := testdata.CreateUser(t, env.db, "poor@easyprospect.test", 1)
	h := NewExportHandler(env.exports, nil, logger.Nop())

	c, rec := env.request(http.MethodPost, "/api/v1/exports/purchase", PurchaseRequest{CompanyIDs: ids}, &buyer)
	require.NoError(t, h.Purchase(c))
	require.Equal(t, http.StatusPaymentRequired, rec.Code)

	body := decode[models.InsufficientCreditsResponse](t, rec)
	assert.Equal(t, "insufficient_credits", body.Error)
	assert.Equal(t, 1, body.CurrentBalance)
	assert.Equal(t, 3, body.Required)
	assert.Empty(t, rec.Header().Get(HeaderCreditsRemaining))
}

func TestExportPurchase_BadRequests(t *testing.T) {
	env := newTestEnv(t)
	buyer := testdata.CreateUser(t, env.db, "bad@easyprospect.test", 10)
	h := NewExportHandler(env.exports, nil, logger.Nop())

	c, rec := env.request(http.MethodPost, "/api/v1/exports/purchase", PurchaseRequest{CompanyIDs: []int{1}}, nil)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	c, rec = env.request(http.MethodPost, "/api/v1/exports/purchase", PurchaseRequest{}, &buyer)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = env.request(http.MethodPost, "/api/v1/exports/purchase", PurchaseRequest{CompanyIDs: []int{1}, Format: "docx"}, &buyer)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	c, rec = env.request(http.MethodPost, "/api/v1/exports/purchase", PurchaseRequest{CompanyIDs: []int{424242}}, &buyer)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestExportPurchase_TooManyIDs(t *testing.T) {
	env := newTestEnv(t)
	buyer := testdata.CreateUser(t, env.db, "bulk@easyprospect.test", 5000)
	h := NewExportHandler(env.exports, nil, logger.Nop())

	ids := make([]int, 1001)
	for i := range ids {
		ids[i] = i + 1
	}

	c, rec := env.request(http.MethodPost, "/api/v1/exports/purchase", PurchaseRequest{CompanyIDs: ids, Format: "csv"}, &buyer)
	require.NoError(t, h.Purchase(c))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, "validation_error", decode[models.ErrorResponse](t, rec).Error)

	balance, err := env.ledger.Balance(c.Request().Context(), buyer.ID)
	require.NoError(t, err)
	assert.Equal(t, 5000, balance.Credits)
}
