package main

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprospect/api/pkg/api/handlers"
	"github.com/easyprospect/api/pkg/auth"
	"github.com/easyprospect/api/pkg/companies"
	"github.com/easyprospect/api/pkg/credits"
	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/export"
	"github.com/easyprospect/api/pkg/lists"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/quote"
	"github.com/easyprospect/api/pkg/testdata"
	"github.com/easyprospect/api/pkg/users"
)

const routesSecret = "routes-secret"

func newTestServer(t *testing.T) (*database.Client, http.Handler) {
	t.Helper()
	db := testdata.NewTestDB(t)
	log := logger.Nop()

	repo := companies.NewRepository(db.DB)
	ledger := credits.NewLedger(db.DB, log)
	quotes := quote.NewService(repo, nil, log)
	userService := users.NewService(users.NewRepository(db.DB), 0, log)

	srv := &server{
		jwtSecret:   routesSecret,
		origins:     []string{"http://localhost:3000"},
		environment: "test",
		health:      handlers.NewHealthHandler(db, nil),
		companies:   handlers.NewCompanyHandler(companies.NewService(repo, nil, log), quotes),
		exports:     handlers.NewExportHandler(export.NewService(db.DB, repo, ledger, quotes, log), nil, log),
		credits:     handlers.NewCreditHandler(ledger),
		lists:       handlers.NewListHandler(lists.NewService(lists.NewRepository(db.DB), log)),
		auth:        handlers.NewAuthHandler(userService, handlers.TokenConfig{Secret: routesSecret, ExpirationHours: 1}, nil, nil, log),
	}
	return db, srv.router()
}

func bearer(t *testing.T, u models.User) string {
	t.Helper()
	token, _, err := auth.GenerateJWT(u.ID, u.Email, u.Role, routesSecret, 1)
	require.NoError(t, err)
	return "Bearer " + token
}

func do(h http.Handler, method, target, authz, body string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	if authz != "" {
		req.Header.Set("Authorization", authz)
	}
	rec := httptest.NewRecorder()
	h.ServeHTTP(rec, req)
	return rec
}

func TestRoutes_PublicEndpoints(t *testing.T) {
	db, h := newTestServer(t)
	testdata.SeedCompanies(t, db, testdata.CompanyGeneratorConfig{Count: 3, Seed: 1})

	rec := do(h, http.MethodGet, "/health", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "nosniff", rec.Header().Get("X-Content-Type-Options"))
	var health map[string]string
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &health))
	assert.Equal(t, "ok", health["database"])
	assert.Equal(t, "disabled", health["redis"])
	assert.Contains(t, health, "db_open_connections")
	assert.Contains(t, health, "db_in_use")

	rec = do(h, http.MethodGet, "/api/v1/companies?apenasContar=true", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var q models.QuoteResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &q))
	assert.Equal(t, 3, q.Total)

	rec = do(h, http.MethodGet, "/metrics", "", "")
	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Contains(t, rec.Body.String(), "http_requests_total")
}

func TestRoutes_PurchaseRequiresToken(t *testing.T) {
	db, h := newTestServer(t)
	ids := testdata.SeedCompanies(t, db, testdata.CompanyGeneratorConfig{Count: 2, Seed: 2})
	u := testdata.CreateUser(t, db, "routes@easyprospect.test", 5)

	body := `{"company_ids":` + jsonInts(ids) + `}`

	rec := do(h, http.MethodPost, "/api/v1/exports/purchase", "", body)
	assert.Equal(t, http.StatusUnauthorized, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/exports/purchase", bearer(t, u), body)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "3", rec.Header().Get(handlers.HeaderCreditsRemaining))
	assert.Equal(t, "no-store", rec.Header().Get("Cache-Control"))
}

func TestRoutes_AdminOnlyWrites(t *testing.T) {
	db, h := newTestServer(t)
	u := testdata.CreateUser(t, db, "member@easyprospect.test", 0)
	adminUser := models.User{ID: 1000, Email: "admin@easyprospect.test", Role: models.RoleAdmin}

	body := `{"name":"Retail","quantity":10,"price":"19.90","segments":["Retail"]}`

	rec := do(h, http.MethodPost, "/api/v1/lists", bearer(t, u), body)
	assert.Equal(t, http.StatusForbidden, rec.Code)

	rec = do(h, http.MethodPost, "/api/v1/lists", bearer(t, adminUser), body)
	assert.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	rec = do(h, http.MethodGet, "/api/v1/lists", "", "")
	require.Equal(t, http.StatusOK, rec.Code)
	var found []models.List
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &found))
	assert.Len(t, found, 1)
}

func jsonInts(ids []int) string {
	raw, _ := json.Marshal(ids)
	return string(raw)
}
