package handlers

import (
	"encoding/json"
	"io"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/labstack/echo/v4"
	"github.com/stretchr/testify/require"

	"github.com/easyprospect/api/pkg/companies"
	"github.com/easyprospect/api/pkg/credits"
	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/email"
	"github.com/easyprospect/api/pkg/export"
	"github.com/easyprospect/api/pkg/lists"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/quote"
	"github.com/easyprospect/api/pkg/testdata"
	"github.com/easyprospect/api/pkg/users"
)

const testJWTSecret = "handler-test-secret"

// testEnv wires the services against a fresh SQLite database
type testEnv struct {
	e         *echo.Echo
	db        *database.Client
	companies *companies.Service
	quotes    *quote.Service
	ledger    *credits.Ledger
	exports   *export.Service
	lists     *lists.Service
	users     *users.Service
	email     *email.Service
}

func newTestEnv(t *testing.T) *testEnv {
	t.Helper()
	db := testdata.NewTestDB(t)
	log := logger.Nop()

	repo := companies.NewRepository(db.DB)
	ledger := credits.NewLedger(db.DB, log)
	quotes := quote.NewService(repo, nil, log)

	return &testEnv{
		e:         echo.New(),
		db:        db,
		companies: companies.NewService(repo, nil, log),
		quotes:    quotes,
		ledger:    ledger,
		exports:   export.NewService(db.DB, repo, ledger, quotes, log),
		lists:     lists.NewService(lists.NewRepository(db.DB), log),
		users:     users.NewService(users.NewRepository(db.DB), 25, log),
		email:     email.NewService("noreply@easyprospect.test", "EasyProspect", "https://easyprospect.test", ""),
	}
}

// request builds a context for target. A non-nil user is put in the context
// the way the JWT middleware does it.
func (env *testEnv) request(method, target string, body any, user *models.User) (echo.Context, *httptest.ResponseRecorder) {
	var reader io.Reader
	if body != nil {
		raw, _ := json.Marshal(body)
		reader = strings.NewReader(string(raw))
	}
	req := httptest.NewRequest(method, target, reader)
	if body != nil {
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	}
	rec := httptest.NewRecorder()
	c := env.e.NewContext(req, rec)

	if user != nil {
		c.Set("user_id", user.ID)
		c.Set("user_email", user.Email)
		c.Set("user_role", user.Role)
	}
	return c, rec
}

func decode[T any](t *testing.T, rec *httptest.ResponseRecorder) T {
	t.Helper()
	var out T
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &out), rec.Body.String())
	return out
}

func admin() *models.User {
	return &models.User{ID: 999, Email: "admin@easyprospect.test", Role: models.RoleAdmin}
}

