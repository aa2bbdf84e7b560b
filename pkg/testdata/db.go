// Package testdata provides fixtures for package tests: a migrated SQLite
// database per test and fake company records.
package testdata

import (
	"context"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/models"
)

// NewTestDB opens a migrated SQLite database in a temporary directory.
// Write transactions take the lock up front so concurrent writers queue on
// the busy timeout instead of failing.
func NewTestDB(t testing.TB) *database.Client {
	t.Helper()

	dsn := "file:" + filepath.Join(t.TempDir(), "easyprospect.db") +
		"?_busy_timeout=5000&_txlock=immediate&_foreign_keys=on"

	client, err := database.Open(database.DriverSQLite, dsn, database.DefaultPoolConfig(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { client.Close() })

	require.NoError(t, client.Migrate(context.Background()))
	return client
}

// CreateUser inserts a user with the given credit balance and returns it
func CreateUser(t testing.TB, db *database.Client, email string, credits int) models.User {
	t.Helper()

	now := time.Now().UTC().Truncate(time.Second)
	u := models.User{
		Email:        email,
		Name:         "Test User",
		PasswordHash: "$2a$10$invalidinvalidinvalidinvalidinvalidinvalidinvalidinva",
		Plan:         "free",
		Role:         models.RoleUser,
		Credits:      credits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	res, err := db.DB.NamedExecContext(context.Background(),
		`INSERT INTO users (email, name, password_hash, plan, role, credits, created_at, updated_at)
		 VALUES (:email, :name, :password_hash, :plan, :role, :credits, :created_at, :updated_at)`, u)
	require.NoError(t, err)

	id, err := res.LastInsertId()
	require.NoError(t, err)
	u.ID = int(id)
	return u
}

// SeedCompanies generates and inserts records, returning their ids
func SeedCompanies(t testing.TB, db *database.Client, cfg CompanyGeneratorConfig) []int {
	t.Helper()

	ids, err := InsertCompanies(context.Background(), db.DB, GenerateCompanies(cfg))
	require.NoError(t, err)
	return ids
}
