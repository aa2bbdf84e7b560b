// Package users stores buyer accounts.
package users

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	"github.com/jmoiron/sqlx"

	"github.com/easyprospect/api/pkg/database"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/models"
)

const userColumns = "id, email, name, password_hash, plan, role, credits, created_at, updated_at"

// Repository reads and writes the users table
type Repository struct {
	db *sqlx.DB
}

// NewRepository creates a user repository
func NewRepository(db *sqlx.DB) *Repository {
	return &Repository{db: db}
}

// Create inserts u and sets its id. A taken email is a Conflict.
func (r *Repository) Create(ctx context.Context, u *models.User) error {
	u.Email = strings.ToLower(strings.TrimSpace(u.Email))

	query, args, err := r.db.BindNamed(`INSERT INTO users
		(email, name, password_hash, plan, role, credits, created_at, updated_at)
		VALUES (:email, :name, :password_hash, :plan, :role, :credits, :created_at, :updated_at)
		RETURNING id`, u)
	if err != nil {
		return fmt.Errorf("failed to bind user insert: %w", err)
	}

	if err := r.db.GetContext(ctx, &u.ID, query, args...); err != nil {
		if database.IsUniqueViolation(err) {
			return domain.NewConflictError("an account with this email already exists")
		}
		return fmt.Errorf("failed to create user: %w", err)
	}
	return nil
}

// GetByID returns one user
func (r *Repository) GetByID(ctx context.Context, id int) (*models.User, error) {
	return r.getBy(ctx, "id", id)
}

// GetByEmail looks a user up by email, case-insensitively
func (r *Repository) GetByEmail(ctx context.Context, email string) (*models.User, error) {
	return r.getBy(ctx, "email", strings.ToLower(strings.TrimSpace(email)))
}

func (r *Repository) getBy(ctx context.Context, column string, value interface{}) (*models.User, error) {
	var u models.User
	query := r.db.Rebind("SELECT " + userColumns + " FROM users WHERE " + column + " = ?")
	err := r.db.GetContext(ctx, &u, query, value)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, domain.NewNotFoundError("user")
	}
	if err != nil {
		return nil, fmt.Errorf("failed to get user: %w", err)
	}
	return &u, nil
}
