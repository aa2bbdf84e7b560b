package models

import "time"

// User roles
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User is an account holding a credit balance
type User struct {
	ID           int       `db:"id" json:"id"`
	Email        string    `db:"email" json:"email"`
	Name         string    `db:"name" json:"name"`
	PasswordHash string    `db:"password_hash" json:"-"`
	Plan         string    `db:"plan" json:"plan"`
	Role         string    `db:"role" json:"role"`
	Credits      int       `db:"credits" json:"credits"`
	CreatedAt    time.Time `db:"created_at" json:"created_at"`
	UpdatedAt    time.Time `db:"updated_at" json:"updated_at"`
}

// RegisterRequest represents a registration request
type RegisterRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required,min=8,max=72"`
	Name     string `json:"name" validate:"required,max=120"`
}

// LoginRequest represents a login request
type LoginRequest struct {
	Email    string `json:"email" validate:"required,email"`
	Password string `json:"password" validate:"required"`
}

// AuthResponse represents an authentication response
type AuthResponse struct {
	User      User   `json:"user"`
	Token     string `json:"token"`
	ExpiresAt int64  `json:"expires_at"`
}

// Download is the audit entry written for every successful purchase
type Download struct {
	ID          int       `db:"id" json:"id"`
	UserID      int       `db:"user_id" json:"user_id"`
	Filters     string    `db:"filters" json:"filters"`
	RecordCount int       `db:"record_count" json:"record_count"`
	CreditsUsed int       `db:"credits_used" json:"credits_used"`
	Format      string    `db:"format" json:"format"`
	CreatedAt   time.Time `db:"created_at" json:"created_at"`
}

// CreditBalanceResponse is returned by the balance endpoint
type CreditBalanceResponse struct {
	Credits        int    `json:"credits"`
	Plan           string `json:"plan"`
	TotalDownloads int    `json:"total_downloads"`
}
