package users

import (
	"context"
	"fmt"
	"time"

	"github.com/easyprospect/api/pkg/auth"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/metrics"
	"github.com/easyprospect/api/pkg/models"
)

// DefaultPlan is assigned at registration
const DefaultPlan = "free"

// Service registers and authenticates users
type Service struct {
	repo          *Repository
	signupCredits int
	log           logger.Logger
}

// NewService creates a user service granting signupCredits to new accounts
func NewService(repo *Repository, signupCredits int, log logger.Logger) *Service {
	return &Service{repo: repo, signupCredits: signupCredits, log: log.With("component", "users")}
}

// Register creates an account with a hashed password and the signup credits
func (s *Service) Register(ctx context.Context, req models.RegisterRequest) (*models.User, error) {
	hash, err := auth.HashPassword(req.Password)
	if err != nil {
		return nil, fmt.Errorf("failed to hash password: %w", err)
	}

	now := time.Now().UTC()
	u := &models.User{
		Email:        req.Email,
		Name:         req.Name,
		PasswordHash: hash,
		Plan:         DefaultPlan,
		Role:         models.RoleUser,
		Credits:      s.signupCredits,
		CreatedAt:    now,
		UpdatedAt:    now,
	}
	if err := s.repo.Create(ctx, u); err != nil {
		return nil, err
	}

	metrics.RecordUserRegistered()
	s.log.Info("user registered", "user_id", u.ID, "credits", u.Credits)
	return u, nil
}

// Authenticate checks credentials. Unknown emails and wrong passwords fail the same way.
func (s *Service) Authenticate(ctx context.Context, email, password string) (*models.User, error) {
	u, err := s.repo.GetByEmail(ctx, email)
	if domain.IsNotFound(err) {
		metrics.RecordLoginAttempt(false)
		return nil, domain.NewUnauthorizedError()
	}
	if err != nil {
		return nil, err
	}

	if !auth.CheckPassword(u.PasswordHash, password) {
		metrics.RecordLoginAttempt(false)
		return nil, domain.NewUnauthorizedError()
	}

	metrics.RecordLoginAttempt(true)
	return u, nil
}

// Get returns one user
func (s *Service) Get(ctx context.Context, id int) (*models.User, error) {
	return s.repo.GetByID(ctx, id)
}
