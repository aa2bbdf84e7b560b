package lists

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"

	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/pricing"
)

// DefaultValidationRate applies when a list is created without one
const DefaultValidationRate = 95

// DefaultIncludedFields applies when a list is created without any
var DefaultIncludedFields = []string{"email", "phone"}

var validate = validator.New()

// Service applies list business rules over the repository
type Service struct {
	repo *Repository
	log  logger.Logger
	now  func() time.Time
}

// NewService creates a list service
func NewService(repo *Repository, log logger.Logger) *Service {
	return &Service{
		repo: repo,
		log:  log.With("component", "lists"),
		now:  func() time.Time { return time.Now().UTC() },
	}
}

// Search returns catalogue lists with their effective price
func (s *Service) Search(ctx context.Context, q models.ListSearch) ([]models.List, error) {
	if q.PriceMin != nil && q.PriceMax != nil && q.PriceMin.GreaterThan(*q.PriceMax) {
		return nil, domain.NewValidationError("price_min must not exceed price_max")
	}
	ls, err := s.repo.Search(ctx, q)
	if err != nil {
		return nil, err
	}
	for i := range ls {
		priced(&ls[i])
	}
	return ls, nil
}

// Get returns one list. Inactive lists are only visible to admins.
func (s *Service) Get(ctx context.Context, id int, includeInactive bool) (*models.List, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if !l.Active && !includeInactive {
		return nil, domain.NewNotFoundError("list")
	}
	priced(l)
	return l, nil
}

// Create validates req and stores a new list
func (s *Service) Create(ctx context.Context, req models.ListRequest) (*models.List, error) {
	if len(req.Segments) == 0 {
		return nil, domain.NewValidationError("at least one segment is required")
	}
	if req.Quantity <= 0 {
		return nil, domain.NewValidationError("quantity must be positive")
	}

	l := models.List{
		ValidationRate: DefaultValidationRate,
		Active:         true,
		IncludedFields: DefaultIncludedFields,
		CreatedAt:      s.now(),
	}
	if err := s.apply(&l, req); err != nil {
		return nil, err
	}

	created, err := s.repo.Create(ctx, l)
	if err != nil {
		return nil, err
	}
	s.log.Info("list created", "list_id", created.ID, "name", created.Name)
	priced(created)
	return created, nil
}

// Update overwrites an existing list. Tag arrays left out of req are kept.
func (s *Service) Update(ctx context.Context, id int, req models.ListRequest) (*models.List, error) {
	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if err := s.apply(l, req); err != nil {
		return nil, err
	}

	updated, err := s.repo.Update(ctx, *l)
	if err != nil {
		return nil, err
	}
	s.log.Info("list updated", "list_id", id)
	priced(updated)
	return updated, nil
}

// Delete removes a list
func (s *Service) Delete(ctx context.Context, id int) error {
	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	s.log.Info("list deleted", "list_id", id)
	return nil
}

func (s *Service) apply(l *models.List, req models.ListRequest) error {
	if err := validate.Struct(req); err != nil {
		return domain.NewValidationError(fmt.Sprintf("invalid list: %v", err))
	}
	if !req.Price.IsPositive() {
		return domain.NewValidationError("price must be positive")
	}
	if req.DiscountPrice != nil && req.DiscountPrice.IsNegative() {
		return domain.NewValidationError("discount_price must not be negative")
	}

	l.Name = strings.TrimSpace(req.Name)
	l.Description = req.Description
	l.Quantity = req.Quantity
	l.Price = req.Price.Round(2)
	l.DiscountPrice = decimal.NullDecimal{}
	if req.DiscountPrice != nil {
		l.DiscountPrice = decimal.NewNullDecimal(req.DiscountPrice.Round(2))
	}
	if req.ValidationRate != nil {
		l.ValidationRate = *req.ValidationRate
	}
	l.FileURL = req.FileURL
	l.SampleURL = req.SampleURL
	l.ImageURL = req.ImageURL
	l.Featured = req.Featured
	if req.Active != nil {
		l.Active = *req.Active
	}
	if req.Segments != nil {
		l.Segments = cleanTags(req.Segments)
	}
	if req.Regions != nil {
		l.Regions = cleanTags(req.Regions)
	}
	if req.Countries != nil {
		l.Countries = cleanTags(req.Countries)
	}
	if req.IncludedFields != nil {
		l.IncludedFields = cleanTags(req.IncludedFields)
	}
	l.UpdatedAt = s.now()
	return nil
}

// cleanTags trims values and drops blanks, keeping order
func cleanTags(in []string) []string {
	out := make([]string, 0, len(in))
	for _, v := range in {
		if v = strings.TrimSpace(v); v != "" {
			out = append(out, v)
		}
	}
	return out
}

func priced(l *models.List) {
	l.EffectivePrice = pricing.Bundle(l.Price, l.DiscountPrice)
}
