package companies

import (
	"context"
	"errors"
	"time"

	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
	"github.com/easyprospect/api/pkg/redact"
)

// Pagination defaults for listings
const (
	DefaultPageSize = 20
	MaxPageSize     = 100
)

// StatsTTL is how long aggregated stats are served from cache
const StatsTTL = 30 * time.Minute

// Service wraps the repository with caching and redaction for API listings
type Service struct {
	repo  *Repository
	cache *cache.Client
	log   logger.Logger
}

// NewService creates a companies service. cache may be nil.
func NewService(repo *Repository, cacheClient *cache.Client, log logger.Logger) *Service {
	return &Service{repo: repo, cache: cacheClient, log: log.With("component", "companies")}
}

// NormalizePage applies listing defaults: page 1, DefaultPageSize rows, at most MaxPageSize
func NormalizePage(page, limit int) (int, int) {
	if page < 1 {
		page = 1
	}
	if limit < 1 {
		limit = DefaultPageSize
	}
	if limit > MaxPageSize {
		limit = MaxPageSize
	}
	return page, limit
}

// Page returns one redacted page of matching records
func (s *Service) Page(ctx context.Context, c filter.Criteria, page, limit int) ([]models.Company, error) {
	page, limit = NormalizePage(page, limit)
	rows, err := s.repo.Find(ctx, c, (page-1)*limit, limit)
	if err != nil {
		return nil, err
	}
	return redact.Companies(rows), nil
}

// Get returns one redacted record
func (s *Service) Get(ctx context.Context, id int) (*models.Company, error) {
	c, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	masked := redact.Company(*c)
	return &masked, nil
}

// Create adds a record and drops cached aggregates so they include it
func (s *Service) Create(ctx context.Context, req models.CreateCompanyRequest) (*models.Company, error) {
	c, err := s.repo.Create(ctx, req)
	if err != nil {
		return nil, err
	}
	s.invalidate(ctx)
	s.log.Info("company created", "company_id", c.ID, "country", c.Country, "sector", c.Sector)
	return c, nil
}

// Stats returns dataset aggregates, from cache when available
func (s *Service) Stats(ctx context.Context) (*models.CompanyStats, error) {
	if s.cache != nil {
		var cached models.CompanyStats
		err := s.cache.GetJSON(ctx, cache.PrefixStats, &cached)
		if err == nil {
			return &cached, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("stats cache read failed", "error", err)
		}
	}
	return s.RefreshStats(ctx)
}

// RefreshStats recomputes the aggregates and stores them in cache
func (s *Service) RefreshStats(ctx context.Context) (*models.CompanyStats, error) {
	stats, err := s.repo.Stats(ctx)
	if err != nil {
		return nil, err
	}
	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, cache.PrefixStats, stats, StatsTTL); err != nil {
			s.log.Warn("stats cache write failed", "error", err)
		}
	}
	return stats, nil
}

func (s *Service) invalidate(ctx context.Context) {
	if s.cache == nil {
		return
	}
	if err := s.cache.Delete(ctx, cache.PrefixStats); err != nil {
		s.log.Warn("stats cache invalidation failed", "error", err)
	}
	if _, err := s.cache.DeletePattern(ctx, cache.PrefixQuoteCount+"*"); err != nil {
		s.log.Warn("quote cache invalidation failed", "error", err)
	}
}
