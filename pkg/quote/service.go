// Package quote prices a filter before anything is bought.
package quote

import (
	"context"
	"errors"
	"time"

	"github.com/shopspring/decimal"

	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/metrics"
	"github.com/easyprospect/api/pkg/pricing"
)

// CountTTL is how long a filter's match count is served from cache
const CountTTL = 5 * time.Minute

// Counter counts active records matching criteria
type Counter interface {
	Count(ctx context.Context, c filter.Criteria) (int, error)
}

// Quote is the price of buying every record matching a filter.
// CreditsRequired always equals Total: one credit per contact.
type Quote struct {
	Total           int
	PricePerContact decimal.Decimal
	TotalPrice      decimal.Decimal
	CreditsRequired int
}

// New builds a quote for count contacts in the given countries
func New(count int, countries []string) Quote {
	ppc := pricing.PerContact(countries)
	return Quote{
		Total:           count,
		PricePerContact: ppc,
		TotalPrice:      pricing.Total(count, ppc),
		CreditsRequired: count,
	}
}

// Service computes quotes, caching counts in Redis
type Service struct {
	counter Counter
	cache   *cache.Client
	log     logger.Logger
}

// NewService creates a quote service. cache may be nil.
func NewService(counter Counter, cacheClient *cache.Client, log logger.Logger) *Service {
	return &Service{counter: counter, cache: cacheClient, log: log.With("component", "quote")}
}

// Quote counts the records matching c and prices them. Rows are never fetched.
// The count may come from cache and lag the table by up to CountTTL.
func (s *Service) Quote(ctx context.Context, c filter.Criteria) (Quote, error) {
	return s.quote(ctx, c, false)
}

// FreshQuote is Quote with the count read from the database. The cached
// count is replaced with the fresh one.
func (s *Service) FreshQuote(ctx context.Context, c filter.Criteria) (Quote, error) {
	return s.quote(ctx, c, true)
}

func (s *Service) quote(ctx context.Context, c filter.Criteria, fresh bool) (Quote, error) {
	if err := filter.Validate(c); err != nil {
		return Quote{}, err
	}
	c = c.Normalize()

	count, fromCache, err := s.count(ctx, c, fresh)
	if err != nil {
		return Quote{}, err
	}
	metrics.RecordQuote(fromCache)

	return New(count, c.Countries), nil
}

func (s *Service) count(ctx context.Context, c filter.Criteria, fresh bool) (int, bool, error) {
	key := cache.PrefixQuoteCount + c.Key()

	if s.cache != nil && !fresh {
		var cached int
		err := s.cache.GetJSON(ctx, key, &cached)
		if err == nil {
			return cached, true, nil
		}
		if !errors.Is(err, cache.ErrMiss) {
			s.log.Warn("quote cache read failed", "error", err)
		}
	}

	n, err := s.counter.Count(ctx, c)
	if err != nil {
		return 0, false, err
	}

	if s.cache != nil {
		if err := s.cache.SetJSON(ctx, key, n, CountTTL); err != nil {
			s.log.Warn("quote cache write failed", "error", err)
		}
	}
	return n, false, nil
}
