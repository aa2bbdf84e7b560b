package quote

import (
	"context"
	"errors"
	"strings"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/companies"
	"github.com/easyprospect/api/pkg/domain"
	"github.com/easyprospect/api/pkg/filter"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/testdata"
)

type fakeCounter struct {
	n     int
	err   error
	calls int
}

func (f *fakeCounter) Count(context.Context, filter.Criteria) (int, error) {
	f.calls++
	return f.n, f.err
}

func newCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestNew_CreditsEqualTotal(t *testing.T) {
	q := New(250, []string{"Brazil", "Germany"})

	assert.Equal(t, 250, q.Total)
	assert.Equal(t, q.Total, q.CreditsRequired)
	assert.True(t, decimal.RequireFromString("0.15").Equal(q.PricePerContact))
	assert.True(t, decimal.RequireFromString("37.50").Equal(q.TotalPrice))
}

func TestQuote_CountsOnlyActiveMatchesAndPricesByCountry(t *testing.T) {
	db := testdata.NewTestDB(t)
	testdata.SeedCompanies(t, db, testdata.CompanyGeneratorConfig{Count: 12, Country: "Brazil", Sectors: []string{"Retail"}, Seed: 10})
	testdata.SeedCompanies(t, db, testdata.CompanyGeneratorConfig{Count: 5, Country: "Brazil", Sectors: []string{"Textile"}, Seed: 11})
	testdata.SeedCompanies(t, db, testdata.CompanyGeneratorConfig{Count: 4, Country: "Brazil", Sectors: []string{"Retail"}, Seed: 12, Inactive: true})

	svc := NewService(companies.NewRepository(db.DB), nil, logger.Nop())

	q, err := svc.Quote(context.Background(), filter.Criteria{Countries: []string{"Brazil"}, Sectors: []string{"Retail"}})
	require.NoError(t, err)

	assert.Equal(t, 12, q.Total)
	assert.Equal(t, 12, q.CreditsRequired)
	assert.True(t, decimal.RequireFromString("0.08").Equal(q.PricePerContact))
	assert.True(t, decimal.RequireFromString("0.96").Equal(q.TotalPrice))
}

func TestQuote_NoCountriesUsesBaseline(t *testing.T) {
	svc := NewService(&fakeCounter{n: 10}, nil, logger.Nop())

	q, err := svc.Quote(context.Background(), filter.Criteria{})
	require.NoError(t, err)
	assert.True(t, decimal.RequireFromString("0.10").Equal(q.PricePerContact))
	assert.True(t, decimal.RequireFromString("1.00").Equal(q.TotalPrice))
}

func TestQuote_CachesCounts(t *testing.T) {
	counter := &fakeCounter{n: 42}
	cacheClient, mr := newCache(t)
	svc := NewService(counter, cacheClient, logger.Nop())
	ctx := context.Background()

	c := filter.Criteria{Countries: []string{"Chile", "Brazil"}}
	first, err := svc.Quote(ctx, c)
	require.NoError(t, err)
	second, err := svc.Quote(ctx, filter.Criteria{Countries: []string{"Brazil", "Chile"}})
	require.NoError(t, err)

	assert.Equal(t, 1, counter.calls, "equivalent filters share one cache entry")
	assert.Equal(t, first, second)

	mr.FastForward(CountTTL + 1)
	_, err = svc.Quote(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 2, counter.calls)
}

func TestQuote_CacheFailureFallsBackToDatabase(t *testing.T) {
	counter := &fakeCounter{n: 7}
	cacheClient, mr := newCache(t)
	mr.Close()

	svc := NewService(counter, cacheClient, logger.Nop())
	q, err := svc.Quote(context.Background(), filter.Criteria{})
	require.NoError(t, err)
	assert.Equal(t, 7, q.Total)
}

func TestQuote_PropagatesCountErrors(t *testing.T) {
	svc := NewService(&fakeCounter{err: errors.New("db down")}, nil, logger.Nop())

	_, err := svc.Quote(context.Background(), filter.Criteria{})
	assert.Error(t, err)
}

func TestQuote_RejectsInvalidCriteria(t *testing.T) {
	svc := NewService(&fakeCounter{}, nil, logger.Nop())

	_, err := svc.Quote(context.Background(), filter.Criteria{Search: strings.Repeat("x", 300)})
	assert.True(t, domain.IsValidation(err))
}

func TestFreshQuote_BypassesAndRefreshesCache(t *testing.T) {
	counter := &fakeCounter{n: 42}
	cacheClient, _ := newCache(t)
	svc := NewService(counter, cacheClient, logger.Nop())
	ctx := context.Background()
	c := filter.Criteria{Countries: []string{"Peru"}}

	_, err := svc.Quote(ctx, c)
	require.NoError(t, err)

	counter.n = 40
	stale, err := svc.Quote(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 42, stale.Total)

	fresh, err := svc.FreshQuote(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 40, fresh.Total)
	assert.Equal(t, 2, counter.calls)

	after, err := svc.Quote(ctx, c)
	require.NoError(t, err)
	assert.Equal(t, 40, after.Total)
	assert.Equal(t, 2, counter.calls)
}
