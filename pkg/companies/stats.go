package companies

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/easyprospect/api/pkg/models"
)

// statsGroupLimit caps the number of buckets returned per dimension
const statsGroupLimit = 20

// Stats aggregates the active dataset by sector, country, continent,
// Brazilian state and size.
func (r *Repository) Stats(ctx context.Context) (*models.CompanyStats, error) {
	stats := &models.CompanyStats{}

	if err := sqlx.GetContext(ctx, r.q, &stats.Total,
		r.q.Rebind("SELECT COUNT(*) FROM companies WHERE active = ?"), true); err != nil {
		return nil, fmt.Errorf("failed to count companies: %w", err)
	}

	groups := []struct {
		column string
		extra  string
		args   []any
		dest   *[]models.CountBucket
	}{
		{"sector", "", nil, &stats.BySector},
		{"country", "", nil, &stats.ByCountry},
		{"continent", "", nil, &stats.ByContinent},
		{"state", "AND country IN (?, ?)", []any{"Brazil", "Brasil"}, &stats.ByBrazilState},
		{"size", "", nil, &stats.BySize},
	}
	for _, g := range groups {
		query := fmt.Sprintf(
			`SELECT %[1]s AS value, COUNT(*) AS count FROM companies
			 WHERE active = ? AND %[1]s <> '' %[2]s
			 GROUP BY %[1]s ORDER BY count DESC, value ASC LIMIT %[3]d`,
			g.column, g.extra, statsGroupLimit)
		args := append([]any{true}, g.args...)

		buckets := []models.CountBucket{}
		if err := sqlx.SelectContext(ctx, r.q, &buckets, r.q.Rebind(query), args...); err != nil {
			return nil, fmt.Errorf("failed to group companies by %s: %w", g.column, err)
		}
		*g.dest = buckets
	}

	err := sqlx.GetContext(ctx, r.q, &stats.BusinessTypes, r.q.Rebind(`SELECT
		COALESCE(SUM(CASE WHEN is_importer THEN 1 ELSE 0 END), 0) AS importers,
		COALESCE(SUM(CASE WHEN is_exporter THEN 1 ELSE 0 END), 0) AS exporters,
		COALESCE(SUM(CASE WHEN is_distributor THEN 1 ELSE 0 END), 0) AS distributors,
		COALESCE(SUM(CASE WHEN is_manufacturer THEN 1 ELSE 0 END), 0) AS manufacturers,
		COALESCE(SUM(CASE WHEN is_retailer THEN 1 ELSE 0 END), 0) AS retailers,
		COALESCE(SUM(CASE WHEN is_wholesaler THEN 1 ELSE 0 END), 0) AS wholesalers
		FROM companies WHERE active = ?`), true)
	if err != nil {
		return nil, fmt.Errorf("failed to count business types: %w", err)
	}

	return stats, nil
}
