// Package jobs runs the scheduled maintenance of the company dataset.
package jobs

import (
	"context"
	"fmt"
	"sort"
	"time"

	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
)

// StatsSource recomputes dataset aggregates
type StatsSource interface {
	RefreshStats(ctx context.Context) (*models.CompanyStats, error)
}

// CountryCoverage is a country whose active records fall below the threshold
type CountryCoverage struct {
	Country  string `json:"country"`
	Count    int    `json:"count"`
	Priority int    `json:"priority"` // Higher = more urgent
}

// DataMonitor refreshes cached statistics and reports thin coverage
type DataMonitor struct {
	stats StatsSource
	cache *cache.Client
	log   logger.Logger
}

// NewDataMonitor creates a new data monitor instance. cacheClient may be nil.
func NewDataMonitor(stats StatsSource, cacheClient *cache.Client, log logger.Logger) *DataMonitor {
	return &DataMonitor{
		stats: stats,
		cache: cacheClient,
		log:   log.With("component", "jobs"),
	}
}

// RefreshStats recomputes the stats cache. When several API instances share
// Redis only one of them runs the refresh per window; skipped is true for the
// others.
func (m *DataMonitor) RefreshStats(ctx context.Context, window time.Duration) (stats *models.CompanyStats, skipped bool, err error) {
	if m.cache != nil {
		ok, err := m.cache.TryLock(ctx, m.lockKey("stats"), window)
		if err != nil {
			m.log.Warn("job lock unavailable, refreshing anyway", "error", err)
		} else if !ok {
			m.log.Debug("stats refresh already running elsewhere")
			return nil, true, nil
		}
	}

	start := time.Now()
	stats, err = m.stats.RefreshStats(ctx)
	if err != nil {
		return nil, false, fmt.Errorf("failed to refresh stats: %w", err)
	}
	m.log.Info("stats refreshed", "total", stats.Total, "duration", time.Since(start).String())
	return stats, false, nil
}

// LowCoverage returns the countries with fewer than threshold active records,
// thinnest first
func LowCoverage(stats *models.CompanyStats, threshold int) []CountryCoverage {
	var out []CountryCoverage
	for _, b := range stats.ByCountry {
		if b.Count < threshold {
			out = append(out, CountryCoverage{Country: b.Value, Count: b.Count, Priority: threshold - b.Count})
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		if out[i].Priority != out[j].Priority {
			return out[i].Priority > out[j].Priority
		}
		return out[i].Country < out[j].Country
	})
	return out
}

func (m *DataMonitor) lockKey(job string) string {
	return cache.PrefixJobLock + job
}
