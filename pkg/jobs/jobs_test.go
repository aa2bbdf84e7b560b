package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/easyprospect/api/pkg/cache"
	"github.com/easyprospect/api/pkg/logger"
	"github.com/easyprospect/api/pkg/models"
)

type countingStats struct {
	calls atomic.Int32
	err   error
}

func (c *countingStats) RefreshStats(context.Context) (*models.CompanyStats, error) {
	c.calls.Add(1)
	if c.err != nil {
		return nil, c.err
	}
	return &models.CompanyStats{
		Total: 230,
		ByCountry: []models.CountBucket{
			{Value: "Brazil", Count: 200},
			{Value: "Portugal", Count: 20},
			{Value: "Chile", Count: 10},
		},
	}, nil
}

func newCache(t *testing.T) (*cache.Client, *miniredis.Miniredis) {
	mr := miniredis.RunT(t)
	c := &cache.Client{Redis: redis.NewClient(&redis.Options{Addr: mr.Addr()})}
	t.Cleanup(func() { c.Close() })
	return c, mr
}

func TestRefreshStats_OneRunPerWindow(t *testing.T) {
	src := &countingStats{}
	c, mr := newCache(t)
	m := NewDataMonitor(src, c, logger.Nop())
	ctx := context.Background()

	stats, skipped, err := m.RefreshStats(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.Equal(t, 230, stats.Total)

	_, skipped, err = m.RefreshStats(ctx, time.Minute)
	require.NoError(t, err)
	assert.True(t, skipped)
	assert.EqualValues(t, 1, src.calls.Load())

	mr.FastForward(time.Minute + time.Second)
	_, skipped, err = m.RefreshStats(ctx, time.Minute)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestRefreshStats_WithoutCache(t *testing.T) {
	src := &countingStats{}
	m := NewDataMonitor(src, nil, logger.Nop())

	for i := 0; i < 2; i++ {
		_, skipped, err := m.RefreshStats(context.Background(), time.Minute)
		require.NoError(t, err)
		assert.False(t, skipped)
	}
	assert.EqualValues(t, 2, src.calls.Load())
}

func TestRefreshStats_RedisDownStillRefreshes(t *testing.T) {
	src := &countingStats{}
	c, mr := newCache(t)
	mr.Close()

	m := NewDataMonitor(src, c, logger.Nop())
	_, skipped, err := m.RefreshStats(context.Background(), time.Minute)
	require.NoError(t, err)
	assert.False(t, skipped)
	assert.EqualValues(t, 1, src.calls.Load())
}

func TestRefreshStats_Error(t *testing.T) {
	m := NewDataMonitor(&countingStats{err: errors.New("db gone")}, nil, logger.Nop())
	_, _, err := m.RefreshStats(context.Background(), time.Minute)
	assert.ErrorContains(t, err, "db gone")
}

func TestLowCoverage(t *testing.T) {
	stats, err := (&countingStats{}).RefreshStats(context.Background())
	require.NoError(t, err)

	low := LowCoverage(stats, 100)
	require.Len(t, low, 2)
	assert.Equal(t, "Chile", low[0].Country)
	assert.Equal(t, 90, low[0].Priority)
	assert.Equal(t, "Portugal", low[1].Country)

	assert.Empty(t, LowCoverage(stats, 5))
}

func TestCronManager_SetupJobs(t *testing.T) {
	m := NewDataMonitor(&countingStats{}, nil, logger.Nop())

	require.NoError(t, NewCronManager(m, "*/15 * * * *", logger.Nop()).SetupJobs())
	assert.Error(t, NewCronManager(m, "every now and then", logger.Nop()).SetupJobs())
}

func TestCronManager_RefreshJob(t *testing.T) {
	src := &countingStats{}
	cm := NewCronManager(NewDataMonitor(src, nil, logger.Nop()), "@hourly", logger.Nop())

	cm.refreshStats()
	assert.EqualValues(t, 1, src.calls.Load())

	cm.Start()
	<-cm.Stop().Done()
}
