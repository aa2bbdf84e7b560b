package jobs

import (
	"context"
	"time"

	"github.com/robfig/cron/v3"

	"github.com/easyprospect/api/pkg/logger"
)

// LowCoverageThreshold is the active-record count under which a country is reported
const LowCoverageThreshold = 100

// CronManager manages scheduled jobs
type CronManager struct {
	cron     *cron.Cron
	monitor  *DataMonitor
	log      logger.Logger
	schedule string
}

// NewCronManager creates a new cron manager. schedule is a standard five-field
// cron expression for the stats refresh.
func NewCronManager(monitor *DataMonitor, schedule string, log logger.Logger) *CronManager {
	return &CronManager{
		cron:     cron.New(),
		monitor:  monitor,
		log:      log.With("component", "cron"),
		schedule: schedule,
	}
}

// SetupJobs configures all scheduled jobs
func (cm *CronManager) SetupJobs() error {
	if _, err := cm.cron.AddFunc(cm.schedule, cm.refreshStats); err != nil {
		return err
	}
	cm.log.Info("cron jobs configured", "stats_refresh", cm.schedule)
	return nil
}

func (cm *CronManager) refreshStats() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	stats, skipped, err := cm.monitor.RefreshStats(ctx, time.Minute)
	if err != nil {
		cm.log.Error("stats refresh job failed", "error", err)
		return
	}
	if skipped {
		return
	}

	if low := LowCoverage(stats, LowCoverageThreshold); len(low) > 0 {
		cm.log.Warn("countries with low coverage", "count", len(low), "thinnest", low[0].Country)
	}
}

// Start starts the cron scheduler
func (cm *CronManager) Start() {
	cm.log.Info("starting cron scheduler")
	cm.cron.Start()
}

// Stop stops the scheduler and waits for a running job to finish
func (cm *CronManager) Stop() context.Context {
	cm.log.Info("stopping cron scheduler")
	return cm.cron.Stop()
}
