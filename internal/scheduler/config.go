package scheduler

import (
	"time"

	"github.com/masarmall/leasing/internal/config"
)

// Config controls scheduler intervals and batch sizes.
type Config struct {
	RunInterval         time.Duration
	JobTimeout          time.Duration
	LockTTL             time.Duration
	InvoiceBatchSize    int
	StatusSyncBatchSize int
	EnabledJobs         []string
}

func DefaultConfig() Config {
	return Config{
		RunInterval:         time.Hour,
		JobTimeout:          2 * time.Minute,
		LockTTL:             5 * time.Minute,
		InvoiceBatchSize:    200,
		StatusSyncBatchSize: 500,
	}
}

func (c Config) withDefaults() Config {
	defaults := DefaultConfig()
	if c.RunInterval <= 0 {
		c.RunInterval = defaults.RunInterval
	}
	if c.JobTimeout <= 0 {
		c.JobTimeout = defaults.JobTimeout
	}
	if c.LockTTL <= 0 {
		c.LockTTL = defaults.LockTTL
	}
	if c.InvoiceBatchSize <= 0 {
		c.InvoiceBatchSize = defaults.InvoiceBatchSize
	}
	if c.StatusSyncBatchSize <= 0 {
		c.StatusSyncBatchSize = defaults.StatusSyncBatchSize
	}
	return c
}

// ProvideConfig maps SCHEDULER_* settings onto the scheduler config.
func ProvideConfig(cfg config.Config) Config {
	sc := cfg.Scheduler
	out := Config{
		RunInterval:         time.Duration(sc.RunIntervalSeconds) * time.Second,
		JobTimeout:          time.Duration(sc.JobTimeoutSeconds) * time.Second,
		LockTTL:             time.Duration(sc.LockTTLSeconds) * time.Second,
		InvoiceBatchSize:    sc.InvoiceBatchSize,
		StatusSyncBatchSize: sc.StatusSyncBatchSize,
	}
	if sc.InvoiceJobEnabled {
		out.EnabledJobs = append(out.EnabledJobs, JobLeaseInvoiceDue)
	}
	if sc.StatusSyncEnabled {
		out.EnabledJobs = append(out.EnabledJobs, JobLeaseInvoiceStatusSync)
	}
	if len(out.EnabledJobs) == 0 {
		out.EnabledJobs = []string{jobNone}
	}
	return out.withDefaults()
}
