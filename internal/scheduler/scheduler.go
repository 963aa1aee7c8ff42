package scheduler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/clock"
	leaseinvoicedomain "github.com/masarmall/leasing/internal/leaseinvoice/domain"
	obsmetrics "github.com/masarmall/leasing/internal/observability/metrics"
	"github.com/masarmall/leasing/internal/ratelimit"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

const (
	JobLeaseInvoiceDue        = "lease_invoice_due"
	JobLeaseInvoiceStatusSync = "lease_invoice_status_sync"

	jobNone = "none"
)

var (
	ErrInvalidConfig = errors.New("invalid_scheduler_config")
	ErrUnknownJob    = errors.New("unknown_job")
)

type Params struct {
	fx.In

	Log        *zap.Logger
	GenID      *snowflake.Node
	Clock      clock.Clock
	InvoiceSvc leaseinvoicedomain.Service
	Locker     *ratelimit.Locker `optional:"true"`
	Config     Config            `optional:"true"`
}

type Scheduler struct {
	log        *zap.Logger
	cfg        Config
	genID      *snowflake.Node
	clock      clock.Clock
	invoiceSvc leaseinvoicedomain.Service
	locker     *ratelimit.Locker
}

// JobResult reports the outcome of a manually triggered job.
type JobResult struct {
	Job        string `json:"job"`
	RunID      string `json:"run_id"`
	Processed  int    `json:"processed"`
	Errors     int    `json:"errors"`
	DurationMS int64  `json:"duration_ms"`
}

func New(p Params) (*Scheduler, error) {
	if p.Log == nil || p.GenID == nil || p.Clock == nil || p.InvoiceSvc == nil {
		return nil, ErrInvalidConfig
	}
	return &Scheduler{
		log:        p.Log.Named("scheduler").With(zap.String("component", "scheduler")),
		cfg:        p.Config.withDefaults(),
		genID:      p.GenID,
		clock:      p.Clock,
		invoiceSvc: p.InvoiceSvc,
		locker:     p.Locker,
	}, nil
}

func (s *Scheduler) runJob(
	parent context.Context,
	name string,
	batchSize int,
	timeout time.Duration,
	fn func(ctx context.Context) error,
) error {
	start := s.clock.Now()
	ctx, cancel := context.WithTimeout(parent, timeout)
	defer cancel()

	ctx, run, owner := s.ensureJobRun(ctx, name, batchSize)
	if owner {
		s.logJobStart(ctx, run)
	}
	log := s.logger(ctx).With(
		zap.String("job", name),
		zap.String("run_id", run.runID),
	)
	schedMetrics := obsmetrics.Scheduler()
	schedMetrics.IncJobRun(name)

	lockStart := time.Now()
	err := s.locker.WithJobLock(ctx, name, s.cfg.LockTTL, func(ctx context.Context) error {
		schedMetrics.ObserveLockWait(name, time.Since(lockStart))
		return fn(ctx)
	})
	schedMetrics.ObserveJobDuration(name, s.clock.Now().Sub(start))
	if errors.Is(err, ratelimit.ErrLockHeld) {
		schedMetrics.IncBatchDeferred(name, obsmetrics.SchedulerBatchDeferredReasonLockHeld)
		log.Info("job skipped, lock held by another instance")
		err = nil
	}
	if owner {
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
	}
	if err == nil {
		return nil
	}

	// deadline is a soft timeout: the next tick resumes the work
	isTimeout := errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled)
	if isTimeout {
		schedMetrics.IncJobTimeout(name)
	}
	schedMetrics.IncJobError(name, err)
	if isTimeout {
		log.Warn("job timed out",
			zap.Duration("timeout", timeout),
			zap.Error(err),
		)
		return nil
	}

	return fmt.Errorf("%s: %w", name, err)
}

type job struct {
	Name      string
	BatchSize int
	Run       func(context.Context) error
}

func (s *Scheduler) jobs() []job {
	return []job{
		{JobLeaseInvoiceDue, s.cfg.InvoiceBatchSize, s.LeaseInvoiceDueJob},
		{JobLeaseInvoiceStatusSync, s.cfg.StatusSyncBatchSize, s.LeaseInvoiceStatusSyncJob},
	}
}

func (s *Scheduler) RunOnce(parent context.Context) error {
	var err error
	for _, j := range s.jobs() {
		if !s.isJobEnabled(j.Name) {
			continue
		}
		err = errors.Join(err, s.runJob(parent, j.Name, j.BatchSize, s.cfg.JobTimeout, j.Run))
	}
	return err
}

// RunJob runs one named job immediately, regardless of EnabledJobs.
func (s *Scheduler) RunJob(parent context.Context, name string) (JobResult, error) {
	name = strings.TrimSpace(strings.ToLower(name))
	for _, j := range s.jobs() {
		if j.Name != name {
			continue
		}
		ctx, run, _ := s.ensureJobRun(parent, j.Name, j.BatchSize)
		s.logJobStart(ctx, run)
		err := s.runJob(ctx, j.Name, j.BatchSize, s.cfg.JobTimeout, j.Run)
		if err != nil && run.errorCount == 0 {
			run.IncError()
		}
		s.logJobFinish(ctx, run)
		return JobResult{
			Job:        j.Name,
			RunID:      run.runID,
			Processed:  run.processedCount,
			Errors:     run.errorCount,
			DurationMS: time.Since(run.startedAt).Milliseconds(),
		}, err
	}
	return JobResult{}, ErrUnknownJob
}

func (s *Scheduler) RunForever(ctx context.Context) {
	ticker := time.NewTicker(s.cfg.RunInterval)
	defer ticker.Stop()
	nextRun := s.clock.Now().Add(s.cfg.RunInterval)
	schedMetrics := obsmetrics.Scheduler()

	for {
		runLag := s.clock.Now().Sub(nextRun)
		if runLag > 0 {
			schedMetrics.ObserveRunLoopLag(runLag)
		}
		if err := s.RunOnce(ctx); err != nil {
			s.log.Warn("scheduler run failed", zap.Error(err))
		}
		nextRun = nextRun.Add(s.cfg.RunInterval)

		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
		}
	}
}

func (s *Scheduler) isJobEnabled(jobName string) bool {
	// empty means every job runs
	if len(s.cfg.EnabledJobs) == 0 {
		return true
	}
	for _, enabled := range s.cfg.EnabledJobs {
		if strings.EqualFold(enabled, jobName) {
			return true
		}
	}
	return false
}

// LeaseInvoiceDueJob bills schedule entries whose period has started.
func (s *Scheduler) LeaseInvoiceDueJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, JobLeaseInvoiceDue, s.cfg.InvoiceBatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	today := clock.Today(s.clock)

	result, err := s.invoiceSvc.CreateDueInvoices(ctx, today, s.cfg.InvoiceBatchSize)
	run.AddProcessed(result.Created)
	obsmetrics.Scheduler().AddBatchProcessed(JobLeaseInvoiceDue, obsmetrics.ResourceLeaseInvoices, result.Created)
	if result.Leases == 0 && err == nil {
		obsmetrics.Scheduler().IncBatchDeferred(JobLeaseInvoiceDue, obsmetrics.SchedulerBatchDeferredReasonEmpty)
	}
	for i := 0; i < result.Failed; i++ {
		run.IncError()
	}
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.lease_invoice.failed", JobLeaseInvoiceDue, err)
		return err
	}
	s.logger(ctx).Debug("scheduler.lease_invoice.batch",
		zap.Time("as_of", today),
		zap.Int("leases", result.Leases),
		zap.Int("created", result.Created),
		zap.Int("skipped", result.Skipped),
		zap.Int("failed", result.Failed),
	)
	return nil
}

// LeaseInvoiceStatusSyncJob copies invoice statuses back onto schedule entries.
func (s *Scheduler) LeaseInvoiceStatusSyncJob(ctx context.Context) error {
	ctx, run, owner := s.ensureJobRun(ctx, JobLeaseInvoiceStatusSync, s.cfg.StatusSyncBatchSize)
	if owner {
		s.logJobStart(ctx, run)
		defer s.logJobFinish(ctx, run)
	}
	today := clock.Today(s.clock)

	updated, err := s.invoiceSvc.SyncStatuses(ctx, today, s.cfg.StatusSyncBatchSize)
	run.AddProcessed(updated)
	obsmetrics.Scheduler().AddBatchProcessed(JobLeaseInvoiceStatusSync, obsmetrics.ResourceScheduleEntry, updated)
	if err != nil {
		s.logSchedulerError(ctx, run, "scheduler.status_sync.failed", JobLeaseInvoiceStatusSync, err)
		return err
	}
	return nil
}
