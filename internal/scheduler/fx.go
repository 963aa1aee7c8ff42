package scheduler

import (
	"context"

	"github.com/masarmall/leasing/internal/config"
	obsmetrics "github.com/masarmall/leasing/internal/observability/metrics"
	"go.uber.org/fx"
)

// Module provides the scheduler without starting its loop.
var Module = fx.Module("scheduler",
	fx.Provide(ProvideConfig),
	fx.Provide(New),
)

// RunnerModule starts the scheduler loop with the application.
var RunnerModule = fx.Module("scheduler.runner",
	fx.Invoke(NewScheduler),
)

func NewScheduler(lc fx.Lifecycle, cfg config.Config, sched *Scheduler) {
	if !cfg.Scheduler.Enabled {
		return
	}
	obsmetrics.SchedulerWithConfig(obsmetrics.Config{
		ServiceName: cfg.AppName,
		Environment: cfg.Environment,
	})

	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			ctx, cancel := context.WithCancel(context.Background())

			go sched.RunForever(ctx)

			lc.Append(fx.Hook{
				OnStop: func(context.Context) error {
					cancel()
					return nil
				},
			})

			return nil
		},
	})
}
