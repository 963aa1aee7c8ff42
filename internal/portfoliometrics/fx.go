package portfoliometrics

import (
	"context"
	"time"

	"github.com/masarmall/leasing/internal/config"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
	propertydomain "github.com/masarmall/leasing/internal/property/domain"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const defaultInterval = 15 * time.Minute

type Params struct {
	fx.In

	Cfg       config.Config
	DB        *gorm.DB
	Log       *zap.Logger
	Leases    leasecontractdomain.Repository
	Units     propertydomain.Repository
	Schedules scheduledomain.Repository
}

var Module = fx.Module("portfolio.metrics",
	fx.Provide(NewPusher),
	fx.Provide(func(p Params, pusher Pusher) *Portfolio {
		if !p.Cfg.PortfolioMetrics.Enabled {
			return nil
		}
		return NewPortfolio(p.DB, p.Log, p.Leases, p.Units, p.Schedules, pusher, prometheus.Labels{
			"service": p.Cfg.AppName,
			"env":     p.Cfg.Environment,
		})
	}),
	fx.Invoke(func(lc fx.Lifecycle, cfg config.Config, portfolio *Portfolio, log *zap.Logger) {
		if portfolio == nil {
			return
		}
		interval := time.Duration(cfg.PortfolioMetrics.IntervalSeconds) * time.Second
		if interval <= 0 {
			interval = defaultInterval
		}

		ctx, cancel := context.WithCancel(context.Background())
		done := make(chan struct{})
		lc.Append(fx.Hook{
			OnStart: func(context.Context) error {
				log.Info("starting portfolio metrics worker", zap.Duration("interval", interval))
				go func() {
					defer close(done)
					ticker := time.NewTicker(interval)
					defer ticker.Stop()

					portfolio.Tick(ctx)
					for {
						select {
						case <-ticker.C:
							portfolio.Tick(ctx)
						case <-ctx.Done():
							return
						}
					}
				}()
				return nil
			},
			OnStop: func(stopCtx context.Context) error {
				cancel()
				select {
				case <-done:
				case <-stopCtx.Done():
				}
				return nil
			},
		})
	}),
)
