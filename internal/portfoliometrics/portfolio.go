// Package portfoliometrics samples leasing portfolio gauges and pushes them to Prometheus.
package portfoliometrics

import (
	"context"
	"errors"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/shopspring/decimal"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type LeaseCounter interface {
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)
}

type UnitCounter interface {
	CountRentedUnits(ctx context.Context, db *gorm.DB) (int64, error)
}

type OutstandingSummer interface {
	SumOutstanding(ctx context.Context, db *gorm.DB) (decimal.Decimal, error)
}

// Portfolio owns a private registry so pushes never carry request metrics.
type Portfolio struct {
	db     *gorm.DB
	log    *zap.Logger
	leases LeaseCounter
	units  UnitCounter
	dues   OutstandingSummer
	pusher Pusher

	registry     *prometheus.Registry
	activeLeases prometheus.Gauge
	rentedUnits  prometheus.Gauge
	outstanding  prometheus.Gauge
}

func NewPortfolio(db *gorm.DB, log *zap.Logger, leases LeaseCounter, units UnitCounter, dues OutstandingSummer, pusher Pusher, constLabels prometheus.Labels) *Portfolio {
	if log == nil {
		log = zap.NewNop()
	}
	p := &Portfolio{
		db:       db,
		log:      log.Named("portfolio.metrics"),
		leases:   leases,
		units:    units,
		dues:     dues,
		pusher:   pusher,
		registry: prometheus.NewRegistry(),
		activeLeases: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leasing_active_leases",
			Help:        "Leases currently in the rent state and not stopped.",
			ConstLabels: constLabels,
		}),
		rentedUnits: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leasing_rented_units",
			Help:        "Floor units currently marked rented.",
			ConstLabels: constLabels,
		}),
		outstanding: prometheus.NewGauge(prometheus.GaugeOpts{
			Name:        "leasing_outstanding_rent_amount",
			Help:        "Scheduled rent not yet paid.",
			ConstLabels: constLabels,
		}),
	}
	p.registry.MustRegister(p.activeLeases, p.rentedUnits, p.outstanding)
	return p
}

func (p *Portfolio) Registry() *prometheus.Registry {
	if p == nil {
		return nil
	}
	return p.registry
}

// Collect refreshes every gauge. A failed source leaves its gauge untouched.
func (p *Portfolio) Collect(ctx context.Context) error {
	if p == nil {
		return nil
	}
	db := p.db.WithContext(ctx)
	var errs []error

	if p.leases != nil {
		if count, err := p.leases.CountActive(ctx, db); err != nil {
			errs = append(errs, err)
		} else {
			p.activeLeases.Set(float64(count))
		}
	}
	if p.units != nil {
		if count, err := p.units.CountRentedUnits(ctx, db); err != nil {
			errs = append(errs, err)
		} else {
			p.rentedUnits.Set(float64(count))
		}
	}
	if p.dues != nil {
		if amount, err := p.dues.SumOutstanding(ctx, db); err != nil {
			errs = append(errs, err)
		} else {
			p.outstanding.Set(amount.InexactFloat64())
		}
	}
	return errors.Join(errs...)
}

// Tick collects and pushes once. Errors are logged only.
func (p *Portfolio) Tick(ctx context.Context) {
	if p == nil {
		return
	}
	if err := p.Collect(ctx); err != nil {
		p.log.Warn("portfolio metrics collection incomplete", zap.Error(err))
	}
	if p.pusher == nil {
		return
	}
	if err := p.pusher.Push(ctx, p.registry); err != nil {
		p.log.Error("portfolio metrics push failed", zap.Error(err))
	}
}
