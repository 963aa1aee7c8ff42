package service

import (
	"context"
	"strings"

	"github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/masarmall/leasing/internal/observability/logger"
	"github.com/masarmall/leasing/internal/observability/metrics"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"
)

const maxConcurrentLookups = 8

type Params struct {
	fx.In

	Log     *zap.Logger
	Lookup  domain.PercentageLookup
	Metrics *metrics.Metrics `optional:"true"`
}

type Service struct {
	log     *zap.Logger
	lookup  domain.PercentageLookup
	metrics *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		log:     p.Log.Named("leaseline.service"),
		lookup:  p.Lookup,
		metrics: p.Metrics,
	}
}

func (s *Service) Recompute(ctx context.Context, lines []domain.LeaseLine) domain.LeaseDocument {
	refreshed := s.refreshPercentages(ctx, lines)
	doc := Recompute(refreshed)
	s.metrics.RecordLinesRecomputed(ctx, len(doc.Lines))
	return doc
}

// refreshPercentages pulls item percentages for percentage lines.
// Lookup failures and misses keep the line's current percentage.
func (s *Service) refreshPercentages(ctx context.Context, lines []domain.LeaseLine) []domain.LeaseLine {
	out := make([]domain.LeaseLine, len(lines))
	copy(out, lines)
	if s.lookup == nil {
		return out
	}

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(maxConcurrentLookups)
	for i := range out {
		ref := strings.TrimSpace(out[i].ItemReference)
		if out[i].IsFixedRateItem || ref == "" {
			continue
		}
		g.Go(func() error {
			pct, found, err := s.lookup.ServicePercentage(gctx, ref)
			if err != nil {
				logger.WithContext(gctx, s.log).Warn("service percentage lookup failed",
					zap.String("item_reference", ref),
					zap.Error(err),
				)
				return nil
			}
			if found && pct.GreaterThan(decimal.Zero) {
				out[i].ServicePercentage = domain.NewNumeric(pct)
			}
			return nil
		})
	}
	_ = g.Wait()
	return out
}
