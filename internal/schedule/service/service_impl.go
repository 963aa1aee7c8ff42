package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/observability/logger"
	"github.com/masarmall/leasing/internal/observability/metrics"
	"github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

const (
	renderOutcomeRendered = "rendered"
	renderOutcomeEmpty    = "empty"
	renderOutcomeFailed   = "failed"
)

type Params struct {
	fx.In

	DB       *gorm.DB
	Log      *zap.Logger
	GenID    *snowflake.Node
	Repo     domain.Repository
	Settings *config.LeaseSettingsHolder `optional:"true"`
	Metrics  *metrics.Metrics            `optional:"true"`
}

type Service struct {
	db       *gorm.DB
	log      *zap.Logger
	genID    *snowflake.Node
	repo     domain.Repository
	settings *config.LeaseSettingsHolder
	metrics  *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:       p.DB,
		log:      p.Log.Named("schedule.service"),
		genID:    p.GenID,
		repo:     p.Repo,
		settings: p.Settings,
		metrics:  p.Metrics,
	}
}

func (s *Service) Generate(ctx context.Context, tx *gorm.DB, leaseID snowflake.ID, plan domain.Plan) (domain.Schedule, []domain.ScheduleEntry, error) {
	if tx == nil {
		tx = s.db
	}
	entries, err := BuildEntries(plan)
	if err != nil {
		return domain.Schedule{}, nil, err
	}

	existing, err := s.repo.FindByLease(ctx, tx, leaseID)
	if err != nil {
		return domain.Schedule{}, nil, fmt.Errorf("find schedule: %w", err)
	}
	if existing != nil {
		return domain.Schedule{}, nil, domain.ErrScheduleExists
	}

	now := time.Now().UTC()
	schedule := domain.Schedule{
		ID:          s.genID.Generate(),
		LeaseID:     leaseID,
		EntryCount:  len(entries),
		TotalAmount: decimal.Zero,
		CreatedAt:   now,
	}
	rows := make([]*domain.ScheduleEntry, 0, len(entries))
	for i, entry := range entries {
		schedule.TotalAmount = schedule.TotalAmount.Add(entry.Amount)
		rows = append(rows, &domain.ScheduleEntry{
			ID:          s.genID.Generate(),
			ScheduleID:  schedule.ID,
			LeaseID:     leaseID,
			Seq:         i + 1,
			PeriodStart: entry.PeriodStart,
			PeriodEnd:   entry.PeriodEnd,
			Amount:      entry.Amount,
			IsAllowance: entry.IsAllowance,
			Tax:         entry.Tax,
			CreatedAt:   now,
			UpdatedAt:   now,
		})
	}

	if err := s.repo.InsertSchedule(ctx, tx, &schedule, rows); err != nil {
		return domain.Schedule{}, nil, fmt.Errorf("insert schedule: %w", err)
	}

	out := make([]domain.ScheduleEntry, 0, len(rows))
	for _, row := range rows {
		out = append(out, *row)
	}
	return schedule, out, nil
}

func (s *Service) GetByLease(ctx context.Context, leaseID string) (domain.Rendered, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(leaseID))
	if err != nil || id == 0 {
		return domain.Rendered{}, domain.ErrInvalidID
	}

	label := s.settings.Get().AllowanceLabel
	log := logger.WithContext(ctx, s.log).With(zap.String("lease_id", id.String()))

	schedule, err := s.repo.FindByLease(ctx, s.db, id)
	if err != nil {
		log.Warn("schedule fetch failed", zap.Error(err))
		s.metrics.RecordScheduleRendered(ctx, renderOutcomeFailed)
		return Render(id.String(), nil, label), nil
	}
	if schedule == nil {
		s.metrics.RecordScheduleRendered(ctx, renderOutcomeEmpty)
		return Render(id.String(), nil, label), nil
	}

	stored, err := s.repo.ListEntries(ctx, s.db, id)
	if err != nil {
		log.Warn("schedule entries fetch failed", zap.Error(err))
		s.metrics.RecordScheduleRendered(ctx, renderOutcomeFailed)
		return Render(id.String(), nil, label), nil
	}

	rendered := Render(id.String(), toEntries(stored), label)
	if rendered.Empty {
		s.metrics.RecordScheduleRendered(ctx, renderOutcomeEmpty)
	} else {
		s.metrics.RecordScheduleRendered(ctx, renderOutcomeRendered)
	}
	return rendered, nil
}

func toEntries(stored []*domain.ScheduleEntry) []domain.Entry {
	entries := make([]domain.Entry, 0, len(stored))
	for _, row := range stored {
		if row == nil {
			continue
		}
		entries = append(entries, domain.Entry{
			PeriodStart:   row.PeriodStart,
			PeriodEnd:     row.PeriodEnd,
			Amount:        row.Amount,
			IsAllowance:   row.IsAllowance,
			Tax:           row.Tax,
			InvoiceNumber: row.InvoiceNumber,
			InvoiceStatus: row.InvoiceStatus,
		})
	}
	return entries
}
