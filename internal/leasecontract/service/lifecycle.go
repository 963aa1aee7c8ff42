package service

import (
	"context"
	"encoding/json"
	"fmt"
	"time"

	"github.com/masarmall/leasing/internal/leasecontract/domain"
	"github.com/masarmall/leasing/internal/observability/logger"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

// Submit generates the rent schedule and moves a draft lease to rent.
func (s *Service) Submit(ctx context.Context, id string) (domain.LeaseContract, error) {
	leaseID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.LeaseContract{}, err
	}

	var submitted domain.LeaseContract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lease, err := s.load(ctx, tx, leaseID)
		if err != nil {
			return err
		}
		if lease.Status != domain.StatusDraft {
			return domain.ErrLeaseNotDraft
		}
		if len(lease.Details) == 0 {
			return domain.ErrDetailsRequired
		}

		var template *domain.TaxTemplate
		if lease.TaxTemplateID != nil {
			template, err = s.repo.FindTaxTemplate(ctx, tx, *lease.TaxTemplateID)
			if err != nil {
				return err
			}
		}

		_, entries, err := s.schedules.Generate(ctx, tx, lease.ID, scheduledomain.Plan{
			LeaseStart:      lease.LeaseStart,
			LeaseEnd:        lease.LeaseEnd,
			AllowanceMonths: lease.AllowancePeriod,
			InPeriod:        lease.InPeriod,
			IntervalMonths:  s.settings.Get().IntervalMonths(lease.PayType),
			PaidMonths:      lease.PaidMonths,
			MonthlyTotal:    lease.TotalAmount,
			TaxFlag:         domain.TaxFlag(lease.IncludeVAT, template),
		})
		if err != nil {
			return fmt.Errorf("generate schedule: %w", err)
		}

		ok, err := s.repo.UpdateStatus(ctx, tx, lease.ID, domain.StatusDraft, domain.StatusRent, false)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrLeaseNotDraft
		}
		lease.Status = domain.StatusRent

		var first *scheduledomain.ScheduleEntry
		if len(entries) > 0 {
			first = &entries[0]
		}
		if err := s.writeLog(ctx, tx, lease, domain.LogActionSubmit, first); err != nil {
			return err
		}
		submitted = lease
		return nil
	})
	if err != nil {
		return domain.LeaseContract{}, err
	}

	s.metrics.RecordLeaseTransition(ctx, domain.StatusDraft, domain.StatusRent)
	logger.WithContext(ctx, s.log).Info("lease submitted",
		zap.String("lease_id", submitted.ID.String()),
		zap.Int("paid_months", submitted.PaidMonths),
	)
	return submitted, nil
}

func (s *Service) Terminate(ctx context.Context, id string) (domain.LeaseContract, error) {
	return s.stop(ctx, id, domain.StatusTerminated, domain.LogActionTerminate)
}

func (s *Service) LegalCase(ctx context.Context, id string) (domain.LeaseContract, error) {
	return s.stop(ctx, id, domain.StatusLegalCase, domain.LogActionLegalCase)
}

// stop moves a running lease to a terminal status and halts its invoicing.
func (s *Service) stop(ctx context.Context, id, status, action string) (domain.LeaseContract, error) {
	leaseID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.LeaseContract{}, err
	}

	var stopped domain.LeaseContract
	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		lease, err := s.load(ctx, tx, leaseID)
		if err != nil {
			return err
		}
		if lease.Status != domain.StatusRent {
			return domain.ErrLeaseNotRunning
		}
		ok, err := s.repo.UpdateStatus(ctx, tx, lease.ID, domain.StatusRent, status, true)
		if err != nil {
			return err
		}
		if !ok {
			return domain.ErrLeaseNotRunning
		}
		lease.Status = status
		lease.IsStopped = true
		if err := s.writeLog(ctx, tx, lease, action, nil); err != nil {
			return err
		}
		stopped = lease
		return nil
	})
	if err != nil {
		return domain.LeaseContract{}, err
	}

	s.metrics.RecordLeaseTransition(ctx, domain.StatusRent, status)
	logger.WithContext(ctx, s.log).Info("lease stopped",
		zap.String("lease_id", stopped.ID.String()),
		zap.String("status", status),
	)
	return stopped, nil
}

// Renew drafts a follow-up lease that starts where the running one ends.
func (s *Service) Renew(ctx context.Context, id string, req domain.RenewLeaseRequest) (domain.LeaseContract, error) {
	leaseID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	lease, err := s.load(ctx, s.db, leaseID)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	if lease.Status != domain.StatusRent {
		return domain.LeaseContract{}, domain.ErrLeaseNotRunning
	}

	details := make([]domain.DetailInput, 0, len(lease.Details))
	for _, detail := range lease.Details {
		input := domain.DetailInput{LeaseLine: detail.Line()}
		if detail.FloorUnitID != nil {
			input.FloorUnitID = detail.FloorUnitID.String()
		}
		details = append(details, input)
	}

	next := domain.UpsertLeaseRequest{
		Tenant:          lease.Tenant,
		PropertyID:      lease.PropertyID.String(),
		LeaseStart:      lease.LeaseEnd.Format(domain.DateLayout),
		LeaseEnd:        req.LeaseEnd,
		PayType:         lease.PayType,
		AllowancePeriod: lease.AllowancePeriod,
		InPeriod:        lease.InPeriod,
		IncludeVAT:      lease.IncludeVAT,
		Details:         details,
	}
	if lease.FloorID != nil {
		next.FloorID = lease.FloorID.String()
	}
	if lease.TaxTemplateID != nil {
		next.TaxTemplateID = lease.TaxTemplateID.String()
	}

	renewed, err := s.create(ctx, next, &lease.ID)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	logger.WithContext(ctx, s.log).Info("lease renewed",
		zap.String("lease_id", lease.ID.String()),
		zap.String("renewal_id", renewed.ID.String()),
	)
	return renewed, nil
}

func (s *Service) writeLog(ctx context.Context, tx *gorm.DB, lease domain.LeaseContract, action string, first *scheduledomain.ScheduleEntry) error {
	snapshot := domain.LogSnapshot{
		Tenant:      lease.Tenant,
		PropertyID:  lease.PropertyID.String(),
		LeaseStart:  formatDate(&lease.LeaseStart),
		LeaseEnd:    formatDate(&lease.LeaseEnd),
		Status:      lease.Status,
		TotalAmount: lease.TotalAmount,
		Details:     len(lease.Details),
	}
	if len(lease.Details) > 0 {
		detail := lease.Details[0]
		snapshot.FirstDetail = &detail
	}
	if first != nil {
		snapshot.FirstPeriod = &domain.SnapshotPeriod{
			PeriodStart: formatDate(first.PeriodStart),
			PeriodEnd:   formatDate(first.PeriodEnd),
			Amount:      first.Amount,
			IsAllowance: first.IsAllowance,
		}
	}
	payload, err := json.Marshal(snapshot)
	if err != nil {
		return err
	}
	return s.repo.InsertLog(ctx, tx, &domain.LeaseContractLog{
		ID:        s.genID.Generate(),
		LeaseID:   lease.ID,
		Action:    action,
		Status:    lease.Status,
		Snapshot:  datatypes.JSON(payload),
		CreatedAt: time.Now().UTC(),
	})
}
