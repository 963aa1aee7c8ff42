package service

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/config"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
	"github.com/masarmall/leasing/internal/leaseinvoice/domain"
	"github.com/masarmall/leasing/internal/observability/logger"
	"github.com/masarmall/leasing/internal/observability/metrics"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"github.com/oklog/ulid/v2"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

const (
	invoiceNumberPrefix = "LINV-"
	sourceScheduler     = "scheduler"
)

type Params struct {
	fx.In

	DB        *gorm.DB
	Log       *zap.Logger
	GenID     *snowflake.Node
	Repo      domain.Repository
	Leases    leasecontractdomain.Repository
	Schedules scheduledomain.Repository
	Settings  *config.LeaseSettingsHolder `optional:"true"`
	Metrics   *metrics.Metrics            `optional:"true"`
}

type Service struct {
	db        *gorm.DB
	log       *zap.Logger
	genID     *snowflake.Node
	repo      domain.Repository
	leases    leasecontractdomain.Repository
	schedules scheduledomain.Repository
	settings  *config.LeaseSettingsHolder
	metrics   *metrics.Metrics
	newNumber func() string
}

func New(p Params) domain.Service {
	return &Service{
		db:        p.DB,
		log:       p.Log.Named("leaseinvoice.service"),
		genID:     p.GenID,
		repo:      p.Repo,
		leases:    p.Leases,
		schedules: p.Schedules,
		settings:  p.Settings,
		metrics:   p.Metrics,
		newNumber: func() string { return invoiceNumberPrefix + ulid.Make().String() },
	}
}

func (s *Service) CreateDueInvoices(ctx context.Context, today time.Time, limit int) (domain.DueRunResult, error) {
	var result domain.DueRunResult
	leases, err := s.leases.ListBillable(ctx, s.db, today, limit)
	if err != nil {
		return result, fmt.Errorf("list billable leases: %w", err)
	}
	result.Leases = len(leases)

	itemCode := s.settings.Get().DefaultRentItem
	for _, lease := range leases {
		if err := ctx.Err(); err != nil {
			return result, err
		}
		if lease == nil {
			continue
		}
		entries, err := s.schedules.ListDueEntries(ctx, s.db, lease.ID, today)
		if err != nil {
			return result, fmt.Errorf("list due entries: %w", err)
		}
		rates := s.taxRates(ctx, lease)

		for _, entry := range entries {
			err := s.invoiceEntry(ctx, lease, entry, itemCode, rates)
			switch {
			case err == nil:
				result.Created++
				s.metrics.RecordInvoiceCreated(ctx, sourceScheduler)
			case errors.Is(err, scheduledomain.ErrEntryAlreadyStamp):
				result.Skipped++
			default:
				result.Failed++
				logger.WithContext(ctx, s.log).Warn("lease invoice creation failed",
					zap.String("lease_id", lease.ID.String()),
					zap.String("schedule_entry_id", entry.ID.String()),
					zap.Error(err),
				)
			}
		}
	}
	return result, nil
}

// invoiceEntry bills one schedule entry in its own transaction.
func (s *Service) invoiceEntry(ctx context.Context, lease *leasecontractdomain.LeaseContract, entry *scheduledomain.ScheduleEntry, itemCode string, rates []leasecontractdomain.TaxRate) error {
	if entry == nil || entry.PeriodStart == nil {
		return scheduledomain.ErrEntryAlreadyStamp
	}
	dueDate := *entry.PeriodStart
	if entry.PeriodEnd != nil {
		dueDate = *entry.PeriodEnd
	}

	taxes := []leasecontractdomain.TaxAmount{}
	taxTotal := decimal.Zero
	if entry.Tax == scheduledomain.TaxTaxable {
		taxes, taxTotal = leasecontractdomain.ComputeTaxes(rates, entry.Amount)
	}
	metadata, err := json.Marshal(map[string]any{
		"tax_flag": entry.Tax,
		"taxes":    taxes,
	})
	if err != nil {
		return err
	}

	now := time.Now().UTC()
	invoice := domain.LeaseInvoice{
		ID:              s.genID.Generate(),
		InvoiceNumber:   s.newNumber(),
		LeaseID:         lease.ID,
		ScheduleEntryID: entry.ID,
		Tenant:          lease.Tenant,
		ItemCode:        itemCode,
		PostingDate:     *entry.PeriodStart,
		DueDate:         dueDate,
		Amount:          entry.Amount,
		TaxAmount:       taxTotal,
		GrandTotal:      entry.Amount.Add(taxTotal),
		Status:          domain.StatusDraft,
		Metadata:        datatypes.JSON(metadata),
		CreatedAt:       now,
		UpdatedAt:       now,
	}

	return s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		stamped, err := s.schedules.StampInvoice(ctx, tx, entry.ID, invoice.InvoiceNumber, invoice.Status)
		if err != nil {
			return err
		}
		if !stamped {
			return scheduledomain.ErrEntryAlreadyStamp
		}
		return s.repo.Insert(ctx, tx, &invoice)
	})
}

// taxRates loads the lease's template rates. Failures bill without tax.
func (s *Service) taxRates(ctx context.Context, lease *leasecontractdomain.LeaseContract) []leasecontractdomain.TaxRate {
	if !lease.IncludeVAT || lease.TaxTemplateID == nil {
		return nil
	}
	template, err := s.leases.FindTaxTemplate(ctx, s.db, *lease.TaxTemplateID)
	if err != nil || template == nil {
		logger.WithContext(ctx, s.log).Warn("tax template unavailable",
			zap.String("lease_id", lease.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	rates, err := template.Rates()
	if err != nil {
		logger.WithContext(ctx, s.log).Warn("tax template unreadable",
			zap.String("tax_template_id", template.ID.String()),
			zap.Error(err),
		)
		return nil
	}
	return rates
}

func (s *Service) SyncStatuses(ctx context.Context, today time.Time, limit int) (int, error) {
	invoices, err := s.repo.ListPostedBefore(ctx, s.db, today, limit)
	if err != nil {
		return 0, fmt.Errorf("list posted invoices: %w", err)
	}
	updated := 0
	for _, invoice := range invoices {
		if err := ctx.Err(); err != nil {
			return updated, err
		}
		if invoice == nil {
			continue
		}
		n, err := s.schedules.SetInvoiceStatus(ctx, s.db, invoice.InvoiceNumber, invoice.Status)
		if err != nil {
			return updated, fmt.Errorf("sync invoice %s: %w", invoice.InvoiceNumber, err)
		}
		updated += int(n)
	}
	return updated, nil
}

func (s *Service) UpdateStatus(ctx context.Context, id string, req domain.UpdateStatusRequest) (domain.LeaseInvoice, error) {
	invoiceID, err := parseID(id)
	if err != nil {
		return domain.LeaseInvoice{}, err
	}
	status := strings.ToLower(strings.TrimSpace(req.Status))
	if !domain.KnownStatus(status) {
		return domain.LeaseInvoice{}, domain.ErrInvalidStatus
	}

	invoice, err := s.repo.FindByID(ctx, s.db, invoiceID)
	if err != nil {
		return domain.LeaseInvoice{}, err
	}
	if invoice == nil {
		return domain.LeaseInvoice{}, domain.ErrNotFound
	}
	if invoice.Status == status {
		return *invoice, nil
	}
	if !domain.CanTransition(invoice.Status, status) {
		return domain.LeaseInvoice{}, domain.ErrInvalidStatusTransition
	}

	ok, err := s.repo.UpdateStatus(ctx, s.db, invoice.ID, invoice.Status, status)
	if err != nil {
		return domain.LeaseInvoice{}, err
	}
	if !ok {
		return domain.LeaseInvoice{}, domain.ErrInvalidStatusTransition
	}
	logger.WithContext(ctx, s.log).Info("lease invoice status updated",
		zap.String("invoice_number", invoice.InvoiceNumber),
		zap.String("from_status", invoice.Status),
		zap.String("to_status", status),
	)
	invoice.Status = status
	return *invoice, nil
}

func (s *Service) List(ctx context.Context, req domain.ListInvoiceRequest) (domain.ListInvoiceResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	filter := domain.ListInvoiceFilter{Status: strings.TrimSpace(req.Status)}
	if strings.TrimSpace(req.LeaseID) != "" {
		leaseID, err := parseID(req.LeaseID)
		if err != nil {
			return domain.ListInvoiceResponse{}, err
		}
		filter.LeaseID = &leaseID
	}

	invoices, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListInvoiceResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(invoices, pageSize, func(invoice *domain.LeaseInvoice) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        invoice.ID.String(),
			CreatedAt: invoice.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(invoices) > int(pageSize) {
		invoices = invoices[:pageSize]
	}

	out := make([]domain.LeaseInvoice, 0, len(invoices))
	for _, invoice := range invoices {
		if invoice == nil {
			continue
		}
		out = append(out, *invoice)
	}

	resp := domain.ListInvoiceResponse{Invoices: out}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func parseID(value string) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, domain.ErrInvalidID
	}
	return id, nil
}
