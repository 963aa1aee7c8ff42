package service

import (
	"context"
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/leasecontract/domain"
	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/masarmall/leasing/internal/observability/metrics"
	propertydomain "github.com/masarmall/leasing/internal/property/domain"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/pkg/db"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

var maxTaxRate = decimal.NewFromInt(100)

type Params struct {
	fx.In

	DB         *gorm.DB
	Log        *zap.Logger
	GenID      *snowflake.Node
	Repo       domain.Repository
	Properties propertydomain.Repository
	Lines      leaselinedomain.Service
	Schedules  scheduledomain.Service
	Settings   *config.LeaseSettingsHolder `optional:"true"`
	Metrics    *metrics.Metrics            `optional:"true"`
}

type Service struct {
	db         *gorm.DB
	log        *zap.Logger
	genID      *snowflake.Node
	repo       domain.Repository
	properties propertydomain.Repository
	lines      leaselinedomain.Service
	schedules  scheduledomain.Service
	settings   *config.LeaseSettingsHolder
	metrics    *metrics.Metrics
}

func New(p Params) domain.Service {
	return &Service{
		db:         p.DB,
		log:        p.Log.Named("leasecontract.service"),
		genID:      p.GenID,
		repo:       p.Repo,
		properties: p.Properties,
		lines:      p.Lines,
		schedules:  p.Schedules,
		settings:   p.Settings,
		metrics:    p.Metrics,
	}
}

func (s *Service) Create(ctx context.Context, req domain.UpsertLeaseRequest) (domain.LeaseContract, error) {
	return s.create(ctx, req, nil)
}

func (s *Service) create(ctx context.Context, req domain.UpsertLeaseRequest, renewedFrom *snowflake.ID) (domain.LeaseContract, error) {
	now := time.Now().UTC()
	lease := domain.LeaseContract{
		ID:          s.genID.Generate(),
		Status:      domain.StatusDraft,
		RenewedFrom: renewedFrom,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	details, err := s.prepare(ctx, &lease, req)
	if err != nil {
		return domain.LeaseContract{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Insert(ctx, tx, &lease); err != nil {
			return err
		}
		return s.repo.ReplaceDetails(ctx, tx, lease.ID, details)
	})
	if err != nil {
		return domain.LeaseContract{}, fmt.Errorf("create lease: %w", err)
	}
	lease.Details = derefDetails(details)
	return lease, nil
}

func (s *Service) Update(ctx context.Context, id string, req domain.UpsertLeaseRequest) (domain.LeaseContract, error) {
	leaseID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	existing, err := s.repo.FindByID(ctx, s.db, leaseID)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	if existing == nil {
		return domain.LeaseContract{}, domain.ErrNotFound
	}
	if existing.Status != domain.StatusDraft {
		return domain.LeaseContract{}, domain.ErrLeaseNotDraft
	}

	lease := *existing
	lease.UpdatedAt = time.Now().UTC()
	details, err := s.prepare(ctx, &lease, req)
	if err != nil {
		return domain.LeaseContract{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.Update(ctx, tx, &lease); err != nil {
			return err
		}
		return s.repo.ReplaceDetails(ctx, tx, lease.ID, details)
	})
	if err != nil {
		return domain.LeaseContract{}, fmt.Errorf("update lease: %w", err)
	}
	lease.Details = derefDetails(details)
	return lease, nil
}

// prepare validates req onto lease and returns recomputed detail rows.
func (s *Service) prepare(ctx context.Context, lease *domain.LeaseContract, req domain.UpsertLeaseRequest) ([]*domain.LeaseContractDetail, error) {
	tenant := strings.TrimSpace(req.Tenant)
	if tenant == "" {
		return nil, domain.ErrInvalidTenant
	}
	if strings.TrimSpace(req.PropertyID) == "" {
		return nil, domain.ErrPropertyRequired
	}
	propertyID, err := parseID(req.PropertyID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	property, err := s.properties.FindProperty(ctx, s.db, propertyID)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	floorID, err := parseOptionalID(req.FloorID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}

	start, end, err := parseDates(req.LeaseStart, req.LeaseEnd)
	if err != nil {
		return nil, err
	}
	payType := strings.TrimSpace(req.PayType)
	if payType == "" {
		return nil, domain.ErrPayTypeRequired
	}
	interval := s.settings.Get().IntervalMonths(payType)
	term, err := computeTerm(start, end, req.AllowancePeriod, req.InPeriod, interval)
	if err != nil {
		return nil, err
	}

	templateID, err := parseOptionalID(req.TaxTemplateID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	if templateID != nil {
		template, err := s.repo.FindTaxTemplate(ctx, s.db, *templateID)
		if err != nil {
			return nil, err
		}
		if template == nil {
			return nil, domain.ErrTaxTemplateNotFound
		}
	}

	lines := make([]leaselinedomain.LeaseLine, 0, len(req.Details))
	unitIDs := make([]*snowflake.ID, 0, len(req.Details))
	for _, input := range req.Details {
		unitID, err := parseOptionalID(input.FloorUnitID, domain.ErrInvalidDetail)
		if err != nil {
			return nil, err
		}
		if input.Area.Defined() && input.Area.Decimal().IsNegative() {
			return nil, domain.ErrInvalidDetail
		}
		unitIDs = append(unitIDs, unitID)
		lines = append(lines, input.LeaseLine)
	}
	doc := s.lines.Recompute(ctx, lines)

	now := time.Now().UTC()
	details := make([]*domain.LeaseContractDetail, 0, len(doc.Lines))
	for i, line := range doc.Lines {
		details = append(details, &domain.LeaseContractDetail{
			ID:                s.genID.Generate(),
			LeaseID:           lease.ID,
			Seq:               i + 1,
			FloorUnitID:       unitIDs[i],
			ItemReference:     strings.TrimSpace(line.ItemReference),
			IsAreaBased:       line.IsAreaBased,
			IsFixedRateItem:   line.IsFixedRateItem,
			Area:              line.Area,
			Rate:              line.Rate,
			ServicePercentage: line.ServicePercentage,
			Amount:            line.Amount,
			CreatedAt:         now,
		})
	}

	lease.Tenant = tenant
	lease.PropertyID = propertyID
	lease.FloorID = floorID
	lease.LeaseStart = term.Start
	lease.LeaseEnd = term.End
	lease.PayType = payType
	lease.AllowancePeriod = req.AllowancePeriod
	lease.InPeriod = req.InPeriod
	lease.IncludeVAT = req.IncludeVAT
	lease.TaxTemplateID = templateID
	lease.PeriodInMonths = term.PeriodInMonths
	lease.PaidMonths = term.PaidMonths
	lease.TotalLineCount = doc.TotalLineCount
	lease.TotalAmount = doc.TotalAmount
	return details, nil
}

func (s *Service) Get(ctx context.Context, id string) (domain.LeaseContract, error) {
	leaseID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	return s.load(ctx, s.db, leaseID)
}

func (s *Service) load(ctx context.Context, tx *gorm.DB, id snowflake.ID) (domain.LeaseContract, error) {
	lease, err := s.repo.FindByID(ctx, tx, id)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	if lease == nil {
		return domain.LeaseContract{}, domain.ErrNotFound
	}
	details, err := s.repo.ListDetails(ctx, tx, id)
	if err != nil {
		return domain.LeaseContract{}, err
	}
	lease.Details = derefDetails(details)
	return *lease, nil
}

func (s *Service) List(ctx context.Context, req domain.ListLeaseRequest) (domain.ListLeaseResponse, error) {
	pageSize := req.PageSize
	if pageSize <= 0 {
		pageSize = 10
	}
	filter := domain.ListLeaseFilter{
		Status: strings.TrimSpace(req.Status),
		Tenant: strings.TrimSpace(req.Tenant),
	}
	if strings.TrimSpace(req.PropertyID) != "" {
		propertyID, err := parseID(req.PropertyID, domain.ErrInvalidID)
		if err != nil {
			return domain.ListLeaseResponse{}, err
		}
		filter.PropertyID = &propertyID
	}

	leases, err := s.repo.List(ctx, s.db, filter, pagination.Pagination{
		PageToken: req.PageToken,
		PageSize:  int(pageSize),
	})
	if err != nil {
		return domain.ListLeaseResponse{}, err
	}

	pageInfo := pagination.BuildCursorPageInfo(leases, pageSize, func(lease *domain.LeaseContract) string {
		token, err := pagination.EncodeCursor(pagination.Cursor{
			ID:        lease.ID.String(),
			CreatedAt: lease.CreatedAt.Format(time.RFC3339),
		})
		if err != nil {
			return ""
		}
		return token
	})
	if pageInfo != nil && pageInfo.HasMore && len(leases) > int(pageSize) {
		leases = leases[:pageSize]
	}

	out := make([]domain.LeaseContract, 0, len(leases))
	for _, lease := range leases {
		if lease == nil {
			continue
		}
		out = append(out, *lease)
	}

	resp := domain.ListLeaseResponse{Leases: out}
	if pageInfo != nil {
		resp.PageInfo = *pageInfo
	}
	return resp, nil
}

func (s *Service) CreateTaxTemplate(ctx context.Context, req domain.CreateTaxTemplateRequest) (domain.TaxTemplate, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.TaxTemplate{}, domain.ErrInvalidTaxTemplate
	}
	rates := make([]domain.TaxRate, 0, len(req.Taxes))
	for _, rate := range req.Taxes {
		rate.AccountHead = strings.TrimSpace(rate.AccountHead)
		if rate.AccountHead == "" || rate.Rate.IsNegative() || rate.Rate.GreaterThan(maxTaxRate) {
			return domain.TaxTemplate{}, domain.ErrInvalidTaxTemplate
		}
		rates = append(rates, rate)
	}
	payload, err := json.Marshal(rates)
	if err != nil {
		return domain.TaxTemplate{}, err
	}

	template := domain.TaxTemplate{
		ID:        s.genID.Generate(),
		Name:      name,
		Taxes:     datatypes.JSON(payload),
		CreatedAt: time.Now().UTC(),
	}
	if err := s.repo.InsertTaxTemplate(ctx, s.db, &template); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.TaxTemplate{}, domain.ErrDuplicateTaxTemplate
		}
		return domain.TaxTemplate{}, err
	}
	return template, nil
}

func derefDetails(details []*domain.LeaseContractDetail) []domain.LeaseContractDetail {
	out := make([]domain.LeaseContractDetail, 0, len(details))
	for _, detail := range details {
		if detail == nil {
			continue
		}
		out = append(out, *detail)
	}
	return out
}
