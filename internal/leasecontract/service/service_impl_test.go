package service

import (
	"context"
	"encoding/json"
	"strings"
	"sync"
	"testing"

	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/leasecontract/domain"
	"github.com/masarmall/leasing/internal/leasecontract/repository"
	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
	leaselineservice "github.com/masarmall/leasing/internal/leaseline/service"
	propertydomain "github.com/masarmall/leasing/internal/property/domain"
	propertyrepository "github.com/masarmall/leasing/internal/property/repository"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	schedulerepository "github.com/masarmall/leasing/internal/schedule/repository"
	scheduleservice "github.com/masarmall/leasing/internal/schedule/service"
	"github.com/masarmall/leasing/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type lookupStub struct {
	mu    sync.Mutex
	calls int
	pct   map[string]decimal.Decimal
}

func (s *lookupStub) ServicePercentage(_ context.Context, ref string) (decimal.Decimal, bool, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.calls++
	pct, ok := s.pct[ref]
	return pct, ok, nil
}

type fixture struct {
	db        *gorm.DB
	svc       domain.Service
	repo      domain.Repository
	schedules scheduledomain.Repository
	property  propertydomain.Property
	lookup    *lookupStub
}

func setup(t *testing.T) fixture {
	db := testutil.OpenDB(t,
		&domain.LeaseContract{},
		&domain.LeaseContractDetail{},
		&domain.TaxTemplate{},
		&domain.LeaseContractLog{},
		&propertydomain.Property{},
		&scheduledomain.Schedule{},
		&scheduledomain.ScheduleEntry{},
	)
	node := testutil.Node(t)
	log := zap.NewNop()
	settings := config.NewStaticLeaseSettingsHolder(config.DefaultLeaseSettings())

	lookup := &lookupStub{pct: map[string]decimal.Decimal{"SRV": decimal.NewFromInt(10)}}
	lines := leaselineservice.New(leaselineservice.Params{Log: log, Lookup: lookup})
	scheduleRepo := schedulerepository.Provide()
	schedules := scheduleservice.New(scheduleservice.Params{
		DB: db, Log: log, GenID: node, Repo: scheduleRepo, Settings: settings,
	})
	properties := propertyrepository.Provide()
	repo := repository.Provide()
	svc := New(Params{
		DB:         db,
		Log:        log,
		GenID:      node,
		Repo:       repo,
		Properties: properties,
		Lines:      lines,
		Schedules:  schedules,
		Settings:   settings,
	})

	property := propertydomain.Property{ID: node.Generate(), Name: "Masar Mall"}
	require.NoError(t, properties.InsertProperty(context.Background(), db, &property))

	return fixture{db: db, svc: svc, repo: repo, schedules: scheduleRepo, property: property, lookup: lookup}
}

func (f fixture) request() domain.UpsertLeaseRequest {
	return domain.UpsertLeaseRequest{
		Tenant:          "Kopi Kita",
		PropertyID:      f.property.ID.String(),
		LeaseStart:      "2024-01-01",
		LeaseEnd:        "2024-12-31",
		PayType:         "3 month",
		AllowancePeriod: 2,
		InPeriod:        true,
		Details: []domain.DetailInput{
			{LeaseLine: leaselinedomain.LeaseLine{
				IsAreaBased:     true,
				IsFixedRateItem: true,
				Area:            leaselinedomain.NumericFromInt(10),
				Rate:            leaselinedomain.NumericFromInt(100),
			}},
			{LeaseLine: leaselinedomain.LeaseLine{
				ItemReference: "SRV",
				Rate:          leaselinedomain.NumericFromInt(75),
			}},
		},
	}
}

func TestCreateRecomputesDetails(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	lease, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusDraft, lease.Status)
	assert.Equal(t, 12, lease.PeriodInMonths)
	assert.Equal(t, 10, lease.PaidMonths)
	assert.Equal(t, 2, lease.TotalLineCount)
	assert.True(t, decimal.NewFromInt(1100).Equal(lease.TotalAmount), lease.TotalAmount.String())

	got, err := f.svc.Get(ctx, lease.ID.String())
	require.NoError(t, err)
	require.Len(t, got.Details, 2)
	assert.True(t, decimal.NewFromInt(1000).Equal(got.Details[0].Amount.Decimal()))
	assert.True(t, decimal.NewFromInt(100).Equal(got.Details[1].Amount.Decimal()))
	assert.Equal(t, 1, f.lookup.calls)
}

func TestCreateValidation(t *testing.T) {
	f := setup(t)
	cases := []struct {
		name   string
		mutate func(*domain.UpsertLeaseRequest)
		err    error
	}{
		{name: "missing_tenant", mutate: func(r *domain.UpsertLeaseRequest) { r.Tenant = " " }, err: domain.ErrInvalidTenant},
		{name: "missing_property", mutate: func(r *domain.UpsertLeaseRequest) { r.PropertyID = "" }, err: domain.ErrPropertyRequired},
		{name: "unknown_property", mutate: func(r *domain.UpsertLeaseRequest) { r.PropertyID = "123456" }, err: domain.ErrPropertyNotFound},
		{name: "missing_dates", mutate: func(r *domain.UpsertLeaseRequest) { r.LeaseEnd = "" }, err: domain.ErrLeaseDatesRequired},
		{name: "reversed_dates", mutate: func(r *domain.UpsertLeaseRequest) { r.LeaseStart, r.LeaseEnd = r.LeaseEnd, r.LeaseStart }, err: domain.ErrInvalidLeasePeriod},
		{name: "missing_pay_type", mutate: func(r *domain.UpsertLeaseRequest) { r.PayType = "" }, err: domain.ErrPayTypeRequired},
		{name: "pay_type_exceeds_period", mutate: func(r *domain.UpsertLeaseRequest) { r.LeaseEnd = "2024-03-31"; r.PayType = "6 month" }, err: domain.ErrPayTypeExceedsPeriod},
		{name: "unknown_tax_template", mutate: func(r *domain.UpsertLeaseRequest) { r.TaxTemplateID = "987654" }, err: domain.ErrTaxTemplateNotFound},
		{name: "negative_area", mutate: func(r *domain.UpsertLeaseRequest) { r.Details[0].Area = leaselinedomain.NumericFromInt(-1) }, err: domain.ErrInvalidDetail},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			req := f.request()
			tc.mutate(&req)
			_, err := f.svc.Create(context.Background(), req)
			assert.ErrorIs(t, err, tc.err)
		})
	}
}

func TestUpdateOnlyDrafts(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lease, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	req := f.request()
	req.Tenant = "Kopi Kita Express"
	req.Details = req.Details[:1]
	updated, err := f.svc.Update(ctx, lease.ID.String(), req)
	require.NoError(t, err)
	assert.Equal(t, "Kopi Kita Express", updated.Tenant)
	assert.Equal(t, 1, updated.TotalLineCount)

	got, err := f.svc.Get(ctx, lease.ID.String())
	require.NoError(t, err)
	assert.Len(t, got.Details, 1)

	_, err = f.svc.Submit(ctx, lease.ID.String())
	require.NoError(t, err)
	_, err = f.svc.Update(ctx, lease.ID.String(), req)
	assert.ErrorIs(t, err, domain.ErrLeaseNotDraft)
}

func TestSubmitGeneratesScheduleAndLog(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lease, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	submitted, err := f.svc.Submit(ctx, lease.ID.String())
	require.NoError(t, err)
	assert.Equal(t, domain.StatusRent, submitted.Status)

	entries, err := f.schedules.ListEntries(ctx, f.db, lease.ID)
	require.NoError(t, err)
	require.Len(t, entries, 6)
	assert.True(t, entries[0].IsAllowance)
	assert.True(t, entries[1].IsAllowance)
	assert.True(t, decimal.NewFromInt(3300).Equal(entries[2].Amount), entries[2].Amount.String())
	assert.Equal(t, scheduledomain.TaxExempt, entries[2].Tax)

	logs, err := f.repo.ListLogs(ctx, f.db, lease.ID)
	require.NoError(t, err)
	require.Len(t, logs, 1)
	var snapshot domain.LogSnapshot
	require.NoError(t, json.Unmarshal(logs[0].Snapshot, &snapshot))
	assert.Equal(t, "Kopi Kita", snapshot.Tenant)
	assert.Equal(t, "2024-01-01", snapshot.LeaseStart)
	require.NotNil(t, snapshot.FirstPeriod)
	assert.True(t, snapshot.FirstPeriod.IsAllowance)
	require.NotNil(t, snapshot.FirstDetail)

	_, err = f.svc.Submit(ctx, lease.ID.String())
	assert.ErrorIs(t, err, domain.ErrLeaseNotDraft)
}

func TestSubmitRequiresDetails(t *testing.T) {
	f := setup(t)
	req := f.request()
	req.Details = nil
	lease, err := f.svc.Create(context.Background(), req)
	require.NoError(t, err)

	_, err = f.svc.Submit(context.Background(), lease.ID.String())
	assert.ErrorIs(t, err, domain.ErrDetailsRequired)
}

func TestSubmitWithTaxTemplateMarksEntriesTaxable(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	template, err := f.svc.CreateTaxTemplate(ctx, domain.CreateTaxTemplateRequest{
		Name:  "VAT 11",
		Taxes: []domain.TaxRate{{AccountHead: "VAT", Rate: decimal.NewFromInt(11)}},
	})
	require.NoError(t, err)

	req := f.request()
	req.IncludeVAT = true
	req.TaxTemplateID = template.ID.String()
	lease, err := f.svc.Create(ctx, req)
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, lease.ID.String())
	require.NoError(t, err)

	entries, err := f.schedules.ListEntries(ctx, f.db, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, scheduledomain.TaxExempt, entries[0].Tax)
	assert.Equal(t, scheduledomain.TaxTaxable, entries[len(entries)-1].Tax)
}

func TestStopTransitions(t *testing.T) {
	cases := []struct {
		name   string
		stop   func(domain.Service, context.Context, string) (domain.LeaseContract, error)
		status string
	}{
		{name: "terminate", stop: domain.Service.Terminate, status: domain.StatusTerminated},
		{name: "legal_case", stop: domain.Service.LegalCase, status: domain.StatusLegalCase},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := setup(t)
			ctx := context.Background()
			lease, err := f.svc.Create(ctx, f.request())
			require.NoError(t, err)

			_, err = tc.stop(f.svc, ctx, lease.ID.String())
			assert.ErrorIs(t, err, domain.ErrLeaseNotRunning)

			_, err = f.svc.Submit(ctx, lease.ID.String())
			require.NoError(t, err)
			stopped, err := tc.stop(f.svc, ctx, lease.ID.String())
			require.NoError(t, err)
			assert.Equal(t, tc.status, stopped.Status)
			assert.True(t, stopped.IsStopped)

			logs, err := f.repo.ListLogs(ctx, f.db, lease.ID)
			require.NoError(t, err)
			assert.Len(t, logs, 2)
		})
	}
}

func TestRenewCopiesRunningLease(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lease, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)

	_, err = f.svc.Renew(ctx, lease.ID.String(), domain.RenewLeaseRequest{LeaseEnd: "2025-12-31"})
	assert.ErrorIs(t, err, domain.ErrLeaseNotRunning)

	_, err = f.svc.Submit(ctx, lease.ID.String())
	require.NoError(t, err)
	renewed, err := f.svc.Renew(ctx, lease.ID.String(), domain.RenewLeaseRequest{LeaseEnd: "2025-12-31"})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusDraft, renewed.Status)
	require.NotNil(t, renewed.RenewedFrom)
	assert.Equal(t, lease.ID, *renewed.RenewedFrom)
	assert.Equal(t, "2024-12-31", renewed.LeaseStart.Format(domain.DateLayout))
	assert.Equal(t, "Kopi Kita", renewed.Tenant)
	assert.Len(t, renewed.Details, 2)
}

func TestCreateTaxTemplate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()

	template, err := f.svc.CreateTaxTemplate(ctx, domain.CreateTaxTemplateRequest{
		Name:  "VAT",
		Taxes: []domain.TaxRate{{AccountHead: "VAT", Rate: decimal.NewFromInt(11)}},
	})
	require.NoError(t, err)
	assert.True(t, strings.Contains(string(template.Taxes), "VAT"))

	_, err = f.svc.CreateTaxTemplate(ctx, domain.CreateTaxTemplateRequest{Name: "VAT"})
	assert.ErrorIs(t, err, domain.ErrDuplicateTaxTemplate)
	_, err = f.svc.CreateTaxTemplate(ctx, domain.CreateTaxTemplateRequest{
		Name:  "Broken",
		Taxes: []domain.TaxRate{{AccountHead: "VAT", Rate: decimal.NewFromInt(120)}},
	})
	assert.ErrorIs(t, err, domain.ErrInvalidTaxTemplate)
}

func TestListFiltersByStatus(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	first, err := f.svc.Create(ctx, f.request())
	require.NoError(t, err)
	_, err = f.svc.Create(ctx, f.request())
	require.NoError(t, err)
	_, err = f.svc.Submit(ctx, first.ID.String())
	require.NoError(t, err)

	all, err := f.svc.List(ctx, domain.ListLeaseRequest{})
	require.NoError(t, err)
	assert.Len(t, all.Leases, 2)

	running, err := f.svc.List(ctx, domain.ListLeaseRequest{Status: domain.StatusRent})
	require.NoError(t, err)
	require.Len(t, running.Leases, 1)
	assert.Equal(t, first.ID, running.Leases[0].ID)

	count, err := f.repo.CountActive(ctx, f.db)
	require.NoError(t, err)
	assert.Equal(t, int64(1), count)
}
