package service

import (
	"context"
	"encoding/json"
	"fmt"
	"sync/atomic"
	"testing"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/config"
	leasecontractdomain "github.com/masarmall/leasing/internal/leasecontract/domain"
	leasecontractrepository "github.com/masarmall/leasing/internal/leasecontract/repository"
	"github.com/masarmall/leasing/internal/leaseinvoice/domain"
	"github.com/masarmall/leasing/internal/leaseinvoice/repository"
	scheduledomain "github.com/masarmall/leasing/internal/schedule/domain"
	schedulerepository "github.com/masarmall/leasing/internal/schedule/repository"
	scheduleservice "github.com/masarmall/leasing/internal/schedule/service"
	"github.com/masarmall/leasing/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/datatypes"
	"gorm.io/gorm"
)

type fixture struct {
	db        *gorm.DB
	node      *snowflake.Node
	svc       *Service
	leases    leasecontractdomain.Repository
	schedules scheduledomain.Repository
	generator scheduledomain.Service
}

func setup(t *testing.T) fixture {
	db := testutil.OpenDB(t,
		&domain.LeaseInvoice{},
		&leasecontractdomain.LeaseContract{},
		&leasecontractdomain.TaxTemplate{},
		&scheduledomain.Schedule{},
		&scheduledomain.ScheduleEntry{},
	)
	node := testutil.Node(t)
	log := zap.NewNop()
	leases := leasecontractrepository.Provide()
	schedules := schedulerepository.Provide()
	settings := config.NewStaticLeaseSettingsHolder(config.DefaultLeaseSettings())

	var seq atomic.Int64
	svc := New(Params{
		DB:        db,
		Log:       log,
		GenID:     node,
		Repo:      repository.Provide(),
		Leases:    leases,
		Schedules: schedules,
		Settings:  settings,
	}).(*Service)
	svc.newNumber = func() string { return fmt.Sprintf("LINV-%03d", seq.Add(1)) }

	generator := scheduleservice.New(scheduleservice.Params{DB: db, Log: log, GenID: node, Repo: schedules})
	return fixture{db: db, node: node, svc: svc, leases: leases, schedules: schedules, generator: generator}
}

func day(y int, m time.Month, d int) time.Time {
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// runningLease stores a rent lease with a Jan allowance and bimonthly billing through June.
func (f fixture) runningLease(t *testing.T, mutate func(*leasecontractdomain.LeaseContract), taxFlag string) leasecontractdomain.LeaseContract {
	t.Helper()
	ctx := context.Background()
	lease := leasecontractdomain.LeaseContract{
		ID:              f.node.Generate(),
		Tenant:          "Kopi Kita",
		PropertyID:      f.node.Generate(),
		LeaseStart:      day(2024, 1, 1),
		LeaseEnd:        day(2024, 6, 30),
		PayType:         "2 month",
		AllowancePeriod: 1,
		InPeriod:        true,
		Status:          leasecontractdomain.StatusRent,
		PeriodInMonths:  6,
		PaidMonths:      5,
		TotalAmount:     decimal.NewFromInt(1000),
		CreatedAt:       time.Now().UTC(),
		UpdatedAt:       time.Now().UTC(),
	}
	if mutate != nil {
		mutate(&lease)
	}
	require.NoError(t, f.leases.Insert(ctx, f.db, &lease))
	_, _, err := f.generator.Generate(ctx, f.db, lease.ID, scheduledomain.Plan{
		LeaseStart:      lease.LeaseStart,
		LeaseEnd:        lease.LeaseEnd,
		AllowanceMonths: 1,
		InPeriod:        true,
		IntervalMonths:  2,
		PaidMonths:      5,
		MonthlyTotal:    lease.TotalAmount,
		TaxFlag:         taxFlag,
	})
	require.NoError(t, err)
	return lease
}

func TestCreateDueInvoices(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lease := f.runningLease(t, nil, scheduledomain.TaxExempt)

	result, err := f.svc.CreateDueInvoices(ctx, day(2024, 4, 15), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DueRunResult{Leases: 1, Created: 2}, result)

	entries, err := f.schedules.ListEntries(ctx, f.db, lease.ID)
	require.NoError(t, err)
	require.Len(t, entries, 4)
	assert.Empty(t, entries[0].InvoiceNumber, "allowance rows are never billed")
	assert.Equal(t, "LINV-001", entries[1].InvoiceNumber)
	assert.Equal(t, domain.StatusDraft, entries[1].InvoiceStatus)
	assert.Equal(t, "LINV-002", entries[2].InvoiceNumber)
	assert.Empty(t, entries[3].InvoiceNumber, "future rows wait for their start")

	list, err := f.svc.List(ctx, domain.ListInvoiceRequest{LeaseID: lease.ID.String()})
	require.NoError(t, err)
	require.Len(t, list.Invoices, 2)
	for _, invoice := range list.Invoices {
		assert.Equal(t, "Rent", invoice.ItemCode)
		assert.True(t, decimal.NewFromInt(2000).Equal(invoice.Amount))
		assert.True(t, invoice.TaxAmount.IsZero())
	}

	again, err := f.svc.CreateDueInvoices(ctx, day(2024, 4, 15), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, again.Created)
}

func TestCreateDueInvoicesAfterLeaseEnd(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lease := f.runningLease(t, nil, scheduledomain.TaxExempt)

	result, err := f.svc.CreateDueInvoices(ctx, day(2024, 7, 10), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DueRunResult{Leases: 1, Created: 3}, result)

	entries, err := f.schedules.ListEntries(ctx, f.db, lease.ID)
	require.NoError(t, err)
	for _, entry := range entries[1:] {
		assert.NotEmpty(t, entry.InvoiceNumber)
	}
}

func TestCreateDueInvoicesSkipsFullyBilledLeases(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	billed := f.runningLease(t, nil, scheduledomain.TaxExempt)
	_, err := f.svc.CreateDueInvoices(ctx, day(2024, 7, 10), 0)
	require.NoError(t, err)

	pending := f.runningLease(t, nil, scheduledomain.TaxExempt)

	result, err := f.svc.CreateDueInvoices(ctx, day(2024, 4, 15), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DueRunResult{Leases: 1, Created: 2}, result)

	entries, err := f.schedules.ListEntries(ctx, f.db, pending.ID)
	require.NoError(t, err)
	assert.NotEmpty(t, entries[1].InvoiceNumber)
	assert.NotEmpty(t, entries[2].InvoiceNumber)

	result, err = f.svc.CreateDueInvoices(ctx, day(2024, 4, 15), 1)
	require.NoError(t, err)
	assert.Equal(t, domain.DueRunResult{}, result)

	list, err := f.svc.List(ctx, domain.ListInvoiceRequest{LeaseID: billed.ID.String()})
	require.NoError(t, err)
	assert.Len(t, list.Invoices, 3)
}

func TestCreateDueInvoicesSkipsStoppedLeases(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	f.runningLease(t, func(l *leasecontractdomain.LeaseContract) {
		l.Status = leasecontractdomain.StatusTerminated
		l.IsStopped = true
	}, scheduledomain.TaxExempt)

	result, err := f.svc.CreateDueInvoices(ctx, day(2024, 4, 15), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DueRunResult{}, result)

	result, err = f.svc.CreateDueInvoices(ctx, day(2024, 7, 10), 0)
	require.NoError(t, err)
	assert.Equal(t, domain.DueRunResult{}, result)
}

func TestCreateDueInvoicesAppliesTaxTemplate(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	template := leasecontractdomain.TaxTemplate{
		ID:        f.node.Generate(),
		Name:      "VAT",
		Taxes:     datatypes.JSON(`[{"account_head":"VAT","rate":"11"}]`),
		CreatedAt: time.Now().UTC(),
	}
	require.NoError(t, f.leases.InsertTaxTemplate(ctx, f.db, &template))
	f.runningLease(t, func(l *leasecontractdomain.LeaseContract) {
		l.IncludeVAT = true
		l.TaxTemplateID = &template.ID
	}, scheduledomain.TaxTaxable)

	result, err := f.svc.CreateDueInvoices(ctx, day(2024, 2, 1), 0)
	require.NoError(t, err)
	require.Equal(t, 1, result.Created)

	list, err := f.svc.List(ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	require.Len(t, list.Invoices, 1)
	invoice := list.Invoices[0]
	assert.True(t, decimal.NewFromInt(220).Equal(invoice.TaxAmount), invoice.TaxAmount.String())
	assert.True(t, decimal.NewFromInt(2220).Equal(invoice.GrandTotal))

	var metadata map[string]any
	require.NoError(t, json.Unmarshal(invoice.Metadata, &metadata))
	assert.Equal(t, scheduledomain.TaxTaxable, metadata["tax_flag"])
}

func TestUpdateStatusAndSync(t *testing.T) {
	f := setup(t)
	ctx := context.Background()
	lease := f.runningLease(t, nil, scheduledomain.TaxExempt)
	_, err := f.svc.CreateDueInvoices(ctx, day(2024, 2, 1), 0)
	require.NoError(t, err)

	list, err := f.svc.List(ctx, domain.ListInvoiceRequest{})
	require.NoError(t, err)
	require.Len(t, list.Invoices, 1)
	id := list.Invoices[0].ID.String()

	_, err = f.svc.UpdateStatus(ctx, id, domain.UpdateStatusRequest{Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidStatusTransition)
	_, err = f.svc.UpdateStatus(ctx, id, domain.UpdateStatusRequest{Status: "archived"})
	assert.ErrorIs(t, err, domain.ErrInvalidStatus)

	_, err = f.svc.UpdateStatus(ctx, id, domain.UpdateStatusRequest{Status: domain.StatusSubmitted})
	require.NoError(t, err)
	paid, err := f.svc.UpdateStatus(ctx, id, domain.UpdateStatusRequest{Status: " Paid "})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, paid.Status)

	updated, err := f.svc.SyncStatuses(ctx, day(2024, 2, 1), 0)
	require.NoError(t, err)
	assert.Equal(t, 1, updated)

	entries, err := f.schedules.ListEntries(ctx, f.db, lease.ID)
	require.NoError(t, err)
	assert.Equal(t, domain.StatusPaid, entries[1].InvoiceStatus)

	updated, err = f.svc.SyncStatuses(ctx, day(2024, 2, 1), 0)
	require.NoError(t, err)
	assert.Equal(t, 0, updated)
}

func TestUpdateStatusErrors(t *testing.T) {
	f := setup(t)
	_, err := f.svc.UpdateStatus(context.Background(), "x", domain.UpdateStatusRequest{Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrInvalidID)
	_, err = f.svc.UpdateStatus(context.Background(), "123456", domain.UpdateStatusRequest{Status: domain.StatusPaid})
	assert.ErrorIs(t, err, domain.ErrNotFound)
}

func TestCanTransition(t *testing.T) {
	cases := []struct {
		from, to string
		want     bool
	}{
		{domain.StatusDraft, domain.StatusSubmitted, true},
		{domain.StatusDraft, domain.StatusPaid, false},
		{domain.StatusSubmitted, domain.StatusOverdue, true},
		{domain.StatusOverdue, domain.StatusPaid, true},
		{domain.StatusPaid, domain.StatusCancelled, false},
		{domain.StatusCancelled, domain.StatusDraft, false},
	}
	for _, tc := range cases {
		t.Run(tc.from+"_"+tc.to, func(t *testing.T) {
			assert.Equal(t, tc.want, domain.CanTransition(tc.from, tc.to))
		})
	}
}
