package service

import (
	"context"
	"testing"

	"github.com/masarmall/leasing/internal/config"
	"github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/internal/schedule/repository"
	"github.com/masarmall/leasing/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func setup(t *testing.T) (*gorm.DB, domain.Service, domain.Repository) {
	db := testutil.OpenDB(t, &domain.Schedule{}, &domain.ScheduleEntry{})
	repo := repository.Provide()
	settings := config.DefaultLeaseSettings()
	settings.AllowanceLabel = "Rent free"
	svc := New(Params{
		DB:       db,
		Log:      zap.NewNop(),
		GenID:    testutil.Node(t),
		Repo:     repo,
		Settings: config.NewStaticLeaseSettingsHolder(settings),
	})
	return db, svc, repo
}

func samplePlan() domain.Plan {
	return domain.Plan{
		LeaseStart:      *day(2024, 1, 1),
		LeaseEnd:        *day(2024, 6, 30),
		AllowanceMonths: 1,
		InPeriod:        true,
		IntervalMonths:  2,
		PaidMonths:      5,
		MonthlyTotal:    decimal.NewFromInt(1000),
		TaxFlag:         domain.TaxExempt,
	}
}

func TestGenerateAndRender(t *testing.T) {
	db, svc, repo := setup(t)
	ctx := context.Background()
	leaseID := testutil.Node(t).Generate()

	schedule, entries, err := svc.Generate(ctx, db, leaseID, samplePlan())
	require.NoError(t, err)
	assert.Equal(t, 4, schedule.EntryCount)
	assert.Len(t, entries, 4)
	assert.True(t, decimal.NewFromInt(5000).Equal(schedule.TotalAmount))

	stored, err := repo.ListEntries(ctx, db, leaseID)
	require.NoError(t, err)
	require.Len(t, stored, 4)
	assert.Equal(t, 1, stored[0].Seq)

	rendered, err := svc.GetByLease(ctx, leaseID.String())
	require.NoError(t, err)
	require.Len(t, rendered.Rows, 4)
	assert.Equal(t, "Rent free", rendered.Rows[0].DisplayAmount)
	assert.Equal(t, "2,000.00", rendered.Rows[1].DisplayAmount)
	assert.True(t, decimal.NewFromInt(5000).Equal(rendered.Total))
	assert.Equal(t, *day(2024, 6, 30), *rendered.Rows[3].PeriodEnd)

	_, _, err = svc.Generate(ctx, db, leaseID, samplePlan())
	assert.ErrorIs(t, err, domain.ErrScheduleExists)
}

func TestGetByLeaseMissingScheduleRendersEmpty(t *testing.T) {
	_, svc, _ := setup(t)

	rendered, err := svc.GetByLease(context.Background(), "1234567")
	require.NoError(t, err)
	assert.True(t, rendered.Empty)
	assert.Equal(t, domain.EmptyScheduleMessage, rendered.EmptyMessage)
}

func TestGetByLeaseInvalidID(t *testing.T) {
	_, svc, _ := setup(t)

	_, err := svc.GetByLease(context.Background(), "lease-1")
	assert.ErrorIs(t, err, domain.ErrInvalidID)
}

func TestStampInvoiceOnlyOnce(t *testing.T) {
	db, svc, repo := setup(t)
	ctx := context.Background()
	leaseID := testutil.Node(t).Generate()
	_, entries, err := svc.Generate(ctx, db, leaseID, samplePlan())
	require.NoError(t, err)

	due, err := repo.ListDueEntries(ctx, db, leaseID, *day(2024, 4, 15))
	require.NoError(t, err)
	require.Len(t, due, 2)
	assert.False(t, due[0].IsAllowance)

	ok, err := repo.StampInvoice(ctx, db, entries[1].ID, "INV-1", "draft")
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.StampInvoice(ctx, db, entries[1].ID, "INV-2", "draft")
	require.NoError(t, err)
	assert.False(t, ok)

	n, err := repo.SetInvoiceStatus(ctx, db, "INV-1", "paid")
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	outstanding, err := repo.SumOutstanding(ctx, db)
	require.NoError(t, err)
	assert.True(t, decimal.NewFromInt(3000).Equal(outstanding), outstanding.String())
}
