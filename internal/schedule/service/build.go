package service

import (
	"time"

	"github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/pkg/period"
	"github.com/shopspring/decimal"
)

// BuildEntries expands a lease plan into allowance rows followed by paid rows
// grouped by the pay interval. The last paid row always ends on the lease end.
func BuildEntries(plan domain.Plan) ([]domain.Entry, error) {
	if plan.LeaseStart.IsZero() || plan.LeaseEnd.IsZero() || plan.LeaseEnd.Before(plan.LeaseStart) {
		return nil, domain.ErrInvalidPlan
	}
	if plan.AllowanceMonths < 0 || plan.PaidMonths < 0 {
		return nil, domain.ErrInvalidPlan
	}
	interval := plan.IntervalMonths
	if interval <= 0 {
		interval = 1
	}
	taxFlag := plan.TaxFlag
	if taxFlag == "" {
		taxFlag = domain.TaxExempt
	}

	start := period.Date(plan.LeaseStart)
	leaseEnd := period.Date(plan.LeaseEnd)
	entries := make([]domain.Entry, 0, plan.AllowanceMonths+plan.PaidMonths/interval+1)

	paidStart := start
	if plan.AllowanceMonths > 0 {
		cursor := period.AddMonths(start, -plan.AllowanceMonths)
		if plan.InPeriod {
			cursor = start
		}
		for i := 0; i < plan.AllowanceMonths; i++ {
			periodStart := cursor
			periodEnd := period.EndOfMonth(periodStart)
			entries = append(entries, domain.Entry{
				PeriodStart: timePtr(periodStart),
				PeriodEnd:   timePtr(periodEnd),
				Amount:      decimal.Zero,
				IsAllowance: true,
				Tax:         domain.TaxExempt,
			})
			cursor = period.AddMonths(periodStart, 1)
		}
		if plan.InPeriod {
			paidStart = cursor
		}
	}

	remaining := plan.PaidMonths
	cursor := paidStart
	for remaining > 0 {
		n := min(interval, remaining)
		periodStart := cursor
		periodEnd := period.EndOfMonth(period.AddMonths(periodStart, n-1))
		if remaining == n {
			periodEnd = leaseEnd
		}
		entries = append(entries, domain.Entry{
			PeriodStart: timePtr(periodStart),
			PeriodEnd:   timePtr(periodEnd),
			Amount:      plan.MonthlyTotal.Mul(decimal.NewFromInt(int64(n))),
			Tax:         taxFlag,
		})
		cursor = period.AddMonths(periodStart, n)
		remaining -= n
	}
	return entries, nil
}

func timePtr(t time.Time) *time.Time {
	return &t
}
