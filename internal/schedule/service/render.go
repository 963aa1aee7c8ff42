package service

import (
	"sort"
	"strings"
	"time"

	"github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/masarmall/leasing/pkg/period"
	"github.com/shopspring/decimal"
)

const DefaultAllowanceLabel = "Allowance"

// Render builds the schedule view for a lease. An empty entry list renders
// the empty-schedule message.
func Render(leaseID string, entries []domain.Entry, allowanceLabel string) domain.Rendered {
	out := domain.Rendered{LeaseID: leaseID, Rows: []domain.Row{}, Total: decimal.Zero}
	if len(entries) == 0 {
		out.Empty = true
		out.EmptyMessage = domain.EmptyScheduleMessage
		return out
	}
	out.Rows = RenderRows(entries, allowanceLabel)
	out.Total = out.Rows[len(out.Rows)-1].Cumulative
	return out
}

// RenderRows orders entries by start date and derives period ends and running totals.
// Entries without a start come first. Allowance rows count toward the running total.
func RenderRows(entries []domain.Entry, allowanceLabel string) []domain.Row {
	if allowanceLabel == "" {
		allowanceLabel = DefaultAllowanceLabel
	}

	sorted := make([]domain.Entry, len(entries))
	copy(sorted, entries)
	sort.SliceStable(sorted, func(i, j int) bool {
		a, b := sorted[i].PeriodStart, sorted[j].PeriodStart
		switch {
		case a == nil:
			return b != nil
		case b == nil:
			return false
		default:
			return a.Before(*b)
		}
	})

	rows := make([]domain.Row, 0, len(sorted))
	cumulative := decimal.Zero
	for i, entry := range sorted {
		var next *domain.Entry
		if i+1 < len(sorted) {
			next = &sorted[i+1]
		}
		cumulative = cumulative.Add(entry.Amount)

		display := FormatAmount(entry.Amount)
		if entry.IsAllowance {
			display = allowanceLabel
		}
		rows = append(rows, domain.Row{
			Index:         i + 1,
			PeriodStart:   dateOnly(entry.PeriodStart),
			PeriodEnd:     derivePeriodEnd(entry, next),
			Amount:        entry.Amount,
			Cumulative:    cumulative,
			DisplayAmount: display,
			IsAllowance:   entry.IsAllowance,
			Tax:           entry.Tax,
			InvoiceNumber: entry.InvoiceNumber,
			InvoiceStatus: entry.InvoiceStatus,
		})
	}
	return rows
}

func derivePeriodEnd(entry domain.Entry, next *domain.Entry) *time.Time {
	if entry.PeriodEnd != nil {
		return dateOnly(entry.PeriodEnd)
	}
	if entry.PeriodStart == nil {
		return nil
	}
	if next != nil && next.PeriodStart != nil {
		end := period.Date(*next.PeriodStart).AddDate(0, 0, -1)
		return &end
	}
	end := period.EndOfMonth(*entry.PeriodStart)
	return &end
}

func dateOnly(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	d := period.Date(*t)
	return &d
}

// FormatAmount renders a two-decimal amount with thousands separators.
func FormatAmount(amount decimal.Decimal) string {
	fixed := amount.StringFixed(2)
	sign := ""
	if strings.HasPrefix(fixed, "-") {
		sign, fixed = "-", fixed[1:]
	}
	whole, frac, _ := strings.Cut(fixed, ".")

	var b strings.Builder
	for i, r := range whole {
		if i > 0 && (len(whole)-i)%3 == 0 {
			b.WriteByte(',')
		}
		b.WriteRune(r)
	}
	return sign + b.String() + "." + frac
}
