package service

import (
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/leasecontract/domain"
	"github.com/masarmall/leasing/pkg/period"
)

// leaseTerm is the derived billing shape of a lease.
type leaseTerm struct {
	Start          time.Time
	End            time.Time
	PeriodInMonths int
	PaidMonths     int
	IntervalMonths int
}

func parseDates(start, end string) (time.Time, time.Time, error) {
	start, end = strings.TrimSpace(start), strings.TrimSpace(end)
	if start == "" || end == "" {
		return time.Time{}, time.Time{}, domain.ErrLeaseDatesRequired
	}
	from, err := time.Parse(domain.DateLayout, start)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidLeaseDate
	}
	to, err := time.Parse(domain.DateLayout, end)
	if err != nil {
		return time.Time{}, time.Time{}, domain.ErrInvalidLeaseDate
	}
	if from.After(to) {
		return time.Time{}, time.Time{}, domain.ErrInvalidLeasePeriod
	}
	return from, to, nil
}

// computeTerm derives period and paid months. Allowance months either sit
// inside the lease period or extend it.
func computeTerm(start, end time.Time, allowance int, inPeriod bool, interval int) (leaseTerm, error) {
	if allowance < 0 {
		return leaseTerm{}, domain.ErrInvalidAllowance
	}
	months := period.LeaseMonths(start, end)

	term := leaseTerm{Start: start, End: end, IntervalMonths: interval}
	if inPeriod {
		term.PeriodInMonths = months
		term.PaidMonths = max(0, months-allowance)
	} else {
		term.PeriodInMonths = months + allowance
		term.PaidMonths = months
	}
	if interval > term.PeriodInMonths {
		return leaseTerm{}, domain.ErrPayTypeExceedsPeriod
	}
	return term, nil
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func parseOptionalID(value string, invalid error) (*snowflake.ID, error) {
	if strings.TrimSpace(value) == "" {
		return nil, nil
	}
	id, err := parseID(value, invalid)
	if err != nil {
		return nil, err
	}
	return &id, nil
}

func formatDate(t *time.Time) string {
	if t == nil || t.IsZero() {
		return ""
	}
	return t.Format(domain.DateLayout)
}
