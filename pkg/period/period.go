// Package period holds calendar-month arithmetic for lease terms.
package period

import "time"

// Date truncates t to midnight UTC.
func Date(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// AddMonths moves t by n calendar months, clamping the day to the target month's length.
// 2024-01-31 plus one month is 2024-02-29.
func AddMonths(t time.Time, n int) time.Time {
	t = Date(t)
	first := time.Date(t.Year(), t.Month(), 1, 0, 0, 0, 0, time.UTC).AddDate(0, n, 0)
	day := t.Day()
	if last := EndOfMonth(first).Day(); day > last {
		day = last
	}
	return time.Date(first.Year(), first.Month(), day, 0, 0, 0, 0, time.UTC)
}

func EndOfMonth(t time.Time) time.Time {
	t = Date(t)
	return time.Date(t.Year(), t.Month()+1, 1, 0, 0, 0, 0, time.UTC).AddDate(0, 0, -1)
}

// Span returns the whole months and leftover days from start to end.
func Span(start, end time.Time) (months, days int) {
	start, end = Date(start), Date(end)
	if end.Before(start) {
		return 0, 0
	}
	months = (end.Year()-start.Year())*12 + int(end.Month()-start.Month())
	for months > 0 && AddMonths(start, months).After(end) {
		months--
	}
	days = int(end.Sub(AddMonths(start, months)).Hours() / 24)
	return months, days
}

// LeaseMonths counts a partial trailing month as a full month.
func LeaseMonths(start, end time.Time) int {
	months, days := Span(start, end)
	if days > 0 {
		months++
	}
	return months
}
