package repository

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/schedule/domain"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

const entryColumns = `id, schedule_id, lease_id, seq, period_start, period_end, amount, is_allowance, tax, invoice_number, invoice_status, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertSchedule(ctx context.Context, db *gorm.DB, schedule *domain.Schedule, entries []*domain.ScheduleEntry) error {
	if err := db.WithContext(ctx).Create(schedule).Error; err != nil {
		return err
	}
	if len(entries) == 0 {
		return nil
	}
	return db.WithContext(ctx).CreateInBatches(entries, 100).Error
}

func (r *repo) FindByLease(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) (*domain.Schedule, error) {
	var schedule domain.Schedule
	err := db.WithContext(ctx).Raw(
		`SELECT id, lease_id, entry_count, total_amount, created_at
		 FROM lease_schedules
		 WHERE lease_id = ?`,
		leaseID,
	).Scan(&schedule).Error
	if err != nil {
		return nil, err
	}
	if schedule.ID == 0 {
		return nil, nil
	}
	return &schedule, nil
}

func (r *repo) ListEntries(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]*domain.ScheduleEntry, error) {
	var entries []*domain.ScheduleEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+`
		 FROM lease_schedule_entries
		 WHERE lease_id = ?
		 ORDER BY seq ASC`,
		leaseID,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// ListDueEntries returns paid entries that started on or before asOf and carry no invoice.
func (r *repo) ListDueEntries(ctx context.Context, db *gorm.DB, leaseID snowflake.ID, asOf time.Time) ([]*domain.ScheduleEntry, error) {
	var entries []*domain.ScheduleEntry
	err := db.WithContext(ctx).Raw(
		`SELECT `+entryColumns+`
		 FROM lease_schedule_entries
		 WHERE lease_id = ?
		   AND is_allowance = ?
		   AND invoice_number = ''
		   AND period_start IS NOT NULL
		   AND period_start <= ?
		 ORDER BY seq ASC`,
		leaseID, false, asOf,
	).Scan(&entries).Error
	if err != nil {
		return nil, err
	}
	return entries, nil
}

// StampInvoice links an entry to an invoice. It reports false when the entry
// was already stamped.
func (r *repo) StampInvoice(ctx context.Context, db *gorm.DB, entryID snowflake.ID, number, status string) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE lease_schedule_entries
		 SET invoice_number = ?, invoice_status = ?, updated_at = ?
		 WHERE id = ? AND invoice_number = ''`,
		number, status, time.Now().UTC(), entryID,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) SetInvoiceStatus(ctx context.Context, db *gorm.DB, number, status string) (int64, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE lease_schedule_entries
		 SET invoice_status = ?, updated_at = ?
		 WHERE invoice_number = ? AND invoice_status <> ?`,
		status, time.Now().UTC(), number, status,
	)
	return res.RowsAffected, res.Error
}

// SumOutstanding totals paid entries whose invoice is missing or unpaid.
func (r *repo) SumOutstanding(ctx context.Context, db *gorm.DB) (decimal.Decimal, error) {
	var total decimal.NullDecimal
	err := db.WithContext(ctx).Raw(
		`SELECT SUM(amount)
		 FROM lease_schedule_entries
		 WHERE is_allowance = ?
		   AND invoice_status <> ?`,
		false, "paid",
	).Row().Scan(&total)
	if err != nil {
		return decimal.Zero, err
	}
	if !total.Valid {
		return decimal.Zero, nil
	}
	return total.Decimal, nil
}
