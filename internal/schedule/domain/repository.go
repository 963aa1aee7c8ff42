package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type Repository interface {
	InsertSchedule(ctx context.Context, db *gorm.DB, schedule *Schedule, entries []*ScheduleEntry) error
	FindByLease(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) (*Schedule, error)
	ListEntries(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]*ScheduleEntry, error)
	ListDueEntries(ctx context.Context, db *gorm.DB, leaseID snowflake.ID, asOf time.Time) ([]*ScheduleEntry, error)
	StampInvoice(ctx context.Context, db *gorm.DB, entryID snowflake.ID, number, status string) (bool, error)
	SetInvoiceStatus(ctx context.Context, db *gorm.DB, number, status string) (int64, error)
	SumOutstanding(ctx context.Context, db *gorm.DB) (decimal.Decimal, error)
}
