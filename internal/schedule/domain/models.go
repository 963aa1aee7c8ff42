package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

const (
	TaxTaxable = "Taxable"
	TaxExempt  = "Exempt"
)

// Schedule is the generated rent schedule header of a submitted lease.
type Schedule struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	LeaseID     snowflake.ID    `gorm:"not null;uniqueIndex" json:"lease_id"`
	EntryCount  int             `gorm:"not null;default:0" json:"entry_count"`
	TotalAmount decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (Schedule) TableName() string { return "lease_schedules" }

// ScheduleEntry is one billing period of a schedule.
type ScheduleEntry struct {
	ID            snowflake.ID    `gorm:"primaryKey" json:"id"`
	ScheduleID    snowflake.ID    `gorm:"not null;index" json:"schedule_id"`
	LeaseID       snowflake.ID    `gorm:"not null;index" json:"lease_id"`
	Seq           int             `gorm:"not null" json:"seq"`
	PeriodStart   *time.Time      `json:"period_start,omitempty"`
	PeriodEnd     *time.Time      `json:"period_end,omitempty"`
	Amount        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	IsAllowance   bool            `gorm:"not null;default:false" json:"is_allowance"`
	Tax           string          `gorm:"not null;default:'Exempt'" json:"tax"`
	InvoiceNumber string          `gorm:"not null;default:''" json:"invoice_number,omitempty"`
	InvoiceStatus string          `gorm:"not null;default:''" json:"invoice_status,omitempty"`
	CreatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt     time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (ScheduleEntry) TableName() string { return "lease_schedule_entries" }

// Entry is the renderer input. Either date may be missing.
type Entry struct {
	PeriodStart   *time.Time
	PeriodEnd     *time.Time
	Amount        decimal.Decimal
	IsAllowance   bool
	Tax           string
	InvoiceNumber string
	InvoiceStatus string
}

// Row is one rendered schedule line.
type Row struct {
	Index         int             `json:"index"`
	PeriodStart   *time.Time      `json:"period_start"`
	PeriodEnd     *time.Time      `json:"period_end"`
	Amount        decimal.Decimal `json:"amount"`
	Cumulative    decimal.Decimal `json:"cumulative"`
	DisplayAmount string          `json:"display_amount"`
	IsAllowance   bool            `json:"is_allowance"`
	Tax           string          `json:"tax,omitempty"`
	InvoiceNumber string          `json:"invoice_number,omitempty"`
	InvoiceStatus string          `json:"invoice_status,omitempty"`
}

// Rendered is the view of a schedule. Empty schedules carry a message instead of rows.
type Rendered struct {
	LeaseID      string          `json:"lease_id"`
	Rows         []Row           `json:"rows"`
	Total        decimal.Decimal `json:"total"`
	Empty        bool            `json:"empty"`
	EmptyMessage string          `json:"empty_message,omitempty"`
}

// Plan drives schedule generation for a lease.
type Plan struct {
	LeaseStart      time.Time
	LeaseEnd        time.Time
	AllowanceMonths int
	InPeriod        bool
	IntervalMonths  int
	PaidMonths      int
	MonthlyTotal    decimal.Decimal
	TaxFlag         string
}
