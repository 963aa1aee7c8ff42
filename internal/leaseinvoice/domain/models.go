package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusDraft     = "draft"
	StatusSubmitted = "submitted"
	StatusPaid      = "paid"
	StatusOverdue   = "overdue"
	StatusCancelled = "cancelled"
)

var transitions = map[string]map[string]bool{
	StatusDraft:     {StatusSubmitted: true, StatusCancelled: true},
	StatusSubmitted: {StatusPaid: true, StatusOverdue: true, StatusCancelled: true},
	StatusOverdue:   {StatusPaid: true, StatusCancelled: true},
}

// CanTransition reports whether an invoice may move from one status to another.
func CanTransition(from, to string) bool {
	return transitions[from][to]
}

// KnownStatus reports whether status is a lease invoice status.
func KnownStatus(status string) bool {
	switch status {
	case StatusDraft, StatusSubmitted, StatusPaid, StatusOverdue, StatusCancelled:
		return true
	}
	return false
}

// LeaseInvoice bills one schedule entry.
type LeaseInvoice struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	InvoiceNumber   string          `gorm:"not null;uniqueIndex" json:"invoice_number"`
	LeaseID         snowflake.ID    `gorm:"not null;index" json:"lease_id"`
	ScheduleEntryID snowflake.ID    `gorm:"not null;uniqueIndex" json:"schedule_entry_id"`
	Tenant          string          `gorm:"not null" json:"tenant"`
	ItemCode        string          `gorm:"not null" json:"item_code"`
	PostingDate     time.Time       `gorm:"not null;index" json:"posting_date"`
	DueDate         time.Time       `gorm:"not null" json:"due_date"`
	Amount          decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"amount"`
	TaxAmount       decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"tax_amount"`
	GrandTotal      decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"grand_total"`
	Status          string          `gorm:"not null;index" json:"status"`
	Metadata        datatypes.JSON  `gorm:"type:json" json:"metadata,omitempty"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (LeaseInvoice) TableName() string { return "lease_invoices" }
