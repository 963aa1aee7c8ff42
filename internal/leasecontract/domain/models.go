package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/shopspring/decimal"
	"gorm.io/datatypes"
)

const (
	StatusDraft      = "draft"
	StatusRent       = "rent"
	StatusTerminated = "terminated"
	StatusLegalCase  = "legal_case"
)

const (
	LogActionSubmit    = "submit"
	LogActionTerminate = "terminate"
	LogActionLegalCase = "legal_case"
)

// LeaseContract is the lease header. Details are loaded separately.
type LeaseContract struct {
	ID              snowflake.ID    `gorm:"primaryKey" json:"id"`
	Tenant          string          `gorm:"not null" json:"tenant"`
	PropertyID      snowflake.ID    `gorm:"not null;index" json:"property_id"`
	FloorID         *snowflake.ID   `json:"floor_id,omitempty"`
	LeaseStart      time.Time       `gorm:"not null" json:"lease_start"`
	LeaseEnd        time.Time       `gorm:"not null" json:"lease_end"`
	PayType         string          `gorm:"not null" json:"pay_type"`
	AllowancePeriod int             `gorm:"not null;default:0" json:"allowance_period"`
	InPeriod        bool            `gorm:"not null;default:false" json:"in_period"`
	IncludeVAT      bool            `gorm:"column:include_vat;not null;default:false" json:"include_vat"`
	TaxTemplateID   *snowflake.ID   `json:"tax_template_id,omitempty"`
	Status          string          `gorm:"not null;index" json:"status"`
	IsStopped       bool            `gorm:"not null;default:false" json:"is_stopped"`
	RenewedFrom     *snowflake.ID   `json:"renewed_from,omitempty"`
	PeriodInMonths  int             `gorm:"not null;default:0" json:"period_in_months"`
	PaidMonths      int             `gorm:"not null;default:0" json:"paid_months"`
	TotalLineCount  int             `gorm:"not null;default:0" json:"total_line_count"`
	TotalAmount     decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"total_amount"`
	CreatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt       time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`

	Details []LeaseContractDetail `gorm:"-" json:"details"`
}

func (LeaseContract) TableName() string { return "lease_contracts" }

// LeaseContractDetail is a rent detail row, a lease line bound to a floor unit.
type LeaseContractDetail struct {
	ID                snowflake.ID            `gorm:"primaryKey" json:"id"`
	LeaseID           snowflake.ID            `gorm:"not null;index" json:"lease_id"`
	Seq               int                     `gorm:"not null" json:"seq"`
	FloorUnitID       *snowflake.ID           `json:"floor_unit_id,omitempty"`
	ItemReference     string                  `gorm:"not null;default:''" json:"item_reference,omitempty"`
	IsAreaBased       bool                    `gorm:"not null;default:false" json:"is_area_based"`
	IsFixedRateItem   bool                    `gorm:"not null;default:false" json:"is_fixed_rate_item"`
	Area              leaselinedomain.Numeric `gorm:"type:decimal(18,4)" json:"area"`
	Rate              leaselinedomain.Numeric `gorm:"type:decimal(18,4)" json:"rate"`
	ServicePercentage leaselinedomain.Numeric `gorm:"type:decimal(9,4)" json:"service_percentage"`
	Amount            leaselinedomain.Numeric `gorm:"type:decimal(18,4)" json:"amount"`
	CreatedAt         time.Time               `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (LeaseContractDetail) TableName() string { return "lease_contract_details" }

// Line returns the detail as a calculator line.
func (d LeaseContractDetail) Line() leaselinedomain.LeaseLine {
	return leaselinedomain.LeaseLine{
		ItemReference:     d.ItemReference,
		IsAreaBased:       d.IsAreaBased,
		IsFixedRateItem:   d.IsFixedRateItem,
		Area:              d.Area,
		Rate:              d.Rate,
		ServicePercentage: d.ServicePercentage,
		Amount:            d.Amount,
	}
}

// TaxRate is one entry of a tax template.
type TaxRate struct {
	AccountHead string          `json:"account_head"`
	Description string          `json:"description,omitempty"`
	Rate        decimal.Decimal `json:"rate"`
}

type TaxTemplate struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	Name      string         `gorm:"not null;uniqueIndex" json:"name"`
	Taxes     datatypes.JSON `gorm:"type:json" json:"taxes"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (TaxTemplate) TableName() string { return "tax_templates" }

// LeaseContractLog is an append-only snapshot taken on status transitions.
type LeaseContractLog struct {
	ID        snowflake.ID   `gorm:"primaryKey" json:"id"`
	LeaseID   snowflake.ID   `gorm:"not null;index" json:"lease_id"`
	Action    string         `gorm:"not null" json:"action"`
	Status    string         `gorm:"not null" json:"status"`
	Snapshot  datatypes.JSON `gorm:"type:json" json:"snapshot"`
	CreatedAt time.Time      `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (LeaseContractLog) TableName() string { return "lease_contract_logs" }

// LogSnapshot is the payload stored in LeaseContractLog.Snapshot.
type LogSnapshot struct {
	Tenant      string               `json:"tenant"`
	PropertyID  string               `json:"property_id"`
	LeaseStart  string               `json:"lease_start"`
	LeaseEnd    string               `json:"lease_end"`
	Status      string               `json:"status"`
	TotalAmount decimal.Decimal      `json:"total_amount"`
	FirstDetail *LeaseContractDetail `json:"first_detail,omitempty"`
	Details     int                  `json:"details"`
	FirstPeriod *SnapshotPeriod      `json:"first_period,omitempty"`
}

type SnapshotPeriod struct {
	PeriodStart string          `json:"period_start,omitempty"`
	PeriodEnd   string          `json:"period_end,omitempty"`
	Amount      decimal.Decimal `json:"amount"`
	IsAllowance bool            `json:"is_allowance"`
}
