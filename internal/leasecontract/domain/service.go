package domain

import (
	"context"
	"errors"

	leaselinedomain "github.com/masarmall/leasing/internal/leaseline/domain"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

// DateLayout is the wire format of lease dates.
const DateLayout = "2006-01-02"

type DetailInput struct {
	leaselinedomain.LeaseLine
	FloorUnitID string `json:"floor_unit_id,omitempty"`
}

// UpsertLeaseRequest creates a draft lease or replaces a draft's fields.
type UpsertLeaseRequest struct {
	Tenant          string        `json:"tenant"`
	PropertyID      string        `json:"property_id"`
	FloorID         string        `json:"floor_id,omitempty"`
	LeaseStart      string        `json:"lease_start"`
	LeaseEnd        string        `json:"lease_end"`
	PayType         string        `json:"pay_type"`
	AllowancePeriod int           `json:"allowance_period"`
	InPeriod        bool          `json:"in_period"`
	IncludeVAT      bool          `json:"include_vat"`
	TaxTemplateID   string        `json:"tax_template_id,omitempty"`
	Details         []DetailInput `json:"details"`
}

type RenewLeaseRequest struct {
	LeaseEnd string `json:"lease_end"`
}

type ListLeaseRequest struct {
	PageToken  string
	PageSize   int32
	Status     string
	Tenant     string
	PropertyID string
}

type ListLeaseResponse struct {
	pagination.PageInfo
	Leases []LeaseContract `json:"leases"`
}

type CreateTaxTemplateRequest struct {
	Name  string    `json:"name"`
	Taxes []TaxRate `json:"taxes"`
}

// TaxAmount is the tax computed on an amount through a template.
type TaxAmount struct {
	AccountHead string          `json:"account_head"`
	Rate        decimal.Decimal `json:"rate"`
	Amount      decimal.Decimal `json:"amount"`
}

type Service interface {
	Create(context.Context, UpsertLeaseRequest) (LeaseContract, error)
	Update(ctx context.Context, id string, req UpsertLeaseRequest) (LeaseContract, error)
	Get(ctx context.Context, id string) (LeaseContract, error)
	List(context.Context, ListLeaseRequest) (ListLeaseResponse, error)

	Submit(ctx context.Context, id string) (LeaseContract, error)
	Terminate(ctx context.Context, id string) (LeaseContract, error)
	LegalCase(ctx context.Context, id string) (LeaseContract, error)
	Renew(ctx context.Context, id string, req RenewLeaseRequest) (LeaseContract, error)

	CreateTaxTemplate(context.Context, CreateTaxTemplateRequest) (TaxTemplate, error)
}

var (
	ErrInvalidID            = errors.New("invalid_id")
	ErrNotFound             = errors.New("lease_not_found")
	ErrInvalidTenant        = errors.New("invalid_tenant")
	ErrPropertyRequired     = errors.New("property_required")
	ErrPropertyNotFound     = errors.New("property_not_found")
	ErrLeaseDatesRequired   = errors.New("lease_dates_required")
	ErrInvalidLeaseDate     = errors.New("invalid_lease_date")
	ErrInvalidLeasePeriod   = errors.New("invalid_lease_period")
	ErrInvalidAllowance     = errors.New("invalid_allowance_period")
	ErrPayTypeRequired      = errors.New("pay_type_required")
	ErrPayTypeExceedsPeriod = errors.New("pay_type_exceeds_period")
	ErrDetailsRequired      = errors.New("details_required")
	ErrInvalidDetail        = errors.New("invalid_detail")
	ErrLeaseNotDraft        = errors.New("lease_not_draft")
	ErrLeaseNotRunning      = errors.New("lease_not_running")
	ErrTaxTemplateNotFound  = errors.New("tax_template_not_found")
	ErrInvalidTaxTemplate   = errors.New("invalid_tax_template")
	ErrDuplicateTaxTemplate = errors.New("duplicate_tax_template")
)
