package domain

import (
	"context"
	"errors"
	"time"

	"github.com/masarmall/leasing/pkg/db/pagination"
)

type ListInvoiceRequest struct {
	PageToken string
	PageSize  int32
	LeaseID   string
	Status    string
}

type ListInvoiceResponse struct {
	pagination.PageInfo
	Invoices []LeaseInvoice `json:"invoices"`
}

type UpdateStatusRequest struct {
	Status string `json:"status"`
}

// DueRunResult summarizes one invoicing pass.
type DueRunResult struct {
	Leases  int `json:"leases"`
	Created int `json:"created"`
	Skipped int `json:"skipped"`
	Failed  int `json:"failed"`
}

type Service interface {
	// CreateDueInvoices bills every due schedule entry of running leases.
	CreateDueInvoices(ctx context.Context, today time.Time, limit int) (DueRunResult, error)
	// SyncStatuses copies invoice statuses onto their schedule entries.
	SyncStatuses(ctx context.Context, today time.Time, limit int) (int, error)
	UpdateStatus(ctx context.Context, id string, req UpdateStatusRequest) (LeaseInvoice, error)
	List(context.Context, ListInvoiceRequest) (ListInvoiceResponse, error)
}

var (
	ErrInvalidID               = errors.New("invalid_id")
	ErrNotFound                = errors.New("lease_invoice_not_found")
	ErrInvalidStatus           = errors.New("invalid_invoice_status")
	ErrInvalidStatusTransition = errors.New("invalid_invoice_status_transition")
)
