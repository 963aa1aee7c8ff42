package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, invoice *LeaseInvoice) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LeaseInvoice, error)
	List(ctx context.Context, db *gorm.DB, filter ListInvoiceFilter, page pagination.Pagination) ([]*LeaseInvoice, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string) (bool, error)
	// ListPostedBefore returns invoices posted on or before asOf, most recently updated first.
	ListPostedBefore(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]*LeaseInvoice, error)
}

type ListInvoiceFilter struct {
	LeaseID *snowflake.ID
	Status  string
}
