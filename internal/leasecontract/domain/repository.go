package domain

import (
	"context"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, lease *LeaseContract) error
	Update(ctx context.Context, db *gorm.DB, lease *LeaseContract) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*LeaseContract, error)
	List(ctx context.Context, db *gorm.DB, filter ListLeaseFilter, page pagination.Pagination) ([]*LeaseContract, error)
	UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, stopped bool) (bool, error)

	ReplaceDetails(ctx context.Context, db *gorm.DB, leaseID snowflake.ID, details []*LeaseContractDetail) error
	ListDetails(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]*LeaseContractDetail, error)

	// ListBillable returns running leases with unbilled entries starting on or before asOf.
	ListBillable(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]*LeaseContract, error)
	CountActive(ctx context.Context, db *gorm.DB) (int64, error)

	InsertTaxTemplate(ctx context.Context, db *gorm.DB, template *TaxTemplate) error
	FindTaxTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*TaxTemplate, error)

	InsertLog(ctx context.Context, db *gorm.DB, log *LeaseContractLog) error
	ListLogs(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]*LeaseContractLog, error)
}

type ListLeaseFilter struct {
	Status     string
	Tenant     string
	PropertyID *snowflake.ID
}
