package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/leaseinvoice/domain"
	"github.com/masarmall/leasing/pkg/db/option"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"gorm.io/gorm"
)

const invoiceColumns = `id, invoice_number, lease_id, schedule_entry_id, tenant, item_code, posting_date,
	due_date, amount, tax_amount, grand_total, status, metadata, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, invoice *domain.LeaseInvoice) error {
	return db.WithContext(ctx).Create(invoice).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.LeaseInvoice, error) {
	var invoice domain.LeaseInvoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+` FROM lease_invoices WHERE id = ?`,
		id,
	).Scan(&invoice).Error
	if err != nil {
		return nil, err
	}
	if invoice.ID == 0 {
		return nil, nil
	}
	return &invoice, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListInvoiceFilter, page pagination.Pagination) ([]*domain.LeaseInvoice, error) {
	var invoices []*domain.LeaseInvoice
	stmt := db.WithContext(ctx).Model(&domain.LeaseInvoice{})
	if filter.LeaseID != nil {
		stmt = stmt.Where("lease_id = ?", *filter.LeaseID)
	}
	if status := strings.TrimSpace(filter.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.Order("created_at desc, id desc").Find(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}

func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE lease_invoices
		 SET status = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		to, time.Now().UTC(), id, from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ListPostedBefore(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]*domain.LeaseInvoice, error) {
	if limit <= 0 {
		limit = 500
	}
	var invoices []*domain.LeaseInvoice
	err := db.WithContext(ctx).Raw(
		`SELECT `+invoiceColumns+`
		 FROM lease_invoices
		 WHERE posting_date <= ?
		 ORDER BY updated_at DESC, id DESC
		 LIMIT ?`,
		asOf, limit,
	).Scan(&invoices).Error
	if err != nil {
		return nil, err
	}
	return invoices, nil
}
