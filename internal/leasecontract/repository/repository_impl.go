package repository

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/leasecontract/domain"
	"github.com/masarmall/leasing/pkg/db/option"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"gorm.io/gorm"
)

const leaseColumns = `id, tenant, property_id, floor_id, lease_start, lease_end, pay_type,
	allowance_period, in_period, include_vat, tax_template_id, status, is_stopped, renewed_from,
	period_in_months, paid_months, total_line_count, total_amount, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, lease *domain.LeaseContract) error {
	return db.WithContext(ctx).Create(lease).Error
}

func (r *repo) Update(ctx context.Context, db *gorm.DB, lease *domain.LeaseContract) error {
	return db.WithContext(ctx).Exec(
		`UPDATE lease_contracts
		 SET tenant = ?, property_id = ?, floor_id = ?, lease_start = ?, lease_end = ?,
		     pay_type = ?, allowance_period = ?, in_period = ?, include_vat = ?, tax_template_id = ?,
		     period_in_months = ?, paid_months = ?, total_line_count = ?, total_amount = ?, updated_at = ?
		 WHERE id = ?`,
		lease.Tenant,
		lease.PropertyID,
		lease.FloorID,
		lease.LeaseStart,
		lease.LeaseEnd,
		lease.PayType,
		lease.AllowancePeriod,
		lease.InPeriod,
		lease.IncludeVAT,
		lease.TaxTemplateID,
		lease.PeriodInMonths,
		lease.PaidMonths,
		lease.TotalLineCount,
		lease.TotalAmount,
		lease.UpdatedAt,
		lease.ID,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.LeaseContract, error) {
	var lease domain.LeaseContract
	err := db.WithContext(ctx).Raw(
		`SELECT `+leaseColumns+` FROM lease_contracts WHERE id = ?`,
		id,
	).Scan(&lease).Error
	if err != nil {
		return nil, err
	}
	if lease.ID == 0 {
		return nil, nil
	}
	return &lease, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListLeaseFilter, page pagination.Pagination) ([]*domain.LeaseContract, error) {
	var leases []*domain.LeaseContract
	stmt := db.WithContext(ctx).Model(&domain.LeaseContract{})
	if status := strings.TrimSpace(filter.Status); status != "" {
		stmt = stmt.Where("status = ?", status)
	}
	if tenant := strings.TrimSpace(filter.Tenant); tenant != "" {
		stmt = stmt.Where("tenant = ?", tenant)
	}
	if filter.PropertyID != nil {
		stmt = stmt.Where("property_id = ?", *filter.PropertyID)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.Order("created_at desc, id desc").Find(&leases).Error
	if err != nil {
		return nil, err
	}
	return leases, nil
}

// UpdateStatus moves a lease from one status to another and reports whether
// the lease was still in the expected status.
func (r *repo) UpdateStatus(ctx context.Context, db *gorm.DB, id snowflake.ID, from, to string, stopped bool) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE lease_contracts
		 SET status = ?, is_stopped = ?, updated_at = ?
		 WHERE id = ? AND status = ?`,
		to, stopped, time.Now().UTC(), id, from,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) ReplaceDetails(ctx context.Context, db *gorm.DB, leaseID snowflake.ID, details []*domain.LeaseContractDetail) error {
	if err := db.WithContext(ctx).Exec(
		`DELETE FROM lease_contract_details WHERE lease_id = ?`,
		leaseID,
	).Error; err != nil {
		return err
	}
	if len(details) == 0 {
		return nil
	}
	return db.WithContext(ctx).Create(details).Error
}

func (r *repo) ListDetails(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]*domain.LeaseContractDetail, error) {
	var details []*domain.LeaseContractDetail
	err := db.WithContext(ctx).Raw(
		`SELECT id, lease_id, seq, floor_unit_id, item_reference, is_area_based, is_fixed_rate_item,
		        area, rate, service_percentage, amount, created_at
		 FROM lease_contract_details
		 WHERE lease_id = ?
		 ORDER BY seq ASC`,
		leaseID,
	).Scan(&details).Error
	if err != nil {
		return nil, err
	}
	return details, nil
}

func (r *repo) ListBillable(ctx context.Context, db *gorm.DB, asOf time.Time, limit int) ([]*domain.LeaseContract, error) {
	if limit <= 0 {
		limit = 200
	}
	var leases []*domain.LeaseContract
	err := db.WithContext(ctx).Raw(
		`SELECT `+leaseColumns+`
		 FROM lease_contracts
		 WHERE status = ? AND is_stopped = ?
		   AND EXISTS (
		     SELECT 1 FROM lease_schedule_entries e
		     WHERE e.lease_id = lease_contracts.id
		       AND e.is_allowance = ?
		       AND e.invoice_number = ''
		       AND e.period_start IS NOT NULL
		       AND e.period_start <= ?
		   )
		 ORDER BY lease_start ASC, id ASC
		 LIMIT ?`,
		domain.StatusRent, false, false, asOf, limit,
	).Scan(&leases).Error
	if err != nil {
		return nil, err
	}
	return leases, nil
}

func (r *repo) CountActive(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).Model(&domain.LeaseContract{}).
		Where("status = ?", domain.StatusRent).
		Where("is_stopped = ?", false).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertTaxTemplate(ctx context.Context, db *gorm.DB, template *domain.TaxTemplate) error {
	return db.WithContext(ctx).Create(template).Error
}

func (r *repo) FindTaxTemplate(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.TaxTemplate, error) {
	var template domain.TaxTemplate
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, taxes, created_at FROM tax_templates WHERE id = ?`,
		id,
	).Scan(&template).Error
	if err != nil {
		return nil, err
	}
	if template.ID == 0 {
		return nil, nil
	}
	return &template, nil
}

func (r *repo) InsertLog(ctx context.Context, db *gorm.DB, log *domain.LeaseContractLog) error {
	return db.WithContext(ctx).Create(log).Error
}

func (r *repo) ListLogs(ctx context.Context, db *gorm.DB, leaseID snowflake.ID) ([]*domain.LeaseContractLog, error) {
	var logs []*domain.LeaseContractLog
	err := db.WithContext(ctx).Raw(
		`SELECT id, lease_id, action, status, snapshot, created_at
		 FROM lease_contract_logs
		 WHERE lease_id = ?
		 ORDER BY created_at ASC, id ASC`,
		leaseID,
	).Scan(&logs).Error
	if err != nil {
		return nil, err
	}
	return logs, nil
}
