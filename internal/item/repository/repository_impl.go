package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/item/domain"
	"github.com/masarmall/leasing/pkg/db/option"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"gorm.io/gorm"
)

const itemColumns = `id, code, name, is_stock_item, is_rent_space, service_percentage, disabled, created_at, updated_at`

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) Insert(ctx context.Context, db *gorm.DB, item *domain.Item) error {
	return db.WithContext(ctx).Exec(
		`INSERT INTO items (`+itemColumns+`)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		item.ID,
		item.Code,
		item.Name,
		item.IsStockItem,
		item.IsRentSpace,
		item.ServicePercentage,
		item.Disabled,
		item.CreatedAt,
		item.UpdatedAt,
	).Error
}

func (r *repo) FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM items WHERE id = ?`,
		id,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) FindByCode(ctx context.Context, db *gorm.DB, code string) (*domain.Item, error) {
	var item domain.Item
	err := db.WithContext(ctx).Raw(
		`SELECT `+itemColumns+` FROM items WHERE code = ?`,
		code,
	).Scan(&item).Error
	if err != nil {
		return nil, err
	}
	if item.ID == 0 {
		return nil, nil
	}
	return &item, nil
}

func (r *repo) List(ctx context.Context, db *gorm.DB, filter domain.ListItemFilter, page pagination.Pagination) ([]*domain.Item, error) {
	var items []*domain.Item
	var conds []option.Condition
	if !filter.IncludeDisabled {
		conds = append(conds, option.Condition{Field: "disabled", Operator: option.EQ, Value: false})
	}
	if filter.StockItem != nil {
		conds = append(conds, option.Condition{Field: "is_stock_item", Operator: option.EQ, Value: *filter.StockItem})
	}
	if filter.RentSpace != nil {
		conds = append(conds, option.Condition{Field: "is_rent_space", Operator: option.EQ, Value: *filter.RentSpace})
	}
	if len(filter.Codes) > 0 {
		conds = append(conds, option.Condition{Field: "code", Operator: option.IN, Value: filter.Codes})
	}

	stmt := db.WithContext(ctx).Model(&domain.Item{})
	for _, cond := range conds {
		stmt = option.ApplyOperator(cond).Apply(stmt)
	}
	stmt = option.ApplyPagination(page).Apply(stmt)
	err := stmt.
		Order("created_at desc, id desc").
		Find(&items).Error
	if err != nil {
		return nil, err
	}
	return items, nil
}
