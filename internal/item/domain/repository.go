package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/pkg/db/pagination"
	"gorm.io/gorm"
)

type Repository interface {
	Insert(ctx context.Context, db *gorm.DB, item *Item) error
	FindByID(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Item, error)
	FindByCode(ctx context.Context, db *gorm.DB, code string) (*Item, error)
	List(ctx context.Context, db *gorm.DB, filter ListItemFilter, page pagination.Pagination) ([]*Item, error)
}
