package domain

import (
	"context"
	"errors"

	"github.com/masarmall/leasing/pkg/db/pagination"
	"github.com/shopspring/decimal"
)

type CreateItemRequest struct {
	Code              string          `json:"code"`
	Name              string          `json:"name"`
	IsStockItem       bool            `json:"is_stock_item"`
	IsRentSpace       bool            `json:"is_rent_space"`
	ServicePercentage decimal.Decimal `json:"service_percentage"`
}

type ListItemRequest struct {
	PageToken       string
	PageSize        int32
	StockItem       *bool
	RentSpace       *bool
	IncludeDisabled bool
	Codes           []string
}

type ListItemFilter struct {
	StockItem       *bool
	RentSpace       *bool
	IncludeDisabled bool
	Codes           []string
}

type ListItemResponse struct {
	pagination.PageInfo
	Items []Item `json:"items"`
}

type Service interface {
	Create(context.Context, CreateItemRequest) (Item, error)
	Get(ctx context.Context, id string) (Item, error)
	GetByCode(ctx context.Context, code string) (Item, error)
	List(context.Context, ListItemRequest) (ListItemResponse, error)
}

var (
	ErrInvalidID                = errors.New("invalid_id")
	ErrInvalidCode              = errors.New("invalid_code")
	ErrInvalidName              = errors.New("invalid_name")
	ErrInvalidServicePercentage = errors.New("invalid_service_percentage")
	ErrDuplicateCode            = errors.New("duplicate_item_code")
	ErrNotFound                 = errors.New("not_found")
)
