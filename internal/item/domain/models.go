package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Item struct {
	ID                snowflake.ID    `gorm:"primaryKey" json:"id"`
	Code              string          `gorm:"not null;uniqueIndex" json:"code"`
	Name              string          `gorm:"not null" json:"name"`
	IsStockItem       bool            `gorm:"not null;default:false" json:"is_stock_item"`
	IsRentSpace       bool            `gorm:"not null;default:false" json:"is_rent_space"`
	ServicePercentage decimal.Decimal `gorm:"type:decimal(9,4);not null;default:0" json:"service_percentage"`
	Disabled          bool            `gorm:"not null;default:false" json:"disabled"`
	CreatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt         time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Item) TableName() string { return "items" }
