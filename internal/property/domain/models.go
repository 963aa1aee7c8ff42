package domain

import (
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/shopspring/decimal"
)

type Property struct {
	ID        snowflake.ID `gorm:"primaryKey" json:"id"`
	Name      string       `gorm:"not null;uniqueIndex" json:"name"`
	Address   string       `gorm:"not null;default:''" json:"address"`
	CreatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Property) TableName() string { return "properties" }

type Floor struct {
	ID         snowflake.ID `gorm:"primaryKey" json:"id"`
	PropertyID snowflake.ID `gorm:"not null;index" json:"property_id"`
	Name       string       `gorm:"not null" json:"name"`
	Disabled   bool         `gorm:"not null;default:false" json:"disabled"`
	Submitted  bool         `gorm:"not null;default:false" json:"submitted"`
	CreatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt  time.Time    `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (Floor) TableName() string { return "floors" }

type FloorUnit struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	PropertyID  snowflake.ID    `gorm:"not null;index" json:"property_id"`
	FloorID     snowflake.ID    `gorm:"not null;index" json:"floor_id"`
	Name        string          `gorm:"not null" json:"name"`
	Area        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"area"`
	RentSpace   bool            `gorm:"not null;default:false" json:"rent_space"`
	ReturnSpace bool            `gorm:"not null;default:false" json:"return_space"`
	WholeSpace  bool            `gorm:"not null;default:false" json:"whole_space"`
	Disabled    bool            `gorm:"not null;default:false" json:"disabled"`
	Submitted   bool            `gorm:"not null;default:false" json:"submitted"`
	Tenant      string          `gorm:"not null;default:''" json:"tenant,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
	UpdatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"updated_at"`
}

func (FloorUnit) TableName() string { return "floor_units" }

// FloorUnitLog is an append-only snapshot of a unit after each change.
type FloorUnitLog struct {
	ID          snowflake.ID    `gorm:"primaryKey" json:"id"`
	FloorUnitID snowflake.ID    `gorm:"not null;index" json:"floor_unit_id"`
	PropertyID  snowflake.ID    `gorm:"not null" json:"property_id"`
	FloorID     snowflake.ID    `gorm:"not null" json:"floor_id"`
	UnitName    string          `gorm:"not null" json:"unit_name"`
	Action      string          `gorm:"not null" json:"action"`
	Area        decimal.Decimal `gorm:"type:decimal(18,4);not null;default:0" json:"area"`
	Tenant      string          `gorm:"not null;default:''" json:"tenant,omitempty"`
	RentSpace   bool            `gorm:"not null;default:false" json:"rent_space"`
	ReturnSpace bool            `gorm:"not null;default:false" json:"return_space"`
	Disabled    bool            `gorm:"not null;default:false" json:"disabled"`
	RefUnitID   *snowflake.ID   `json:"ref_unit_id,omitempty"`
	CreatedAt   time.Time       `gorm:"not null;default:CURRENT_TIMESTAMP" json:"created_at"`
}

func (FloorUnitLog) TableName() string { return "floor_unit_logs" }

const (
	UnitActionCreate = "create"
	UnitActionRent   = "rent"
	UnitActionReturn = "return"
)
