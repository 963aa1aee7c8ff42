package domain

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"gorm.io/gorm"
)

type Repository interface {
	InsertProperty(ctx context.Context, db *gorm.DB, property *Property) error
	FindProperty(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Property, error)

	InsertFloor(ctx context.Context, db *gorm.DB, floor *Floor) error
	FindFloor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*Floor, error)
	ListFloors(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*Floor, error)

	InsertFloorUnit(ctx context.Context, db *gorm.DB, unit *FloorUnit) error
	FindFloorUnit(ctx context.Context, db *gorm.DB, id snowflake.ID) (*FloorUnit, error)
	ListFloorUnits(ctx context.Context, db *gorm.DB, filter FloorUnitFilter) ([]*FloorUnit, error)
	ListExitFloorUnits(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*FloorUnit, error)
	// MarkReturned reports false when the unit is not currently rented.
	MarkReturned(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error)
	CountRentedUnits(ctx context.Context, db *gorm.DB) (int64, error)

	InsertUnitLog(ctx context.Context, db *gorm.DB, log *FloorUnitLog) error
	ListUnitLogs(ctx context.Context, db *gorm.DB, unitID snowflake.ID) ([]*FloorUnitLog, error)
}

type FloorUnitFilter struct {
	PropertyID snowflake.ID
	FloorID    *snowflake.ID
}
