package repository

import (
	"context"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/property/domain"
	"github.com/masarmall/leasing/pkg/db/option"
	store "github.com/masarmall/leasing/pkg/repository"
	"gorm.io/gorm"
)

type repo struct{}

func Provide() domain.Repository {
	return &repo{}
}

func (r *repo) InsertProperty(ctx context.Context, db *gorm.DB, property *domain.Property) error {
	return db.WithContext(ctx).Create(property).Error
}

func (r *repo) FindProperty(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Property, error) {
	var property domain.Property
	err := db.WithContext(ctx).Raw(
		`SELECT id, name, address, created_at, updated_at FROM properties WHERE id = ?`,
		id,
	).Scan(&property).Error
	if err != nil {
		return nil, err
	}
	if property.ID == 0 {
		return nil, nil
	}
	return &property, nil
}

func (r *repo) InsertFloor(ctx context.Context, db *gorm.DB, floor *domain.Floor) error {
	return db.WithContext(ctx).Create(floor).Error
}

func (r *repo) FindFloor(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.Floor, error) {
	var floor domain.Floor
	err := db.WithContext(ctx).Raw(
		`SELECT id, property_id, name, disabled, submitted, created_at, updated_at FROM floors WHERE id = ?`,
		id,
	).Scan(&floor).Error
	if err != nil {
		return nil, err
	}
	if floor.ID == 0 {
		return nil, nil
	}
	return &floor, nil
}

func (r *repo) ListFloors(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*domain.Floor, error) {
	var floors []*domain.Floor
	err := db.WithContext(ctx).
		Model(&domain.Floor{}).
		Where("property_id = ?", propertyID).
		Where("disabled = ?", false).
		Where("submitted = ?", true).
		Order("name asc, id asc").
		Find(&floors).Error
	if err != nil {
		return nil, err
	}
	return floors, nil
}

func (r *repo) InsertFloorUnit(ctx context.Context, db *gorm.DB, unit *domain.FloorUnit) error {
	return db.WithContext(ctx).Create(unit).Error
}

func (r *repo) FindFloorUnit(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.FloorUnit, error) {
	var unit domain.FloorUnit
	err := db.WithContext(ctx).
		Model(&domain.FloorUnit{}).
		Where("id = ?", id).
		Limit(1).
		Find(&unit).Error
	if err != nil {
		return nil, err
	}
	if unit.ID == 0 {
		return nil, nil
	}
	return &unit, nil
}

func (r *repo) ListFloorUnits(ctx context.Context, db *gorm.DB, filter domain.FloorUnitFilter) ([]*domain.FloorUnit, error) {
	var units []*domain.FloorUnit
	stmt := db.WithContext(ctx).
		Model(&domain.FloorUnit{}).
		Where("property_id = ?", filter.PropertyID).
		Where("submitted = ?", true).
		Where("disabled = ?", false)
	if filter.FloorID != nil {
		stmt = stmt.Where("floor_id = ?", *filter.FloorID)
	}
	err := stmt.Order("name asc, id asc").Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (r *repo) ListExitFloorUnits(ctx context.Context, db *gorm.DB, propertyID snowflake.ID) ([]*domain.FloorUnit, error) {
	var units []*domain.FloorUnit
	err := db.WithContext(ctx).
		Model(&domain.FloorUnit{}).
		Where("property_id = ?", propertyID).
		Where("rent_space = ?", true).
		Where("return_space = ?", false).
		Order("name asc, id asc").
		Find(&units).Error
	if err != nil {
		return nil, err
	}
	return units, nil
}

func (r *repo) MarkReturned(ctx context.Context, db *gorm.DB, id snowflake.ID) (bool, error) {
	res := db.WithContext(ctx).Exec(
		`UPDATE floor_units SET return_space = ?, updated_at = CURRENT_TIMESTAMP
		 WHERE id = ? AND rent_space = ? AND return_space = ?`,
		true,
		id,
		true,
		false,
	)
	if res.Error != nil {
		return false, res.Error
	}
	return res.RowsAffected > 0, nil
}

func (r *repo) CountRentedUnits(ctx context.Context, db *gorm.DB) (int64, error) {
	var count int64
	err := db.WithContext(ctx).
		Model(&domain.FloorUnit{}).
		Where("rent_space = ?", true).
		Where("return_space = ?", false).
		Where("disabled = ?", false).
		Count(&count).Error
	return count, err
}

func (r *repo) InsertUnitLog(ctx context.Context, db *gorm.DB, log *domain.FloorUnitLog) error {
	return store.ProvideStore[domain.FloorUnitLog](db).Create(ctx, log)
}

// ListUnitLogs returns a unit's history oldest first.
func (r *repo) ListUnitLogs(ctx context.Context, db *gorm.DB, unitID snowflake.ID) ([]*domain.FloorUnitLog, error) {
	return store.ProvideStore[domain.FloorUnitLog](db).Find(ctx,
		&domain.FloorUnitLog{FloorUnitID: unitID},
		option.WithSortBy(option.WithQuerySortBy("created_at", "asc", nil)),
	)
}
