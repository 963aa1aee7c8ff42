package domain

import (
	"context"
	"errors"

	"github.com/shopspring/decimal"
)

type CreatePropertyRequest struct {
	Name    string `json:"name"`
	Address string `json:"address"`
}

type CreateFloorRequest struct {
	PropertyID string `json:"property_id"`
	Name       string `json:"name"`
	Submit     *bool  `json:"submit"`
}

type CreateFloorUnitRequest struct {
	PropertyID string          `json:"property_id"`
	FloorID    string          `json:"floor_id"`
	Name       string          `json:"name"`
	Area       decimal.Decimal `json:"area"`
	WholeSpace bool            `json:"whole_space"`
	RentSpace  bool            `json:"rent_space"`
	Tenant     string          `json:"tenant"`
	Submit     *bool           `json:"submit"`
}

// RentSpaceRequest rents a new unit. With ReplaceUnitID set the existing
// unit is returned and the new unit takes its place.
type RentSpaceRequest struct {
	PropertyID    string          `json:"property_id"`
	FloorID       string          `json:"floor_id"`
	Name          string          `json:"name"`
	Area          decimal.Decimal `json:"area"`
	Tenant        string          `json:"tenant"`
	ReplaceUnitID string          `json:"replace_unit_id"`
}

type RentSpaceResponse struct {
	Unit     FloorUnit  `json:"unit"`
	Returned *FloorUnit `json:"returned,omitempty"`
}

type Service interface {
	CreateProperty(context.Context, CreatePropertyRequest) (Property, error)
	GetProperty(ctx context.Context, id string) (Property, error)

	CreateFloor(context.Context, CreateFloorRequest) (Floor, error)
	ListFloors(ctx context.Context, propertyID string) ([]Floor, error)

	CreateFloorUnit(context.Context, CreateFloorUnitRequest) (FloorUnit, error)
	GetFloorUnit(ctx context.Context, id string) (FloorUnit, error)
	ListFloorUnits(ctx context.Context, propertyID, floorID string) ([]FloorUnit, error)
	ListExitFloorUnits(ctx context.Context, propertyID string) ([]FloorUnit, error)
	RentSpace(context.Context, RentSpaceRequest) (RentSpaceResponse, error)
	ReturnSpace(ctx context.Context, unitID string) (FloorUnit, error)
	UnitHistory(ctx context.Context, unitID string) ([]FloorUnitLog, error)
}

var (
	ErrInvalidID           = errors.New("invalid_id")
	ErrInvalidName         = errors.New("invalid_name")
	ErrInvalidArea         = errors.New("invalid_area")
	ErrPropertyRequired    = errors.New("property_required")
	ErrFloorRequired       = errors.New("floor_required")
	ErrPropertyNotFound    = errors.New("property_not_found")
	ErrFloorNotFound       = errors.New("floor_not_found")
	ErrFloorUnitNotFound   = errors.New("floor_unit_not_found")
	ErrFloorNotInProperty  = errors.New("floor_not_in_property")
	ErrUnitNotRented       = errors.New("unit_not_rented")
	ErrUnitAlreadyReturned = errors.New("unit_already_returned")
	ErrDuplicateProperty   = errors.New("duplicate_property")
)
