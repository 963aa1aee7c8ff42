package service

import (
	"context"
	"strings"
	"time"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/observability/logger"
	"github.com/masarmall/leasing/internal/property/domain"
	"github.com/masarmall/leasing/pkg/db"
	"github.com/shopspring/decimal"
	"go.uber.org/fx"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

type Params struct {
	fx.In

	DB    *gorm.DB
	Log   *zap.Logger
	GenID *snowflake.Node
	Repo  domain.Repository
}

type Service struct {
	db    *gorm.DB
	log   *zap.Logger
	genID *snowflake.Node
	repo  domain.Repository
}

func New(p Params) domain.Service {
	return &Service{
		db:    p.DB,
		log:   p.Log.Named("property.service"),
		genID: p.GenID,
		repo:  p.Repo,
	}
}

func (s *Service) CreateProperty(ctx context.Context, req domain.CreatePropertyRequest) (domain.Property, error) {
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Property{}, domain.ErrInvalidName
	}
	now := time.Now().UTC()
	property := domain.Property{
		ID:        s.genID.Generate(),
		Name:      name,
		Address:   strings.TrimSpace(req.Address),
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.repo.InsertProperty(ctx, s.db, &property); err != nil {
		if db.IsDuplicateKeyErr(err) {
			return domain.Property{}, domain.ErrDuplicateProperty
		}
		return domain.Property{}, err
	}
	return property, nil
}

func (s *Service) GetProperty(ctx context.Context, id string) (domain.Property, error) {
	propertyID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.Property{}, err
	}
	property, err := s.repo.FindProperty(ctx, s.db, propertyID)
	if err != nil {
		return domain.Property{}, err
	}
	if property == nil {
		return domain.Property{}, domain.ErrPropertyNotFound
	}
	return *property, nil
}

func (s *Service) CreateFloor(ctx context.Context, req domain.CreateFloorRequest) (domain.Floor, error) {
	property, err := s.requireProperty(ctx, req.PropertyID)
	if err != nil {
		return domain.Floor{}, err
	}
	name := strings.TrimSpace(req.Name)
	if name == "" {
		return domain.Floor{}, domain.ErrInvalidName
	}

	now := time.Now().UTC()
	floor := domain.Floor{
		ID:         s.genID.Generate(),
		PropertyID: property.ID,
		Name:       name,
		Submitted:  submitFlag(req.Submit),
		CreatedAt:  now,
		UpdatedAt:  now,
	}
	if err := s.repo.InsertFloor(ctx, s.db, &floor); err != nil {
		return domain.Floor{}, err
	}
	return floor, nil
}

func (s *Service) ListFloors(ctx context.Context, propertyID string) ([]domain.Floor, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, domain.ErrPropertyRequired
	}
	id, err := parseID(propertyID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	floors, err := s.repo.ListFloors(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return deref(floors), nil
}

func (s *Service) CreateFloorUnit(ctx context.Context, req domain.CreateFloorUnitRequest) (domain.FloorUnit, error) {
	unit, err := s.newUnit(ctx, req.PropertyID, req.FloorID, req.Name, req.Area)
	if err != nil {
		return domain.FloorUnit{}, err
	}
	unit.WholeSpace = req.WholeSpace
	unit.RentSpace = req.RentSpace
	unit.Tenant = strings.TrimSpace(req.Tenant)
	unit.Submitted = submitFlag(req.Submit)

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.repo.InsertFloorUnit(ctx, tx, &unit); err != nil {
			return err
		}
		return s.writeLog(ctx, tx, unit, domain.UnitActionCreate, nil)
	})
	if err != nil {
		return domain.FloorUnit{}, err
	}
	return unit, nil
}

func (s *Service) GetFloorUnit(ctx context.Context, id string) (domain.FloorUnit, error) {
	unitID, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return domain.FloorUnit{}, err
	}
	unit, err := s.repo.FindFloorUnit(ctx, s.db, unitID)
	if err != nil {
		return domain.FloorUnit{}, err
	}
	if unit == nil {
		return domain.FloorUnit{}, domain.ErrFloorUnitNotFound
	}
	return *unit, nil
}

func (s *Service) ListFloorUnits(ctx context.Context, propertyID, floorID string) ([]domain.FloorUnit, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, domain.ErrPropertyRequired
	}
	pid, err := parseID(propertyID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	filter := domain.FloorUnitFilter{PropertyID: pid}
	if strings.TrimSpace(floorID) != "" {
		fid, err := parseID(floorID, domain.ErrInvalidID)
		if err != nil {
			return nil, err
		}
		filter.FloorID = &fid
	}
	units, err := s.repo.ListFloorUnits(ctx, s.db, filter)
	if err != nil {
		return nil, err
	}
	return deref(units), nil
}

func (s *Service) ListExitFloorUnits(ctx context.Context, propertyID string) ([]domain.FloorUnit, error) {
	if strings.TrimSpace(propertyID) == "" {
		return nil, domain.ErrPropertyRequired
	}
	pid, err := parseID(propertyID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	units, err := s.repo.ListExitFloorUnits(ctx, s.db, pid)
	if err != nil {
		return nil, err
	}
	return deref(units), nil
}

func (s *Service) RentSpace(ctx context.Context, req domain.RentSpaceRequest) (domain.RentSpaceResponse, error) {
	unit, err := s.newUnit(ctx, req.PropertyID, req.FloorID, req.Name, req.Area)
	if err != nil {
		return domain.RentSpaceResponse{}, err
	}
	unit.RentSpace = true
	unit.Submitted = true
	unit.Tenant = strings.TrimSpace(req.Tenant)

	var replaced *domain.FloorUnit
	if strings.TrimSpace(req.ReplaceUnitID) != "" {
		replaceID, err := parseID(req.ReplaceUnitID, domain.ErrInvalidID)
		if err != nil {
			return domain.RentSpaceResponse{}, err
		}
		existing, err := s.repo.FindFloorUnit(ctx, s.db, replaceID)
		if err != nil {
			return domain.RentSpaceResponse{}, err
		}
		if existing == nil {
			return domain.RentSpaceResponse{}, domain.ErrFloorUnitNotFound
		}
		if err := checkReturnable(*existing); err != nil {
			return domain.RentSpaceResponse{}, err
		}
		replaced = existing
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if replaced != nil {
			if err := s.markReturned(ctx, tx, replaced.ID); err != nil {
				return err
			}
			replaced.ReturnSpace = true
			if err := s.writeLog(ctx, tx, *replaced, domain.UnitActionReturn, &unit.ID); err != nil {
				return err
			}
		}
		if err := s.repo.InsertFloorUnit(ctx, tx, &unit); err != nil {
			return err
		}
		var ref *snowflake.ID
		if replaced != nil {
			ref = &replaced.ID
		}
		return s.writeLog(ctx, tx, unit, domain.UnitActionRent, ref)
	})
	if err != nil {
		return domain.RentSpaceResponse{}, err
	}

	logger.WithContext(ctx, s.log).Info("floor unit rented",
		zap.String("floor_unit_id", unit.ID.String()),
		zap.Bool("replaced_existing", replaced != nil),
	)
	return domain.RentSpaceResponse{Unit: unit, Returned: replaced}, nil
}

func (s *Service) ReturnSpace(ctx context.Context, unitID string) (domain.FloorUnit, error) {
	unit, err := s.GetFloorUnit(ctx, unitID)
	if err != nil {
		return domain.FloorUnit{}, err
	}
	if err := checkReturnable(unit); err != nil {
		return domain.FloorUnit{}, err
	}

	err = s.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := s.markReturned(ctx, tx, unit.ID); err != nil {
			return err
		}
		unit.ReturnSpace = true
		return s.writeLog(ctx, tx, unit, domain.UnitActionReturn, nil)
	})
	if err != nil {
		return domain.FloorUnit{}, err
	}
	return unit, nil
}

func (s *Service) UnitHistory(ctx context.Context, unitID string) ([]domain.FloorUnitLog, error) {
	id, err := parseID(unitID, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	logs, err := s.repo.ListUnitLogs(ctx, s.db, id)
	if err != nil {
		return nil, err
	}
	return deref(logs), nil
}

func (s *Service) newUnit(ctx context.Context, propertyID, floorID, name string, area decimal.Decimal) (domain.FloorUnit, error) {
	property, err := s.requireProperty(ctx, propertyID)
	if err != nil {
		return domain.FloorUnit{}, err
	}
	if strings.TrimSpace(floorID) == "" {
		return domain.FloorUnit{}, domain.ErrFloorRequired
	}
	fid, err := parseID(floorID, domain.ErrInvalidID)
	if err != nil {
		return domain.FloorUnit{}, err
	}
	floor, err := s.repo.FindFloor(ctx, s.db, fid)
	if err != nil {
		return domain.FloorUnit{}, err
	}
	if floor == nil {
		return domain.FloorUnit{}, domain.ErrFloorNotFound
	}
	if floor.PropertyID != property.ID {
		return domain.FloorUnit{}, domain.ErrFloorNotInProperty
	}
	name = strings.TrimSpace(name)
	if name == "" {
		return domain.FloorUnit{}, domain.ErrInvalidName
	}
	if area.IsNegative() {
		return domain.FloorUnit{}, domain.ErrInvalidArea
	}

	now := time.Now().UTC()
	return domain.FloorUnit{
		ID:         s.genID.Generate(),
		PropertyID: property.ID,
		FloorID:    floor.ID,
		Name:       name,
		Area:       area,
		CreatedAt:  now,
		UpdatedAt:  now,
	}, nil
}

func (s *Service) requireProperty(ctx context.Context, id string) (*domain.Property, error) {
	if strings.TrimSpace(id) == "" {
		return nil, domain.ErrPropertyRequired
	}
	pid, err := parseID(id, domain.ErrInvalidID)
	if err != nil {
		return nil, err
	}
	property, err := s.repo.FindProperty(ctx, s.db, pid)
	if err != nil {
		return nil, err
	}
	if property == nil {
		return nil, domain.ErrPropertyNotFound
	}
	return property, nil
}

func (s *Service) writeLog(ctx context.Context, tx *gorm.DB, unit domain.FloorUnit, action string, ref *snowflake.ID) error {
	return s.repo.InsertUnitLog(ctx, tx, &domain.FloorUnitLog{
		ID:          s.genID.Generate(),
		FloorUnitID: unit.ID,
		PropertyID:  unit.PropertyID,
		FloorID:     unit.FloorID,
		UnitName:    unit.Name,
		Action:      action,
		Area:        unit.Area,
		Tenant:      unit.Tenant,
		RentSpace:   unit.RentSpace,
		ReturnSpace: unit.ReturnSpace,
		Disabled:    unit.Disabled,
		RefUnitID:   ref,
		CreatedAt:   time.Now().UTC(),
	})
}

// markReturned flips the unit inside tx. A unit returned since it was read
// fails with ErrUnitAlreadyReturned.
func (s *Service) markReturned(ctx context.Context, tx *gorm.DB, id snowflake.ID) error {
	ok, err := s.repo.MarkReturned(ctx, tx, id)
	if err != nil {
		return err
	}
	if !ok {
		return domain.ErrUnitAlreadyReturned
	}
	return nil
}

func checkReturnable(unit domain.FloorUnit) error {
	if !unit.RentSpace {
		return domain.ErrUnitNotRented
	}
	if unit.ReturnSpace {
		return domain.ErrUnitAlreadyReturned
	}
	return nil
}

func submitFlag(v *bool) bool {
	if v == nil {
		return true
	}
	return *v
}

func parseID(value string, invalid error) (snowflake.ID, error) {
	id, err := snowflake.ParseString(strings.TrimSpace(value))
	if err != nil || id == 0 {
		return 0, invalid
	}
	return id, nil
}

func deref[T any](items []*T) []T {
	out := make([]T, 0, len(items))
	for _, item := range items {
		if item == nil {
			continue
		}
		out = append(out, *item)
	}
	return out
}
