package service

import (
	"context"
	"testing"

	"github.com/bwmarrin/snowflake"
	"github.com/masarmall/leasing/internal/property/domain"
	"github.com/masarmall/leasing/internal/property/repository"
	"github.com/masarmall/leasing/internal/testutil"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"gorm.io/gorm"
)

func newTestService(t *testing.T) domain.Service {
	db := testutil.OpenDB(t,
		&domain.Property{},
		&domain.Floor{},
		&domain.FloorUnit{},
		&domain.FloorUnitLog{},
	)
	return New(Params{DB: db, Log: zap.NewNop(), GenID: testutil.Node(t), Repo: repository.Provide()})
}

func boolPtr(v bool) *bool { return &v }

func seedFloor(t *testing.T, svc domain.Service) (domain.Property, domain.Floor) {
	t.Helper()
	ctx := context.Background()
	property, err := svc.CreateProperty(ctx, domain.CreatePropertyRequest{Name: "Masar Mall", Address: "Amman"})
	require.NoError(t, err)
	floor, err := svc.CreateFloor(ctx, domain.CreateFloorRequest{PropertyID: property.ID.String(), Name: "Ground"})
	require.NoError(t, err)
	return property, floor
}

func TestListFloorsFiltersDraftAndDisabled(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	property, floor := seedFloor(t, svc)

	_, err := svc.CreateFloor(ctx, domain.CreateFloorRequest{PropertyID: property.ID.String(), Name: "Draft", Submit: boolPtr(false)})
	require.NoError(t, err)

	floors, err := svc.ListFloors(ctx, property.ID.String())
	require.NoError(t, err)
	require.Len(t, floors, 1)
	assert.Equal(t, floor.ID, floors[0].ID)

	_, err = svc.ListFloors(ctx, "")
	assert.ErrorIs(t, err, domain.ErrPropertyRequired)
}

func TestListFloorUnitsByFloor(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	property, ground := seedFloor(t, svc)
	first, err := svc.CreateFloor(ctx, domain.CreateFloorRequest{PropertyID: property.ID.String(), Name: "First"})
	require.NoError(t, err)

	for _, req := range []domain.CreateFloorUnitRequest{
		{PropertyID: property.ID.String(), FloorID: ground.ID.String(), Name: "G-01", Area: decimal.NewFromInt(40)},
		{PropertyID: property.ID.String(), FloorID: ground.ID.String(), Name: "G-02", Area: decimal.NewFromInt(20), Submit: boolPtr(false)},
		{PropertyID: property.ID.String(), FloorID: first.ID.String(), Name: "F-01", Area: decimal.NewFromInt(60)},
	} {
		_, err := svc.CreateFloorUnit(ctx, req)
		require.NoError(t, err)
	}

	all, err := svc.ListFloorUnits(ctx, property.ID.String(), "")
	require.NoError(t, err)
	assert.Len(t, all, 2)

	onGround, err := svc.ListFloorUnits(ctx, property.ID.String(), ground.ID.String())
	require.NoError(t, err)
	require.Len(t, onGround, 1)
	assert.Equal(t, "G-01", onGround[0].Name)
}

func TestCreateFloorUnitRejectsForeignFloor(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	_, floor := seedFloor(t, svc)
	other, err := svc.CreateProperty(ctx, domain.CreatePropertyRequest{Name: "Other"})
	require.NoError(t, err)

	_, err = svc.CreateFloorUnit(ctx, domain.CreateFloorUnitRequest{
		PropertyID: other.ID.String(),
		FloorID:    floor.ID.String(),
		Name:       "X",
	})
	assert.ErrorIs(t, err, domain.ErrFloorNotInProperty)
}

func TestRentAndReturnSpace(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	property, floor := seedFloor(t, svc)

	rented, err := svc.RentSpace(ctx, domain.RentSpaceRequest{
		PropertyID: property.ID.String(),
		FloorID:    floor.ID.String(),
		Name:       "K-01",
		Area:       decimal.NewFromInt(12),
		Tenant:     "Cafe Co",
	})
	require.NoError(t, err)
	assert.True(t, rented.Unit.RentSpace)
	assert.Nil(t, rented.Returned)

	exits, err := svc.ListExitFloorUnits(ctx, property.ID.String())
	require.NoError(t, err)
	require.Len(t, exits, 1)

	replacement, err := svc.RentSpace(ctx, domain.RentSpaceRequest{
		PropertyID:    property.ID.String(),
		FloorID:       floor.ID.String(),
		Name:          "K-01B",
		Area:          decimal.NewFromInt(18),
		Tenant:        "Cafe Co",
		ReplaceUnitID: rented.Unit.ID.String(),
	})
	require.NoError(t, err)
	require.NotNil(t, replacement.Returned)
	assert.True(t, replacement.Returned.ReturnSpace)

	exits, err = svc.ListExitFloorUnits(ctx, property.ID.String())
	require.NoError(t, err)
	require.Len(t, exits, 1)
	assert.Equal(t, replacement.Unit.ID, exits[0].ID)

	returned, err := svc.ReturnSpace(ctx, replacement.Unit.ID.String())
	require.NoError(t, err)
	assert.True(t, returned.ReturnSpace)

	_, err = svc.ReturnSpace(ctx, replacement.Unit.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnitAlreadyReturned)

	history, err := svc.UnitHistory(ctx, rented.Unit.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, domain.UnitActionRent, history[0].Action)
	assert.Equal(t, domain.UnitActionReturn, history[1].Action)
}

func TestReturnSpaceRequiresRentedUnit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	property, floor := seedFloor(t, svc)
	unit, err := svc.CreateFloorUnit(ctx, domain.CreateFloorUnitRequest{
		PropertyID: property.ID.String(),
		FloorID:    floor.ID.String(),
		Name:       "G-09",
		WholeSpace: true,
	})
	require.NoError(t, err)

	_, err = svc.ReturnSpace(ctx, unit.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnitNotRented)
}

// staleUnitRepo serves floor units as they were before any return, like a
// reader that lost a race with a concurrent return.
type staleUnitRepo struct {
	domain.Repository
}

func (r staleUnitRepo) FindFloorUnit(ctx context.Context, db *gorm.DB, id snowflake.ID) (*domain.FloorUnit, error) {
	unit, err := r.Repository.FindFloorUnit(ctx, db, id)
	if unit != nil {
		unit.ReturnSpace = false
	}
	return unit, err
}

func TestReturnSpaceTwiceWritesOneReturn(t *testing.T) {
	db := testutil.OpenDB(t,
		&domain.Property{},
		&domain.Floor{},
		&domain.FloorUnit{},
		&domain.FloorUnitLog{},
	)
	node := testutil.Node(t)
	repo := repository.Provide()
	svc := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: repo})
	stale := New(Params{DB: db, Log: zap.NewNop(), GenID: node, Repo: staleUnitRepo{Repository: repo}})
	ctx := context.Background()
	property, floor := seedFloor(t, svc)

	rented, err := svc.RentSpace(ctx, domain.RentSpaceRequest{
		PropertyID: property.ID.String(),
		FloorID:    floor.ID.String(),
		Name:       "K-02",
		Area:       decimal.NewFromInt(9),
		Tenant:     "Juice Bar",
	})
	require.NoError(t, err)

	ok, err := repo.MarkReturned(ctx, db, rented.Unit.ID)
	require.NoError(t, err)
	assert.True(t, ok)
	ok, err = repo.MarkReturned(ctx, db, rented.Unit.ID)
	require.NoError(t, err)
	assert.False(t, ok)

	_, err = stale.ReturnSpace(ctx, rented.Unit.ID.String())
	assert.ErrorIs(t, err, domain.ErrUnitAlreadyReturned)

	_, err = stale.RentSpace(ctx, domain.RentSpaceRequest{
		PropertyID:    property.ID.String(),
		FloorID:       floor.ID.String(),
		Name:          "K-02B",
		Area:          decimal.NewFromInt(9),
		Tenant:        "Juice Bar",
		ReplaceUnitID: rented.Unit.ID.String(),
	})
	assert.ErrorIs(t, err, domain.ErrUnitAlreadyReturned)

	history, err := svc.UnitHistory(ctx, rented.Unit.ID.String())
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, domain.UnitActionRent, history[0].Action)

	units, err := svc.ListFloorUnits(ctx, property.ID.String(), floor.ID.String())
	require.NoError(t, err)
	assert.Len(t, units, 1)
}
