package service_test

// Truck and load tests:
//   - load status only moves forward: LOADED → IN_TRANSIT → RECONCILED
//   - RECONCILED cannot be set by hand
//   - loads need a positive weight and an active truck
//   - duplicate plate numbers are rejected

import (
	"context"
	"testing"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/service"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type truckFixture struct {
	svc    service.TruckService
	trucks *stubTruckRepo
	truck  *model.Truck
}

func newTruckFixture(t *testing.T) *truckFixture {
	t.Helper()
	trucks := newStubTruckRepo()
	truck := &model.Truck{PlateNumber: "AB123CD", DriverName: "Pedro", IsActive: true}
	require.NoError(t, trucks.CreateTruck(context.Background(), truck))
	return &truckFixture{
		svc:    service.NewTruckService(trucks, nil),
		trucks: trucks,
		truck:  truck,
	}
}

func (f *truckFixture) registerLoad(t *testing.T) *dto.LoadResponse {
	t.Helper()
	resp, err := f.svc.RegisterLoad(context.Background(), "manager-1", dto.RegisterLoadRequest{
		TruckID:     f.truck.ID.String(),
		TotalWeight: dec("500"),
		CagesCount:  40,
	})
	require.NoError(t, err)
	return resp
}

func TestCreateTruckDuplicatePlate(t *testing.T) {
	f := newTruckFixture(t)

	_, err := f.svc.CreateTruck(context.Background(), dto.CreateTruckRequest{
		PlateNumber: f.truck.PlateNumber,
		DriverName:  "Alguien",
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict))
}

func TestRegisterLoad(t *testing.T) {
	f := newTruckFixture(t)

	resp := f.registerLoad(t)
	assert.Equal(t, model.LoadStatusLoaded, resp.Status)
	assert.True(t, resp.TotalWeight.Equal(dec("500")))
	assert.Equal(t, f.truck.PlateNumber, resp.TruckPlate)
}

func TestRegisterLoadValidation(t *testing.T) {
	f := newTruckFixture(t)
	ctx := context.Background()

	_, err := f.svc.RegisterLoad(ctx, "manager-1", dto.RegisterLoadRequest{
		TruckID:     f.truck.ID.String(),
		TotalWeight: decimal.Zero,
		CagesCount:  40,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation))

	_, err = f.svc.RegisterLoad(ctx, "manager-1", dto.RegisterLoadRequest{
		TruckID:     uuid.NewString(),
		TotalWeight: dec("500"),
		CagesCount:  40,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))

	require.NoError(t, f.svc.DeactivateTruck(ctx, f.truck.ID))
	_, err = f.svc.RegisterLoad(ctx, "manager-1", dto.RegisterLoadRequest{
		TruckID:     f.truck.ID.String(),
		TotalWeight: dec("500"),
		CagesCount:  40,
	})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation), "inactive truck cannot be loaded")
}

func TestAdvanceLoadStatus(t *testing.T) {
	f := newTruckFixture(t)
	ctx := context.Background()

	load := f.registerLoad(t)
	id := uuid.MustParse(load.ID)

	resp, err := f.svc.AdvanceLoadStatus(ctx, "manager-1", id, dto.AdvanceLoadStatusRequest{
		Status: model.LoadStatusInTransit,
	})
	require.NoError(t, err)
	assert.Equal(t, model.LoadStatusInTransit, resp.Status)
}

func TestAdvanceLoadStatusNoBackTransition(t *testing.T) {
	f := newTruckFixture(t)
	ctx := context.Background()

	load := f.registerLoad(t)
	id := uuid.MustParse(load.ID)

	_, err := f.svc.AdvanceLoadStatus(ctx, "manager-1", id, dto.AdvanceLoadStatusRequest{
		Status: model.LoadStatusInTransit,
	})
	require.NoError(t, err)

	for _, status := range []string{model.LoadStatusLoaded, model.LoadStatusInTransit} {
		_, err = f.svc.AdvanceLoadStatus(ctx, "manager-1", id, dto.AdvanceLoadStatusRequest{Status: status})
		require.Error(t, err, "transition to %s", status)
		assert.True(t, apierror.IsKind(err, apierror.KindConflict))
	}
}

func TestAdvanceLoadStatusReconciledRejected(t *testing.T) {
	f := newTruckFixture(t)

	load := f.registerLoad(t)
	_, err := f.svc.AdvanceLoadStatus(context.Background(), "manager-1", uuid.MustParse(load.ID),
		dto.AdvanceLoadStatusRequest{Status: model.LoadStatusReconciled})
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindValidation),
		"RECONCILED is owned by the reconciliation engine")
}
