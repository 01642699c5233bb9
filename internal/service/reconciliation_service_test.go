package service_test

// Reconciliation engine tests:
//   - wastage = load weight - sold weight, percentage rounded to 2 decimals
//   - voided invoices do not count as sold weight
//   - zero-load days reconcile with a 0% wastage, never divide by zero
//   - one record per (truck, date): reruns and concurrent attempts conflict
//   - reconciling flips the day's loads to RECONCILED
//   - nightly sweep reconciles every loaded truck, skipping done ones

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/service"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type reconciliationFixture struct {
	svc      service.ReconciliationService
	recs     *stubReconciliationRepo
	trucks   *stubTruckRepo
	invoices *stubInvoiceRepo
	truck    *model.Truck
	date     time.Time
}

func newReconciliationFixture(t *testing.T) *reconciliationFixture {
	t.Helper()
	recs := newStubReconciliationRepo()
	trucks := newStubTruckRepo()
	invoices := newStubInvoiceRepo()

	truck := &model.Truck{PlateNumber: "XY987ZT", DriverName: "Marcos", IsActive: true}
	require.NoError(t, trucks.CreateTruck(context.Background(), truck))

	return &reconciliationFixture{
		svc:      service.NewReconciliationService(recs, trucks, invoices, newMutexLocker(), nil),
		recs:     recs,
		trucks:   trucks,
		invoices: invoices,
		truck:    truck,
		date:     time.Date(2025, 1, 10, 0, 0, 0, 0, time.UTC),
	}
}

func (f *reconciliationFixture) addLoad(t *testing.T, weight string) *model.TruckLoad {
	t.Helper()
	load := &model.TruckLoad{
		TruckID:     f.truck.ID,
		LoadDate:    f.date,
		TotalWeight: dec(weight),
		CagesCount:  40,
		Status:      model.LoadStatusLoaded,
		CreatedBy:   "manager-1",
	}
	require.NoError(t, f.trucks.CreateLoad(context.Background(), load))
	return load
}

func (f *reconciliationFixture) addSale(t *testing.T, number, netWeight, status string) {
	t.Helper()
	inv := &model.Invoice{
		InvoiceNumber: number,
		CustomerID:    uuid.New(),
		TruckID:       f.truck.ID,
		InvoiceDate:   f.date,
		NetWeight:     dec(netWeight),
		Status:        status,
		CreatedBy:     "cashier-1",
	}
	require.NoError(t, f.invoices.CreateTx(context.Background(), nil, inv))
}

func (f *reconciliationFixture) request() dto.ReconcileRequest {
	return dto.ReconcileRequest{
		TruckID: f.truck.ID.String(),
		Date:    f.date.Format("2006-01-02"),
	}
}

func TestReconcileTruckDay(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()

	f.addLoad(t, "500")
	f.addSale(t, "202501100001", "300", model.InvoiceIssued)
	f.addSale(t, "202501100002", "170", model.InvoiceIssued)

	resp, err := f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
	require.NoError(t, err)

	assert.True(t, resp.LoadWeight.Equal(dec("500")))
	assert.True(t, resp.SoldWeight.Equal(dec("470")))
	assert.True(t, resp.WastageWeight.Equal(dec("30")))
	assert.True(t, resp.WastagePercentage.Equal(dec("6")), "30/500*100 = 6, got %s", resp.WastagePercentage)
	assert.Equal(t, model.ReconciliationCompleted, resp.Status)
	assert.Equal(t, f.truck.PlateNumber, resp.TruckPlate)
}

func TestReconcileExcludesVoidedInvoices(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()

	f.addLoad(t, "500")
	f.addSale(t, "202501100001", "300", model.InvoiceIssued)
	f.addSale(t, "202501100002", "170", model.InvoiceVoided)

	resp, err := f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
	require.NoError(t, err)

	assert.True(t, resp.SoldWeight.Equal(dec("300")), "voided sale must not count")
	assert.True(t, resp.WastageWeight.Equal(dec("200")))
	assert.True(t, resp.WastagePercentage.Equal(dec("40")))
}

func TestReconcileZeroLoadDay(t *testing.T) {
	f := newReconciliationFixture(t)

	// No loads registered at all — record the day with zeros, don't divide.
	resp, err := f.svc.ReconcileTruckDay(context.Background(), "manager-1", f.request())
	require.NoError(t, err)

	assert.True(t, resp.LoadWeight.IsZero())
	assert.True(t, resp.WastagePercentage.IsZero())
}

func TestReconcileTwiceRejected(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()

	f.addLoad(t, "500")
	_, err := f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
	require.NoError(t, err)

	_, err = f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict), "write-once per truck and date")
}

func TestReconcileMarksLoadsReconciled(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()

	load := f.addLoad(t, "500")
	_, err := f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
	require.NoError(t, err)

	got, err := f.trucks.FindLoadByID(ctx, load.ID)
	require.NoError(t, err)
	assert.Equal(t, model.LoadStatusReconciled, got.Status)
}

func TestReconcileConcurrentOneWinner(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()
	f.addLoad(t, "500")

	const attempts = 4
	var wg sync.WaitGroup
	errs := make([]error, attempts)
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
		}(i)
	}
	wg.Wait()

	winners, conflicts := 0, 0
	for _, err := range errs {
		switch {
		case err == nil:
			winners++
		case apierror.IsKind(err, apierror.KindConflict):
			conflicts++
		default:
			t.Fatalf("unexpected error: %v", err)
		}
	}
	assert.Equal(t, 1, winners, "exactly one reconciliation lands")
	assert.Equal(t, attempts-1, conflicts)
}

func TestReconcileUnknownTruck(t *testing.T) {
	f := newReconciliationFixture(t)

	req := f.request()
	req.TruckID = uuid.NewString()
	_, err := f.svc.ReconcileTruckDay(context.Background(), "manager-1", req)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindNotFound))
}

func TestReconcileAllForDate(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()

	// Second truck, also loaded on the date.
	other := &model.Truck{PlateNumber: "CD456EF", DriverName: "Luis", IsActive: true}
	require.NoError(t, f.trucks.CreateTruck(ctx, other))
	require.NoError(t, f.trucks.CreateLoad(ctx, &model.TruckLoad{
		TruckID: other.ID, LoadDate: f.date, TotalWeight: dec("300"),
		CagesCount: 20, Status: model.LoadStatusLoaded, CreatedBy: "manager-1",
	}))
	f.addLoad(t, "500")

	// One truck already reconciled manually — the sweep must skip it.
	_, err := f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
	require.NoError(t, err)

	created, err := f.svc.ReconcileAllForDate(ctx, "SYSTEM", f.date)
	require.NoError(t, err)
	assert.Equal(t, 1, created, "only the unreconciled truck is picked up")

	rec, err := f.svc.GetReconciliation(ctx, other.ID, f.date)
	require.NoError(t, err)
	assert.True(t, rec.LoadWeight.Equal(dec("300")))
}

func TestListReconciliationsByRange(t *testing.T) {
	f := newReconciliationFixture(t)
	ctx := context.Background()

	f.addLoad(t, "500")
	_, err := f.svc.ReconcileTruckDay(ctx, "manager-1", f.request())
	require.NoError(t, err)

	items, err := f.svc.ListReconciliations(ctx, dto.ReconciliationFilter{
		From: "2025-01-01", To: "2025-01-31",
	})
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, f.date.Format("2006-01-02"), items[0].ReconciliationDate)

	items, err = f.svc.ListReconciliations(ctx, dto.ReconciliationFilter{
		From: "2025-01-01", To: "2025-01-31", TruckID: uuid.NewString(),
	})
	require.NoError(t, err)
	assert.Empty(t, items)
}
