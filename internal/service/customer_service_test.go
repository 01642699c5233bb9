package service_test

// Customer tests:
//   - deactivation is blocked while debt is outstanding
//   - the statement recomputes the balance from invoice/payment history and
//     flags drift against the stored total_debt

import (
	"context"
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

type customerFixture struct {
	svc       service.CustomerService
	customers *stubCustomerRepo
	invoices  *stubInvoiceRepo
	payments  *stubPaymentRepo
}

func newCustomerFixture(t *testing.T) *customerFixture {
	t.Helper()
	customers := newStubCustomerRepo()
	invoices := newStubInvoiceRepo()
	payments := newStubPaymentRepo()
	return &customerFixture{
		svc:       service.NewCustomerService(customers, invoices, payments),
		customers: customers,
		invoices:  invoices,
		payments:  payments,
	}
}

func TestDeactivateCustomerWithDebt(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	customer := &model.Customer{Name: "Deudor", TotalDebt: dec("120"), IsActive: true}
	require.NoError(t, f.customers.Create(ctx, customer))

	err := f.svc.DeactivateCustomer(ctx, customer.ID)
	require.Error(t, err)
	assert.True(t, apierror.IsKind(err, apierror.KindConflict), "outstanding debt blocks deactivation")

	// Debt cleared — now it goes through.
	require.NoError(t, f.customers.UpdateDebtTx(ctx, nil, customer.ID, dec("0")))
	require.NoError(t, f.svc.DeactivateCustomer(ctx, customer.ID))

	c, err := f.customers.FindByID(ctx, customer.ID)
	require.NoError(t, err)
	assert.False(t, c.IsActive)
}

func TestGetStatement(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	customer := &model.Customer{Name: "Frigorífico Norte", TotalDebt: dec("100"), IsActive: true}
	require.NoError(t, f.customers.Create(ctx, customer))

	seed := func(number, amount, status string) {
		require.NoError(t, f.invoices.CreateTx(ctx, nil, &model.Invoice{
			InvoiceNumber: number,
			CustomerID:    customer.ID,
			TruckID:       uuid.New(),
			InvoiceDate:   time.Now(),
			FinalAmount:   dec(amount),
			Status:        status,
			CreatedBy:     "cashier-1",
		}))
	}
	seed("202501100001", "180", model.InvoiceIssued)
	seed("202501100002", "0", model.InvoiceVoided) // voided — excluded from the recompute

	require.NoError(t, f.payments.CreateTx(ctx, nil, &model.Payment{
		CustomerID:  customer.ID,
		Amount:      dec("80"),
		Method:      model.MethodCash,
		PaymentDate: time.Now(),
		Status:      model.PaymentApplied,
		CreatedBy:   "cashier-1",
	}))

	stmt, err := f.svc.GetStatement(ctx, customer.ID)
	require.NoError(t, err)

	assert.Len(t, stmt.Invoices, 2)
	assert.Len(t, stmt.Payments, 1)
	assert.True(t, stmt.StoredDebt.Equal(dec("100")))
	assert.True(t, stmt.RecomputedDebt.Equal(dec("100")), "180 issued - 80 applied")
	assert.False(t, stmt.BalanceDrift)
}

func TestGetStatementFlagsDrift(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	// Stored balance disagrees with history by more than a cent.
	customer := &model.Customer{Name: "Cliente Raro", TotalDebt: dec("500"), IsActive: true}
	require.NoError(t, f.customers.Create(ctx, customer))
	require.NoError(t, f.invoices.CreateTx(ctx, nil, &model.Invoice{
		InvoiceNumber: "202501100001",
		CustomerID:    customer.ID,
		TruckID:       uuid.New(),
		InvoiceDate:   time.Now(),
		FinalAmount:   dec("180"),
		Status:        model.InvoiceIssued,
		CreatedBy:     "cashier-1",
	}))

	stmt, err := f.svc.GetStatement(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, stmt.BalanceDrift)
	assert.True(t, stmt.RecomputedDebt.Equal(dec("180")))
}

func TestGetStatementRecomputeFloorsAtZero(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	customer := &model.Customer{Name: "Sobrepagador", TotalDebt: dec("0"), IsActive: true}
	require.NoError(t, f.customers.Create(ctx, customer))
	require.NoError(t, f.payments.CreateTx(ctx, nil, &model.Payment{
		CustomerID:  customer.ID,
		Amount:      dec("50"),
		Method:      model.MethodCash,
		PaymentDate: time.Now(),
		Status:      model.PaymentApplied,
		CreatedBy:   "cashier-1",
	}))

	stmt, err := f.svc.GetStatement(ctx, customer.ID)
	require.NoError(t, err)
	assert.True(t, stmt.RecomputedDebt.IsZero(), "payments beyond invoices floor at zero")
	assert.False(t, stmt.BalanceDrift)
}

func TestCustomerLifecycle(t *testing.T) {
	f := newCustomerFixture(t)
	ctx := context.Background()

	created, err := f.svc.CreateCustomer(ctx, dto.CreateCustomerRequest{Name: "Nuevo Cliente"})
	require.NoError(t, err)
	assert.True(t, created.TotalDebt.IsZero())
	assert.True(t, created.IsActive)

	id := uuid.MustParse(created.ID)
	updated, err := f.svc.UpdateCustomer(ctx, id, dto.UpdateCustomerRequest{Name: "Cliente Renombrado"})
	require.NoError(t, err)
	assert.Equal(t, "Cliente Renombrado", updated.Name)

	require.NoError(t, f.svc.DeactivateCustomer(ctx, id))
	require.NoError(t, f.svc.ReactivateCustomer(ctx, id))
	got, err := f.svc.GetCustomer(ctx, id)
	require.NoError(t, err)
	assert.True(t, got.IsActive)
}
