package service_test

// In-memory repository stubs. The services run their transactions through
// runTx with a nil DB, so every repo method here ignores the tx argument and
// guards its maps with a mutex instead. A mutex-backed Locker stands in for
// the Redis lock so the concurrency scenarios serialize the same way the
// production lock does.

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/infra"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// ── Locker ────────────────────────────────────────────────────────────────────

type mutexLocker struct {
	mu    sync.Mutex
	locks map[string]*sync.Mutex
}

func newMutexLocker() infra.Locker {
	return &mutexLocker{locks: make(map[string]*sync.Mutex)}
}

func (l *mutexLocker) WithLock(_ context.Context, key string, fn func() error) error {
	l.mu.Lock()
	m, ok := l.locks[key]
	if !ok {
		m = &sync.Mutex{}
		l.locks[key] = m
	}
	l.mu.Unlock()

	m.Lock()
	defer m.Unlock()
	return fn()
}

// ── CustomerRepository ────────────────────────────────────────────────────────

type stubCustomerRepo struct {
	mu        sync.Mutex
	customers map[uuid.UUID]*model.Customer
}

func newStubCustomerRepo() *stubCustomerRepo {
	return &stubCustomerRepo{customers: make(map[uuid.UUID]*model.Customer)}
}

var _ repository.CustomerRepository = (*stubCustomerRepo)(nil)

func (r *stubCustomerRepo) DB() *gorm.DB { return nil }

func (r *stubCustomerRepo) Create(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c.ID == uuid.Nil {
		c.ID = uuid.New()
	}
	c.CreatedAt = time.Now()
	cloned := *c
	r.customers[c.ID] = &cloned
	return nil
}

func (r *stubCustomerRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Customer, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *c
	return &cloned, nil
}

func (r *stubCustomerRepo) FindByIDForUpdateTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Customer, error) {
	return r.FindByID(ctx, id)
}

func (r *stubCustomerRepo) UpdateDebtTx(_ context.Context, _ *gorm.DB, id uuid.UUID, debt decimal.Decimal) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	c, ok := r.customers[id]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	c.TotalDebt = debt
	return nil
}

func (r *stubCustomerRepo) Update(_ context.Context, c *model.Customer) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *c
	r.customers[c.ID] = &cloned
	return nil
}

func (r *stubCustomerRepo) SoftDelete(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[id]; ok {
		c.IsActive = false
	}
	return nil
}

func (r *stubCustomerRepo) Reactivate(_ context.Context, id uuid.UUID) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if c, ok := r.customers[id]; ok {
		c.IsActive = true
	}
	return nil
}

func (r *stubCustomerRepo) List(_ context.Context, filter dto.CustomerFilter) ([]model.Customer, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Customer
	for _, c := range r.customers {
		if !filter.IncludeInactive && !c.IsActive {
			continue
		}
		out = append(out, *c)
	}
	return out, int64(len(out)), nil
}

// ── InvoiceRepository ─────────────────────────────────────────────────────────

type stubInvoiceRepo struct {
	mu       sync.Mutex
	invoices map[uuid.UUID]*model.Invoice
	numbers  map[string]bool
	// nextNumberHook lets a test force a specific (colliding) number.
	nextNumberHook func(date time.Time) (string, bool)
}

func newStubInvoiceRepo() *stubInvoiceRepo {
	return &stubInvoiceRepo{
		invoices: make(map[uuid.UUID]*model.Invoice),
		numbers:  make(map[string]bool),
	}
}

var _ repository.InvoiceRepository = (*stubInvoiceRepo)(nil)

func (r *stubInvoiceRepo) DB() *gorm.DB { return nil }

func (r *stubInvoiceRepo) CreateTx(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.numbers[inv.InvoiceNumber] {
		return gorm.ErrDuplicatedKey
	}
	if inv.ID == uuid.Nil {
		inv.ID = uuid.New()
	}
	inv.CreatedAt = time.Now()
	cloned := *inv
	r.invoices[inv.ID] = &cloned
	r.numbers[inv.InvoiceNumber] = true
	return nil
}

func (r *stubInvoiceRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	inv, ok := r.invoices[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *inv
	return &cloned, nil
}

func (r *stubInvoiceRepo) FindByIDForUpdateTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	return r.FindByID(ctx, id)
}

func (r *stubInvoiceRepo) UpdateTx(_ context.Context, _ *gorm.DB, inv *model.Invoice) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *inv
	r.invoices[inv.ID] = &cloned
	return nil
}

func (r *stubInvoiceRepo) NextInvoiceNumberTx(_ context.Context, _ *gorm.DB, date time.Time) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.nextNumberHook != nil {
		if n, ok := r.nextNumberHook(date); ok {
			return n, nil
		}
	}
	prefix := date.Format("20060102")
	maxSeq := 0
	for num := range r.numbers {
		if len(num) == 12 && num[:8] == prefix {
			var seq int
			fmt.Sscanf(num[8:], "%d", &seq)
			if seq > maxSeq {
				maxSeq = seq
			}
		}
	}
	return fmt.Sprintf("%s%04d", prefix, maxSeq+1), nil
}

func (r *stubInvoiceRepo) SumNetWeightByTruckDateTx(_ context.Context, _ *gorm.DB, truckID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, inv := range r.invoices {
		if inv.TruckID == truckID && sameDate(inv.InvoiceDate, date) && inv.Status == model.InvoiceIssued {
			sum = sum.Add(inv.NetWeight)
		}
	}
	return sum, nil
}

func (r *stubInvoiceRepo) SumFinalAmountByCustomer(_ context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			sum = sum.Add(inv.FinalAmount)
		}
	}
	return sum, nil
}

func (r *stubInvoiceRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Invoice, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invoice
	for _, inv := range r.invoices {
		if inv.CustomerID == customerID {
			out = append(out, *inv)
		}
	}
	return out, nil
}

func (r *stubInvoiceRepo) List(_ context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Invoice
	for _, inv := range r.invoices {
		if filter.Status != "" && filter.Status != "all" && inv.Status != filter.Status {
			continue
		}
		out = append(out, *inv)
	}
	return out, int64(len(out)), nil
}

func (r *stubInvoiceRepo) CountByDate(_ context.Context, date time.Time) (int64, decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var count int64
	sum := decimal.Zero
	for _, inv := range r.invoices {
		if sameDate(inv.InvoiceDate, date) && inv.Status == model.InvoiceIssued {
			count++
			sum = sum.Add(inv.FinalAmount)
		}
	}
	return count, sum, nil
}

// ── PaymentRepository ─────────────────────────────────────────────────────────

type stubPaymentRepo struct {
	mu       sync.Mutex
	payments map[uuid.UUID]*model.Payment
}

func newStubPaymentRepo() *stubPaymentRepo {
	return &stubPaymentRepo{payments: make(map[uuid.UUID]*model.Payment)}
}

var _ repository.PaymentRepository = (*stubPaymentRepo)(nil)

func (r *stubPaymentRepo) DB() *gorm.DB { return nil }

func (r *stubPaymentRepo) CreateTx(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p.ID == uuid.Nil {
		p.ID = uuid.New()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = time.Now()
	}
	cloned := *p
	r.payments[p.ID] = &cloned
	return nil
}

func (r *stubPaymentRepo) FindByID(_ context.Context, id uuid.UUID) (*model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	p, ok := r.payments[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *p
	return &cloned, nil
}

func (r *stubPaymentRepo) FindByIDForUpdateTx(ctx context.Context, _ *gorm.DB, id uuid.UUID) (*model.Payment, error) {
	return r.FindByID(ctx, id)
}

func (r *stubPaymentRepo) UpdateTx(_ context.Context, _ *gorm.DB, p *model.Payment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *p
	r.payments[p.ID] = &cloned
	return nil
}

// backdate rewrites a payment's creation time, for reversal-window tests.
func (r *stubPaymentRepo) backdate(id uuid.UUID, createdAt time.Time) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if p, ok := r.payments[id]; ok {
		p.CreatedAt = createdAt
	}
}

func (r *stubPaymentRepo) SumAppliedByCustomer(_ context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, p := range r.payments {
		if p.CustomerID == customerID && p.Status == model.PaymentApplied {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *stubPaymentRepo) SumAppliedByDate(_ context.Context, date time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, p := range r.payments {
		if sameDate(p.PaymentDate, date) && p.Status == model.PaymentApplied {
			sum = sum.Add(p.Amount)
		}
	}
	return sum, nil
}

func (r *stubPaymentRepo) ListByCustomer(_ context.Context, customerID uuid.UUID) ([]model.Payment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.payments {
		if p.CustomerID == customerID {
			out = append(out, *p)
		}
	}
	return out, nil
}

func (r *stubPaymentRepo) List(_ context.Context, filter dto.PaymentFilter) ([]model.Payment, int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Payment
	for _, p := range r.payments {
		if filter.Status != "" && filter.Status != "all" && p.Status != filter.Status {
			continue
		}
		out = append(out, *p)
	}
	return out, int64(len(out)), nil
}

// ── TruckRepository ───────────────────────────────────────────────────────────

type stubTruckRepo struct {
	mu     sync.Mutex
	trucks map[uuid.UUID]*model.Truck
	loads  map[uuid.UUID]*model.TruckLoad
}

func newStubTruckRepo() *stubTruckRepo {
	return &stubTruckRepo{
		trucks: make(map[uuid.UUID]*model.Truck),
		loads:  make(map[uuid.UUID]*model.TruckLoad),
	}
}

var _ repository.TruckRepository = (*stubTruckRepo)(nil)

func (r *stubTruckRepo) DB() *gorm.DB { return nil }

func (r *stubTruckRepo) CreateTruck(_ context.Context, t *model.Truck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, existing := range r.trucks {
		if existing.PlateNumber == t.PlateNumber {
			return gorm.ErrDuplicatedKey
		}
	}
	if t.ID == uuid.Nil {
		t.ID = uuid.New()
	}
	cloned := *t
	r.trucks[t.ID] = &cloned
	return nil
}

func (r *stubTruckRepo) FindTruckByID(_ context.Context, id uuid.UUID) (*model.Truck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	t, ok := r.trucks[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *t
	return &cloned, nil
}

func (r *stubTruckRepo) ListTrucks(_ context.Context, includeInactive bool) ([]model.Truck, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.Truck
	for _, t := range r.trucks {
		if !includeInactive && !t.IsActive {
			continue
		}
		out = append(out, *t)
	}
	return out, nil
}

func (r *stubTruckRepo) UpdateTruck(_ context.Context, t *model.Truck) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *t
	r.trucks[t.ID] = &cloned
	return nil
}

func (r *stubTruckRepo) CreateLoad(_ context.Context, l *model.TruckLoad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if l.ID == uuid.Nil {
		l.ID = uuid.New()
	}
	l.CreatedAt = time.Now()
	cloned := *l
	r.loads[l.ID] = &cloned
	return nil
}

func (r *stubTruckRepo) FindLoadByID(_ context.Context, id uuid.UUID) (*model.TruckLoad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	l, ok := r.loads[id]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *l
	return &cloned, nil
}

func (r *stubTruckRepo) UpdateLoad(_ context.Context, l *model.TruckLoad) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	cloned := *l
	r.loads[l.ID] = &cloned
	return nil
}

func (r *stubTruckRepo) ListLoads(_ context.Context, filter dto.LoadFilter) ([]model.TruckLoad, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.TruckLoad
	for _, l := range r.loads {
		if filter.Status != "" && filter.Status != "all" && l.Status != filter.Status {
			continue
		}
		out = append(out, *l)
	}
	return out, nil
}

func (r *stubTruckRepo) SumLoadWeightByTruckDateTx(_ context.Context, _ *gorm.DB, truckID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	sum := decimal.Zero
	for _, l := range r.loads {
		if l.TruckID == truckID && sameDate(l.LoadDate, date) {
			sum = sum.Add(l.TotalWeight)
		}
	}
	return sum, nil
}

func (r *stubTruckRepo) MarkLoadsReconciledTx(_ context.Context, _ *gorm.DB, truckID uuid.UUID, date time.Time) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, l := range r.loads {
		if l.TruckID == truckID && sameDate(l.LoadDate, date) {
			l.Status = model.LoadStatusReconciled
		}
	}
	return nil
}

func (r *stubTruckRepo) ListLoadedTruckIDs(_ context.Context, date time.Time) ([]uuid.UUID, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	seen := make(map[uuid.UUID]bool)
	var ids []uuid.UUID
	for _, l := range r.loads {
		if sameDate(l.LoadDate, date) && !seen[l.TruckID] {
			seen[l.TruckID] = true
			ids = append(ids, l.TruckID)
		}
	}
	return ids, nil
}

// ── ReconciliationRepository ──────────────────────────────────────────────────

type stubReconciliationRepo struct {
	mu   sync.Mutex
	recs map[string]*model.DailyReconciliation // key: truckID|date
}

func newStubReconciliationRepo() *stubReconciliationRepo {
	return &stubReconciliationRepo{recs: make(map[string]*model.DailyReconciliation)}
}

var _ repository.ReconciliationRepository = (*stubReconciliationRepo)(nil)

func recKey(truckID uuid.UUID, date time.Time) string {
	return truckID.String() + "|" + date.Format("2006-01-02")
}

func (r *stubReconciliationRepo) DB() *gorm.DB { return nil }

func (r *stubReconciliationRepo) ExistsTx(_ context.Context, _ *gorm.DB, truckID uuid.UUID, date time.Time) (bool, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	_, ok := r.recs[recKey(truckID, date)]
	return ok, nil
}

func (r *stubReconciliationRepo) CreateTx(_ context.Context, _ *gorm.DB, rec *model.DailyReconciliation) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	key := recKey(rec.TruckID, rec.ReconciliationDate)
	if _, ok := r.recs[key]; ok {
		return gorm.ErrDuplicatedKey
	}
	if rec.ID == uuid.Nil {
		rec.ID = uuid.New()
	}
	rec.CreatedAt = time.Now()
	cloned := *rec
	r.recs[key] = &cloned
	return nil
}

func (r *stubReconciliationRepo) FindByTruckDate(_ context.Context, truckID uuid.UUID, date time.Time) (*model.DailyReconciliation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	rec, ok := r.recs[recKey(truckID, date)]
	if !ok {
		return nil, gorm.ErrRecordNotFound
	}
	cloned := *rec
	return &cloned, nil
}

func (r *stubReconciliationRepo) ListByDate(_ context.Context, date time.Time) ([]model.DailyReconciliation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.DailyReconciliation
	for _, rec := range r.recs {
		if sameDate(rec.ReconciliationDate, date) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

func (r *stubReconciliationRepo) ListByDateRange(_ context.Context, from, to time.Time) ([]model.DailyReconciliation, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []model.DailyReconciliation
	for _, rec := range r.recs {
		d := rec.ReconciliationDate
		if !d.Before(from) && !d.After(to) {
			out = append(out, *rec)
		}
	}
	return out, nil
}

// ── helpers ───────────────────────────────────────────────────────────────────

func sameDate(a, b time.Time) bool {
	return a.Format("2006-01-02") == b.Format("2006-01-02")
}
