package repository

import (
	"context"
	"fmt"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
	"gorm.io/gorm/clause"
)

type InvoiceRepository interface {
	DB() *gorm.DB
	CreateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error)
	FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error)
	UpdateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error
	// NextInvoiceNumberTx computes {YYYYMMDD}{seq+1} from the max existing
	// sequence for the day. The unique index on invoice_number is the real
	// guard — concurrent callers may get the same number and the loser
	// retries on the duplicate-key error.
	NextInvoiceNumberTx(ctx context.Context, tx *gorm.DB, date time.Time) (string, error)
	SumNetWeightByTruckDateTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) (decimal.Decimal, error)
	SumFinalAmountByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error)
	ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Invoice, error)
	List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error)
	CountByDate(ctx context.Context, date time.Time) (int64, decimal.Decimal, error)
}

type invoiceRepo struct{ db *gorm.DB }

func NewInvoiceRepository(db *gorm.DB) InvoiceRepository { return &invoiceRepo{db: db} }

func (r *invoiceRepo) DB() *gorm.DB { return r.db }

func (r *invoiceRepo) CreateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Create(inv).Error
}

func (r *invoiceRepo) FindByID(ctx context.Context, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := r.db.WithContext(ctx).Preload("Customer").Preload("Truck").First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) FindByIDForUpdateTx(ctx context.Context, tx *gorm.DB, id uuid.UUID) (*model.Invoice, error) {
	var inv model.Invoice
	err := tx.WithContext(ctx).
		Clauses(clause.Locking{Strength: "UPDATE"}).
		First(&inv, "id = ?", id).Error
	return &inv, err
}

func (r *invoiceRepo) UpdateTx(ctx context.Context, tx *gorm.DB, inv *model.Invoice) error {
	return tx.WithContext(ctx).Save(inv).Error
}

func (r *invoiceRepo) NextInvoiceNumberTx(ctx context.Context, tx *gorm.DB, date time.Time) (string, error) {
	prefix := date.Format("20060102")
	var maxSeq int
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(MAX(CAST(RIGHT(invoice_number, 4) AS INTEGER)), 0)
		   FROM invoices WHERE invoice_number LIKE ?`, prefix+"%",
	).Row().Scan(&maxSeq)
	if err != nil {
		return "", err
	}
	return fmt.Sprintf("%s%04d", prefix, maxSeq+1), nil
}

func (r *invoiceRepo) SumNetWeightByTruckDateTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(net_weight), 0) FROM invoices
		  WHERE truck_id = ? AND invoice_date = ? AND status = ?`,
		truckID, date.Format("2006-01-02"), model.InvoiceIssued,
	).Row().Scan(&sum)
	return sum, err
}

func (r *invoiceRepo) SumFinalAmountByCustomer(ctx context.Context, customerID uuid.UUID) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(final_amount), 0) FROM invoices WHERE customer_id = ?`,
		customerID,
	).Row().Scan(&sum)
	return sum, err
}

func (r *invoiceRepo) ListByCustomer(ctx context.Context, customerID uuid.UUID) ([]model.Invoice, error) {
	var invoices []model.Invoice
	err := r.db.WithContext(ctx).
		Where("customer_id = ?", customerID).
		Order("created_at ASC").
		Find(&invoices).Error
	return invoices, err
}

func (r *invoiceRepo) List(ctx context.Context, filter dto.InvoiceFilter) ([]model.Invoice, int64, error) {
	var invoices []model.Invoice
	var total int64
	offset := (filter.Page - 1) * filter.Limit

	q := r.db.WithContext(ctx).Model(&model.Invoice{})
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	if filter.Date != "" {
		q = q.Where("invoice_date = ?", filter.Date)
	} else {
		q = q.Where("invoice_date = CURRENT_DATE")
	}
	if filter.CustomerID != "" {
		q = q.Where("customer_id = ?", filter.CustomerID)
	}
	if filter.TruckID != "" {
		q = q.Where("truck_id = ?", filter.TruckID)
	}

	if err := q.Count(&total).Error; err != nil {
		return nil, 0, err
	}
	err := q.Preload("Customer").
		Order("invoice_number DESC").
		Offset(offset).Limit(filter.Limit).
		Find(&invoices).Error
	return invoices, total, err
}

func (r *invoiceRepo) CountByDate(ctx context.Context, date time.Time) (int64, decimal.Decimal, error) {
	var count int64
	var sum decimal.Decimal
	err := r.db.WithContext(ctx).Raw(
		`SELECT COUNT(*), COALESCE(SUM(final_amount), 0) FROM invoices
		  WHERE invoice_date = ? AND status = ?`,
		date.Format("2006-01-02"), model.InvoiceIssued,
	).Row().Scan(&count, &sum)
	return count, sum, err
}
