package repository

import (
	"context"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/model"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

type TruckRepository interface {
	DB() *gorm.DB
	CreateTruck(ctx context.Context, t *model.Truck) error
	FindTruckByID(ctx context.Context, id uuid.UUID) (*model.Truck, error)
	ListTrucks(ctx context.Context, includeInactive bool) ([]model.Truck, error)
	UpdateTruck(ctx context.Context, t *model.Truck) error

	CreateLoad(ctx context.Context, l *model.TruckLoad) error
	FindLoadByID(ctx context.Context, id uuid.UUID) (*model.TruckLoad, error)
	UpdateLoad(ctx context.Context, l *model.TruckLoad) error
	ListLoads(ctx context.Context, filter dto.LoadFilter) ([]model.TruckLoad, error)
	SumLoadWeightByTruckDateTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) (decimal.Decimal, error)
	// MarkLoadsReconciledTx advances every load of (truck, date) to RECONCILED
	// as part of the reconciliation transaction.
	MarkLoadsReconciledTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) error
	// ListLoadedTruckIDs returns trucks that have loads on the date — input to
	// the nightly auto-reconciliation.
	ListLoadedTruckIDs(ctx context.Context, date time.Time) ([]uuid.UUID, error)
}

type truckRepo struct{ db *gorm.DB }

func NewTruckRepository(db *gorm.DB) TruckRepository { return &truckRepo{db: db} }

func (r *truckRepo) DB() *gorm.DB { return r.db }

func (r *truckRepo) CreateTruck(ctx context.Context, t *model.Truck) error {
	return r.db.WithContext(ctx).Create(t).Error
}

func (r *truckRepo) FindTruckByID(ctx context.Context, id uuid.UUID) (*model.Truck, error) {
	var t model.Truck
	err := r.db.WithContext(ctx).First(&t, "id = ?", id).Error
	return &t, err
}

func (r *truckRepo) ListTrucks(ctx context.Context, includeInactive bool) ([]model.Truck, error) {
	var trucks []model.Truck
	q := r.db.WithContext(ctx)
	if !includeInactive {
		q = q.Where("is_active = true")
	}
	err := q.Order("plate_number ASC").Find(&trucks).Error
	return trucks, err
}

func (r *truckRepo) UpdateTruck(ctx context.Context, t *model.Truck) error {
	return r.db.WithContext(ctx).Save(t).Error
}

func (r *truckRepo) CreateLoad(ctx context.Context, l *model.TruckLoad) error {
	return r.db.WithContext(ctx).Create(l).Error
}

func (r *truckRepo) FindLoadByID(ctx context.Context, id uuid.UUID) (*model.TruckLoad, error) {
	var l model.TruckLoad
	err := r.db.WithContext(ctx).Preload("Truck").First(&l, "id = ?", id).Error
	return &l, err
}

func (r *truckRepo) UpdateLoad(ctx context.Context, l *model.TruckLoad) error {
	return r.db.WithContext(ctx).Save(l).Error
}

func (r *truckRepo) ListLoads(ctx context.Context, filter dto.LoadFilter) ([]model.TruckLoad, error) {
	var loads []model.TruckLoad
	q := r.db.WithContext(ctx).Model(&model.TruckLoad{})
	if filter.Date != "" {
		q = q.Where("load_date = ?", filter.Date)
	}
	if filter.TruckID != "" {
		q = q.Where("truck_id = ?", filter.TruckID)
	}
	if filter.Status != "" && filter.Status != "all" {
		q = q.Where("status = ?", filter.Status)
	}
	err := q.Preload("Truck").Order("created_at DESC").Find(&loads).Error
	return loads, err
}

func (r *truckRepo) SumLoadWeightByTruckDateTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) (decimal.Decimal, error) {
	var sum decimal.Decimal
	err := tx.WithContext(ctx).Raw(
		`SELECT COALESCE(SUM(total_weight), 0) FROM truck_loads
		  WHERE truck_id = ? AND load_date = ?`,
		truckID, date.Format("2006-01-02"),
	).Row().Scan(&sum)
	return sum, err
}

func (r *truckRepo) MarkLoadsReconciledTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) error {
	return tx.WithContext(ctx).Model(&model.TruckLoad{}).
		Where("truck_id = ? AND load_date = ? AND status <> ?",
			truckID, date.Format("2006-01-02"), model.LoadStatusReconciled).
		Update("status", model.LoadStatusReconciled).Error
}

func (r *truckRepo) ListLoadedTruckIDs(ctx context.Context, date time.Time) ([]uuid.UUID, error) {
	var ids []uuid.UUID
	err := r.db.WithContext(ctx).Model(&model.TruckLoad{}).
		Where("load_date = ?", date.Format("2006-01-02")).
		Distinct("truck_id").
		Pluck("truck_id", &ids).Error
	return ids, err
}
