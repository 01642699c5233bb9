package repository

import (
	"context"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

type ReconciliationRepository interface {
	DB() *gorm.DB
	ExistsTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) (bool, error)
	CreateTx(ctx context.Context, tx *gorm.DB, rec *model.DailyReconciliation) error
	FindByTruckDate(ctx context.Context, truckID uuid.UUID, date time.Time) (*model.DailyReconciliation, error)
	ListByDate(ctx context.Context, date time.Time) ([]model.DailyReconciliation, error)
	ListByDateRange(ctx context.Context, from, to time.Time) ([]model.DailyReconciliation, error)
}

type reconciliationRepo struct{ db *gorm.DB }

func NewReconciliationRepository(db *gorm.DB) ReconciliationRepository {
	return &reconciliationRepo{db: db}
}

func (r *reconciliationRepo) DB() *gorm.DB { return r.db }

func (r *reconciliationRepo) ExistsTx(ctx context.Context, tx *gorm.DB, truckID uuid.UUID, date time.Time) (bool, error) {
	var count int64
	err := tx.WithContext(ctx).Model(&model.DailyReconciliation{}).
		Where("truck_id = ? AND reconciliation_date = ?", truckID, date.Format("2006-01-02")).
		Count(&count).Error
	return count > 0, err
}

func (r *reconciliationRepo) CreateTx(ctx context.Context, tx *gorm.DB, rec *model.DailyReconciliation) error {
	return tx.WithContext(ctx).Create(rec).Error
}

func (r *reconciliationRepo) FindByTruckDate(ctx context.Context, truckID uuid.UUID, date time.Time) (*model.DailyReconciliation, error) {
	var rec model.DailyReconciliation
	err := r.db.WithContext(ctx).Preload("Truck").
		Where("truck_id = ? AND reconciliation_date = ?", truckID, date.Format("2006-01-02")).
		First(&rec).Error
	return &rec, err
}

func (r *reconciliationRepo) ListByDate(ctx context.Context, date time.Time) ([]model.DailyReconciliation, error) {
	var recs []model.DailyReconciliation
	err := r.db.WithContext(ctx).Preload("Truck").
		Where("reconciliation_date = ?", date.Format("2006-01-02")).
		Order("created_at ASC").
		Find(&recs).Error
	return recs, err
}

func (r *reconciliationRepo) ListByDateRange(ctx context.Context, from, to time.Time) ([]model.DailyReconciliation, error) {
	var recs []model.DailyReconciliation
	err := r.db.WithContext(ctx).Preload("Truck").
		Where("reconciliation_date BETWEEN ? AND ?",
			from.Format("2006-01-02"), to.Format("2006-01-02")).
		Order("reconciliation_date ASC, created_at ASC").
		Find(&recs).Error
	return recs, err
}
