package repository

import (
	"context"

	"github.com/Alishanbouraa/chickensap/internal/model"

	"gorm.io/gorm"
)

type AuditRepository interface {
	Create(ctx context.Context, e *model.AuditEntry) error
	ListByRecord(ctx context.Context, table, recordID string, limit int) ([]model.AuditEntry, error)
}

type auditRepo struct{ db *gorm.DB }

func NewAuditRepository(db *gorm.DB) AuditRepository { return &auditRepo{db: db} }

func (r *auditRepo) Create(ctx context.Context, e *model.AuditEntry) error {
	return r.db.WithContext(ctx).Create(e).Error
}

func (r *auditRepo) ListByRecord(ctx context.Context, table, recordID string, limit int) ([]model.AuditEntry, error) {
	if limit < 1 {
		limit = 100
	}
	var entries []model.AuditEntry
	err := r.db.WithContext(ctx).
		Where("table_name = ? AND record_id = ?", table, recordID).
		Order("created_at DESC").
		Limit(limit).
		Find(&entries).Error
	return entries, err
}
