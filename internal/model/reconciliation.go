package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

const ReconciliationCompleted = "COMPLETED"

// DailyReconciliation ties a truck's loaded weight to its invoiced (sold)
// weight for one date. Write-once: at most one row per (truck, date), enforced
// by the composite unique index — a second attempt is rejected, never merged,
// to preserve an immutable audit trail.
type DailyReconciliation struct {
	ID                 uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TruckID            uuid.UUID       `gorm:"type:uuid;not null;uniqueIndex:idx_reconciliations_truck_date"`
	ReconciliationDate time.Time       `gorm:"type:date;not null;uniqueIndex:idx_reconciliations_truck_date"`
	LoadWeight         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	SoldWeight         decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	WastageWeight      decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	WastagePercentage  decimal.Decimal `gorm:"type:decimal(5,2);not null"`
	Status             string          `gorm:"type:varchar(20);not null;default:'COMPLETED'"`
	Notes              *string
	CreatedBy          string `gorm:"type:varchar(36);not null"`
	CreatedAt          time.Time

	Truck *Truck `gorm:"foreignKey:TruckID"`
}
