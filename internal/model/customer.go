package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Customer is a wholesale buyer with a running debt account.
type Customer struct {
	ID      uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Name    string    `gorm:"not null;index"`
	Phone   *string   `gorm:"type:varchar(30)"`
	Address *string
	// TotalDebt is a materialized running balance: sum of issued invoice final
	// amounts minus sum of applied payments, floored at zero. It is mutated
	// only by the settlement and payment services, always under a row lock
	// inside the same transaction that writes the invoice/payment row.
	TotalDebt decimal.Decimal `gorm:"type:decimal(12,2);not null;default:0"`
	IsActive  bool            `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
