package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Payment statuses and methods.
const (
	PaymentApplied  = "applied"
	PaymentReversed = "reversed"

	MethodCash  = "cash"
	MethodBank  = "bank"
	MethodOther = "other"
)

// Payment is the only means of reducing a customer's debt. Applying a payment
// decreases total_debt by Amount, floored at zero (overpayment is recorded in
// full). Reversal re-adds the amount and marks the row reversed; payment rows
// are never deleted.
type Payment struct {
	ID         uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	CustomerID uuid.UUID `gorm:"type:uuid;not null;index"`
	// InvoiceID is optional — a payment may be unallocated.
	InvoiceID   *uuid.UUID      `gorm:"type:uuid;index"`
	Amount      decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	Method      string          `gorm:"type:varchar(20);not null"`
	PaymentDate time.Time       `gorm:"type:date;not null"`
	Notes       *string

	Status        string `gorm:"type:varchar(20);not null;default:'applied'"`
	ReversedAt    *time.Time
	ReverseReason *string
	CreatedBy     string `gorm:"type:varchar(36);not null"`
	CreatedAt     time.Time
	UpdatedAt     time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
}
