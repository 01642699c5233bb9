package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// Invoice statuses.
const (
	InvoiceIssued = "issued"
	InvoiceVoided = "voided"
)

// Invoice records one sale of live-weight poultry off a truck.
// Derived fields are computed once at creation and must stay internally
// consistent with the raw inputs:
//
//	net_weight   = max(0, gross_weight - cages_weight)
//	total_amount = net_weight * unit_price
//	final_amount = total_amount * (1 - discount_percentage/100)
//
// Voiding zeroes the amount fields and reverses exactly the applied delta;
// the raw weights are kept for the audit trail but excluded from
// reconciliation sums via the status filter.
type Invoice struct {
	ID uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	// InvoiceNumber is YYYYMMDD plus a 4-digit daily sequence, e.g. 202501100007.
	InvoiceNumber string    `gorm:"type:varchar(12);uniqueIndex;not null"`
	CustomerID    uuid.UUID `gorm:"type:uuid;not null;index"`
	TruckID       uuid.UUID `gorm:"type:uuid;not null;index:idx_invoices_truck_date"`
	InvoiceDate   time.Time `gorm:"type:date;not null;index:idx_invoices_truck_date"`

	GrossWeight decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CagesWeight decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CagesCount  int             `gorm:"not null"`
	NetWeight   decimal.Decimal `gorm:"type:decimal(10,2);not null"`

	UnitPrice          decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	DiscountPercentage decimal.Decimal `gorm:"type:decimal(5,2);not null;default:0"`
	TotalAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	FinalAmount        decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	// PreviousBalance is the customer's debt immediately before this invoice;
	// CurrentBalance = PreviousBalance + FinalAmount at the moment of issue.
	PreviousBalance decimal.Decimal `gorm:"type:decimal(12,2);not null"`
	CurrentBalance  decimal.Decimal `gorm:"type:decimal(12,2);not null"`

	Status     string `gorm:"type:varchar(20);not null;default:'issued'"`
	VoidReason *string
	VoidedAt   *time.Time
	Notes      *string
	CreatedBy  string `gorm:"type:varchar(36);not null"`
	CreatedAt  time.Time
	UpdatedAt  time.Time

	Customer *Customer `gorm:"foreignKey:CustomerID"`
	Truck    *Truck    `gorm:"foreignKey:TruckID"`
}
