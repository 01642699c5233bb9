package model

import (
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

// TruckLoad statuses — a one-way progression, no back-transitions.
const (
	LoadStatusLoaded     = "LOADED"
	LoadStatusInTransit  = "IN_TRANSIT"
	LoadStatusReconciled = "RECONCILED"
)

// LoadStatusRank orders load statuses for the monotonic state machine.
// Unknown statuses rank -1 so any transition involving them is rejected.
func LoadStatusRank(status string) int {
	switch status {
	case LoadStatusLoaded:
		return 0
	case LoadStatusInTransit:
		return 1
	case LoadStatusReconciled:
		return 2
	default:
		return -1
	}
}

// Truck is a delivery vehicle loaded at the slaughterhouse each morning.
type Truck struct {
	ID          uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	PlateNumber string    `gorm:"type:varchar(20);uniqueIndex;not null"`
	DriverName  string    `gorm:"not null"`
	IsActive    bool      `gorm:"not null;default:true"`
	CreatedAt   time.Time
	UpdatedAt   time.Time
}

// TruckLoad records one intake of weighed cages onto a truck.
type TruckLoad struct {
	ID          uuid.UUID       `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	TruckID     uuid.UUID       `gorm:"type:uuid;not null;index:idx_truck_loads_truck_date"`
	LoadDate    time.Time       `gorm:"type:date;not null;index:idx_truck_loads_truck_date"`
	TotalWeight decimal.Decimal `gorm:"type:decimal(10,2);not null"`
	CagesCount  int             `gorm:"not null"`
	Status      string          `gorm:"type:varchar(20);not null;default:'LOADED'"`
	Notes       *string
	CreatedBy   string `gorm:"type:varchar(36);not null"`
	CreatedAt   time.Time
	UpdatedAt   time.Time

	Truck *Truck `gorm:"foreignKey:TruckID"`
}
