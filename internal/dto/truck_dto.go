package dto

import "github.com/shopspring/decimal"

// ─── Trucks ──────────────────────────────────────────────────────────────────

type CreateTruckRequest struct {
	PlateNumber string `json:"plate_number" validate:"required,min=3,max=20"`
	DriverName  string `json:"driver_name"  validate:"required,min=2"`
}

type TruckResponse struct {
	ID          string `json:"id"`
	PlateNumber string `json:"plate_number"`
	DriverName  string `json:"driver_name"`
	IsActive    bool   `json:"is_active"`
}

// ─── Loads ───────────────────────────────────────────────────────────────────

type RegisterLoadRequest struct {
	TruckID     string          `json:"truck_id" validate:"required,uuid"`
	LoadDate    string          `json:"load_date" validate:"omitempty,datetime=2006-01-02"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	CagesCount  int             `json:"cages_count" validate:"required,min=1"`
	Notes       *string         `json:"notes"`
}

type AdvanceLoadStatusRequest struct {
	Status string `json:"status" validate:"required,oneof=LOADED IN_TRANSIT RECONCILED"`
}

type LoadResponse struct {
	ID          string          `json:"id"`
	TruckID     string          `json:"truck_id"`
	TruckPlate  string          `json:"truck_plate,omitempty"`
	LoadDate    string          `json:"load_date"`
	TotalWeight decimal.Decimal `json:"total_weight"`
	CagesCount  int             `json:"cages_count"`
	Status      string          `json:"status"`
	CreatedAt   string          `json:"created_at"`
}

type LoadFilter struct {
	Date    string `form:"date" validate:"omitempty,datetime=2006-01-02"`
	TruckID string `form:"truck_id"`
	Status  string `form:"status"` // LOADED | IN_TRANSIT | RECONCILED | all
}
