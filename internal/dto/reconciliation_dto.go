package dto

import "github.com/shopspring/decimal"

type ReconcileRequest struct {
	TruckID string `json:"truck_id" validate:"required,uuid"`
	Date    string `json:"date"     validate:"required,datetime=2006-01-02"`
	Notes   *string `json:"notes"`
}

type ReconciliationResponse struct {
	ID                 string          `json:"id"`
	TruckID            string          `json:"truck_id"`
	TruckPlate         string          `json:"truck_plate,omitempty"`
	ReconciliationDate string          `json:"reconciliation_date"`
	LoadWeight         decimal.Decimal `json:"load_weight"`
	SoldWeight         decimal.Decimal `json:"sold_weight"`
	WastageWeight      decimal.Decimal `json:"wastage_weight"`
	WastagePercentage  decimal.Decimal `json:"wastage_percentage"`
	Status             string          `json:"status"`
	CreatedAt          string          `json:"created_at"`
}

type ReconciliationFilter struct {
	From    string `form:"from" validate:"omitempty,datetime=2006-01-02"`
	To      string `form:"to"   validate:"omitempty,datetime=2006-01-02"`
	TruckID string `form:"truck_id"`
}
