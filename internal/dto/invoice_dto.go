package dto

import "github.com/shopspring/decimal"

// ─── Filter / List ──────────────────────────────────────────────────────────

// InvoiceFilter is bound from the query string of GET /v1/invoices.
type InvoiceFilter struct {
	Date       string `form:"date"`                    // YYYY-MM-DD; empty = today
	CustomerID string `form:"customer_id"`             // optional UUID
	TruckID    string `form:"truck_id"`                // optional UUID
	Status     string `form:"status,default=issued"`   // issued | voided | all
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type InvoiceListResponse struct {
	Data  []InvoiceResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}

// ─── Request DTOs ────────────────────────────────────────────────────────────

type CreateInvoiceRequest struct {
	CustomerID         string          `json:"customer_id" validate:"required,uuid"`
	TruckID            string          `json:"truck_id"    validate:"required,uuid"`
	InvoiceDate        string          `json:"invoice_date" validate:"omitempty,datetime=2006-01-02"`
	GrossWeight        decimal.Decimal `json:"gross_weight"`
	CagesWeight        decimal.Decimal `json:"cages_weight"`
	CagesCount         int             `json:"cages_count" validate:"required,min=1"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	Notes              *string         `json:"notes"`
}

type AmendInvoiceRequest struct {
	FinalAmount decimal.Decimal `json:"final_amount"`
	Reason      string          `json:"reason" validate:"required,min=5"`
}

type VoidInvoiceRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

// ─── Response DTOs ───────────────────────────────────────────────────────────

type InvoiceResponse struct {
	ID                 string          `json:"id"`
	InvoiceNumber      string          `json:"invoice_number"`
	CustomerID         string          `json:"customer_id"`
	CustomerName       string          `json:"customer_name,omitempty"`
	TruckID            string          `json:"truck_id"`
	InvoiceDate        string          `json:"invoice_date"`
	GrossWeight        decimal.Decimal `json:"gross_weight"`
	CagesWeight        decimal.Decimal `json:"cages_weight"`
	CagesCount         int             `json:"cages_count"`
	NetWeight          decimal.Decimal `json:"net_weight"`
	UnitPrice          decimal.Decimal `json:"unit_price"`
	DiscountPercentage decimal.Decimal `json:"discount_percentage"`
	TotalAmount        decimal.Decimal `json:"total_amount"`
	FinalAmount        decimal.Decimal `json:"final_amount"`
	PreviousBalance    decimal.Decimal `json:"previous_balance"`
	CurrentBalance     decimal.Decimal `json:"current_balance"`
	Status             string          `json:"status"`
	VoidReason         *string         `json:"void_reason,omitempty"`
	CreatedAt          string          `json:"created_at"`
}

type IntegrityResponse struct {
	InvoiceID string `json:"invoice_id"`
	Valid     bool   `json:"valid"`
}
