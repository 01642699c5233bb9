package dto

import "github.com/shopspring/decimal"

type CreateCustomerRequest struct {
	Name    string  `json:"name" validate:"required,min=2"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type UpdateCustomerRequest struct {
	Name    string  `json:"name"`
	Phone   *string `json:"phone"`
	Address *string `json:"address"`
}

type CustomerFilter struct {
	Search          string `form:"search"`
	IncludeInactive bool   `form:"include_inactive"`
	Page            int    `form:"page,default=1"   validate:"min=1"`
	Limit           int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type CustomerResponse struct {
	ID        string          `json:"id"`
	Name      string          `json:"name"`
	Phone     *string         `json:"phone,omitempty"`
	Address   *string         `json:"address,omitempty"`
	TotalDebt decimal.Decimal `json:"total_debt"`
	IsActive  bool            `json:"is_active"`
	CreatedAt string          `json:"created_at"`
}

type CustomerListResponse struct {
	Data  []CustomerResponse `json:"data"`
	Total int64              `json:"total"`
	Page  int                `json:"page"`
	Limit int                `json:"limit"`
}

// StatementResponse is the full ledger view of one customer: every invoice and
// payment plus the stored balance and the balance recomputed from history.
type StatementResponse struct {
	Customer       CustomerResponse  `json:"customer"`
	Invoices       []InvoiceResponse `json:"invoices"`
	Payments       []PaymentResponse `json:"payments"`
	StoredDebt     decimal.Decimal   `json:"stored_debt"`
	RecomputedDebt decimal.Decimal   `json:"recomputed_debt"`
	BalanceDrift   bool              `json:"balance_drift"`
}
