package dto

import "github.com/shopspring/decimal"

type PaymentFilter struct {
	Date       string `form:"date"`
	CustomerID string `form:"customer_id"`
	Status     string `form:"status,default=applied"` // applied | reversed | all
	Page       int    `form:"page,default=1"   validate:"min=1"`
	Limit      int    `form:"limit,default=50" validate:"min=1,max=200"`
}

type ApplyPaymentRequest struct {
	CustomerID  string          `json:"customer_id" validate:"required,uuid"`
	InvoiceID   *string         `json:"invoice_id"  validate:"omitempty,uuid"`
	Amount      decimal.Decimal `json:"amount"`
	Method      string          `json:"method" validate:"required,oneof=cash bank other"`
	PaymentDate string          `json:"payment_date" validate:"omitempty,datetime=2006-01-02"`
	Notes       *string         `json:"notes"`
}

type ReversePaymentRequest struct {
	Reason string `json:"reason" validate:"required,min=5"`
}

type PaymentResponse struct {
	ID           string          `json:"id"`
	CustomerID   string          `json:"customer_id"`
	InvoiceID    *string         `json:"invoice_id,omitempty"`
	Amount       decimal.Decimal `json:"amount"`
	Method       string          `json:"method"`
	PaymentDate  string          `json:"payment_date"`
	Status       string          `json:"status"`
	DebtBefore   decimal.Decimal `json:"debt_before"`
	DebtAfter    decimal.Decimal `json:"debt_after"`
	Overpayment  bool            `json:"overpayment"`
	CreatedAt    string          `json:"created_at"`
}

type PaymentListResponse struct {
	Data  []PaymentResponse `json:"data"`
	Total int64             `json:"total"`
	Page  int               `json:"page"`
	Limit int               `json:"limit"`
}
