package dto

import "github.com/shopspring/decimal"

// DailySummaryResponse aggregates one trading day for the closing report.
type DailySummaryResponse struct {
	Date             string                   `json:"date"`
	InvoiceCount     int64                    `json:"invoice_count"`
	InvoicedAmount   decimal.Decimal          `json:"invoiced_amount"`
	CollectedAmount  decimal.Decimal          `json:"collected_amount"`
	Reconciliations  []ReconciliationResponse `json:"reconciliations"`
	TotalLoadWeight  decimal.Decimal          `json:"total_load_weight"`
	TotalSoldWeight  decimal.Decimal          `json:"total_sold_weight"`
	TotalWastage     decimal.Decimal          `json:"total_wastage"`
}

type WastageReportFilter struct {
	From string `form:"from" validate:"required,datetime=2006-01-02"`
	To   string `form:"to"   validate:"required,datetime=2006-01-02"`
}
