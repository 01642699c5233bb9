package service

import (
	"context"
	"errors"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/infra"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/repository"
	"github.com/Alishanbouraa/chickensap/internal/worker"

	"github.com/google/uuid"
	"github.com/rs/zerolog/log"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"
)

// numberRetryAttempts bounds the invoice-number collision retry loop. The
// unique index is the real guard; retrying re-runs the whole transaction
// with a freshly computed sequence.
const numberRetryAttempts = 3

type SettlementService interface {
	CreateInvoice(ctx context.Context, actorID string, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error)
	AmendInvoiceAmount(ctx context.Context, actorID string, id uuid.UUID, req dto.AmendInvoiceRequest) (*dto.InvoiceResponse, error)
	VoidInvoice(ctx context.Context, actorID string, id uuid.UUID, req dto.VoidInvoiceRequest) (*dto.InvoiceResponse, error)
	GetInvoice(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error)
	ListInvoices(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error)
	ValidateIntegrity(ctx context.Context, id uuid.UUID) (*dto.IntegrityResponse, error)
}

type settlementService struct {
	invoices   repository.InvoiceRepository
	customers  repository.CustomerRepository
	trucks     repository.TruckRepository
	locker     infra.Locker
	dispatcher *worker.Dispatcher
}

func NewSettlementService(
	invoices repository.InvoiceRepository,
	customers repository.CustomerRepository,
	trucks repository.TruckRepository,
	locker infra.Locker,
	dispatcher *worker.Dispatcher,
) SettlementService {
	return &settlementService{
		invoices:   invoices,
		customers:  customers,
		trucks:     trucks,
		locker:     locker,
		dispatcher: dispatcher,
	}
}

// ── CreateInvoice ─────────────────────────────────────────────────────────────
// Full settlement in one atomic unit:
//  1. Validate inputs, customer and truck (pre-flight, outside TX)
//  2. Compute net_weight / total_amount / final_amount
//  3. Under the per-customer lock, BEGIN TX: lock customer row, generate
//     invoice number, persist invoice, bump customer debt
//  4. Retry the whole TX on invoice-number collision (bounded)
//  5. (async) dispatch audit entries

func (s *settlementService) CreateInvoice(ctx context.Context, actorID string, req dto.CreateInvoiceRequest) (*dto.InvoiceResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apierror.Validation("invalid customer_id")
	}
	truckID, err := uuid.Parse(req.TruckID)
	if err != nil {
		return nil, apierror.Validation("invalid truck_id")
	}
	invoiceDate, err := parseDateOrToday(req.InvoiceDate)
	if err != nil {
		return nil, err
	}

	if !req.GrossWeight.IsPositive() {
		return nil, apierror.Validation("gross_weight must be greater than zero")
	}
	if req.CagesWeight.IsNegative() {
		return nil, apierror.Validation("cages_weight must not be negative")
	}
	if req.CagesWeight.GreaterThanOrEqual(req.GrossWeight) {
		return nil, apierror.Validation("cages_weight must be less than gross_weight")
	}
	if req.UnitPrice.IsNegative() {
		return nil, apierror.Validation("unit_price must not be negative")
	}
	if req.DiscountPercentage.IsNegative() || req.DiscountPercentage.GreaterThan(oneHundred) {
		return nil, apierror.Validation("discount_percentage must be between 0 and 100")
	}

	customer, err := s.customers.FindByID(ctx, customerID)
	if err != nil {
		return nil, apierror.NotFound("customer %s not found", req.CustomerID)
	}
	if !customer.IsActive {
		return nil, apierror.Validation("customer %s is inactive", customer.Name)
	}
	truck, err := s.trucks.FindTruckByID(ctx, truckID)
	if err != nil {
		return nil, apierror.NotFound("truck %s not found", req.TruckID)
	}
	if !truck.IsActive {
		return nil, apierror.Validation("truck %s is inactive", truck.PlateNumber)
	}

	netWeight := req.GrossWeight.Sub(req.CagesWeight)
	totalAmount := netWeight.Mul(req.UnitPrice).Round(2)
	finalAmount := totalAmount.Mul(oneHundred.Sub(req.DiscountPercentage)).Div(oneHundred).Round(2)

	var invoice model.Invoice
	var debtBefore decimal.Decimal

	lockErr := withLock(ctx, s.locker, "customer:"+customerID.String(), func() error {
		for attempt := 0; attempt < numberRetryAttempts; attempt++ {
			txErr := runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
				locked, err := s.customers.FindByIDForUpdateTx(ctx, tx, customerID)
				if err != nil {
					return err
				}
				debtBefore = locked.TotalDebt

				number, err := s.invoices.NextInvoiceNumberTx(ctx, tx, invoiceDate)
				if err != nil {
					return err
				}

				currentBalance := locked.TotalDebt.Add(finalAmount)
				invoice = model.Invoice{
					InvoiceNumber:      number,
					CustomerID:         customerID,
					TruckID:            truckID,
					InvoiceDate:        invoiceDate,
					GrossWeight:        req.GrossWeight,
					CagesWeight:        req.CagesWeight,
					CagesCount:         req.CagesCount,
					NetWeight:          netWeight,
					UnitPrice:          req.UnitPrice,
					DiscountPercentage: req.DiscountPercentage,
					TotalAmount:        totalAmount,
					FinalAmount:        finalAmount,
					PreviousBalance:    locked.TotalDebt,
					CurrentBalance:     currentBalance,
					Status:             model.InvoiceIssued,
					Notes:              req.Notes,
					CreatedBy:          actorID,
				}
				if err := s.invoices.CreateTx(ctx, tx, &invoice); err != nil {
					return err
				}
				return s.customers.UpdateDebtTx(ctx, tx, customerID, currentBalance)
			})
			if errors.Is(txErr, gorm.ErrDuplicatedKey) {
				log.Warn().Int("attempt", attempt+1).
					Str("date", invoiceDate.Format("2006-01-02")).
					Msg("invoice number collision, retrying")
				continue
			}
			return txErr
		}
		return apierror.Conflict("invoice number collision persisted after %d attempts", numberRetryAttempts)
	})
	if lockErr != nil {
		return nil, lockErr
	}

	enqueueAudit(ctx, s.dispatcher, "invoices", "INSERT", invoice.ID.String(), actorID, nil, &invoice)
	enqueueAudit(ctx, s.dispatcher, "customers", "UPDATE", customerID.String(), actorID,
		map[string]string{"total_debt": debtBefore.String()},
		map[string]string{"total_debt": invoice.CurrentBalance.String()})

	resp := invoiceToResponse(&invoice)
	resp.CustomerName = customer.Name
	return resp, nil
}

// ── AmendInvoiceAmount ────────────────────────────────────────────────────────
// Applies the difference between the new and the stored final amount to the
// customer balance. Always delta-based so concurrent unrelated invoices and
// payments are unaffected.

func (s *settlementService) AmendInvoiceAmount(ctx context.Context, actorID string, id uuid.UUID, req dto.AmendInvoiceRequest) (*dto.InvoiceResponse, error) {
	if req.FinalAmount.IsNegative() {
		return nil, apierror.Validation("final_amount must not be negative")
	}

	existing, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", id)
	}

	var invoice *model.Invoice
	var debtBefore, debtAfter decimal.Decimal

	lockErr := withLock(ctx, s.locker, "customer:"+existing.CustomerID.String(), func() error {
		return runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
			inv, err := s.invoices.FindByIDForUpdateTx(ctx, tx, id)
			if err != nil {
				return apierror.NotFound("invoice %s not found", id)
			}
			if inv.Status != model.InvoiceIssued {
				return apierror.Conflict("invoice %s is %s and cannot be amended", inv.InvoiceNumber, inv.Status)
			}

			customer, err := s.customers.FindByIDForUpdateTx(ctx, tx, inv.CustomerID)
			if err != nil {
				return err
			}

			delta := req.FinalAmount.Sub(inv.FinalAmount)
			debtBefore = customer.TotalDebt
			debtAfter = clampDebt(customer.TotalDebt.Add(delta), customer.ID.String(), "amend_invoice")

			inv.FinalAmount = req.FinalAmount
			inv.CurrentBalance = inv.PreviousBalance.Add(req.FinalAmount)
			if err := s.invoices.UpdateTx(ctx, tx, inv); err != nil {
				return err
			}
			if err := s.customers.UpdateDebtTx(ctx, tx, customer.ID, debtAfter); err != nil {
				return err
			}
			invoice = inv
			return nil
		})
	})
	if lockErr != nil {
		return nil, lockErr
	}

	enqueueAudit(ctx, s.dispatcher, "invoices", "UPDATE", id.String(), actorID,
		map[string]string{"final_amount": existing.FinalAmount.String()},
		map[string]string{"final_amount": invoice.FinalAmount.String(), "reason": req.Reason})
	enqueueAudit(ctx, s.dispatcher, "customers", "UPDATE", invoice.CustomerID.String(), actorID,
		map[string]string{"total_debt": debtBefore.String()},
		map[string]string{"total_debt": debtAfter.String()})

	return invoiceToResponse(invoice), nil
}

// ── VoidInvoice ───────────────────────────────────────────────────────────────
// Reverses exactly the amount previously applied — the stored final_amount,
// never a re-derivation — so the round-trip restores the pre-invoice balance
// to the cent. A second void of the same invoice is rejected, never
// double-subtracted.

func (s *settlementService) VoidInvoice(ctx context.Context, actorID string, id uuid.UUID, req dto.VoidInvoiceRequest) (*dto.InvoiceResponse, error) {
	existing, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", id)
	}

	var invoice *model.Invoice
	var debtBefore, debtAfter decimal.Decimal

	lockErr := withLock(ctx, s.locker, "customer:"+existing.CustomerID.String(), func() error {
		return runTx(ctx, s.invoices.DB(), func(tx *gorm.DB) error {
			inv, err := s.invoices.FindByIDForUpdateTx(ctx, tx, id)
			if err != nil {
				return apierror.NotFound("invoice %s not found", id)
			}
			if inv.Status == model.InvoiceVoided {
				return apierror.Conflict("invoice %s is already voided", inv.InvoiceNumber)
			}

			customer, err := s.customers.FindByIDForUpdateTx(ctx, tx, inv.CustomerID)
			if err != nil {
				return err
			}

			debtBefore = customer.TotalDebt
			debtAfter = clampDebt(customer.TotalDebt.Sub(inv.FinalAmount), customer.ID.String(), "void_invoice")

			now := time.Now()
			inv.Status = model.InvoiceVoided
			inv.TotalAmount = decimal.Zero
			inv.FinalAmount = decimal.Zero
			inv.CurrentBalance = inv.PreviousBalance
			inv.VoidReason = &req.Reason
			inv.VoidedAt = &now
			if err := s.invoices.UpdateTx(ctx, tx, inv); err != nil {
				return err
			}
			if err := s.customers.UpdateDebtTx(ctx, tx, customer.ID, debtAfter); err != nil {
				return err
			}
			invoice = inv
			return nil
		})
	})
	if lockErr != nil {
		return nil, lockErr
	}

	enqueueAudit(ctx, s.dispatcher, "invoices", "UPDATE", id.String(), actorID,
		map[string]string{"status": model.InvoiceIssued, "final_amount": existing.FinalAmount.String()},
		map[string]string{"status": model.InvoiceVoided, "reason": req.Reason})
	enqueueAudit(ctx, s.dispatcher, "customers", "UPDATE", invoice.CustomerID.String(), actorID,
		map[string]string{"total_debt": debtBefore.String()},
		map[string]string{"total_debt": debtAfter.String()})

	return invoiceToResponse(invoice), nil
}

func (s *settlementService) GetInvoice(ctx context.Context, id uuid.UUID) (*dto.InvoiceResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", id)
	}
	resp := invoiceToResponse(inv)
	if inv.Customer != nil {
		resp.CustomerName = inv.Customer.Name
	}
	return resp, nil
}

func (s *settlementService) ListInvoices(ctx context.Context, filter dto.InvoiceFilter) (*dto.InvoiceListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	invoices, total, err := s.invoices.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		resp := invoiceToResponse(&invoices[i])
		if invoices[i].Customer != nil {
			resp.CustomerName = invoices[i].Customer.Name
		}
		items = append(items, *resp)
	}
	return &dto.InvoiceListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

// ValidateIntegrity recomputes the derived fields from the stored raw inputs
// and compares to the cent. Voided invoices pass by definition — their amount
// fields are intentionally zeroed. Drift detection only, never part of the
// write path.
func (s *settlementService) ValidateIntegrity(ctx context.Context, id uuid.UUID) (*dto.IntegrityResponse, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("invoice %s not found", id)
	}
	resp := &dto.IntegrityResponse{InvoiceID: id.String()}
	if inv.Status == model.InvoiceVoided {
		resp.Valid = true
		return resp, nil
	}

	netWeight := inv.GrossWeight.Sub(inv.CagesWeight)
	if netWeight.IsNegative() {
		netWeight = decimal.Zero
	}
	totalAmount := netWeight.Mul(inv.UnitPrice)
	finalAmount := totalAmount.Mul(oneHundred.Sub(inv.DiscountPercentage)).Div(oneHundred)
	currentBalance := inv.PreviousBalance.Add(inv.FinalAmount)

	resp.Valid = withinEpsilon(netWeight, inv.NetWeight) &&
		withinEpsilon(totalAmount, inv.TotalAmount) &&
		withinEpsilon(finalAmount, inv.FinalAmount) &&
		withinEpsilon(currentBalance, inv.CurrentBalance)
	return resp, nil
}

func invoiceToResponse(inv *model.Invoice) *dto.InvoiceResponse {
	return &dto.InvoiceResponse{
		ID:                 inv.ID.String(),
		InvoiceNumber:      inv.InvoiceNumber,
		CustomerID:         inv.CustomerID.String(),
		TruckID:            inv.TruckID.String(),
		InvoiceDate:        inv.InvoiceDate.Format("2006-01-02"),
		GrossWeight:        inv.GrossWeight,
		CagesWeight:        inv.CagesWeight,
		CagesCount:         inv.CagesCount,
		NetWeight:          inv.NetWeight,
		UnitPrice:          inv.UnitPrice,
		DiscountPercentage: inv.DiscountPercentage,
		TotalAmount:        inv.TotalAmount,
		FinalAmount:        inv.FinalAmount,
		PreviousBalance:    inv.PreviousBalance,
		CurrentBalance:     inv.CurrentBalance,
		Status:             inv.Status,
		VoidReason:         inv.VoidReason,
		CreatedAt:          inv.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
