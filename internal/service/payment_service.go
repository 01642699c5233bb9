package service

import (
	"context"
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

// reversalWindow is how long after creation a payment may still be reversed.
// Older payments are final.
const reversalWindow = 24 * time.Hour

type PaymentService interface {
	ApplyPayment(ctx context.Context, actorID string, req dto.ApplyPaymentRequest) (*dto.PaymentResponse, error)
	ReversePayment(ctx context.Context, actorID string, id uuid.UUID, req dto.ReversePaymentRequest) (*dto.PaymentResponse, error)
	GetPayment(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error)
	ListPayments(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error)
}

type paymentService struct {
	payments   repository.PaymentRepository
	customers  repository.CustomerRepository
	invoices   repository.InvoiceRepository
	locker     infra.Locker
	dispatcher *worker.Dispatcher
}

func NewPaymentService(
	payments repository.PaymentRepository,
	customers repository.CustomerRepository,
	invoices repository.InvoiceRepository,
	locker infra.Locker,
	dispatcher *worker.Dispatcher,
) PaymentService {
	return &paymentService{
		payments:   payments,
		customers:  customers,
		invoices:   invoices,
		locker:     locker,
		dispatcher: dispatcher,
	}
}

// ── ApplyPayment ──────────────────────────────────────────────────────────────
// Payments are the only means of reducing debt. The payment row and the debt
// update commit in the same transaction under the customer lock. Overpayment
// is allowed: the payment is recorded in full and the debt floors at zero.

func (s *paymentService) ApplyPayment(ctx context.Context, actorID string, req dto.ApplyPaymentRequest) (*dto.PaymentResponse, error) {
	customerID, err := uuid.Parse(req.CustomerID)
	if err != nil {
		return nil, apierror.Validation("invalid customer_id")
	}
	if !req.Amount.IsPositive() {
		return nil, apierror.Validation("amount must be greater than zero")
	}
	paymentDate, err := parseDateOrToday(req.PaymentDate)
	if err != nil {
		return nil, err
	}

	var invoiceID *uuid.UUID
	if req.InvoiceID != nil && *req.InvoiceID != "" {
		parsed, err := uuid.Parse(*req.InvoiceID)
		if err != nil {
			return nil, apierror.Validation("invalid invoice_id")
		}
		inv, err := s.invoices.FindByID(ctx, parsed)
		if err != nil {
			return nil, apierror.NotFound("invoice %s not found", *req.InvoiceID)
		}
		if inv.CustomerID != customerID {
			return nil, apierror.Validation("invoice %s belongs to a different customer", inv.InvoiceNumber)
		}
		invoiceID = &parsed
	}

	if _, err := s.customers.FindByID(ctx, customerID); err != nil {
		return nil, apierror.NotFound("customer %s not found", req.CustomerID)
	}

	var payment model.Payment
	var debtBefore, debtAfter decimal.Decimal

	lockErr := withLock(ctx, s.locker, "customer:"+customerID.String(), func() error {
		return runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
			customer, err := s.customers.FindByIDForUpdateTx(ctx, tx, customerID)
			if err != nil {
				return err
			}
			debtBefore = customer.TotalDebt
			debtAfter = clampDebt(customer.TotalDebt.Sub(req.Amount), customerID.String(), "apply_payment")

			payment = model.Payment{
				CustomerID:  customerID,
				InvoiceID:   invoiceID,
				Amount:      req.Amount,
				Method:      req.Method,
				PaymentDate: paymentDate,
				Notes:       req.Notes,
				Status:      model.PaymentApplied,
				CreatedBy:   actorID,
			}
			if err := s.payments.CreateTx(ctx, tx, &payment); err != nil {
				return err
			}
			return s.customers.UpdateDebtTx(ctx, tx, customerID, debtAfter)
		})
	})
	if lockErr != nil {
		return nil, lockErr
	}

	overpayment := req.Amount.GreaterThan(debtBefore)
	if overpayment {
		log.Warn().
			Str("customer_id", customerID.String()).
			Str("amount", req.Amount.String()).
			Str("debt_before", debtBefore.String()).
			Msg("payment exceeds outstanding debt, recorded in full")
	}

	enqueueAudit(ctx, s.dispatcher, "payments", "INSERT", payment.ID.String(), actorID, nil, &payment)
	enqueueAudit(ctx, s.dispatcher, "customers", "UPDATE", customerID.String(), actorID,
		map[string]string{"total_debt": debtBefore.String()},
		map[string]string{"total_debt": debtAfter.String()})

	resp := paymentToResponse(&payment)
	resp.DebtBefore = debtBefore
	resp.DebtAfter = debtAfter
	resp.Overpayment = overpayment
	return resp, nil
}

// ── ReversePayment ────────────────────────────────────────────────────────────
// Re-adds the payment's amount to the customer debt and marks the row
// reversed. Only allowed within the reversal window; a second reversal is
// rejected so the delta can never be double-applied.

func (s *paymentService) ReversePayment(ctx context.Context, actorID string, id uuid.UUID, req dto.ReversePaymentRequest) (*dto.PaymentResponse, error) {
	existing, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("payment %s not found", id)
	}

	var payment *model.Payment
	var debtBefore, debtAfter decimal.Decimal

	lockErr := withLock(ctx, s.locker, "customer:"+existing.CustomerID.String(), func() error {
		return runTx(ctx, s.payments.DB(), func(tx *gorm.DB) error {
			p, err := s.payments.FindByIDForUpdateTx(ctx, tx, id)
			if err != nil {
				return apierror.NotFound("payment %s not found", id)
			}
			if p.Status == model.PaymentReversed {
				return apierror.Conflict("payment %s is already reversed", id)
			}
			if time.Since(p.CreatedAt) > reversalWindow {
				return apierror.Validation("payment is older than %s and can no longer be reversed", reversalWindow)
			}

			customer, err := s.customers.FindByIDForUpdateTx(ctx, tx, p.CustomerID)
			if err != nil {
				return err
			}
			debtBefore = customer.TotalDebt
			debtAfter = customer.TotalDebt.Add(p.Amount)

			now := time.Now()
			p.Status = model.PaymentReversed
			p.ReversedAt = &now
			p.ReverseReason = &req.Reason
			if err := s.payments.UpdateTx(ctx, tx, p); err != nil {
				return err
			}
			if err := s.customers.UpdateDebtTx(ctx, tx, customer.ID, debtAfter); err != nil {
				return err
			}
			payment = p
			return nil
		})
	})
	if lockErr != nil {
		return nil, lockErr
	}

	enqueueAudit(ctx, s.dispatcher, "payments", "UPDATE", id.String(), actorID,
		map[string]string{"status": model.PaymentApplied},
		map[string]string{"status": model.PaymentReversed, "reason": req.Reason})
	enqueueAudit(ctx, s.dispatcher, "customers", "UPDATE", payment.CustomerID.String(), actorID,
		map[string]string{"total_debt": debtBefore.String()},
		map[string]string{"total_debt": debtAfter.String()})

	resp := paymentToResponse(payment)
	resp.DebtBefore = debtBefore
	resp.DebtAfter = debtAfter
	return resp, nil
}

func (s *paymentService) GetPayment(ctx context.Context, id uuid.UUID) (*dto.PaymentResponse, error) {
	p, err := s.payments.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("payment %s not found", id)
	}
	return paymentToResponse(p), nil
}

func (s *paymentService) ListPayments(ctx context.Context, filter dto.PaymentFilter) (*dto.PaymentListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	payments, total, err := s.payments.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		items = append(items, *paymentToResponse(&payments[i]))
	}
	return &dto.PaymentListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func paymentToResponse(p *model.Payment) *dto.PaymentResponse {
	var invoiceID *string
	if p.InvoiceID != nil {
		s := p.InvoiceID.String()
		invoiceID = &s
	}
	return &dto.PaymentResponse{
		ID:          p.ID.String(),
		CustomerID:  p.CustomerID.String(),
		InvoiceID:   invoiceID,
		Amount:      p.Amount,
		Method:      p.Method,
		PaymentDate: p.PaymentDate.Format("2006-01-02"),
		Status:      p.Status,
		CreatedAt:   p.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
