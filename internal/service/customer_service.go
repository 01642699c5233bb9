package service

import (
	"context"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/repository"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type CustomerService interface {
	CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error)
	GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error)
	UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error)
	DeactivateCustomer(ctx context.Context, id uuid.UUID) error
	ReactivateCustomer(ctx context.Context, id uuid.UUID) error
	ListCustomers(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error)
	// GetStatement returns the full ledger view: every invoice and payment,
	// the stored balance, and the balance recomputed from history so drift
	// in the materialized total_debt is visible.
	GetStatement(ctx context.Context, id uuid.UUID) (*dto.StatementResponse, error)
}

type customerService struct {
	customers repository.CustomerRepository
	invoices  repository.InvoiceRepository
	payments  repository.PaymentRepository
}

func NewCustomerService(
	customers repository.CustomerRepository,
	invoices repository.InvoiceRepository,
	payments repository.PaymentRepository,
) CustomerService {
	return &customerService{customers: customers, invoices: invoices, payments: payments}
}

func (s *customerService) CreateCustomer(ctx context.Context, req dto.CreateCustomerRequest) (*dto.CustomerResponse, error) {
	customer := model.Customer{
		Name:      req.Name,
		Phone:     req.Phone,
		Address:   req.Address,
		TotalDebt: decimal.Zero,
		IsActive:  true,
	}
	if err := s.customers.Create(ctx, &customer); err != nil {
		return nil, err
	}
	return customerToResponse(&customer), nil
}

func (s *customerService) GetCustomer(ctx context.Context, id uuid.UUID) (*dto.CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("customer %s not found", id)
	}
	return customerToResponse(customer), nil
}

func (s *customerService) UpdateCustomer(ctx context.Context, id uuid.UUID, req dto.UpdateCustomerRequest) (*dto.CustomerResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("customer %s not found", id)
	}
	if req.Name != "" {
		customer.Name = req.Name
	}
	if req.Phone != nil {
		customer.Phone = req.Phone
	}
	if req.Address != nil {
		customer.Address = req.Address
	}
	if err := s.customers.Update(ctx, customer); err != nil {
		return nil, err
	}
	return customerToResponse(customer), nil
}

func (s *customerService) DeactivateCustomer(ctx context.Context, id uuid.UUID) error {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return apierror.NotFound("customer %s not found", id)
	}
	if customer.TotalDebt.IsPositive() {
		return apierror.Conflict("customer %s still owes %s and cannot be deactivated", customer.Name, customer.TotalDebt)
	}
	return s.customers.SoftDelete(ctx, id)
}

func (s *customerService) ReactivateCustomer(ctx context.Context, id uuid.UUID) error {
	if _, err := s.customers.FindByID(ctx, id); err != nil {
		return apierror.NotFound("customer %s not found", id)
	}
	return s.customers.Reactivate(ctx, id)
}

func (s *customerService) ListCustomers(ctx context.Context, filter dto.CustomerFilter) (*dto.CustomerListResponse, error) {
	if filter.Page < 1 {
		filter.Page = 1
	}
	if filter.Limit < 1 {
		filter.Limit = 50
	}
	customers, total, err := s.customers.List(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.CustomerResponse, 0, len(customers))
	for i := range customers {
		items = append(items, *customerToResponse(&customers[i]))
	}
	return &dto.CustomerListResponse{
		Data:  items,
		Total: total,
		Page:  filter.Page,
		Limit: filter.Limit,
	}, nil
}

func (s *customerService) GetStatement(ctx context.Context, id uuid.UUID) (*dto.StatementResponse, error) {
	customer, err := s.customers.FindByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("customer %s not found", id)
	}

	invoices, err := s.invoices.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}
	payments, err := s.payments.ListByCustomer(ctx, id)
	if err != nil {
		return nil, err
	}

	// Recompute what total_debt should be: issued invoice amounts minus
	// applied payments, floored at zero like every live mutation.
	invoiced := decimal.Zero
	for i := range invoices {
		if invoices[i].Status == model.InvoiceIssued {
			invoiced = invoiced.Add(invoices[i].FinalAmount)
		}
	}
	paid := decimal.Zero
	for i := range payments {
		if payments[i].Status == model.PaymentApplied {
			paid = paid.Add(payments[i].Amount)
		}
	}
	recomputed := invoiced.Sub(paid)
	if recomputed.IsNegative() {
		recomputed = decimal.Zero
	}

	invItems := make([]dto.InvoiceResponse, 0, len(invoices))
	for i := range invoices {
		invItems = append(invItems, *invoiceToResponse(&invoices[i]))
	}
	payItems := make([]dto.PaymentResponse, 0, len(payments))
	for i := range payments {
		payItems = append(payItems, *paymentToResponse(&payments[i]))
	}

	return &dto.StatementResponse{
		Customer:       *customerToResponse(customer),
		Invoices:       invItems,
		Payments:       payItems,
		StoredDebt:     customer.TotalDebt,
		RecomputedDebt: recomputed,
		BalanceDrift:   !withinEpsilon(customer.TotalDebt, recomputed),
	}, nil
}

func customerToResponse(c *model.Customer) *dto.CustomerResponse {
	return &dto.CustomerResponse{
		ID:        c.ID.String(),
		Name:      c.Name,
		Phone:     c.Phone,
		Address:   c.Address,
		TotalDebt: c.TotalDebt,
		IsActive:  c.IsActive,
		CreatedAt: c.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
