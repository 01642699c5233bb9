package service

import (
	"bytes"
	"context"
	"fmt"
	"time"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/config"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/infra"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/repository"
	"github.com/Alishanbouraa/chickensap/internal/worker"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"
)

type ReportService interface {
	DailySummary(ctx context.Context, date time.Time) (*dto.DailySummaryResponse, error)
	// ExportWastageExcel builds the wastage workbook for a date range.
	ExportWastageExcel(ctx context.Context, filter dto.WastageReportFilter) (*bytes.Buffer, error)
	// InvoicePDF renders the printable invoice and returns the file path.
	InvoicePDF(ctx context.Context, id uuid.UUID) (string, error)
	// EmailDailyReport enqueues the closing summary for the back office.
	EmailDailyReport(ctx context.Context, date time.Time) error
}

type reportService struct {
	invoices   repository.InvoiceRepository
	payments   repository.PaymentRepository
	recs       repository.ReconciliationRepository
	dispatcher *worker.Dispatcher
	cfg        *config.Config
}

func NewReportService(
	invoices repository.InvoiceRepository,
	payments repository.PaymentRepository,
	recs repository.ReconciliationRepository,
	dispatcher *worker.Dispatcher,
	cfg *config.Config,
) ReportService {
	return &reportService{
		invoices:   invoices,
		payments:   payments,
		recs:       recs,
		dispatcher: dispatcher,
		cfg:        cfg,
	}
}

func (s *reportService) DailySummary(ctx context.Context, date time.Time) (*dto.DailySummaryResponse, error) {
	count, invoiced, err := s.invoices.CountByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	collected, err := s.payments.SumAppliedByDate(ctx, date)
	if err != nil {
		return nil, err
	}
	recs, err := s.recs.ListByDate(ctx, date)
	if err != nil {
		return nil, err
	}

	totalLoad, totalSold, totalWastage := decimal.Zero, decimal.Zero, decimal.Zero
	items := make([]dto.ReconciliationResponse, 0, len(recs))
	for i := range recs {
		totalLoad = totalLoad.Add(recs[i].LoadWeight)
		totalSold = totalSold.Add(recs[i].SoldWeight)
		totalWastage = totalWastage.Add(recs[i].WastageWeight)
		resp := reconciliationToResponse(&recs[i])
		if recs[i].Truck != nil {
			resp.TruckPlate = recs[i].Truck.PlateNumber
		}
		items = append(items, *resp)
	}

	return &dto.DailySummaryResponse{
		Date:            date.Format("2006-01-02"),
		InvoiceCount:    count,
		InvoicedAmount:  invoiced,
		CollectedAmount: collected,
		Reconciliations: items,
		TotalLoadWeight: totalLoad,
		TotalSoldWeight: totalSold,
		TotalWastage:    totalWastage,
	}, nil
}

func (s *reportService) ExportWastageExcel(ctx context.Context, filter dto.WastageReportFilter) (*bytes.Buffer, error) {
	from, err := time.Parse("2006-01-02", filter.From)
	if err != nil {
		return nil, apierror.Validation("invalid from date %q", filter.From)
	}
	to, err := time.Parse("2006-01-02", filter.To)
	if err != nil {
		return nil, apierror.Validation("invalid to date %q", filter.To)
	}
	if to.Before(from) {
		return nil, apierror.Validation("to date is before from date")
	}

	recs, err := s.recs.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	return infra.BuildWastageWorkbook(recs)
}

func (s *reportService) InvoicePDF(ctx context.Context, id uuid.UUID) (string, error) {
	inv, err := s.invoices.FindByID(ctx, id)
	if err != nil {
		return "", apierror.NotFound("invoice %s not found", id)
	}
	if inv.Status != model.InvoiceIssued {
		return "", apierror.Conflict("invoice %s is %s, no printable document", inv.InvoiceNumber, inv.Status)
	}
	return infra.GenerateInvoicePDF(inv, s.cfg.CompanyName, s.cfg.PDFStoragePath)
}

func (s *reportService) EmailDailyReport(ctx context.Context, date time.Time) error {
	if s.dispatcher == nil || s.cfg.ReportRecipient == "" {
		return nil
	}

	summary, err := s.DailySummary(ctx, date)
	if err != nil {
		return err
	}

	body := fmt.Sprintf(
		"Daily close for %s\n\n"+
			"Invoices issued: %d\n"+
			"Invoiced amount: %s\n"+
			"Collected amount: %s\n\n"+
			"Trucks reconciled: %d\n"+
			"Total load weight: %s kg\n"+
			"Total sold weight: %s kg\n"+
			"Total wastage: %s kg\n",
		summary.Date,
		summary.InvoiceCount,
		summary.InvoicedAmount.StringFixed(2),
		summary.CollectedAmount.StringFixed(2),
		len(summary.Reconciliations),
		summary.TotalLoadWeight.StringFixed(2),
		summary.TotalSoldWeight.StringFixed(2),
		summary.TotalWastage.StringFixed(2),
	)

	return s.dispatcher.EnqueueEmail(ctx, worker.EmailJobPayload{
		ToEmail: s.cfg.ReportRecipient,
		Subject: fmt.Sprintf("%s daily close %s", s.cfg.CompanyName, summary.Date),
		Body:    body,
	})
}
