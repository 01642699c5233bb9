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

type ReconciliationService interface {
	ReconcileTruckDay(ctx context.Context, actorID string, req dto.ReconcileRequest) (*dto.ReconciliationResponse, error)
	// ReconcileAllForDate reconciles every truck loaded on the date, skipping
	// trucks already reconciled. Used by the nightly close.
	ReconcileAllForDate(ctx context.Context, actorID string, date time.Time) (int, error)
	GetReconciliation(ctx context.Context, truckID uuid.UUID, date time.Time) (*dto.ReconciliationResponse, error)
	ListReconciliations(ctx context.Context, filter dto.ReconciliationFilter) ([]dto.ReconciliationResponse, error)
}

type reconciliationService struct {
	recs       repository.ReconciliationRepository
	trucks     repository.TruckRepository
	invoices   repository.InvoiceRepository
	locker     infra.Locker
	dispatcher *worker.Dispatcher
}

func NewReconciliationService(
	recs repository.ReconciliationRepository,
	trucks repository.TruckRepository,
	invoices repository.InvoiceRepository,
	locker infra.Locker,
	dispatcher *worker.Dispatcher,
) ReconciliationService {
	return &reconciliationService{
		recs:       recs,
		trucks:     trucks,
		invoices:   invoices,
		locker:     locker,
		dispatcher: dispatcher,
	}
}

// ── ReconcileTruckDay ─────────────────────────────────────────────────────────
// Write-once per (truck, date). The load and sales sums are read inside the
// same transaction that inserts the record, so in-flight invoices either
// commit before the snapshot or are excluded entirely. Voided invoices never
// count as sold weight. The composite unique index backs the pre-check: under
// a concurrent race exactly one insert lands, the loser maps the duplicate-key
// error to the same ConflictError.

func (s *reconciliationService) ReconcileTruckDay(ctx context.Context, actorID string, req dto.ReconcileRequest) (*dto.ReconciliationResponse, error) {
	truckID, err := uuid.Parse(req.TruckID)
	if err != nil {
		return nil, apierror.Validation("invalid truck_id")
	}
	date, err := time.Parse("2006-01-02", req.Date)
	if err != nil {
		return nil, apierror.Validation("invalid date %q, expected YYYY-MM-DD", req.Date)
	}

	truck, err := s.trucks.FindTruckByID(ctx, truckID)
	if err != nil {
		return nil, apierror.NotFound("truck %s not found", req.TruckID)
	}

	var rec model.DailyReconciliation

	lockKey := "reconcile:" + truckID.String() + ":" + req.Date
	lockErr := withLock(ctx, s.locker, lockKey, func() error {
		return runTx(ctx, s.recs.DB(), func(tx *gorm.DB) error {
			exists, err := s.recs.ExistsTx(ctx, tx, truckID, date)
			if err != nil {
				return err
			}
			if exists {
				return apierror.Conflict("truck %s is already reconciled for %s", truck.PlateNumber, req.Date)
			}

			loadWeight, err := s.trucks.SumLoadWeightByTruckDateTx(ctx, tx, truckID, date)
			if err != nil {
				return err
			}
			soldWeight, err := s.invoices.SumNetWeightByTruckDateTx(ctx, tx, truckID, date)
			if err != nil {
				return err
			}

			wastage := loadWeight.Sub(soldWeight)
			pct := decimal.Zero
			if loadWeight.IsPositive() {
				pct = wastage.Div(loadWeight).Mul(oneHundred).Round(2)
			}

			rec = model.DailyReconciliation{
				TruckID:            truckID,
				ReconciliationDate: date,
				LoadWeight:         loadWeight,
				SoldWeight:         soldWeight,
				WastageWeight:      wastage,
				WastagePercentage:  pct,
				Status:             model.ReconciliationCompleted,
				Notes:              req.Notes,
				CreatedBy:          actorID,
			}
			if err := s.recs.CreateTx(ctx, tx, &rec); err != nil {
				if errors.Is(err, gorm.ErrDuplicatedKey) {
					return apierror.Conflict("truck %s is already reconciled for %s", truck.PlateNumber, req.Date)
				}
				return err
			}
			return s.trucks.MarkLoadsReconciledTx(ctx, tx, truckID, date)
		})
	})
	if lockErr != nil {
		return nil, lockErr
	}

	enqueueAudit(ctx, s.dispatcher, "daily_reconciliations", "INSERT", rec.ID.String(), actorID, nil, &rec)

	resp := reconciliationToResponse(&rec)
	resp.TruckPlate = truck.PlateNumber
	return resp, nil
}

func (s *reconciliationService) ReconcileAllForDate(ctx context.Context, actorID string, date time.Time) (int, error) {
	truckIDs, err := s.trucks.ListLoadedTruckIDs(ctx, date)
	if err != nil {
		return 0, err
	}

	created := 0
	for _, id := range truckIDs {
		req := dto.ReconcileRequest{TruckID: id.String(), Date: date.Format("2006-01-02")}
		if _, err := s.ReconcileTruckDay(ctx, actorID, req); err != nil {
			if apierror.IsKind(err, apierror.KindConflict) {
				continue // already reconciled earlier in the day
			}
			log.Error().Err(err).Str("truck_id", id.String()).
				Str("date", req.Date).Msg("nightly reconciliation failed for truck")
			continue
		}
		created++
	}
	return created, nil
}

func (s *reconciliationService) GetReconciliation(ctx context.Context, truckID uuid.UUID, date time.Time) (*dto.ReconciliationResponse, error) {
	rec, err := s.recs.FindByTruckDate(ctx, truckID, date)
	if err != nil {
		return nil, apierror.NotFound("no reconciliation for truck %s on %s", truckID, date.Format("2006-01-02"))
	}
	resp := reconciliationToResponse(rec)
	if rec.Truck != nil {
		resp.TruckPlate = rec.Truck.PlateNumber
	}
	return resp, nil
}

func (s *reconciliationService) ListReconciliations(ctx context.Context, filter dto.ReconciliationFilter) ([]dto.ReconciliationResponse, error) {
	from, err := parseDateOrToday(filter.From)
	if err != nil {
		return nil, err
	}
	to, err := parseDateOrToday(filter.To)
	if err != nil {
		return nil, err
	}

	recs, err := s.recs.ListByDateRange(ctx, from, to)
	if err != nil {
		return nil, err
	}
	items := make([]dto.ReconciliationResponse, 0, len(recs))
	for i := range recs {
		if filter.TruckID != "" && recs[i].TruckID.String() != filter.TruckID {
			continue
		}
		resp := reconciliationToResponse(&recs[i])
		if recs[i].Truck != nil {
			resp.TruckPlate = recs[i].Truck.PlateNumber
		}
		items = append(items, *resp)
	}
	return items, nil
}

func reconciliationToResponse(rec *model.DailyReconciliation) *dto.ReconciliationResponse {
	return &dto.ReconciliationResponse{
		ID:                 rec.ID.String(),
		TruckID:            rec.TruckID.String(),
		ReconciliationDate: rec.ReconciliationDate.Format("2006-01-02"),
		LoadWeight:         rec.LoadWeight,
		SoldWeight:         rec.SoldWeight,
		WastageWeight:      rec.WastageWeight,
		WastagePercentage:  rec.WastagePercentage,
		Status:             rec.Status,
		CreatedAt:          rec.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
