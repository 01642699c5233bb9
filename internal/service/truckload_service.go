package service

import (
	"context"

	"github.com/Alishanbouraa/chickensap/internal/apierror"
	"github.com/Alishanbouraa/chickensap/internal/dto"
	"github.com/Alishanbouraa/chickensap/internal/model"
	"github.com/Alishanbouraa/chickensap/internal/repository"
	"github.com/Alishanbouraa/chickensap/internal/worker"

	"github.com/google/uuid"
)

type TruckService interface {
	CreateTruck(ctx context.Context, req dto.CreateTruckRequest) (*dto.TruckResponse, error)
	ListTrucks(ctx context.Context, includeInactive bool) ([]dto.TruckResponse, error)
	DeactivateTruck(ctx context.Context, id uuid.UUID) error

	RegisterLoad(ctx context.Context, actorID string, req dto.RegisterLoadRequest) (*dto.LoadResponse, error)
	AdvanceLoadStatus(ctx context.Context, actorID string, id uuid.UUID, req dto.AdvanceLoadStatusRequest) (*dto.LoadResponse, error)
	ListLoads(ctx context.Context, filter dto.LoadFilter) ([]dto.LoadResponse, error)
}

type truckService struct {
	trucks     repository.TruckRepository
	dispatcher *worker.Dispatcher
}

func NewTruckService(trucks repository.TruckRepository, dispatcher *worker.Dispatcher) TruckService {
	return &truckService{trucks: trucks, dispatcher: dispatcher}
}

func (s *truckService) CreateTruck(ctx context.Context, req dto.CreateTruckRequest) (*dto.TruckResponse, error) {
	truck := model.Truck{
		PlateNumber: req.PlateNumber,
		DriverName:  req.DriverName,
		IsActive:    true,
	}
	if err := s.trucks.CreateTruck(ctx, &truck); err != nil {
		return nil, apierror.Conflict("truck with plate %s already exists", req.PlateNumber)
	}
	return truckToResponse(&truck), nil
}

func (s *truckService) ListTrucks(ctx context.Context, includeInactive bool) ([]dto.TruckResponse, error) {
	trucks, err := s.trucks.ListTrucks(ctx, includeInactive)
	if err != nil {
		return nil, err
	}
	items := make([]dto.TruckResponse, 0, len(trucks))
	for i := range trucks {
		items = append(items, *truckToResponse(&trucks[i]))
	}
	return items, nil
}

func (s *truckService) DeactivateTruck(ctx context.Context, id uuid.UUID) error {
	truck, err := s.trucks.FindTruckByID(ctx, id)
	if err != nil {
		return apierror.NotFound("truck %s not found", id)
	}
	truck.IsActive = false
	return s.trucks.UpdateTruck(ctx, truck)
}

func (s *truckService) RegisterLoad(ctx context.Context, actorID string, req dto.RegisterLoadRequest) (*dto.LoadResponse, error) {
	truckID, err := uuid.Parse(req.TruckID)
	if err != nil {
		return nil, apierror.Validation("invalid truck_id")
	}
	if !req.TotalWeight.IsPositive() {
		return nil, apierror.Validation("total_weight must be greater than zero")
	}
	loadDate, err := parseDateOrToday(req.LoadDate)
	if err != nil {
		return nil, err
	}

	truck, err := s.trucks.FindTruckByID(ctx, truckID)
	if err != nil {
		return nil, apierror.NotFound("truck %s not found", req.TruckID)
	}
	if !truck.IsActive {
		return nil, apierror.Validation("truck %s is inactive", truck.PlateNumber)
	}

	load := model.TruckLoad{
		TruckID:     truckID,
		LoadDate:    loadDate,
		TotalWeight: req.TotalWeight,
		CagesCount:  req.CagesCount,
		Status:      model.LoadStatusLoaded,
		Notes:       req.Notes,
		CreatedBy:   actorID,
	}
	if err := s.trucks.CreateLoad(ctx, &load); err != nil {
		return nil, err
	}

	enqueueAudit(ctx, s.dispatcher, "truck_loads", "INSERT", load.ID.String(), actorID, nil, &load)

	resp := loadToResponse(&load)
	resp.TruckPlate = truck.PlateNumber
	return resp, nil
}

// AdvanceLoadStatus moves a load forward through LOADED → IN_TRANSIT →
// RECONCILED. Back-transitions are rejected, and RECONCILED is owned by the
// reconciliation engine — it cannot be set by hand.
func (s *truckService) AdvanceLoadStatus(ctx context.Context, actorID string, id uuid.UUID, req dto.AdvanceLoadStatusRequest) (*dto.LoadResponse, error) {
	load, err := s.trucks.FindLoadByID(ctx, id)
	if err != nil {
		return nil, apierror.NotFound("truck load %s not found", id)
	}

	if req.Status == model.LoadStatusReconciled {
		return nil, apierror.Validation("loads are marked RECONCILED by the daily reconciliation, not manually")
	}
	if model.LoadStatusRank(req.Status) <= model.LoadStatusRank(load.Status) {
		return nil, apierror.Conflict("load is %s and cannot move to %s", load.Status, req.Status)
	}

	oldStatus := load.Status
	load.Status = req.Status
	if err := s.trucks.UpdateLoad(ctx, load); err != nil {
		return nil, err
	}

	enqueueAudit(ctx, s.dispatcher, "truck_loads", "UPDATE", id.String(), actorID,
		map[string]string{"status": oldStatus},
		map[string]string{"status": req.Status})

	resp := loadToResponse(load)
	if load.Truck != nil {
		resp.TruckPlate = load.Truck.PlateNumber
	}
	return resp, nil
}

func (s *truckService) ListLoads(ctx context.Context, filter dto.LoadFilter) ([]dto.LoadResponse, error) {
	loads, err := s.trucks.ListLoads(ctx, filter)
	if err != nil {
		return nil, err
	}
	items := make([]dto.LoadResponse, 0, len(loads))
	for i := range loads {
		resp := loadToResponse(&loads[i])
		if loads[i].Truck != nil {
			resp.TruckPlate = loads[i].Truck.PlateNumber
		}
		items = append(items, *resp)
	}
	return items, nil
}

func truckToResponse(t *model.Truck) *dto.TruckResponse {
	return &dto.TruckResponse{
		ID:          t.ID.String(),
		PlateNumber: t.PlateNumber,
		DriverName:  t.DriverName,
		IsActive:    t.IsActive,
	}
}

func loadToResponse(l *model.TruckLoad) *dto.LoadResponse {
	return &dto.LoadResponse{
		ID:          l.ID.String(),
		TruckID:     l.TruckID.String(),
		LoadDate:    l.LoadDate.Format("2006-01-02"),
		TotalWeight: l.TotalWeight,
		CagesCount:  l.CagesCount,
		Status:      l.Status,
		CreatedAt:   l.CreatedAt.Format("2006-01-02T15:04:05Z"),
	}
}
