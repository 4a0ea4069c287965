package service

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/events"
	"github.com/spec-kit/fleet-service/internal/repository"
	apperrors "github.com/spec-kit/fleet-service/pkg/util/errorutil"
)

// InspectionService records vehicle checklists and emits completion events.
type InspectionService struct {
	inspections repository.InspectionRepository
	vehicles    repository.VehicleRepository
	dispatcher  events.Dispatcher
}

// NewInspectionService builds the service.
func NewInspectionService(inspections repository.InspectionRepository, vehicles repository.VehicleRepository, dispatcher events.Dispatcher) *InspectionService {
	return &InspectionService{inspections: inspections, vehicles: vehicles, dispatcher: dispatcher}
}

// Create stores a completed checklist and publishes the completion event.
func (s *InspectionService) Create(ctx context.Context, inspection *domain.Inspection) error {
	if len(inspection.Items) == 0 {
		return apperrors.NewValidationError("checklist items required", nil)
	}

	vehicle, err := s.vehicles.GetByID(ctx, inspection.VehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("vehicle", nil)
		}
		return err
	}

	if inspection.Result == "" {
		inspection.Result = deriveResult(inspection.Items)
	}
	if err := s.inspections.Create(ctx, inspection); err != nil {
		return err
	}

	return s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventInspectionCompleted,
		ActorID:   inspection.InspectorID,
		Timestamp: time.Now(),
		Payload: events.InspectionCompletedPayload{
			InspectionID: inspection.ID,
			VehicleID:    vehicle.ID,
			VehiclePlate: vehicle.Plate,
			Result:       inspection.Result,
		},
	})
}

// ListByVehicle returns inspection history for one vehicle.
func (s *InspectionService) ListByVehicle(ctx context.Context, vehicleID int64) ([]*domain.Inspection, error) {
	return s.inspections.ListByVehicle(ctx, vehicleID)
}

func deriveResult(items []domain.InspectionItem) domain.InspectionResult {
	for _, item := range items {
		if !item.Passed {
			return domain.InspectionResultFail
		}
	}
	return domain.InspectionResultPass
}
