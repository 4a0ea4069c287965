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

// TripService assigns drivers and vehicles to shipments.
type TripService struct {
	trips      repository.TripRepository
	users      repository.UserRepository
	vehicles   repository.VehicleRepository
	shipments  repository.ShipmentRepository
	dispatcher events.Dispatcher
}

// TripDependencies bundles repository requirements for the trip service.
type TripDependencies struct {
	TripRepo     repository.TripRepository
	UserRepo     repository.UserRepository
	VehicleRepo  repository.VehicleRepository
	ShipmentRepo repository.ShipmentRepository
}

// NewTripService builds the service.
func NewTripService(deps TripDependencies, dispatcher events.Dispatcher) *TripService {
	return &TripService{
		trips:      deps.TripRepo,
		users:      deps.UserRepo,
		vehicles:   deps.VehicleRepo,
		shipments:  deps.ShipmentRepo,
		dispatcher: dispatcher,
	}
}

// Assign creates a trip for a pending shipment and notifies the driver.
func (s *TripService) Assign(ctx context.Context, driverID, vehicleID, shipmentID, actorID int64) (*domain.Trip, error) {
	driver, err := s.users.GetByID(ctx, driverID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("driver", nil)
		}
		return nil, err
	}
	if driver.Role != domain.RoleDriver {
		return nil, apperrors.NewValidationError("assignee is not a driver", nil)
	}

	vehicle, err := s.vehicles.GetByID(ctx, vehicleID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vehicle", nil)
		}
		return nil, err
	}
	if vehicle.Status != domain.VehicleStatusActive {
		return nil, apperrors.NewConflict("vehicle not available", nil)
	}

	shipment, err := s.shipments.GetByID(ctx, shipmentID)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("shipment", nil)
		}
		return nil, err
	}
	if shipment.Status != domain.ShipmentStatusPending {
		return nil, apperrors.NewConflict("shipment already assigned", nil)
	}

	trip := &domain.Trip{
		DriverID:   driverID,
		VehicleID:  vehicleID,
		ShipmentID: shipmentID,
		Status:     domain.TripStatusScheduled,
	}
	if err := s.trips.Create(ctx, trip); err != nil {
		return nil, err
	}
	if err := s.shipments.UpdateStatus(ctx, shipmentID, domain.ShipmentStatusAssigned); err != nil {
		return nil, err
	}

	err = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventTripAssigned,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.TripAssignedPayload{
			TripID:     trip.ID,
			DriverID:   driverID,
			VehicleID:  vehicleID,
			ShipmentID: shipmentID,
		},
	})
	if err != nil {
		return nil, err
	}
	return trip, nil
}

// Start marks a scheduled trip as underway.
func (s *TripService) Start(ctx context.Context, id int64) (*domain.Trip, error) {
	trip, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusScheduled {
		return nil, apperrors.NewConflict("trip not in scheduled state", nil)
	}
	now := time.Now()
	trip.Status = domain.TripStatusEnRoute
	trip.StartedAt = &now
	if err := s.trips.Update(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// Complete finishes an en-route trip.
func (s *TripService) Complete(ctx context.Context, id int64) (*domain.Trip, error) {
	trip, err := s.get(ctx, id)
	if err != nil {
		return nil, err
	}
	if trip.Status != domain.TripStatusEnRoute {
		return nil, apperrors.NewConflict("trip not en route", nil)
	}
	now := time.Now()
	trip.Status = domain.TripStatusCompleted
	trip.EndedAt = &now
	if err := s.trips.Update(ctx, trip); err != nil {
		return nil, err
	}
	return trip, nil
}

// ListByDriver returns a driver's trips.
func (s *TripService) ListByDriver(ctx context.Context, driverID int64) ([]*domain.Trip, error) {
	return s.trips.ListByDriver(ctx, driverID)
}

func (s *TripService) get(ctx context.Context, id int64) (*domain.Trip, error) {
	trip, err := s.trips.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("trip", nil)
		}
		return nil, err
	}
	return trip, nil
}
