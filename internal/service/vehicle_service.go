package service

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/repository"
	apperrors "github.com/spec-kit/fleet-service/pkg/util/errorutil"
)

// VehicleService manages fleet units.
type VehicleService struct {
	vehicles repository.VehicleRepository
}

// NewVehicleService builds the service.
func NewVehicleService(vehicles repository.VehicleRepository) *VehicleService {
	return &VehicleService{vehicles: vehicles}
}

// Create registers a new vehicle.
func (s *VehicleService) Create(ctx context.Context, vehicle *domain.Vehicle) error {
	if vehicle.Plate == "" || vehicle.Model == "" {
		return apperrors.NewValidationError("plate and model required", nil)
	}
	if vehicle.Status == "" {
		vehicle.Status = domain.VehicleStatusActive
	}
	return s.vehicles.Create(ctx, vehicle)
}

// Update modifies an existing vehicle.
func (s *VehicleService) Update(ctx context.Context, vehicle *domain.Vehicle) error {
	if err := s.vehicles.Update(ctx, vehicle); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return apperrors.NewNotFound("vehicle", nil)
		}
		return err
	}
	return nil
}

// Get returns one vehicle.
func (s *VehicleService) Get(ctx context.Context, id int64) (*domain.Vehicle, error) {
	vehicle, err := s.vehicles.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("vehicle", nil)
		}
		return nil, err
	}
	return vehicle, nil
}

// List returns all vehicles.
func (s *VehicleService) List(ctx context.Context) ([]*domain.Vehicle, error) {
	return s.vehicles.List(ctx)
}
