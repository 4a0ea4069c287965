package service

import (
	"context"
	"errors"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"

	"github.com/spec-kit/fleet-service/internal/domain"
	"github.com/spec-kit/fleet-service/internal/events"
	"github.com/spec-kit/fleet-service/internal/repository"
	apperrors "github.com/spec-kit/fleet-service/pkg/util/errorutil"
)

// validShipmentTransitions maps a status to the statuses reachable from it.
var validShipmentTransitions = map[domain.ShipmentStatus][]domain.ShipmentStatus{
	domain.ShipmentStatusPending:   {domain.ShipmentStatusAssigned, domain.ShipmentStatusCancelled},
	domain.ShipmentStatusAssigned:  {domain.ShipmentStatusInTransit, domain.ShipmentStatusCancelled},
	domain.ShipmentStatusInTransit: {domain.ShipmentStatusDelivered, domain.ShipmentStatusCancelled},
}

// ShipmentService manages cargo orders.
type ShipmentService struct {
	shipments  repository.ShipmentRepository
	dispatcher events.Dispatcher
}

// NewShipmentService builds the service.
func NewShipmentService(shipments repository.ShipmentRepository, dispatcher events.Dispatcher) *ShipmentService {
	return &ShipmentService{shipments: shipments, dispatcher: dispatcher}
}

// Create registers a new shipment in PENDING state.
func (s *ShipmentService) Create(ctx context.Context, shipment *domain.Shipment) error {
	if shipment.Origin == "" || shipment.Destination == "" {
		return apperrors.NewValidationError("origin and destination required", nil)
	}
	if shipment.Reference == "" {
		shipment.Reference = "SHP-" + strings.ToUpper(uuid.NewString()[:8])
	}
	shipment.Status = domain.ShipmentStatusPending
	return s.shipments.Create(ctx, shipment)
}

// ChangeStatus transitions a shipment and notifies its owner via the event
// dispatcher.
func (s *ShipmentService) ChangeStatus(ctx context.Context, id int64, newStatus domain.ShipmentStatus, actorID int64) (*domain.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("shipment", nil)
		}
		return nil, err
	}

	if !transitionAllowed(shipment.Status, newStatus) {
		return nil, apperrors.NewConflict("invalid status transition", map[string]any{
			"from": shipment.Status,
			"to":   newStatus,
		})
	}

	oldStatus := shipment.Status
	if err := s.shipments.UpdateStatus(ctx, id, newStatus); err != nil {
		return nil, err
	}
	shipment.Status = newStatus

	err = s.dispatcher.Publish(ctx, events.Event{
		ID:        uuid.NewString(),
		Type:      events.EventShipmentStatusChanged,
		ActorID:   actorID,
		Timestamp: time.Now(),
		Payload: events.ShipmentStatusChangedPayload{
			ShipmentID: shipment.ID,
			Reference:  shipment.Reference,
			OldStatus:  oldStatus,
			NewStatus:  newStatus,
			OwnerID:    shipment.CreatedBy,
		},
	})
	if err != nil {
		return nil, err
	}
	return shipment, nil
}

// Get returns one shipment.
func (s *ShipmentService) Get(ctx context.Context, id int64) (*domain.Shipment, error) {
	shipment, err := s.shipments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, apperrors.NewNotFound("shipment", nil)
		}
		return nil, err
	}
	return shipment, nil
}

// List returns shipments, optionally filtered by status.
func (s *ShipmentService) List(ctx context.Context, status *domain.ShipmentStatus) ([]*domain.Shipment, error) {
	return s.shipments.List(ctx, status)
}

func transitionAllowed(from, to domain.ShipmentStatus) bool {
	for _, allowed := range validShipmentTransitions[from] {
		if allowed == to {
			return true
		}
	}
	return false
}
