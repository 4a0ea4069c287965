package events

import (
	"time"

	"github.com/spec-kit/fleet-service/internal/domain"
)

// EventType enumerates supported event identifiers.
type EventType string

const (
	EventInspectionCompleted   EventType = "inspection_completed"
	EventShipmentStatusChanged EventType = "shipment_status_changed"
	EventTripAssigned          EventType = "trip_assigned"
)

// Event represents a domain event emitted by services.
type Event struct {
	ID        string      `json:"id"`
	Type      EventType   `json:"type"`
	ActorID   int64       `json:"actor_id"`
	Timestamp time.Time   `json:"timestamp"`
	Payload   interface{} `json:"payload"`
}

// InspectionCompletedPayload payload.
type InspectionCompletedPayload struct {
	InspectionID int64                   `json:"inspection_id"`
	VehicleID    int64                   `json:"vehicle_id"`
	VehiclePlate string                  `json:"vehicle_plate"`
	Result       domain.InspectionResult `json:"result"`
}

// ShipmentStatusChangedPayload payload.
type ShipmentStatusChangedPayload struct {
	ShipmentID int64                 `json:"shipment_id"`
	Reference  string                `json:"reference"`
	OldStatus  domain.ShipmentStatus `json:"old_status"`
	NewStatus  domain.ShipmentStatus `json:"new_status"`
	OwnerID    int64                 `json:"owner_id"`
}

// TripAssignedPayload payload.
type TripAssignedPayload struct {
	TripID     int64 `json:"trip_id"`
	DriverID   int64 `json:"driver_id"`
	VehicleID  int64 `json:"vehicle_id"`
	ShipmentID int64 `json:"shipment_id"`
}
