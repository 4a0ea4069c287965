package domain

import "time"

// TripStatus enumerates trip lifecycle states.
type TripStatus string

const (
	TripStatusScheduled TripStatus = "SCHEDULED"
	TripStatusEnRoute   TripStatus = "EN_ROUTE"
	TripStatusCompleted TripStatus = "COMPLETED"
	TripStatusCancelled TripStatus = "CANCELLED"
)

// Trip assigns a driver and a vehicle to a shipment.
type Trip struct {
	ID         int64
	DriverID   int64
	VehicleID  int64
	ShipmentID int64
	Status     TripStatus
	StartedAt  *time.Time
	EndedAt    *time.Time
	CreatedAt  time.Time
	UpdatedAt  time.Time
}
