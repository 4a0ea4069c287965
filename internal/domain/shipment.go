package domain

import "time"

// ShipmentStatus enumerates cargo order lifecycle states.
type ShipmentStatus string

const (
	ShipmentStatusPending   ShipmentStatus = "PENDING"
	ShipmentStatusAssigned  ShipmentStatus = "ASSIGNED"
	ShipmentStatusInTransit ShipmentStatus = "IN_TRANSIT"
	ShipmentStatusDelivered ShipmentStatus = "DELIVERED"
	ShipmentStatusCancelled ShipmentStatus = "CANCELLED"
)

// Shipment is a cargo order moving between two locations.
type Shipment struct {
	ID          int64
	Reference   string
	Origin      string
	Destination string
	WeightKG    float64
	Status      ShipmentStatus
	CreatedBy   int64
	CreatedAt   time.Time
	UpdatedAt   time.Time
}
