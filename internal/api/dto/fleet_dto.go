package dto

import "github.com/spec-kit/fleet-service/internal/domain"

// VehicleRequest payload for creating/updating vehicles.
type VehicleRequest struct {
	Plate      string `json:"plate"`
	Model      string `json:"model"`
	Year       int    `json:"year"`
	Status     string `json:"status"`
	OdometerKM int64  `json:"odometer_km"`
}

// InspectionRequest payload for submitting a checklist.
type InspectionRequest struct {
	VehicleID int64                   `json:"vehicle_id"`
	Items     []domain.InspectionItem `json:"items"`
	Result    string                  `json:"result"`
	Notes     string                  `json:"notes"`
}

// ShipmentRequest payload for creating shipments.
type ShipmentRequest struct {
	Origin      string  `json:"origin"`
	Destination string  `json:"destination"`
	WeightKG    float64 `json:"weight_kg"`
}

// ShipmentStatusRequest payload for status transitions.
type ShipmentStatusRequest struct {
	Status string `json:"status"`
}

// TripAssignRequest payload for assigning a trip.
type TripAssignRequest struct {
	DriverID   int64 `json:"driver_id"`
	VehicleID  int64 `json:"vehicle_id"`
	ShipmentID int64 `json:"shipment_id"`
}
