package domain

import "time"

// VehicleStatus enumerates fleet availability states.
type VehicleStatus string

const (
	VehicleStatusActive    VehicleStatus = "ACTIVE"
	VehicleStatusInService VehicleStatus = "IN_SERVICE"
	VehicleStatusRetired   VehicleStatus = "RETIRED"
)

// Vehicle is a fleet unit tracked by the back-office.
type Vehicle struct {
	ID        int64
	Plate     string
	Model     string
	Year      int
	Status    VehicleStatus
	OdometerKM int64
	CreatedAt time.Time
	UpdatedAt time.Time
}
