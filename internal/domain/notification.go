package domain

import "time"

// NotificationKind enumerates the events surfaced to users.
type NotificationKind string

const (
	NotificationInspectionCompleted   NotificationKind = "INSPECTION_COMPLETED"
	NotificationShipmentStatusChanged NotificationKind = "SHIPMENT_STATUS_CHANGED"
	NotificationTripAssigned          NotificationKind = "TRIP_ASSIGNED"
)

// Notification is a per-user message persisted and also pushed live over
// the websocket stream.
type Notification struct {
	ID        int64
	UserID    int64
	Kind      NotificationKind
	Subject   string
	Body      string
	ReadAt    *time.Time
	CreatedAt time.Time
}
