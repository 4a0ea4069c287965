package domain

import "time"

// InspectionResult enumerates checklist outcomes.
type InspectionResult string

const (
	InspectionResultPass        InspectionResult = "PASS"
	InspectionResultFail        InspectionResult = "FAIL"
	InspectionResultNeedsRepair InspectionResult = "NEEDS_REPAIR"
)

// InspectionItem is a single checklist entry.
type InspectionItem struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
	Note   string `json:"note,omitempty"`
}

// Inspection records a vehicle checklist filled in by an inspector.
type Inspection struct {
	ID          int64
	VehicleID   int64
	InspectorID int64
	Items       []InspectionItem
	Result      InspectionResult
	Notes       string
	CreatedAt   time.Time
}
