package domain

import "time"

const (
	EventAdmissionOpened      = "admission_opened"
	EventTreatmentAdded       = "treatment_added"
	EventTreatmentUpdated     = "treatment_updated"
	EventTreatmentRemoved     = "treatment_removed"
	EventAdmissionDischarged  = "admission_discharged"
	EventAdmissionTransferred = "admission_transferred"
	EventOccupancy            = "occupancy"
)

// WardEvent is a change notification pushed to live ward displays.
type WardEvent struct {
	Type        string    `json:"type"`
	AdmissionID string    `json:"admission_id,omitempty"`
	RoomNumber  string    `json:"room_number,omitempty"`
	At          time.Time `json:"at"`
	Data        any       `json:"data,omitempty"`
}
