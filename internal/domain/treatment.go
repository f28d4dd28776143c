package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type TreatmentType string

const (
	TreatmentMedication  TreatmentType = "Medication"
	TreatmentProcedure   TreatmentType = "Procedure"
	TreatmentObservation TreatmentType = "Observation"
	TreatmentSurgery     TreatmentType = "Surgery"
	TreatmentTherapy     TreatmentType = "Therapy"
)

var treatmentTypes = []TreatmentType{
	TreatmentMedication,
	TreatmentProcedure,
	TreatmentObservation,
	TreatmentSurgery,
	TreatmentTherapy,
}

func ParseTreatmentType(s string) (TreatmentType, error) {
	for _, t := range treatmentTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown treatment type %q", ErrValidation, s)
}

type TreatmentStatus string

const (
	TreatmentScheduled TreatmentStatus = "Scheduled"
	TreatmentCompleted TreatmentStatus = "Completed"
	TreatmentCancelled TreatmentStatus = "Cancelled"
)

func ParseTreatmentStatus(s string) (TreatmentStatus, error) {
	for _, st := range []TreatmentStatus{TreatmentScheduled, TreatmentCompleted, TreatmentCancelled} {
		if strings.EqualFold(string(st), strings.TrimSpace(s)) {
			return st, nil
		}
	}
	return "", fmt.Errorf("%w: unknown treatment status %q", ErrValidation, s)
}

type Treatment struct {
	ID          string          `json:"id"`
	AdmissionID string          `json:"admission_id"`
	PerformedAt time.Time       `json:"performed_at"`
	Type        TreatmentType   `json:"type"`
	Description string          `json:"description"`
	DoctorName  string          `json:"doctor_name,omitempty"`
	Cost        decimal.Decimal `json:"cost"`
	Status      TreatmentStatus `json:"status"`
	// Seq is the insertion order within the owning admission.
	Seq         int             `json:"seq"`
	CreatedAt   time.Time       `json:"created_at"`
	UpdatedAt   time.Time       `json:"updated_at"`
}

// Billable reports whether the treatment counts toward the bill.
// Scheduled treatments are billed alongside completed ones.
func (t Treatment) Billable() bool {
	return t.Status != TreatmentCancelled
}
