package treatment

import (
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"vetward/internal/domain"
)

// Input is a treatment as submitted by staff.
type Input struct {
	PerformedAt *time.Time
	Type        string
	Description string
	DoctorName  string
	Cost        decimal.Decimal
	Status      string
}

// New validates in and builds the treatment entry. An empty status means Scheduled.
// Entries may also be logged as already Completed, never as Cancelled.
func New(in Input, admissionID string, seq int, now time.Time) (domain.Treatment, error) {
	typ, err := domain.ParseTreatmentType(in.Type)
	if err != nil {
		return domain.Treatment{}, err
	}
	desc := strings.TrimSpace(in.Description)
	if desc == "" {
		return domain.Treatment{}, fmt.Errorf("%w: description is required", domain.ErrValidation)
	}
	if in.Cost.IsNegative() {
		return domain.Treatment{}, fmt.Errorf("%w: cost must not be negative", domain.ErrValidation)
	}
	if err := domain.CheckCents("cost", in.Cost); err != nil {
		return domain.Treatment{}, err
	}

	status := domain.TreatmentScheduled
	if strings.TrimSpace(in.Status) != "" {
		status, err = domain.ParseTreatmentStatus(in.Status)
		if err != nil {
			return domain.Treatment{}, err
		}
		if status == domain.TreatmentCancelled {
			return domain.Treatment{}, fmt.Errorf("%w: a new treatment cannot be cancelled", domain.ErrValidation)
		}
	}

	performedAt := now
	if in.PerformedAt != nil && !in.PerformedAt.IsZero() {
		performedAt = *in.PerformedAt
	}

	return domain.Treatment{
		ID:          uuid.NewString(),
		AdmissionID: admissionID,
		PerformedAt: performedAt,
		Type:        typ,
		Description: desc,
		DoctorName:  strings.TrimSpace(in.DoctorName),
		Cost:        in.Cost,
		Status:      status,
		Seq:         seq,
		CreatedAt:   now,
		UpdatedAt:   now,
	}, nil
}
