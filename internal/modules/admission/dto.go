package admission

import (
	"time"

	"github.com/shopspring/decimal"

	"vetward/internal/domain"
	"vetward/internal/modules/billing"
)

// OpenInput carries resolved directory references for a new admission.
type OpenInput struct {
	Pet                domain.PetRef
	Owner              domain.OwnerRef
	Doctor             domain.DoctorRef
	RoomNumber         string
	Reason             string
	EstimatedDischarge *time.Time
	Notes              string
}

type OpenAdmissionRequest struct {
	PetID              string     `json:"pet_id" binding:"required"`
	OwnerID            string     `json:"owner_id"`
	DoctorID           string     `json:"doctor_id" binding:"required"`
	RoomNumber         string     `json:"room_number" binding:"required"`
	Reason             string     `json:"reason" binding:"required"`
	EstimatedDischarge *time.Time `json:"estimated_discharge"`
	Notes              string     `json:"notes"`
}

type AddTreatmentRequest struct {
	PerformedAt *time.Time      `json:"performed_at"`
	Type        string          `json:"type" binding:"required"`
	Description string          `json:"description" binding:"required"`
	DoctorName  string          `json:"doctor_name"`
	Cost        decimal.Decimal `json:"cost"`
	Status      string          `json:"status"`
}

type UpdateTreatmentStatusRequest struct {
	Status string `json:"status" binding:"required"`
}

type FollowUpRequest struct {
	Required     bool       `json:"required"`
	Date         *time.Time `json:"date"`
	Instructions string     `json:"instructions"`
}

// DischargeInput closes an admission. A nil DischargedAt means now and a nil
// FinalBill means the calculated amount is charged.
type DischargeInput struct {
	DischargedAt         *time.Time       `json:"discharged_at"`
	Notes                string           `json:"notes"`
	FollowUp             FollowUpRequest  `json:"follow_up"`
	MedicationsDispensed []string         `json:"medications_dispensed"`
	FinalBill            *decimal.Decimal `json:"final_bill"`
	PaymentStatus        string           `json:"payment_status"`
	PaymentMethod        string           `json:"payment_method"`
}

type TransferRequest struct {
	RoomNumber string `json:"room_number" binding:"required"`
	Note       string `json:"note"`
}

// TransferResult holds the closed record and the admission that replaced it.
type TransferResult struct {
	From *domain.Admission `json:"from"`
	To   *domain.Admission `json:"to"`
}

// Invoice is the bill for an admission: the running estimate while Active and
// the frozen amounts once closed.
type Invoice struct {
	AdmissionID   string                 `json:"admission_id"`
	Status        domain.AdmissionStatus `json:"status"`
	Breakdown     billing.Breakdown      `json:"breakdown"`
	FinalBill     decimal.Decimal        `json:"final_bill"`
	Overridden    bool                   `json:"overridden"`
	PaymentStatus domain.PaymentStatus   `json:"payment_status,omitempty"`
	PaymentMethod string                 `json:"payment_method,omitempty"`
	Estimate      bool                   `json:"estimate"`
}
