package domain

import (
	"time"

	"github.com/shopspring/decimal"
)

type AdmissionStatus string

const (
	AdmissionActive      AdmissionStatus = "Active"
	AdmissionDischarged  AdmissionStatus = "Discharged"
	AdmissionTransferred AdmissionStatus = "Transferred"
)

func (s AdmissionStatus) Terminal() bool {
	return s == AdmissionDischarged || s == AdmissionTransferred
}

func (s AdmissionStatus) Valid() bool {
	return s == AdmissionActive || s.Terminal()
}

// PetRef, OwnerRef and DoctorRef are copies of directory records taken at open time.
type PetRef struct {
	ID      string `json:"id"`
	Name    string `json:"name"`
	Species string `json:"species"`
	Breed   string `json:"breed,omitempty"`
}

type OwnerRef struct {
	ID    string `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone,omitempty"`
}

type DoctorRef struct {
	ID             string `json:"id"`
	Name           string `json:"name"`
	Specialization string `json:"specialization,omitempty"`
}

type Admission struct {
	ID                 string           `json:"id"`
	Pet                PetRef           `json:"pet"`
	Owner              OwnerRef         `json:"owner"`
	Doctor             DoctorRef        `json:"doctor"`
	RoomNumber         string           `json:"room_number"`
	AdmittedAt         time.Time        `json:"admitted_at"`
	Reason             string           `json:"reason"`
	Status             AdmissionStatus  `json:"status"`
	EstimatedDischarge *time.Time       `json:"estimated_discharge,omitempty"`
	ActualDischarge    *time.Time       `json:"actual_discharge,omitempty"`
	TotalBill          decimal.Decimal  `json:"total_bill"`
	DailyRate          decimal.Decimal  `json:"daily_rate"`
	Treatments         []Treatment      `json:"treatments"`
	Notes              string           `json:"notes,omitempty"`
	TransferredFrom    *string          `json:"transferred_from,omitempty"`
	TransferredTo      *string          `json:"transferred_to,omitempty"`
	Discharge          *DischargeRecord `json:"discharge,omitempty"`
	CreatedAt          time.Time        `json:"created_at"`
	UpdatedAt          time.Time        `json:"updated_at"`
}

func (a *Admission) IsActive() bool {
	return a.Status == AdmissionActive
}

// FindTreatment returns the index of the treatment with the given id, or -1.
func (a *Admission) FindTreatment(id string) int {
	for i := range a.Treatments {
		if a.Treatments[i].ID == id {
			return i
		}
	}
	return -1
}

// NextTreatmentSeq is the insertion sequence for the next appended treatment.
func (a *Admission) NextTreatmentSeq() int {
	next := 1
	for _, t := range a.Treatments {
		if t.Seq >= next {
			next = t.Seq + 1
		}
	}
	return next
}

// Clone returns a deep copy so callers can mutate it without touching shared state.
func (a Admission) Clone() Admission {
	out := a
	out.Treatments = make([]Treatment, len(a.Treatments))
	copy(out.Treatments, a.Treatments)
	out.EstimatedDischarge = cloneTime(a.EstimatedDischarge)
	out.ActualDischarge = cloneTime(a.ActualDischarge)
	out.TransferredFrom = cloneString(a.TransferredFrom)
	out.TransferredTo = cloneString(a.TransferredTo)
	if a.Discharge != nil {
		d := a.Discharge.Clone()
		out.Discharge = &d
	}
	return out
}

func cloneTime(t *time.Time) *time.Time {
	if t == nil {
		return nil
	}
	v := *t
	return &v
}

func cloneString(s *string) *string {
	if s == nil {
		return nil
	}
	v := *s
	return &v
}
