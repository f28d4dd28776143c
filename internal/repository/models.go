package repository

import (
	"time"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"vetward/internal/domain"
)

// Money is stored as integer minor units (cents) so no float ever touches it.
func toCents(d decimal.Decimal) int64 {
	return d.Shift(2).Round(0).IntPart()
}

func fromCents(c int64) decimal.Decimal {
	return decimal.New(c, -2)
}

type roomModel struct {
	ID             string    `gorm:"column:id;primaryKey;size:36"`
	Number         string    `gorm:"column:number;size:32;not null;uniqueIndex"`
	Type           string    `gorm:"column:type;size:16;not null;index"`
	Capacity       int       `gorm:"column:capacity;not null;check:capacity >= 1"`
	Occupied       int       `gorm:"column:occupied;not null;default:0;check:occupied >= 0 AND occupied <= capacity"`
	DailyRateCents int64     `gorm:"column:daily_rate_cents;not null"`
	CreatedAt      time.Time `gorm:"column:created_at"`
	UpdatedAt      time.Time `gorm:"column:updated_at"`
}

func (roomModel) TableName() string { return "rooms" }

func toDomainRoom(m roomModel) domain.Room {
	return domain.Room{
		ID:        m.ID,
		Number:    m.Number,
		Type:      domain.RoomType(m.Type),
		Capacity:  m.Capacity,
		Occupied:  m.Occupied,
		DailyRate: fromCents(m.DailyRateCents),
		CreatedAt: m.CreatedAt,
		UpdatedAt: m.UpdatedAt,
	}
}

func toRoomModel(r *domain.Room) roomModel {
	return roomModel{
		ID:             r.ID,
		Number:         r.Number,
		Type:           string(r.Type),
		Capacity:       r.Capacity,
		Occupied:       r.Occupied,
		DailyRateCents: toCents(r.DailyRate),
		CreatedAt:      r.CreatedAt,
		UpdatedAt:      r.UpdatedAt,
	}
}

type admissionModel struct {
	ID                   string     `gorm:"column:id;primaryKey;size:36"`
	PetID                string     `gorm:"column:pet_id;size:64;not null;index"`
	PetName              string     `gorm:"column:pet_name;not null"`
	PetSpecies           string     `gorm:"column:pet_species"`
	PetBreed             string     `gorm:"column:pet_breed"`
	OwnerID              string     `gorm:"column:owner_id;size:64;index"`
	OwnerName            string     `gorm:"column:owner_name"`
	OwnerPhone           string     `gorm:"column:owner_phone"`
	DoctorID             string     `gorm:"column:doctor_id;size:64;index"`
	DoctorName           string     `gorm:"column:doctor_name"`
	DoctorSpecialization string     `gorm:"column:doctor_specialization"`
	RoomNumber           string     `gorm:"column:room_number;size:32;not null;index"`
	AdmittedAt           time.Time  `gorm:"column:admitted_at;not null;index"`
	Reason               string     `gorm:"column:reason;type:text;not null"`
	Status               string     `gorm:"column:status;size:16;not null;index"`
	EstimatedDischarge   *time.Time `gorm:"column:estimated_discharge"`
	ActualDischarge      *time.Time `gorm:"column:actual_discharge"`
	TotalBillCents       int64      `gorm:"column:total_bill_cents;not null;default:0"`
	DailyRateCents       int64      `gorm:"column:daily_rate_cents;not null"`
	Notes                *string    `gorm:"column:notes;type:text"`
	TransferredFrom      *string    `gorm:"column:transferred_from;size:36"`
	TransferredTo        *string    `gorm:"column:transferred_to;size:36"`
	CreatedAt            time.Time  `gorm:"column:created_at"`
	UpdatedAt            time.Time  `gorm:"column:updated_at"`
}

func (admissionModel) TableName() string { return "admissions" }

func toAdmissionModel(a *domain.Admission) admissionModel {
	var notes *string
	if a.Notes != "" {
		v := a.Notes
		notes = &v
	}
	return admissionModel{
		ID:                   a.ID,
		PetID:                a.Pet.ID,
		PetName:              a.Pet.Name,
		PetSpecies:           a.Pet.Species,
		PetBreed:             a.Pet.Breed,
		OwnerID:              a.Owner.ID,
		OwnerName:            a.Owner.Name,
		OwnerPhone:           a.Owner.Phone,
		DoctorID:             a.Doctor.ID,
		DoctorName:           a.Doctor.Name,
		DoctorSpecialization: a.Doctor.Specialization,
		RoomNumber:           a.RoomNumber,
		AdmittedAt:           a.AdmittedAt,
		Reason:               a.Reason,
		Status:               string(a.Status),
		EstimatedDischarge:   a.EstimatedDischarge,
		ActualDischarge:      a.ActualDischarge,
		TotalBillCents:       toCents(a.TotalBill),
		DailyRateCents:       toCents(a.DailyRate),
		Notes:                notes,
		TransferredFrom:      a.TransferredFrom,
		TransferredTo:        a.TransferredTo,
		CreatedAt:            a.CreatedAt,
		UpdatedAt:            a.UpdatedAt,
	}
}

func toDomainAdmission(m admissionModel) domain.Admission {
	var notes string
	if m.Notes != nil {
		notes = *m.Notes
	}
	return domain.Admission{
		ID:                 m.ID,
		Pet:                domain.PetRef{ID: m.PetID, Name: m.PetName, Species: m.PetSpecies, Breed: m.PetBreed},
		Owner:              domain.OwnerRef{ID: m.OwnerID, Name: m.OwnerName, Phone: m.OwnerPhone},
		Doctor:             domain.DoctorRef{ID: m.DoctorID, Name: m.DoctorName, Specialization: m.DoctorSpecialization},
		RoomNumber:         m.RoomNumber,
		AdmittedAt:         m.AdmittedAt,
		Reason:             m.Reason,
		Status:             domain.AdmissionStatus(m.Status),
		EstimatedDischarge: m.EstimatedDischarge,
		ActualDischarge:    m.ActualDischarge,
		TotalBill:          fromCents(m.TotalBillCents),
		DailyRate:          fromCents(m.DailyRateCents),
		Treatments:         []domain.Treatment{},
		Notes:              notes,
		TransferredFrom:    m.TransferredFrom,
		TransferredTo:      m.TransferredTo,
		CreatedAt:          m.CreatedAt,
		UpdatedAt:          m.UpdatedAt,
	}
}

type treatmentModel struct {
	ID          string    `gorm:"column:id;primaryKey;size:36"`
	AdmissionID string    `gorm:"column:admission_id;size:36;not null;index"`
	PerformedAt time.Time `gorm:"column:performed_at;not null"`
	Type        string    `gorm:"column:type;size:16;not null"`
	Description string    `gorm:"column:description;type:text;not null"`
	DoctorName  string    `gorm:"column:doctor_name"`
	CostCents   int64     `gorm:"column:cost_cents;not null;check:cost_cents >= 0"`
	Status      string    `gorm:"column:status;size:16;not null"`
	Seq         int       `gorm:"column:seq;not null"`
	CreatedAt   time.Time `gorm:"column:created_at"`
	UpdatedAt   time.Time `gorm:"column:updated_at"`
}

func (treatmentModel) TableName() string { return "treatments" }

func toTreatmentModel(t domain.Treatment) treatmentModel {
	return treatmentModel{
		ID:          t.ID,
		AdmissionID: t.AdmissionID,
		PerformedAt: t.PerformedAt,
		Type:        string(t.Type),
		Description: t.Description,
		DoctorName:  t.DoctorName,
		CostCents:   toCents(t.Cost),
		Status:      string(t.Status),
		Seq:         t.Seq,
		CreatedAt:   t.CreatedAt,
		UpdatedAt:   t.UpdatedAt,
	}
}

func toDomainTreatment(m treatmentModel) domain.Treatment {
	return domain.Treatment{
		ID:          m.ID,
		AdmissionID: m.AdmissionID,
		PerformedAt: m.PerformedAt,
		Type:        domain.TreatmentType(m.Type),
		Description: m.Description,
		DoctorName:  m.DoctorName,
		Cost:        fromCents(m.CostCents),
		Status:      domain.TreatmentStatus(m.Status),
		Seq:         m.Seq,
		CreatedAt:   m.CreatedAt,
		UpdatedAt:   m.UpdatedAt,
	}
}

type dischargeModel struct {
	AdmissionID           string     `gorm:"column:admission_id;primaryKey;size:36"`
	DischargedAt          time.Time  `gorm:"column:discharged_at;not null"`
	Notes                 string     `gorm:"column:notes;type:text"`
	FollowUpRequired      bool       `gorm:"column:follow_up_required"`
	FollowUpDate          *time.Time `gorm:"column:follow_up_date"`
	FollowUpInstructions  string     `gorm:"column:follow_up_instructions;type:text"`
	MedicationsDispensed  []string   `gorm:"column:medications_dispensed;type:text;serializer:json"`
	StayDays              int        `gorm:"column:stay_days;not null"`
	RoomChargesCents      int64      `gorm:"column:room_charges_cents;not null"`
	TreatmentChargesCents int64      `gorm:"column:treatment_charges_cents;not null"`
	CalculatedBillCents   int64      `gorm:"column:calculated_bill_cents;not null"`
	FinalBillCents        int64      `gorm:"column:final_bill_cents;not null"`
	Overridden            bool       `gorm:"column:overridden;not null;default:false"`
	PaymentStatus         string     `gorm:"column:payment_status;size:16;not null"`
	PaymentMethod         string     `gorm:"column:payment_method;size:32"`
	CreatedAt             time.Time  `gorm:"column:created_at"`
}

func (dischargeModel) TableName() string { return "discharge_records" }

func toDischargeModel(admissionID string, d *domain.DischargeRecord) dischargeModel {
	return dischargeModel{
		AdmissionID:           admissionID,
		DischargedAt:          d.DischargedAt,
		Notes:                 d.Notes,
		FollowUpRequired:      d.FollowUp.Required,
		FollowUpDate:          d.FollowUp.Date,
		FollowUpInstructions:  d.FollowUp.Instructions,
		MedicationsDispensed:  d.MedicationsDispensed,
		StayDays:              d.StayDays,
		RoomChargesCents:      toCents(d.RoomCharges),
		TreatmentChargesCents: toCents(d.TreatmentCharges),
		CalculatedBillCents:   toCents(d.CalculatedBill),
		FinalBillCents:        toCents(d.FinalBill),
		Overridden:            d.Overridden,
		PaymentStatus:         string(d.PaymentStatus),
		PaymentMethod:         d.PaymentMethod,
	}
}

func toDomainDischarge(m dischargeModel) *domain.DischargeRecord {
	return &domain.DischargeRecord{
		DischargedAt: m.DischargedAt,
		Notes:        m.Notes,
		FollowUp: domain.FollowUp{
			Required:     m.FollowUpRequired,
			Date:         m.FollowUpDate,
			Instructions: m.FollowUpInstructions,
		},
		MedicationsDispensed: m.MedicationsDispensed,
		StayDays:             m.StayDays,
		RoomCharges:          fromCents(m.RoomChargesCents),
		TreatmentCharges:     fromCents(m.TreatmentChargesCents),
		CalculatedBill:       fromCents(m.CalculatedBillCents),
		FinalBill:            fromCents(m.FinalBillCents),
		Overridden:           m.Overridden,
		PaymentStatus:        domain.PaymentStatus(m.PaymentStatus),
		PaymentMethod:        m.PaymentMethod,
	}
}

// auditModel represents the audit_logs table.
type auditModel struct {
	ID        string    `gorm:"column:id;primaryKey;size:36"`
	Action    string    `gorm:"column:action;size:100;not null;index"`
	Entity    string    `gorm:"column:entity;size:32;not null"`
	EntityID  string    `gorm:"column:entity_id;size:64;not null;index"`
	Details   string    `gorm:"column:details;type:text"`
	CreatedAt time.Time `gorm:"column:created_at"`
}

func (auditModel) TableName() string { return "audit_logs" }

type ownerModel struct {
	ID    string `gorm:"column:id;primaryKey;size:64"`
	Name  string `gorm:"column:name;not null"`
	Phone string `gorm:"column:phone"`
	Email string `gorm:"column:email"`
}

func (ownerModel) TableName() string { return "owners" }

type petModel struct {
	ID      string `gorm:"column:id;primaryKey;size:64"`
	OwnerID string `gorm:"column:owner_id;size:64;index"`
	Name    string `gorm:"column:name;not null;index"`
	Species string `gorm:"column:species"`
	Breed   string `gorm:"column:breed"`
}

func (petModel) TableName() string { return "pets" }

type doctorModel struct {
	ID             string `gorm:"column:id;primaryKey;size:64"`
	Name           string `gorm:"column:name;not null"`
	Specialization string `gorm:"column:specialization"`
	Phone          string `gorm:"column:phone"`
}

func (doctorModel) TableName() string { return "doctors" }

// Migrate creates or updates every ward table.
func Migrate(db *gorm.DB) error {
	return db.AutoMigrate(
		&roomModel{},
		&admissionModel{},
		&treatmentModel{},
		&dischargeModel{},
		&auditModel{},
		&ownerModel{},
		&petModel{},
		&doctorModel{},
	)
}
