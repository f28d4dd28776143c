package domain

import (
	"context"

	"github.com/shopspring/decimal"
)

// RoomStore persists rooms keyed by their number.
type RoomStore interface {
	List(ctx context.Context) ([]Room, error)
	GetByNumber(ctx context.Context, number string) (*Room, error)
	Create(ctx context.Context, room *Room) error
	UpdateRate(ctx context.Context, number string, rate decimal.Decimal) error
	// Reserve increments occupied only while occupied < capacity and returns the
	// daily rate read in the same step.
	Reserve(ctx context.Context, number string) (decimal.Decimal, error)
	// Release decrements occupied, never below zero. underflow is true when the
	// counter was already zero.
	Release(ctx context.Context, number string) (underflow bool, err error)
}

// AdmissionStore persists admissions together with their treatments and discharge record.
type AdmissionStore interface {
	Create(ctx context.Context, a *Admission) error
	GetByID(ctx context.Context, id string) (*Admission, error)
	// Save writes the admission row and replaces its treatment list.
	Save(ctx context.Context, a *Admission) error
	List(ctx context.Context) ([]Admission, error)
	// AdmissionIDForTreatment resolves the owner of a treatment.
	AdmissionIDForTreatment(ctx context.Context, treatmentID string) (string, error)
}

// AuditStore records staff-visible audit entries.
type AuditStore interface {
	Append(ctx context.Context, entry *AuditEntry) error
	ListForEntity(ctx context.Context, entity, entityID string) ([]AuditEntry, error)
}

// Tx is the set of stores visible inside one unit of work.
type Tx interface {
	Rooms() RoomStore
	Admissions() AdmissionStore
	Audit() AuditStore
}

// Store runs fn atomically: either every write inside fn is applied or none is.
type Store interface {
	Tx
	InTx(ctx context.Context, fn func(tx Tx) error) error
}
