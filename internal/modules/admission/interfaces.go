package admission

import (
	"context"
	"time"

	"github.com/shopspring/decimal"

	"vetward/internal/domain"
	"vetward/internal/modules/rooms"
)

// RoomRegistry is the part of the room registry an admission needs. The *In
// methods run inside the caller's transaction.
type RoomRegistry interface {
	ReserveIn(ctx context.Context, tx domain.Tx, number string) (decimal.Decimal, error)
	ReleaseIn(ctx context.Context, tx domain.Tx, number string) error
	SyncOccupancy(ctx context.Context)
	Occupancy(ctx context.Context) ([]rooms.TypeOccupancy, error)
}

// Directory resolves pet, owner and doctor ids supplied by staff.
type Directory interface {
	GetPet(ctx context.Context, id string) (*domain.Pet, error)
	GetOwner(ctx context.Context, id string) (*domain.Owner, error)
	GetDoctor(ctx context.Context, id string) (*domain.Doctor, error)
}

// Publisher fans ward events out to live displays. Publish must not block.
type Publisher interface {
	Publish(evt domain.WardEvent)
}

type Metrics interface {
	Observe(operation string, success bool, d time.Duration)
	AdmissionOpened(roomType string)
	AdmissionClosed(outcome string)
	Billed(amount float64)
}

type nopPublisher struct{}

func (nopPublisher) Publish(domain.WardEvent) {}
