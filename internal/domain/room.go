package domain

import (
	"fmt"
	"slices"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type RoomType string

const (
	RoomICU       RoomType = "ICU"
	RoomGeneral   RoomType = "General"
	RoomIsolation RoomType = "Isolation"
	RoomSurgery   RoomType = "Surgery"
)

var roomTypes = []RoomType{RoomICU, RoomGeneral, RoomIsolation, RoomSurgery}

// RoomTypes lists every room type in declaration order.
func RoomTypes() []RoomType {
	return slices.Clone(roomTypes)
}

// ParseRoomType accepts the canonical names case-insensitively.
func ParseRoomType(s string) (RoomType, error) {
	for _, t := range roomTypes {
		if strings.EqualFold(string(t), strings.TrimSpace(s)) {
			return t, nil
		}
	}
	return "", fmt.Errorf("%w: unknown room type %q", ErrValidation, s)
}

func (t RoomType) Valid() bool {
	_, err := ParseRoomType(string(t))
	return err == nil
}

type Room struct {
	ID        string          `json:"id"`
	Number    string          `json:"number" validate:"required"`
	Type      RoomType        `json:"type" validate:"required"`
	Capacity  int             `json:"capacity" validate:"required,gte=1"`
	Occupied  int             `json:"occupied"`
	DailyRate decimal.Decimal `json:"daily_rate" validate:"positive_amount"`
	CreatedAt time.Time       `json:"created_at"`
	UpdatedAt time.Time       `json:"updated_at"`
}

func (r Room) Available() bool {
	return r.Occupied < r.Capacity
}

func (r Room) FreeSlots() int {
	if r.Occupied >= r.Capacity {
		return 0
	}
	return r.Capacity - r.Occupied
}

// Validate checks the configuration invariants of a room before it is stored.
func (r Room) Validate() error {
	if strings.TrimSpace(r.Number) == "" {
		return fmt.Errorf("%w: room number is required", ErrValidation)
	}
	if !r.Type.Valid() {
		return fmt.Errorf("%w: unknown room type %q", ErrValidation, r.Type)
	}
	if r.Capacity < 1 {
		return fmt.Errorf("%w: capacity must be at least 1", ErrValidation)
	}
	if r.Occupied < 0 || r.Occupied > r.Capacity {
		return fmt.Errorf("%w: occupied must be within 0..capacity", ErrValidation)
	}
	if !r.DailyRate.IsPositive() {
		return fmt.Errorf("%w: daily rate must be positive", ErrValidation)
	}
	return CheckCents("daily rate", r.DailyRate)
}
