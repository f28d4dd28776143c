package rooms

import "github.com/shopspring/decimal"

type CreateRoomRequest struct {
	Number    string          `json:"number" binding:"required"`
	Type      string          `json:"type" binding:"required"`
	Capacity  int             `json:"capacity" binding:"required,gte=1"`
	DailyRate decimal.Decimal `json:"daily_rate"`
}

type UpdateRateRequest struct {
	DailyRate decimal.Decimal `json:"daily_rate"`
}

// TypeOccupancy aggregates slots for one room type.
type TypeOccupancy struct {
	Type     string `json:"type"`
	Rooms    int    `json:"rooms"`
	Occupied int    `json:"occupied"`
	Capacity int    `json:"capacity"`
}
