package reporting

import (
	"time"

	"github.com/shopspring/decimal"

	"vetward/internal/domain"
	"vetward/internal/modules/rooms"
)

type Stats struct {
	ActiveAdmissions int                   `json:"active_admissions"`
	OccupiedRooms    int                   `json:"occupied_rooms"`
	TotalRooms       int                   `json:"total_rooms"`
	OccupiedSlots    int                   `json:"occupied_slots"`
	TotalSlots       int                   `json:"total_slots"`
	OccupancyRate    float64               `json:"occupancy_rate"`
	ActiveBillTotal  decimal.Decimal       `json:"active_bill_total"`
	ByType           []rooms.TypeOccupancy `json:"by_type"`
}

// ComputeStats summarizes the ward. OccupancyRate is occupied slots over total
// slots, 0 when no rooms are configured.
func ComputeStats(admissions []domain.Admission, roomList []domain.Room) Stats {
	st := Stats{ActiveBillTotal: decimal.Zero, TotalRooms: len(roomList)}
	for i := range admissions {
		if admissions[i].IsActive() {
			st.ActiveAdmissions++
			st.ActiveBillTotal = st.ActiveBillTotal.Add(admissions[i].TotalBill)
		}
	}
	for _, r := range roomList {
		if r.Occupied > 0 {
			st.OccupiedRooms++
		}
		st.OccupiedSlots += r.Occupied
		st.TotalSlots += r.Capacity
	}
	if st.TotalSlots > 0 {
		rate, _ := decimal.NewFromInt(int64(st.OccupiedSlots)).
			DivRound(decimal.NewFromInt(int64(st.TotalSlots)), 4).
			Float64()
		st.OccupancyRate = rate
	}
	st.ActiveBillTotal = st.ActiveBillTotal.Round(2)
	st.ByType = rooms.SummarizeByType(roomList)
	return st
}

// AdmittedOn returns admissions whose admission time falls on the calendar
// day of day in loc.
func AdmittedOn(admissions []domain.Admission, day time.Time, loc *time.Location) []domain.Admission {
	if loc == nil {
		loc = time.UTC
	}
	d := day.In(loc)
	start := time.Date(d.Year(), d.Month(), d.Day(), 0, 0, 0, 0, loc)
	end := start.AddDate(0, 0, 1)
	return Apply(admissions, nil, Filter{From: &start, To: &end})
}
