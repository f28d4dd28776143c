// Package billing derives the amount owed for a ward stay.
package billing

import (
	"time"

	"github.com/shopspring/decimal"

	"vetward/internal/domain"
)

const day = 24 * time.Hour

// Breakdown is the system-calculated bill for a stay with all of its components.
type Breakdown struct {
	AdmittedAt       time.Time       `json:"admitted_at"`
	BilledUntil      time.Time       `json:"billed_until"`
	StayDays         int             `json:"stay_days"`
	DailyRate        decimal.Decimal `json:"daily_rate"`
	RoomCharges      decimal.Decimal `json:"room_charges"`
	TreatmentCharges decimal.Decimal `json:"treatment_charges"`
	Calculated       decimal.Decimal `json:"calculated_bill"`
}

// StayDays returns the number of calendar days between the admission date and
// the date of until, both taken in loc. A stay is never billed for less than
// one day, so a same-day discharge counts as one.
func StayDays(admittedAt, until time.Time, loc *time.Location) int {
	days := int(civilDate(until, loc).Sub(civilDate(admittedAt, loc)) / day)
	if days < 1 {
		return 1
	}
	return days
}

// civilDate maps t to midnight UTC of its calendar date in loc, so that day
// arithmetic is unaffected by DST shifts.
func civilDate(t time.Time, loc *time.Location) time.Time {
	if loc == nil {
		loc = time.UTC
	}
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}

// TreatmentCharges sums the cost of every treatment that was not cancelled.
func TreatmentCharges(treatments []domain.Treatment) decimal.Decimal {
	total := decimal.Zero
	for _, t := range treatments {
		if t.Billable() {
			total = total.Add(t.Cost)
		}
	}
	return total
}

// Calculate computes the bill for a as if it closed at until, counting days in
// the clinic time zone loc. It has no side effects.
func Calculate(a domain.Admission, until time.Time, loc *time.Location) Breakdown {
	days := StayDays(a.AdmittedAt, until, loc)
	room := a.DailyRate.Mul(decimal.NewFromInt(int64(days)))
	treatments := TreatmentCharges(a.Treatments)

	return Breakdown{
		AdmittedAt:       a.AdmittedAt,
		BilledUntil:      until,
		StayDays:         days,
		DailyRate:        a.DailyRate,
		RoomCharges:      room.Round(2),
		TreatmentCharges: treatments.Round(2),
		Calculated:       room.Add(treatments).Round(2),
	}
}

// FinalAmount picks the staff override when present, otherwise the calculated bill.
// The calculated amount stays available in b either way.
func FinalAmount(b Breakdown, override *decimal.Decimal) (amount decimal.Decimal, overridden bool) {
	if override == nil {
		return b.Calculated, false
	}
	return override.Round(2), true
}
