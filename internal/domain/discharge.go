package domain

import (
	"fmt"
	"strings"
	"time"

	"github.com/shopspring/decimal"
)

type PaymentStatus string

const (
	PaymentPending PaymentStatus = "Pending"
	PaymentPaid    PaymentStatus = "Paid"
	PaymentPartial PaymentStatus = "Partial"
)

func ParsePaymentStatus(s string) (PaymentStatus, error) {
	if strings.TrimSpace(s) == "" {
		return PaymentPending, nil
	}
	for _, p := range []PaymentStatus{PaymentPending, PaymentPaid, PaymentPartial} {
		if strings.EqualFold(string(p), strings.TrimSpace(s)) {
			return p, nil
		}
	}
	return "", fmt.Errorf("%w: unknown payment status %q", ErrValidation, s)
}

type FollowUp struct {
	Required     bool       `json:"required"`
	Date         *time.Time `json:"date,omitempty"`
	Instructions string     `json:"instructions,omitempty"`
}

// DischargeRecord is stored with the admission it closes.
// CalculatedBill is always kept, FinalBill differs from it only when staff override the amount.
type DischargeRecord struct {
	DischargedAt         time.Time       `json:"discharged_at"`
	Notes                string          `json:"notes,omitempty"`
	FollowUp             FollowUp        `json:"follow_up"`
	MedicationsDispensed []string        `json:"medications_dispensed,omitempty"`
	StayDays             int             `json:"stay_days"`
	RoomCharges          decimal.Decimal `json:"room_charges"`
	TreatmentCharges     decimal.Decimal `json:"treatment_charges"`
	CalculatedBill       decimal.Decimal `json:"calculated_bill"`
	FinalBill            decimal.Decimal `json:"final_bill"`
	Overridden           bool            `json:"overridden"`
	PaymentStatus        PaymentStatus   `json:"payment_status"`
	PaymentMethod        string          `json:"payment_method,omitempty"`
}

func (d DischargeRecord) Clone() DischargeRecord {
	out := d
	out.MedicationsDispensed = append([]string(nil), d.MedicationsDispensed...)
	if d.FollowUp.Date != nil {
		v := *d.FollowUp.Date
		out.FollowUp.Date = &v
	}
	return out
}
