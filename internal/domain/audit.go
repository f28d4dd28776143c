package domain

import "time"

const (
	AuditBillOverride = "bill_override"
	AuditTransfer     = "admission_transfer"
	AuditRateChange   = "room_rate_change"
	AuditReleaseFloor = "room_release_underflow"

	AuditEntityAdmission = "admission"
	AuditEntityRoom      = "room"
)

// AuditEntry is an append-only record of an action staff may need to review later.
type AuditEntry struct {
	ID        string    `json:"id"`
	Action    string    `json:"action"`
	Entity    string    `json:"entity"`
	EntityID  string    `json:"entity_id"`
	Details   string    `json:"details"`
	CreatedAt time.Time `json:"created_at"`
}
