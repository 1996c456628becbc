package domain

import "time"

const (
	EventLicenseGenerated   = "license.generated"
	EventLicenseProvisioned = "license.provisioned"
	EventLicenseActivated   = "license.activated"
	EventRewardRecorded     = "reward.recorded"
)

// Event is a notification emitted after a state change. Key selects the
// partition so events for one key stay ordered.
type Event struct {
	Type       string    `json:"type"`
	Key        string    `json:"key"`
	OccurredAt time.Time `json:"occurredAt"`
	Payload    any       `json:"payload"`
}
