// Package queue defines message payloads exchanged over the message broker.
package queue

// Event names carried in ParkingEvent.Event.
const (
	EventEntry = "entry"
	EventExit  = "exit"
)

// ParkingEvent is published after an entry or exit commits.  It carries
// enough information for downstream consumers to log, notify, or feed
// analytics without querying the primary database.
type ParkingEvent struct {
	Event      string   `json:"event"`
	SessionID  uint64   `json:"session_id"`
	VehicleID  uint64   `json:"vehicle_id"`
	Plate      string   `json:"plate"`
	SpotID     uint64   `json:"spot_id"`
	SpotNumber string   `json:"spot_number"`
	OperatorID uint64   `json:"operator_id"`
	EnteredAt  string   `json:"entered_at"`
	ExitedAt   string   `json:"exited_at,omitempty"`
	AmountPaid *float64 `json:"amount_paid,omitempty"`
}
