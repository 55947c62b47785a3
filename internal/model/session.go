package model

import "time"

// ParkingSession records one occupancy of a spot by a vehicle, bounded
// by an entry timestamp and, once the vehicle leaves, an exit timestamp.
// A session with a nil ExitedAt is "active".  Sessions are created only
// by the entry operation and transition exactly once to closed by the
// exit operation; they are never deleted or reopened.
//
// Fields:
//  ID         – primary key identifier.
//  VehicleID  – vehicle occupying the spot.
//  SpotID     – spot being occupied.
//  EnteredAt  – when the vehicle checked in (set at creation).
//  ExitedAt   – when the vehicle checked out (nil while active).
//  AmountPaid – value collected at exit, stored verbatim (nil if none).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type ParkingSession struct {
	ID         uint64     // parking_sessions.id
	VehicleID  uint64     // parking_sessions.vehicle_id
	SpotID     uint64     // parking_sessions.spot_id
	EnteredAt  time.Time  // parking_sessions.entered_at
	ExitedAt   *time.Time // parking_sessions.exited_at (nullable)
	AmountPaid *float64   // parking_sessions.amount_paid (nullable)
	CreatedAt  time.Time  // parking_sessions.created_at
	UpdatedAt  time.Time  // parking_sessions.updated_at
}
