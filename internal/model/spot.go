package model

import "time"

// Spot types.  COMMON spots are open to anyone, PRIORITY spots are for
// drivers with priority needs and FACULTY spots are reserved for faculty.
const (
	SpotTypeCommon   = "COMMON"
	SpotTypePriority = "PRIORITY"
	SpotTypeFaculty  = "FACULTY"
)

// ValidSpotType reports whether t is one of the known spot types.
func ValidSpotType(t string) bool {
	return t == SpotTypeCommon || t == SpotTypePriority || t == SpotTypeFaculty
}

// Spot represents a physical parking space.  IsOccupied is derived
// state: it is true exactly when an open parking session references the
// spot, and it is only ever mutated by the entry/exit workflow inside
// the same transaction as the session write.  The spot update endpoint
// rejects attempts to set it directly.
//
// Fields:
//  ID         – primary key identifier.
//  Number     – unique spot number (e.g. "A-12").
//  Location   – free-form location hint (nullable).
//  SpotType   – COMMON | PRIORITY | FACULTY.
//  IsOccupied – whether an open session currently references the spot.
//  IsActive   – whether the spot is in service (soft delete flag).
//  CreatedAt  – creation timestamp.
//  UpdatedAt  – last update timestamp.
type Spot struct {
	ID         uint64    // spots.id
	Number     string    // spots.number
	Location   *string   // spots.location (nullable)
	SpotType   string    // spots.spot_type
	IsOccupied bool      // spots.is_occupied
	IsActive   bool      // spots.is_active
	CreatedAt  time.Time // spots.created_at
	UpdatedAt  time.Time // spots.updated_at
}
