// Package repository defines error types that are reused across multiple
// repositories. These sentinel values allow higher layers such as
// handlers to distinguish between different failure scenarios and map
// each of them deterministically to an HTTP status code: not-found
// sentinels become 404, conflict sentinels become 409 and everything
// else surfaces as 500 with the detail logged server-side only.
package repository

import "errors"

// Not-found sentinels.  Each names the entity whose lookup yielded no
// rows so that handlers can produce a specific 404 message.
var (
	ErrStudentNotFound = errors.New("student not found")
	ErrFacultyNotFound = errors.New("faculty member not found")
	ErrVehicleNotFound = errors.New("vehicle not found")
	ErrSpotNotFound    = errors.New("spot not found")
	ErrSessionNotFound = errors.New("parking session not found")
	ErrUserNotFound    = errors.New("user not found")
)

// Conflict sentinels.  Handlers translate these into HTTP 409.
var (
	// ErrSpotOccupied is returned when an entry targets a spot that
	// already has an open session.
	ErrSpotOccupied = errors.New("spot already occupied")

	// ErrVehicleParked is returned when an entry targets a vehicle that
	// already has an open session on some spot.
	ErrVehicleParked = errors.New("vehicle already has an active session")

	// ErrExitRegistered is returned when an exit is requested for a
	// session that is already closed.
	ErrExitRegistered = errors.New("exit already registered")

	// ErrConflict is returned when a delete or update cannot be
	// performed because of conflicting state, such as attempting to
	// delete a spot that still has parking sessions on record.
	ErrConflict = errors.New("conflict")

	// ErrEnrollmentExists and friends signal a duplicate value on a
	// unique column.
	ErrEnrollmentExists = errors.New("enrollment already exists")
	ErrPlateExists      = errors.New("plate already exists")
	ErrSpotNumberExists = errors.New("spot number already exists")
	ErrEmailExists      = errors.New("email already exists")
)
