package model

import "time"

// Vehicle describes a vehicle allowed on campus.  Every vehicle belongs
// to exactly one owner: either a student or a faculty member, never both
// and never neither.  The pair of nullable foreign keys expresses that
// ownership; the exclusivity rule is enforced at write time by the
// handlers and backed by the database constraint.
//
// Fields:
//  ID        – primary key identifier.
//  Plate     – unique licence plate.
//  Model     – vehicle model description.
//  Color     – colour (nullable).
//  Year      – manufacture year (nullable).
//  StudentID – owning student (nullable, exclusive with FacultyID).
//  FacultyID – owning faculty member (nullable, exclusive with StudentID).
//  CreatedAt – creation timestamp.
//  UpdatedAt – last update timestamp.
type Vehicle struct {
	ID        uint64    // vehicles.id
	Plate     string    // vehicles.plate
	Model     string    // vehicles.model
	Color     *string   // vehicles.color (nullable)
	Year      *uint32   // vehicles.year (nullable)
	StudentID *uint64   // vehicles.student_id (nullable)
	FacultyID *uint64   // vehicles.faculty_id (nullable)
	CreatedAt time.Time // vehicles.created_at
	UpdatedAt time.Time // vehicles.updated_at
}
