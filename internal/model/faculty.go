package model

import "time"

// FacultyMember represents a faculty member registered with the campus
// parking service.  Like students, faculty members may own several
// vehicles.  Corresponds to a row in the `faculty` table.
type FacultyMember struct {
	ID           uint64    // faculty.id
	Enrollment   string    // faculty.enrollment
	Name         string    // faculty.name
	Department   *string   // faculty.department (nullable)
	Phone        *string   // faculty.phone (nullable)
	Email        *string   // faculty.email (nullable)
	IsActive     bool      // faculty.is_active
	RegisteredOn time.Time // faculty.registered_on (date only)
	CreatedAt    time.Time // faculty.created_at
	UpdatedAt    time.Time // faculty.updated_at
}
