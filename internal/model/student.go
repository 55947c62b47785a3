package model

import "time"

// Student represents a student registered with the campus parking
// service.  Students may own several vehicles.  This struct corresponds
// to a row in the `students` table.
//
// Fields:
//  ID           – primary key identifier.
//  Enrollment   – unique enrollment number.
//  Name         – full name of the student.
//  Course       – course the student attends (nullable).
//  Phone        – contact phone (nullable).
//  Email        – contact email (nullable).
//  IsActive     – whether the registration is active (soft delete flag).
//  RegisteredOn – date the student was registered.
//  CreatedAt    – timestamp of creation.
//  UpdatedAt    – timestamp of last update.
type Student struct {
	ID           uint64    // students.id
	Enrollment   string    // students.enrollment
	Name         string    // students.name
	Course       *string   // students.course (nullable)
	Phone        *string   // students.phone (nullable)
	Email        *string   // students.email (nullable)
	IsActive     bool      // students.is_active
	RegisteredOn time.Time // students.registered_on (date only)
	CreatedAt    time.Time // students.created_at
	UpdatedAt    time.Time // students.updated_at
}
