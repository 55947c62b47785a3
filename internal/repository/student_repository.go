package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmonteiro/campus-parking/internal/model"
)

// StudentRepo provides CRUD operations for student registrations.
// Students are soft deleted: DELETE flips is_active so that vehicles and
// historical parking sessions keep a resolvable owner.
type StudentRepo struct {
	db *sql.DB
}

// NewStudentRepo returns a StudentRepo bound to the given database.
func NewStudentRepo(db *sql.DB) *StudentRepo { return &StudentRepo{db: db} }

const studentCols = `id, enrollment, name, course, phone, email, is_active, registered_on, created_at, updated_at`

func scanStudent(row interface{ Scan(...interface{}) error }, s *model.Student) error {
	var course, phone, email sql.NullString
	err := row.Scan(&s.ID, &s.Enrollment, &s.Name, &course, &phone, &email,
		&s.IsActive, &s.RegisteredOn, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	if course.Valid {
		s.Course = &course.String
	}
	if phone.Valid {
		s.Phone = &phone.String
	}
	if email.Valid {
		s.Email = &email.String
	}
	return nil
}

// Create inserts a student record. On success the student's ID and
// database-populated defaults are filled in.
func (r *StudentRepo) Create(ctx context.Context, s *model.Student) error {
	s.Enrollment = strings.TrimSpace(s.Enrollment)
	const q = `INSERT INTO students (enrollment, name, course, phone, email, registered_on)
	           VALUES (?, ?, ?, ?, ?, CURDATE())`
	res, err := r.db.ExecContext(ctx, q, s.Enrollment, s.Name, s.Course, s.Phone, s.Email)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrEnrollmentExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + studentCols + ` FROM students WHERE id = ?`
	return scanStudent(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID retrieves a student by id.
func (r *StudentRepo) GetByID(ctx context.Context, id uint64) (*model.Student, error) {
	const q = `SELECT ` + studentCols + ` FROM students WHERE id = ?`
	var s model.Student
	if err := scanStudent(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrStudentNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns students ordered by name.  Optional filters: active
// restricts on the is_active flag, course matches the course column.
func (r *StudentRepo) List(ctx context.Context, active *bool, course string) ([]model.Student, error) {
	q := `SELECT ` + studentCols + ` FROM students`
	var conds []string
	var args []interface{}
	if active != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *active)
	}
	if course != "" {
		conds = append(conds, "course = ?")
		args = append(args, course)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY name"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Student, 0)
	for rows.Next() {
		var s model.Student
		if err := scanStudent(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the mutable columns of a student.  The enrollment
// stays unique; a duplicate maps to ErrEnrollmentExists.
func (r *StudentRepo) Update(ctx context.Context, s *model.Student) error {
	const q = `UPDATE students SET enrollment = ?, name = ?, course = ?, phone = ?, email = ?, is_active = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Enrollment, s.Name, s.Course, s.Phone, s.Email, s.IsActive, s.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrEnrollmentExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		// Verify existence: RowsAffected is also 0 on a no-op update.
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id = ?`, s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStudentNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + studentCols + ` FROM students WHERE id = ?`
	return scanStudent(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// Deactivate soft deletes a student by flipping is_active to false.
func (r *StudentRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE students SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM students WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrStudentNotFound
			}
			return err
		}
	}
	return nil
}

// IsActive reports whether a student exists and is active.  Used by the
// vehicle handlers to confirm a new owner before committing a write.
func (r *StudentRepo) IsActive(ctx context.Context, id uint64) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx, `SELECT is_active FROM students WHERE id = ?`, id).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrStudentNotFound
		}
		return false, err
	}
	return active, nil
}
