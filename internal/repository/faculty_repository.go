package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmonteiro/campus-parking/internal/model"
)

// FacultyRepo provides CRUD operations for faculty registrations.  The
// shape mirrors StudentRepo; only the department column differs.
type FacultyRepo struct {
	db *sql.DB
}

// NewFacultyRepo returns a FacultyRepo bound to the given database.
func NewFacultyRepo(db *sql.DB) *FacultyRepo { return &FacultyRepo{db: db} }

const facultyCols = `id, enrollment, name, department, phone, email, is_active, registered_on, created_at, updated_at`

func scanFaculty(row interface{ Scan(...interface{}) error }, f *model.FacultyMember) error {
	var dept, phone, email sql.NullString
	err := row.Scan(&f.ID, &f.Enrollment, &f.Name, &dept, &phone, &email,
		&f.IsActive, &f.RegisteredOn, &f.CreatedAt, &f.UpdatedAt)
	if err != nil {
		return err
	}
	if dept.Valid {
		f.Department = &dept.String
	}
	if phone.Valid {
		f.Phone = &phone.String
	}
	if email.Valid {
		f.Email = &email.String
	}
	return nil
}

// Create inserts a faculty record and fills in generated values.
func (r *FacultyRepo) Create(ctx context.Context, f *model.FacultyMember) error {
	f.Enrollment = strings.TrimSpace(f.Enrollment)
	const q = `INSERT INTO faculty (enrollment, name, department, phone, email, registered_on)
	           VALUES (?, ?, ?, ?, ?, CURDATE())`
	res, err := r.db.ExecContext(ctx, q, f.Enrollment, f.Name, f.Department, f.Phone, f.Email)
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
	f.ID = uint64(id)
	const sel = `SELECT ` + facultyCols + ` FROM faculty WHERE id = ?`
	return scanFaculty(r.db.QueryRowContext(ctx, sel, f.ID), f)
}

// GetByID retrieves a faculty member by id.
func (r *FacultyRepo) GetByID(ctx context.Context, id uint64) (*model.FacultyMember, error) {
	const q = `SELECT ` + facultyCols + ` FROM faculty WHERE id = ?`
	var f model.FacultyMember
	if err := scanFaculty(r.db.QueryRowContext(ctx, q, id), &f); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrFacultyNotFound
		}
		return nil, err
	}
	return &f, nil
}

// List returns faculty members ordered by name, optionally filtered by
// the is_active flag and department.
func (r *FacultyRepo) List(ctx context.Context, active *bool, department string) ([]model.FacultyMember, error) {
	q := `SELECT ` + facultyCols + ` FROM faculty`
	var conds []string
	var args []interface{}
	if active != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *active)
	}
	if department != "" {
		conds = append(conds, "department = ?")
		args = append(args, department)
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
	result := make([]model.FacultyMember, 0)
	for rows.Next() {
		var f model.FacultyMember
		if err := scanFaculty(rows, &f); err != nil {
			return nil, err
		}
		result = append(result, f)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites the mutable columns of a faculty member.
func (r *FacultyRepo) Update(ctx context.Context, f *model.FacultyMember) error {
	const q = `UPDATE faculty SET enrollment = ?, name = ?, department = ?, phone = ?, email = ?, is_active = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, f.Enrollment, f.Name, f.Department, f.Phone, f.Email, f.IsActive, f.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrEnrollmentExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM faculty WHERE id = ?`, f.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrFacultyNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + facultyCols + ` FROM faculty WHERE id = ?`
	return scanFaculty(r.db.QueryRowContext(ctx, sel, f.ID), f)
}

// Deactivate soft deletes a faculty member.
func (r *FacultyRepo) Deactivate(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `UPDATE faculty SET is_active = 0 WHERE id = ?`, id)
	if err != nil {
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM faculty WHERE id = ?`, id).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrFacultyNotFound
			}
			return err
		}
	}
	return nil
}

// IsActive reports whether a faculty member exists and is active.
func (r *FacultyRepo) IsActive(ctx context.Context, id uint64) (bool, error) {
	var active bool
	err := r.db.QueryRowContext(ctx, `SELECT is_active FROM faculty WHERE id = ?`, id).Scan(&active)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return false, ErrFacultyNotFound
		}
		return false, err
	}
	return active, nil
}
