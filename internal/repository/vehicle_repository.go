package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmonteiro/campus-parking/internal/model"
)

// VehicleRepo provides data access for vehicles, including owner
// enrichment.  A vehicle's owner is resolved through whichever of the
// two foreign keys is set; the exclusivity of that pair is enforced by
// handlers before any write reaches this repository.
type VehicleRepo struct {
	db *sql.DB
}

// NewVehicleRepo returns a VehicleRepo bound to the given database.
func NewVehicleRepo(db *sql.DB) *VehicleRepo { return &VehicleRepo{db: db} }

// OwnerSummary identifies the owner resolved for a vehicle.  Kind is
// "student" or "faculty".
type OwnerSummary struct {
	Kind       string `json:"kind"`
	ID         uint64 `json:"id"`
	Name       string `json:"name"`
	Enrollment string `json:"enrollment"`
}

// VehicleDetail is a vehicle enriched with its owner.  It is the shape
// returned to API clients by lookup and list operations.
type VehicleDetail struct {
	ID        uint64        `json:"id"`
	Plate     string        `json:"plate"`
	Model     string        `json:"model"`
	Color     *string       `json:"color,omitempty"`
	Year      *uint32       `json:"year,omitempty"`
	StudentID *uint64       `json:"student_id,omitempty"`
	FacultyID *uint64       `json:"faculty_id,omitempty"`
	Owner     *OwnerSummary `json:"owner,omitempty"`
	CreatedAt string        `json:"created_at"`
	UpdatedAt string        `json:"updated_at"`
}

const vehicleSelect = `SELECT v.id, v.plate, v.model, v.color, v.year, v.student_id, v.faculty_id,
	       v.created_at, v.updated_at,
	       s.name, s.enrollment, f.name, f.enrollment
	FROM vehicles v
	LEFT JOIN students s ON s.id = v.student_id
	LEFT JOIN faculty f ON f.id = v.faculty_id`

// scanVehicleDetail scans one row of vehicleSelect into a VehicleDetail,
// resolving the owner from whichever join produced values.
func scanVehicleDetail(row interface{ Scan(...interface{}) error }) (*VehicleDetail, error) {
	var d VehicleDetail
	var color sql.NullString
	var year sql.NullInt64
	var studentID, facultyID sql.NullInt64
	var createdAt, updatedAt sql.NullString
	var sName, sEnroll, fName, fEnroll sql.NullString
	err := row.Scan(&d.ID, &d.Plate, &d.Model, &color, &year, &studentID, &facultyID,
		&createdAt, &updatedAt, &sName, &sEnroll, &fName, &fEnroll)
	if err != nil {
		return nil, err
	}
	if color.Valid {
		d.Color = &color.String
	}
	if year.Valid {
		y := uint32(year.Int64)
		d.Year = &y
	}
	if studentID.Valid {
		id := uint64(studentID.Int64)
		d.StudentID = &id
		if sName.Valid {
			d.Owner = &OwnerSummary{Kind: "student", ID: id, Name: sName.String, Enrollment: sEnroll.String}
		}
	}
	if facultyID.Valid {
		id := uint64(facultyID.Int64)
		d.FacultyID = &id
		if fName.Valid {
			d.Owner = &OwnerSummary{Kind: "faculty", ID: id, Name: fName.String, Enrollment: fEnroll.String}
		}
	}
	if createdAt.Valid {
		d.CreatedAt = createdAt.String
	}
	if updatedAt.Valid {
		d.UpdatedAt = updatedAt.String
	}
	return &d, nil
}

// Create inserts a vehicle and populates its generated ID.  A duplicate
// plate maps to ErrPlateExists.
func (r *VehicleRepo) Create(ctx context.Context, v *model.Vehicle) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	const q = `INSERT INTO vehicles (plate, model, color, year, student_id, faculty_id)
	           VALUES (?, ?, ?, ?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, v.Plate, v.Model, v.Color, v.Year, v.StudentID, v.FacultyID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrPlateExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	v.ID = uint64(id)
	return nil
}

// GetByID retrieves a vehicle with owner enrichment.
func (r *VehicleRepo) GetByID(ctx context.Context, id uint64) (*VehicleDetail, error) {
	const q = vehicleSelect + ` WHERE v.id = ?`
	d, err := scanVehicleDetail(r.db.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return d, nil
}

// GetByIDTx retrieves a vehicle with owner enrichment inside an
// existing transaction.  The entry workflow uses this so the existence
// check shares the transaction with the writes that follow it.
func (r *VehicleRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*VehicleDetail, error) {
	const q = vehicleSelect + ` WHERE v.id = ?`
	d, err := scanVehicleDetail(tx.QueryRowContext(ctx, q, id))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrVehicleNotFound
		}
		return nil, err
	}
	return d, nil
}

// List returns vehicles with owner enrichment, ordered by plate.
// Optional filters restrict by owning student, owning faculty member or
// exact plate; supplied criteria are combined with AND.
func (r *VehicleRepo) List(ctx context.Context, studentID, facultyID uint64, plate string) ([]VehicleDetail, error) {
	q := vehicleSelect
	var conds []string
	var args []interface{}
	if studentID != 0 {
		conds = append(conds, "v.student_id = ?")
		args = append(args, studentID)
	}
	if facultyID != 0 {
		conds = append(conds, "v.faculty_id = ?")
		args = append(args, facultyID)
	}
	if plate != "" {
		conds = append(conds, "v.plate = ?")
		args = append(args, strings.ToUpper(strings.TrimSpace(plate)))
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY v.plate"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]VehicleDetail, 0)
	for rows.Next() {
		d, err := scanVehicleDetail(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *d)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// Update rewrites a vehicle's columns, including its owner pair.  The
// handler validates the ownership combination and resolves the new
// owner before calling this.
func (r *VehicleRepo) Update(ctx context.Context, v *model.Vehicle) error {
	v.Plate = strings.ToUpper(strings.TrimSpace(v.Plate))
	const q = `UPDATE vehicles SET plate = ?, model = ?, color = ?, year = ?, student_id = ?, faculty_id = ?
	           WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, v.Plate, v.Model, v.Color, v.Year, v.StudentID, v.FacultyID, v.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrPlateExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM vehicles WHERE id = ?`, v.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrVehicleNotFound
			}
			return err
		}
	}
	return nil
}

// Delete removes a vehicle.  The foreign key on parking_sessions is
// RESTRICT, so a vehicle with session history cannot be removed; that
// case maps to ErrConflict and historical sessions stay intact.
func (r *VehicleRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM vehicles WHERE id = ?`, id)
	if err != nil {
		if isForeignKeyRestrict(err) {
			return ErrConflict
		}
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrVehicleNotFound
	}
	return nil
}
