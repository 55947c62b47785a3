package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"

	"github.com/dmonteiro/campus-parking/internal/model"
)

// SpotRepo provides data access for parking spots.  The is_occupied
// column is special: no method here writes it except SetOccupiedTx,
// which only the entry/exit workflow calls, inside the same transaction
// as the session write.  Update deliberately leaves the column alone.
type SpotRepo struct {
	db *sql.DB
}

// NewSpotRepo returns a SpotRepo bound to the given database.
func NewSpotRepo(db *sql.DB) *SpotRepo { return &SpotRepo{db: db} }

const spotCols = `id, number, location, spot_type, is_occupied, is_active, created_at, updated_at`

func scanSpot(row interface{ Scan(...interface{}) error }, s *model.Spot) error {
	var loc sql.NullString
	err := row.Scan(&s.ID, &s.Number, &loc, &s.SpotType, &s.IsOccupied,
		&s.IsActive, &s.CreatedAt, &s.UpdatedAt)
	if err != nil {
		return err
	}
	if loc.Valid {
		s.Location = &loc.String
	}
	return nil
}

// Create inserts a spot.  New spots start free and active.
func (r *SpotRepo) Create(ctx context.Context, s *model.Spot) error {
	s.Number = strings.ToUpper(strings.TrimSpace(s.Number))
	const q = `INSERT INTO spots (number, location, spot_type) VALUES (?, ?, ?)`
	res, err := r.db.ExecContext(ctx, q, s.Number, s.Location, s.SpotType)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSpotNumberExists
		}
		return err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return err
	}
	s.ID = uint64(id)
	const sel = `SELECT ` + spotCols + ` FROM spots WHERE id = ?`
	return scanSpot(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// GetByID retrieves a spot by id.
func (r *SpotRepo) GetByID(ctx context.Context, id uint64) (*model.Spot, error) {
	const q = `SELECT ` + spotCols + ` FROM spots WHERE id = ?`
	var s model.Spot
	if err := scanSpot(r.db.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// GetByIDTx retrieves a spot inside an existing transaction.  The entry
// workflow reads the occupancy flag through this so the precondition
// check and the later flip share one transaction.
func (r *SpotRepo) GetByIDTx(ctx context.Context, tx *sql.Tx, id uint64) (*model.Spot, error) {
	const q = `SELECT ` + spotCols + ` FROM spots WHERE id = ?`
	var s model.Spot
	if err := scanSpot(tx.QueryRowContext(ctx, q, id), &s); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSpotNotFound
		}
		return nil, err
	}
	return &s, nil
}

// List returns spots ordered by number with optional filters on type,
// occupancy and the is_active flag.
func (r *SpotRepo) List(ctx context.Context, spotType string, occupied, active *bool) ([]model.Spot, error) {
	q := `SELECT ` + spotCols + ` FROM spots`
	var conds []string
	var args []interface{}
	if spotType != "" {
		conds = append(conds, "spot_type = ?")
		args = append(args, spotType)
	}
	if occupied != nil {
		conds = append(conds, "is_occupied = ?")
		args = append(args, *occupied)
	}
	if active != nil {
		conds = append(conds, "is_active = ?")
		args = append(args, *active)
	}
	if len(conds) > 0 {
		q += " WHERE " + strings.Join(conds, " AND ")
	}
	q += " ORDER BY number"
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]model.Spot, 0)
	for rows.Next() {
		var s model.Spot
		if err := scanSpot(rows, &s); err != nil {
			return nil, err
		}
		result = append(result, s)
	}
	if err := rows.Err(); err != nil {
		return nil, err
	}
	return result, nil
}

// ListAvailable returns free, active spots, optionally of one type.
func (r *SpotRepo) ListAvailable(ctx context.Context, spotType string) ([]model.Spot, error) {
	occupied, active := false, true
	return r.List(ctx, spotType, &occupied, &active)
}

// Update rewrites number, location, type and the is_active flag.  The
// is_occupied column is not touched here; occupancy belongs to the
// entry/exit workflow alone.
func (r *SpotRepo) Update(ctx context.Context, s *model.Spot) error {
	s.Number = strings.ToUpper(strings.TrimSpace(s.Number))
	const q = `UPDATE spots SET number = ?, location = ?, spot_type = ?, is_active = ? WHERE id = ?`
	res, err := r.db.ExecContext(ctx, q, s.Number, s.Location, s.SpotType, s.IsActive, s.ID)
	if err != nil {
		if isDuplicateEntry(err) {
			return ErrSpotNumberExists
		}
		return err
	}
	if n, err := res.RowsAffected(); err == nil && n == 0 {
		var one int
		if err := r.db.QueryRowContext(ctx, `SELECT 1 FROM spots WHERE id = ?`, s.ID).Scan(&one); err != nil {
			if errors.Is(err, sql.ErrNoRows) {
				return ErrSpotNotFound
			}
			return err
		}
	}
	const sel = `SELECT ` + spotCols + ` FROM spots WHERE id = ?`
	return scanSpot(r.db.QueryRowContext(ctx, sel, s.ID), s)
}

// Delete removes a spot.  Spots with session history are protected by
// the RESTRICT foreign key and map to ErrConflict.
func (r *SpotRepo) Delete(ctx context.Context, id uint64) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM spots WHERE id = ?`, id)
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
		return ErrSpotNotFound
	}
	return nil
}

// SetOccupiedTx flips a spot's occupancy flag inside an existing
// transaction.  The UPDATE is conditional on the current value, so the
// rows-affected count doubles as a race guard: when two concurrent
// entries target the same spot, only one statement matches a row and
// the loser gets ErrSpotOccupied instead of silently overwriting.
func (r *SpotRepo) SetOccupiedTx(ctx context.Context, tx *sql.Tx, id uint64, occupied bool) error {
	const q = `UPDATE spots SET is_occupied = ? WHERE id = ? AND is_occupied = ?`
	res, err := tx.ExecContext(ctx, q, occupied, id, !occupied)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		if occupied {
			return ErrSpotOccupied
		}
		// Exit found the spot already free: occupancy drifted from
		// session state, which the schema's unique index should make
		// impossible.  Surface loudly rather than mask it.
		return ErrConflict
	}
	return nil
}
