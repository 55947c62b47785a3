package repository

import (
	"context"
	"database/sql"
	"errors"
	"strings"
	"time"
)

// SessionRepo provides data access to the parking_sessions table.  A
// session row is immutable except for the single transition performed
// by CloseTx; there are no update or delete methods on purpose.  All
// timestamps are stored and compared in UTC.
//
// The ...Tx methods participate in the entry/exit transactions owned by
// the parking handler; the caller must commit or roll back.
type SessionRepo struct {
	db *sql.DB
}

// NewSessionRepo returns a SessionRepo bound to the given database.
func NewSessionRepo(db *sql.DB) *SessionRepo { return &SessionRepo{db: db} }

// DB exposes the underlying handle so the parking handler can open the
// transactions the entry and exit workflows run in.
func (r *SessionRepo) DB() *sql.DB { return r.db }

// VehicleSummary is the vehicle slice of a session detail.  Owner is
// populated on detail and history queries, omitted on the active list.
type VehicleSummary struct {
	ID    uint64        `json:"id"`
	Plate string        `json:"plate"`
	Model string        `json:"model"`
	Owner *OwnerSummary `json:"owner,omitempty"`
}

// SpotSummary is the spot slice of a session detail.
type SpotSummary struct {
	ID       uint64 `json:"id"`
	Number   string `json:"number"`
	SpotType string `json:"spot_type"`
}

// SessionDetail is a parking session enriched with vehicle and spot
// summaries, as returned to API clients.
type SessionDetail struct {
	ID         uint64         `json:"id"`
	EnteredAt  string         `json:"entered_at"`
	ExitedAt   *string        `json:"exited_at"`
	AmountPaid *float64       `json:"amount_paid"`
	Vehicle    VehicleSummary `json:"vehicle"`
	Spot       SpotSummary    `json:"spot"`
}

// SessionFilter restricts List results.  Zero values mean "no
// restriction"; supplied criteria are combined with AND.
type SessionFilter struct {
	VehicleID uint64
	SpotID    uint64
	From      time.Time
	To        time.Time
}

// buildSessionWhere turns a filter into a WHERE clause (possibly empty)
// plus its arguments.  Kept separate from the query assembly so the
// composition rules are testable without a database.
func buildSessionWhere(f SessionFilter) (string, []interface{}) {
	var conds []string
	var args []interface{}
	if f.VehicleID != 0 {
		conds = append(conds, "p.vehicle_id = ?")
		args = append(args, f.VehicleID)
	}
	if f.SpotID != 0 {
		conds = append(conds, "p.spot_id = ?")
		args = append(args, f.SpotID)
	}
	if !f.From.IsZero() {
		conds = append(conds, "p.entered_at >= ?")
		args = append(args, f.From.UTC().Format("2006-01-02 15:04:05"))
	}
	if !f.To.IsZero() {
		conds = append(conds, "p.entered_at <= ?")
		args = append(args, f.To.UTC().Format("2006-01-02 15:04:05"))
	}
	if len(conds) == 0 {
		return "", nil
	}
	return " WHERE " + strings.Join(conds, " AND "), args
}

// ActiveSessionRef points at an open session found for a vehicle.
type ActiveSessionRef struct {
	SessionID uint64
	SpotID    uint64
}

// ActiveByVehicleTx looks for an open session (null exit) belonging to
// the vehicle inside an existing transaction.  It returns nil when the
// vehicle is not currently parked.
func (r *SessionRepo) ActiveByVehicleTx(ctx context.Context, tx *sql.Tx, vehicleID uint64) (*ActiveSessionRef, error) {
	const q = `SELECT id, spot_id FROM parking_sessions WHERE vehicle_id = ? AND exited_at IS NULL LIMIT 1`
	var ref ActiveSessionRef
	err := tx.QueryRowContext(ctx, q, vehicleID).Scan(&ref.SessionID, &ref.SpotID)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &ref, nil
}

// CreateTx inserts a new open session within the scope of an existing
// transaction and returns its generated ID and entry timestamp.  The
// entry timestamp is set by the database in UTC; exit timestamp and
// amount start null.  The unique index on the active-vehicle generated
// column turns a concurrent duplicate into ErrVehicleParked here, and
// the active-spot one into ErrSpotOccupied, so the database stays the
// authoritative guard beneath the handler's precondition checks.
func (r *SessionRepo) CreateTx(ctx context.Context, tx *sql.Tx, vehicleID, spotID uint64) (uint64, time.Time, error) {
	const q = `INSERT INTO parking_sessions (vehicle_id, spot_id, entered_at) VALUES (?, ?, UTC_TIMESTAMP())`
	res, err := tx.ExecContext(ctx, q, vehicleID, spotID)
	if err != nil {
		if isDuplicateEntry(err) {
			low := strings.ToLower(err.Error())
			if strings.Contains(low, "uq_session_active_vehicle") {
				return 0, time.Time{}, ErrVehicleParked
			}
			return 0, time.Time{}, ErrSpotOccupied
		}
		return 0, time.Time{}, err
	}
	id, err := res.LastInsertId()
	if err != nil {
		return 0, time.Time{}, err
	}
	var enteredAt time.Time
	const sel = `SELECT entered_at FROM parking_sessions WHERE id = ?`
	if err := tx.QueryRowContext(ctx, sel, id).Scan(&enteredAt); err != nil {
		return 0, time.Time{}, err
	}
	return uint64(id), enteredAt.UTC(), nil
}

// GetForExitTx loads the columns the exit workflow needs inside an
// existing transaction: the spot to release and the current exit
// timestamp, which distinguishes "not found" from "already closed".
func (r *SessionRepo) GetForExitTx(ctx context.Context, tx *sql.Tx, id uint64) (spotID uint64, exitedAt *time.Time, err error) {
	const q = `SELECT spot_id, exited_at FROM parking_sessions WHERE id = ?`
	var exit sql.NullTime
	err = tx.QueryRowContext(ctx, q, id).Scan(&spotID, &exit)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return 0, nil, ErrSessionNotFound
		}
		return 0, nil, err
	}
	if exit.Valid {
		t := exit.Time.UTC()
		return spotID, &t, nil
	}
	return spotID, nil, nil
}

// CloseTx performs the one allowed transition on a session: setting the
// exit timestamp (database UTC now) and storing the amount paid
// verbatim.  The statement is conditional on the session still being
// open; zero rows affected means another exit won the race and the
// caller gets ErrExitRegistered, leaving the first exit's timestamp
// untouched.
func (r *SessionRepo) CloseTx(ctx context.Context, tx *sql.Tx, id uint64, amountPaid *float64) error {
	const q = `UPDATE parking_sessions SET exited_at = UTC_TIMESTAMP(), amount_paid = ? WHERE id = ? AND exited_at IS NULL`
	res, err := tx.ExecContext(ctx, q, amountPaid, id)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrExitRegistered
	}
	return nil
}

const sessionSelect = `SELECT p.id, p.entered_at, p.exited_at, p.amount_paid,
	       v.id, v.plate, v.model,
	       sp.id, sp.number, sp.spot_type,
	       st.id, st.name, st.enrollment, fa.id, fa.name, fa.enrollment
	FROM parking_sessions p
	JOIN vehicles v ON v.id = p.vehicle_id
	JOIN spots sp ON sp.id = p.spot_id
	LEFT JOIN students st ON st.id = v.student_id
	LEFT JOIN faculty fa ON fa.id = v.faculty_id`

// scanSessionDetail scans one row of sessionSelect.  withOwner controls
// whether the student/faculty join results are attached to the vehicle.
func scanSessionDetail(row interface{ Scan(...interface{}) error }, withOwner bool) (*SessionDetail, error) {
	var d SessionDetail
	var enteredAt time.Time
	var exitedAt sql.NullTime
	var amount sql.NullFloat64
	var stID, faID sql.NullInt64
	var stName, stEnroll, faName, faEnroll sql.NullString
	err := row.Scan(&d.ID, &enteredAt, &exitedAt, &amount,
		&d.Vehicle.ID, &d.Vehicle.Plate, &d.Vehicle.Model,
		&d.Spot.ID, &d.Spot.Number, &d.Spot.SpotType,
		&stID, &stName, &stEnroll, &faID, &faName, &faEnroll)
	if err != nil {
		return nil, err
	}
	d.EnteredAt = enteredAt.UTC().Format(time.RFC3339)
	if exitedAt.Valid {
		iso := exitedAt.Time.UTC().Format(time.RFC3339)
		d.ExitedAt = &iso
	}
	if amount.Valid {
		a := amount.Float64
		d.AmountPaid = &a
	}
	if withOwner {
		if stID.Valid {
			d.Vehicle.Owner = &OwnerSummary{Kind: "student", ID: uint64(stID.Int64), Name: stName.String, Enrollment: stEnroll.String}
		} else if faID.Valid {
			d.Vehicle.Owner = &OwnerSummary{Kind: "faculty", ID: uint64(faID.Int64), Name: faName.String, Enrollment: faEnroll.String}
		}
	}
	return &d, nil
}

// GetDetail returns one session with full vehicle and spot detail, or
// ErrSessionNotFound.
func (r *SessionRepo) GetDetail(ctx context.Context, id uint64) (*SessionDetail, error) {
	const q = sessionSelect + ` WHERE p.id = ?`
	d, err := scanSessionDetail(r.db.QueryRowContext(ctx, q, id), true)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, ErrSessionNotFound
		}
		return nil, err
	}
	return d, nil
}

// ListActive returns all open sessions ordered by entry time ascending
// (oldest parked vehicle first), enriched with plate/model and spot
// number/type.
func (r *SessionRepo) ListActive(ctx context.Context) ([]SessionDetail, error) {
	const q = sessionSelect + ` WHERE p.exited_at IS NULL ORDER BY p.entered_at ASC`
	rows, err := r.db.QueryContext(ctx, q)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]SessionDetail, 0)
	for rows.Next() {
		d, err := scanSessionDetail(rows, false)
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

// List returns sessions (open and closed) ordered by entry time
// descending, owner-enriched, restricted by the filter.
func (r *SessionRepo) List(ctx context.Context, f SessionFilter) ([]SessionDetail, error) {
	where, args := buildSessionWhere(f)
	q := sessionSelect + where + ` ORDER BY p.entered_at DESC`
	rows, err := r.db.QueryContext(ctx, q, args...)
	if err != nil {
		return nil, err
	}
	defer rows.Close()
	result := make([]SessionDetail, 0)
	for rows.Next() {
		d, err := scanSessionDetail(rows, true)
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
