package handler

import (
	"database/sql"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/repository"
)

// newParkingTest wires a ParkingHandler against a mocked database and
// returns the handler plus the mock for expectations.
func newParkingTest(t *testing.T) (*ParkingHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	h := NewParkingHandler(
		repository.NewSessionRepo(db),
		repository.NewVehicleRepo(db),
		repository.NewSpotRepo(db),
	)
	return h, mock, db
}

func newJSONContext(t *testing.T, method, target, body string) (echo.Context, *httptest.ResponseRecorder) {
	t.Helper()
	e := echo.New()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set(echo.HeaderContentType, echo.MIMEApplicationJSON)
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	rec := httptest.NewRecorder()
	c := e.NewContext(req, rec)
	c.Set("user_id", float64(9)) // as decoded from JWT claims
	return c, rec
}

func vehicleRow() *sqlmock.Rows {
	return sqlmock.NewRows([]string{
		"id", "plate", "model", "color", "year", "student_id", "faculty_id",
		"created_at", "updated_at", "s_name", "s_enrollment", "f_name", "f_enrollment",
	}).AddRow(4, "ABC1D23", "Civic", nil, nil, 3, nil,
		"2026-01-10 09:00:00", "2026-01-10 09:00:00", "Alice Santos", "S2023001", nil, nil)
}

func spotRow(occupied, active bool) *sqlmock.Rows {
	now := time.Date(2026, 1, 10, 9, 0, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "number", "location", "spot_type", "is_occupied", "is_active", "created_at", "updated_at",
	}).AddRow(2, "A-12", nil, "COMMON", occupied, active, now, now)
}

func sessionDetailRow(exitedAt interface{}, amount interface{}) *sqlmock.Rows {
	entered := time.Date(2026, 1, 10, 10, 30, 0, 0, time.UTC)
	return sqlmock.NewRows([]string{
		"id", "entered_at", "exited_at", "amount_paid",
		"v_id", "plate", "model", "sp_id", "number", "spot_type",
		"st_id", "st_name", "st_enrollment", "fa_id", "fa_name", "fa_enrollment",
	}).AddRow(7, entered, exitedAt, amount,
		4, "ABC1D23", "Civic", 2, "A-12", "COMMON",
		3, "Alice Santos", "S2023001", nil, nil, nil)
}

func TestRegisterEntryCreatesSessionAndOccupiesSpot(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	entered := time.Date(2026, 1, 10, 10, 30, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM vehicles v").WillReturnRows(vehicleRow())
	mock.ExpectQuery("FROM spots WHERE id").WillReturnRows(spotRow(false, true))
	mock.ExpectQuery("exited_at IS NULL LIMIT 1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO parking_sessions").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT entered_at FROM parking_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"entered_at"}).AddRow(entered))
	mock.ExpectExec("UPDATE spots SET is_occupied").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM parking_sessions p").WillReturnRows(sessionDetailRow(nil, nil))

	c, rec := newJSONContext(t, http.MethodPost, "/v1/parking-sessions", `{"vehicle_id":4,"spot_id":2}`)
	if err := h.RegisterEntry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusCreated {
		t.Fatalf("status = %d, want 201 (body: %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"entered_at":"2026-01-10T10:30:00Z"`) {
		t.Errorf("body missing entry timestamp: %s", body)
	}
	if !strings.Contains(body, `"exited_at":null`) {
		t.Errorf("new session should have null exit: %s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterEntryOccupiedSpotRejected(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM vehicles v").WillReturnRows(vehicleRow())
	mock.ExpectQuery("FROM spots WHERE id").WillReturnRows(spotRow(true, true))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/parking-sessions", `{"vehicle_id":4,"spot_id":2}`)
	if err := h.RegisterEntry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "spot already occupied") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("no session insert may happen for an occupied spot: %v", err)
	}
}

func TestRegisterEntryParkedVehicleRejected(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM vehicles v").WillReturnRows(vehicleRow())
	mock.ExpectQuery("FROM spots WHERE id").WillReturnRows(spotRow(false, true))
	mock.ExpectQuery("exited_at IS NULL LIMIT 1").
		WillReturnRows(sqlmock.NewRows([]string{"id", "spot_id"}).AddRow(5, 8))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/parking-sessions", `{"vehicle_id":4,"spot_id":2}`)
	if err := h.RegisterEntry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "vehicle already has an active session") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterEntryUnknownVehicle(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("FROM vehicles v").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/parking-sessions", `{"vehicle_id":99,"spot_id":2}`)
	if err := h.RegisterEntry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterEntryRollsBackWhenSpotUpdateFails(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	entered := time.Date(2026, 1, 10, 10, 30, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("FROM vehicles v").WillReturnRows(vehicleRow())
	mock.ExpectQuery("FROM spots WHERE id").WillReturnRows(spotRow(false, true))
	mock.ExpectQuery("exited_at IS NULL LIMIT 1").WillReturnError(sql.ErrNoRows)
	mock.ExpectExec("INSERT INTO parking_sessions").WillReturnResult(sqlmock.NewResult(7, 1))
	mock.ExpectQuery("SELECT entered_at FROM parking_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"entered_at"}).AddRow(entered))
	mock.ExpectExec("UPDATE spots SET is_occupied").WillReturnError(sql.ErrConnDone)
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPost, "/v1/parking-sessions", `{"vehicle_id":4,"spot_id":2}`)
	if err := h.RegisterEntry(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusInternalServerError {
		t.Fatalf("status = %d, want 500", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("session insert must roll back with the spot update: %v", err)
	}
}

func TestRegisterExitClosesSessionAndFreesSpot(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	exited := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT spot_id, exited_at FROM parking_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"spot_id", "exited_at"}).AddRow(2, nil))
	mock.ExpectExec("UPDATE parking_sessions SET exited_at").
		WithArgs(15.5, 7).
		WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectExec("UPDATE spots SET is_occupied").WillReturnResult(sqlmock.NewResult(0, 1))
	mock.ExpectCommit()
	mock.ExpectQuery("FROM parking_sessions p").WillReturnRows(sessionDetailRow(exited, 15.5))

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/parking-sessions/7/exit", `{"amount_paid":15.50}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := h.RegisterExit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, want 200 (body: %s)", rec.Code, rec.Body.String())
	}
	body := rec.Body.String()
	if !strings.Contains(body, `"exited_at":"2026-01-10T12:00:00Z"`) {
		t.Errorf("body missing exit timestamp: %s", body)
	}
	if !strings.Contains(body, `"amount_paid":15.5`) {
		t.Errorf("amount must be stored verbatim: %s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}

func TestRegisterExitTwiceRejected(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	exited := time.Date(2026, 1, 10, 12, 0, 0, 0, time.UTC)
	mock.ExpectBegin()
	mock.ExpectQuery("SELECT spot_id, exited_at FROM parking_sessions").
		WillReturnRows(sqlmock.NewRows([]string{"spot_id", "exited_at"}).AddRow(2, exited))
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/parking-sessions/7/exit", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("7")
	if err := h.RegisterExit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	body := rec.Body.String()
	if !strings.Contains(body, "exit already registered") {
		t.Errorf("unexpected body: %s", body)
	}
	// The first exit's timestamp is reported back untouched.
	if !strings.Contains(body, "2026-01-10T12:00:00Z") {
		t.Errorf("body should carry the original exit timestamp: %s", body)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("a second exit must not update anything: %v", err)
	}
}

func TestRegisterExitUnknownSession(t *testing.T) {
	h, mock, db := newParkingTest(t)
	defer db.Close()

	mock.ExpectBegin()
	mock.ExpectQuery("SELECT spot_id, exited_at FROM parking_sessions").WillReturnError(sql.ErrNoRows)
	mock.ExpectRollback()

	c, rec := newJSONContext(t, http.MethodPatch, "/v1/parking-sessions/99/exit", `{}`)
	c.SetParamNames("id")
	c.SetParamValues("99")
	if err := h.RegisterExit(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unmet expectations: %v", err)
	}
}
