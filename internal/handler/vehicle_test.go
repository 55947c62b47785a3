package handler

import (
	"database/sql"
	"net/http"
	"strings"
	"testing"

	"github.com/DATA-DOG/go-sqlmock"

	"github.com/dmonteiro/campus-parking/internal/repository"
)

func newRegistryTest(t *testing.T) (*RegistryHandler, sqlmock.Sqlmock, *sql.DB) {
	t.Helper()
	db, mock, err := sqlmock.New()
	if err != nil {
		t.Fatalf("sqlmock: %v", err)
	}
	h := NewRegistryHandler(
		repository.NewStudentRepo(db),
		repository.NewFacultyRepo(db),
		repository.NewVehicleRepo(db),
		repository.NewSpotRepo(db),
	)
	return h, mock, db
}

func TestCreateVehicleRequiresExactlyOneOwner(t *testing.T) {
	cases := []struct {
		name string
		body string
	}{
		{"both owners", `{"plate":"ABC1D23","model":"Civic","student_id":1,"faculty_id":2}`},
		{"no owner", `{"plate":"ABC1D23","model":"Civic"}`},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			h, mock, db := newRegistryTest(t)
			defer db.Close()

			c, rec := newJSONContext(t, http.MethodPost, "/v1/vehicles", tc.body)
			if err := h.CreateVehicle(c); err != nil {
				t.Fatalf("handler error: %v", err)
			}
			if rec.Code != http.StatusBadRequest {
				t.Fatalf("status = %d, want 400", rec.Code)
			}
			// No queries at all: the rule is checked before any write.
			if err := mock.ExpectationsWereMet(); err != nil {
				t.Errorf("unexpected database access: %v", err)
			}
		})
	}
}

func TestCreateVehicleUnknownStudentOwner(t *testing.T) {
	h, mock, db := newRegistryTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT is_active FROM students").WillReturnError(sql.ErrNoRows)

	c, rec := newJSONContext(t, http.MethodPost, "/v1/vehicles",
		`{"plate":"ABC1D23","model":"Civic","student_id":42}`)
	if err := h.CreateVehicle(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", rec.Code)
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("insert must not run for an unknown owner: %v", err)
	}
}

func TestCreateVehicleInactiveOwnerRejected(t *testing.T) {
	h, mock, db := newRegistryTest(t)
	defer db.Close()

	mock.ExpectQuery("SELECT is_active FROM students").
		WillReturnRows(sqlmock.NewRows([]string{"is_active"}).AddRow(false))

	c, rec := newJSONContext(t, http.MethodPost, "/v1/vehicles",
		`{"plate":"ABC1D23","model":"Civic","student_id":42}`)
	if err := h.CreateVehicle(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusConflict {
		t.Fatalf("status = %d, want 409", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "inactive") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("insert must not run for an inactive owner: %v", err)
	}
}

func TestUpdateSpotRejectsOccupancy(t *testing.T) {
	h, mock, db := newRegistryTest(t)
	defer db.Close()

	c, rec := newJSONContext(t, http.MethodPut, "/v1/spots/2",
		`{"number":"A-12","spot_type":"COMMON","is_occupied":true}`)
	c.SetParamNames("id")
	c.SetParamValues("2")
	if err := h.UpdateSpot(c); err != nil {
		t.Fatalf("handler error: %v", err)
	}
	if rec.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "occupancy cannot be set directly") {
		t.Errorf("unexpected body: %s", rec.Body.String())
	}
	if err := mock.ExpectationsWereMet(); err != nil {
		t.Errorf("unexpected database access: %v", err)
	}
}
