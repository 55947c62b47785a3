package handler // handler defines http handlers

import (
	"errors"
	"strconv"

	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/repository"
)

// RegistryHandler bundles the repositories behind the registry
// endpoints: students, faculty, vehicles and spots.  Authentication and
// role checks happen in middleware before any of its methods run.
type RegistryHandler struct {
	StudentRepo *repository.StudentRepo // student persistence
	FacultyRepo *repository.FacultyRepo // faculty persistence
	VehicleRepo *repository.VehicleRepo // vehicle persistence
	SpotRepo    *repository.SpotRepo    // spot persistence
}

// NewRegistryHandler constructs a RegistryHandler and panics if any
// dependency is nil.
func NewRegistryHandler(studentRepo *repository.StudentRepo, facultyRepo *repository.FacultyRepo, vehicleRepo *repository.VehicleRepo, spotRepo *repository.SpotRepo) *RegistryHandler {
	if studentRepo == nil || facultyRepo == nil || vehicleRepo == nil || spotRepo == nil {
		panic("nil repository passed to NewRegistryHandler")
	}
	return &RegistryHandler{
		StudentRepo: studentRepo,
		FacultyRepo: facultyRepo,
		VehicleRepo: vehicleRepo,
		SpotRepo:    spotRepo,
	}
}

// getUserID extracts the user_id set by the JWT middleware and converts
// it to uint64.  The claim decodes as float64 from JSON.
func getUserID(c echo.Context) (uint64, error) {
	v := c.Get("user_id")
	switch t := v.(type) {
	case uint64:
		return t, nil
	case int:
		return uint64(t), nil
	case int64:
		return uint64(t), nil
	case float64:
		return uint64(t), nil
	case string:
		if n, err := strconv.ParseUint(t, 10, 64); err == nil {
			return n, nil
		}
	}
	return 0, errors.New("invalid user_id in context")
}

// pathID parses the :id path parameter.  Zero is never a valid
// identifier, so it is rejected alongside non-numeric input.
func pathID(c echo.Context) (uint64, error) {
	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil || id == 0 {
		return 0, errors.New("invalid id")
	}
	return id, nil
}
