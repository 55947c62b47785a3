package handler

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/model"
	"github.com/dmonteiro/campus-parking/internal/repository"
)

type vehicleReq struct {
	Plate     string  `json:"plate"`
	Model     string  `json:"model"`
	Color     *string `json:"color"`
	Year      *uint32 `json:"year"`
	StudentID *uint64 `json:"student_id"`
	FacultyID *uint64 `json:"faculty_id"`
}

// checkOwner enforces the ownership rule before any vehicle write:
// exactly one of student_id/faculty_id must be set, the owner must
// exist and must be active.  It writes the error response itself and
// returns false when the request must not proceed.
func (h *RegistryHandler) checkOwner(c echo.Context, studentID, facultyID *uint64) bool {
	if (studentID == nil) == (facultyID == nil) {
		_ = c.JSON(http.StatusBadRequest, echo.Map{"error": "exactly one of student_id or faculty_id is required"})
		return false
	}
	ctx := c.Request().Context()
	if studentID != nil {
		active, err := h.StudentRepo.IsActive(ctx, *studentID)
		if err != nil {
			if errors.Is(err, repository.ErrStudentNotFound) {
				_ = c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
				return false
			}
			_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
			return false
		}
		if !active {
			_ = c.JSON(http.StatusConflict, echo.Map{"error": "student is inactive"})
			return false
		}
		return true
	}
	active, err := h.FacultyRepo.IsActive(ctx, *facultyID)
	if err != nil {
		if errors.Is(err, repository.ErrFacultyNotFound) {
			_ = c.JSON(http.StatusNotFound, echo.Map{"error": "faculty member not found"})
			return false
		}
		_ = c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
		return false
	}
	if !active {
		_ = c.JSON(http.StatusConflict, echo.Map{"error": "faculty member is inactive"})
		return false
	}
	return true
}

// CreateVehicle handles POST /v1/vehicles.  The ownership check runs
// before the insert so an invalid owner never produces a row.
func (h *RegistryHandler) CreateVehicle(c echo.Context) error {
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Plate = strings.TrimSpace(req.Plate)
	req.Model = strings.TrimSpace(req.Model)
	if req.Plate == "" || req.Model == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate and model are required"})
	}
	if !h.checkOwner(c, req.StudentID, req.FacultyID) {
		return nil
	}
	v := &model.Vehicle{
		Plate:     req.Plate,
		Model:     req.Model,
		Color:     req.Color,
		Year:      req.Year,
		StudentID: req.StudentID,
		FacultyID: req.FacultyID,
	}
	if err := h.VehicleRepo.Create(c.Request().Context(), v); err != nil {
		if errors.Is(err, repository.ErrPlateExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "plate already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create vehicle"})
	}
	detail, err := h.VehicleRepo.GetByID(c.Request().Context(), v.ID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load vehicle"})
	}
	return c.JSON(http.StatusCreated, detail)
}

// GetVehicle handles GET /v1/vehicles/:id.
func (h *RegistryHandler) GetVehicle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	detail, err := h.VehicleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, detail)
}

// ListVehicles handles GET /v1/vehicles with optional ?student_id=,
// ?faculty_id= and ?plate= filters.
func (h *RegistryHandler) ListVehicles(c echo.Context) error {
	var studentID, facultyID uint64
	if raw := c.QueryParam("student_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid student_id"})
		}
		studentID = n
	}
	if raw := c.QueryParam("faculty_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid faculty_id"})
		}
		facultyID = n
	}
	items, err := h.VehicleRepo.List(c.Request().Context(), studentID, facultyID, strings.TrimSpace(c.QueryParam("plate")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// UpdateVehicle handles PUT /v1/vehicles/:id.  Ownership is re-checked
// on every update since the owner may change.
func (h *RegistryHandler) UpdateVehicle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req vehicleReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Plate = strings.TrimSpace(req.Plate)
	req.Model = strings.TrimSpace(req.Model)
	if req.Plate == "" || req.Model == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "plate and model are required"})
	}
	if _, err := h.VehicleRepo.GetByID(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	if !h.checkOwner(c, req.StudentID, req.FacultyID) {
		return nil
	}
	v := &model.Vehicle{
		ID:        id,
		Plate:     req.Plate,
		Model:     req.Model,
		Color:     req.Color,
		Year:      req.Year,
		StudentID: req.StudentID,
		FacultyID: req.FacultyID,
	}
	if err := h.VehicleRepo.Update(c.Request().Context(), v); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		if errors.Is(err, repository.ErrPlateExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "plate already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	detail, err := h.VehicleRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not load vehicle"})
	}
	return c.JSON(http.StatusOK, detail)
}

// DeleteVehicle handles DELETE /v1/vehicles/:id.  Vehicles with session
// history are protected by the RESTRICT foreign key.
func (h *RegistryHandler) DeleteVehicle(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.VehicleRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle has parking history"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
