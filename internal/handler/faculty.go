package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/model"
	"github.com/dmonteiro/campus-parking/internal/repository"
)

type facultyResp struct {
	ID           uint64  `json:"id"`
	Enrollment   string  `json:"enrollment"`
	Name         string  `json:"name"`
	Department   *string `json:"department"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	IsActive     bool    `json:"is_active"`
	RegisteredOn string  `json:"registered_on"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toFacultyResp(f *model.FacultyMember) facultyResp {
	return facultyResp{
		ID:           f.ID,
		Enrollment:   f.Enrollment,
		Name:         f.Name,
		Department:   f.Department,
		Phone:        f.Phone,
		Email:        f.Email,
		IsActive:     f.IsActive,
		RegisteredOn: f.RegisteredOn.Format("2006-01-02"),
		CreatedAt:    f.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    f.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type facultyReq struct {
	Enrollment string  `json:"enrollment"`
	Name       string  `json:"name"`
	Department *string `json:"department"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	IsActive   *bool   `json:"is_active"`
}

// CreateFaculty handles POST /v1/faculty.
func (h *RegistryHandler) CreateFaculty(c echo.Context) error {
	var req facultyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Enrollment = strings.TrimSpace(req.Enrollment)
	req.Name = strings.TrimSpace(req.Name)
	if req.Enrollment == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enrollment and name are required"})
	}
	f := &model.FacultyMember{
		Enrollment: req.Enrollment,
		Name:       req.Name,
		Department: req.Department,
		Phone:      req.Phone,
		Email:      req.Email,
	}
	if err := h.FacultyRepo.Create(c.Request().Context(), f); err != nil {
		if errors.Is(err, repository.ErrEnrollmentExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "enrollment already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create faculty member"})
	}
	return c.JSON(http.StatusCreated, toFacultyResp(f))
}

// GetFaculty handles GET /v1/faculty/:id.
func (h *RegistryHandler) GetFaculty(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	f, err := h.FacultyRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFacultyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "faculty member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toFacultyResp(f))
}

// ListFaculty handles GET /v1/faculty with optional ?active= and
// ?department= filters.
func (h *RegistryHandler) ListFaculty(c echo.Context) error {
	var active *bool
	switch c.QueryParam("active") {
	case "true":
		t := true
		active = &t
	case "false":
		f := false
		active = &f
	case "":
	default:
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "active must be true or false"})
	}
	items, err := h.FacultyRepo.List(c.Request().Context(), active, strings.TrimSpace(c.QueryParam("department")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]facultyResp, 0, len(items))
	for i := range items {
		out = append(out, toFacultyResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateFaculty handles PUT /v1/faculty/:id.
func (h *RegistryHandler) UpdateFaculty(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req facultyReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Enrollment = strings.TrimSpace(req.Enrollment)
	req.Name = strings.TrimSpace(req.Name)
	if req.Enrollment == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enrollment and name are required"})
	}
	current, err := h.FacultyRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrFacultyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "faculty member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	f := &model.FacultyMember{
		ID:         id,
		Enrollment: req.Enrollment,
		Name:       req.Name,
		Department: req.Department,
		Phone:      req.Phone,
		Email:      req.Email,
		IsActive:   current.IsActive,
	}
	if req.IsActive != nil {
		f.IsActive = *req.IsActive
	}
	if err := h.FacultyRepo.Update(c.Request().Context(), f); err != nil {
		if errors.Is(err, repository.ErrFacultyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "faculty member not found"})
		}
		if errors.Is(err, repository.ErrEnrollmentExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "enrollment already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toFacultyResp(f))
}

// DeleteFaculty handles DELETE /v1/faculty/:id (soft delete).
func (h *RegistryHandler) DeleteFaculty(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.FacultyRepo.Deactivate(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrFacultyNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "faculty member not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
