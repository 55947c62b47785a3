package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/model"
	"github.com/dmonteiro/campus-parking/internal/repository"
)

// studentResp is the JSON shape returned for a student.  The model
// struct carries no tags so the wire format is pinned down here.
type studentResp struct {
	ID           uint64  `json:"id"`
	Enrollment   string  `json:"enrollment"`
	Name         string  `json:"name"`
	Course       *string `json:"course"`
	Phone        *string `json:"phone"`
	Email        *string `json:"email"`
	IsActive     bool    `json:"is_active"`
	RegisteredOn string  `json:"registered_on"`
	CreatedAt    string  `json:"created_at"`
	UpdatedAt    string  `json:"updated_at"`
}

func toStudentResp(s *model.Student) studentResp {
	return studentResp{
		ID:           s.ID,
		Enrollment:   s.Enrollment,
		Name:         s.Name,
		Course:       s.Course,
		Phone:        s.Phone,
		Email:        s.Email,
		IsActive:     s.IsActive,
		RegisteredOn: s.RegisteredOn.Format("2006-01-02"),
		CreatedAt:    s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:    s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

type studentReq struct {
	Enrollment string  `json:"enrollment"`
	Name       string  `json:"name"`
	Course     *string `json:"course"`
	Phone      *string `json:"phone"`
	Email      *string `json:"email"`
	IsActive   *bool   `json:"is_active"`
}

// CreateStudent handles POST /v1/students.
func (h *RegistryHandler) CreateStudent(c echo.Context) error {
	var req studentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Enrollment = strings.TrimSpace(req.Enrollment)
	req.Name = strings.TrimSpace(req.Name)
	if req.Enrollment == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enrollment and name are required"})
	}
	s := &model.Student{
		Enrollment: req.Enrollment,
		Name:       req.Name,
		Course:     req.Course,
		Phone:      req.Phone,
		Email:      req.Email,
	}
	if err := h.StudentRepo.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrEnrollmentExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "enrollment already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create student"})
	}
	return c.JSON(http.StatusCreated, toStudentResp(s))
}

// GetStudent handles GET /v1/students/:id.
func (h *RegistryHandler) GetStudent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.StudentRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toStudentResp(s))
}

// ListStudents handles GET /v1/students with optional ?active= and
// ?course= filters.
func (h *RegistryHandler) ListStudents(c echo.Context) error {
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
	items, err := h.StudentRepo.List(c.Request().Context(), active, strings.TrimSpace(c.QueryParam("course")))
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]studentResp, 0, len(items))
	for i := range items {
		out = append(out, toStudentResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateStudent handles PUT /v1/students/:id.  Absent optional fields
// clear the column; a nil is_active keeps the current flag.
func (h *RegistryHandler) UpdateStudent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req studentReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	req.Enrollment = strings.TrimSpace(req.Enrollment)
	req.Name = strings.TrimSpace(req.Name)
	if req.Enrollment == "" || req.Name == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "enrollment and name are required"})
	}
	current, err := h.StudentRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	s := &model.Student{
		ID:         id,
		Enrollment: req.Enrollment,
		Name:       req.Name,
		Course:     req.Course,
		Phone:      req.Phone,
		Email:      req.Email,
		IsActive:   current.IsActive,
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if err := h.StudentRepo.Update(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		if errors.Is(err, repository.ErrEnrollmentExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "enrollment already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toStudentResp(s))
}

// DeleteStudent handles DELETE /v1/students/:id.  Students are soft
// deleted so their vehicles keep a resolvable owner.
func (h *RegistryHandler) DeleteStudent(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.StudentRepo.Deactivate(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrStudentNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "student not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
