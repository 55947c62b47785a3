package handler

import (
	"errors"
	"net/http"
	"strings"

	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/model"
	"github.com/dmonteiro/campus-parking/internal/repository"
)

type spotResp struct {
	ID         uint64  `json:"id"`
	Number     string  `json:"number"`
	Location   *string `json:"location"`
	SpotType   string  `json:"spot_type"`
	IsOccupied bool    `json:"is_occupied"`
	IsActive   bool    `json:"is_active"`
	CreatedAt  string  `json:"created_at"`
	UpdatedAt  string  `json:"updated_at"`
}

func toSpotResp(s *model.Spot) spotResp {
	return spotResp{
		ID:         s.ID,
		Number:     s.Number,
		Location:   s.Location,
		SpotType:   s.SpotType,
		IsOccupied: s.IsOccupied,
		IsActive:   s.IsActive,
		CreatedAt:  s.CreatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
		UpdatedAt:  s.UpdatedAt.UTC().Format("2006-01-02T15:04:05Z07:00"),
	}
}

// spotReq carries the is_occupied/occupied fields only so their
// presence can be rejected: occupancy is owned by the entry/exit
// workflow and must never be set through this endpoint.
type spotReq struct {
	Number     string  `json:"number"`
	Location   *string `json:"location"`
	SpotType   string  `json:"spot_type"`
	IsActive   *bool   `json:"is_active"`
	IsOccupied *bool   `json:"is_occupied"`
	Occupied   *bool   `json:"occupied"`
}

// CreateSpot handles POST /v1/spots.
func (h *RegistryHandler) CreateSpot(c echo.Context) error {
	var req spotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.IsOccupied != nil || req.Occupied != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "occupancy cannot be set directly"})
	}
	req.Number = strings.ToUpper(strings.TrimSpace(req.Number))
	req.SpotType = strings.ToUpper(strings.TrimSpace(req.SpotType))
	if req.Number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number is required"})
	}
	if req.SpotType == "" {
		req.SpotType = model.SpotTypeCommon
	}
	if !model.ValidSpotType(req.SpotType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spot_type must be COMMON, PRIORITY or FACULTY"})
	}
	s := &model.Spot{
		Number:   req.Number,
		Location: req.Location,
		SpotType: req.SpotType,
	}
	if err := h.SpotRepo.Create(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrSpotNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "spot number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "could not create spot"})
	}
	return c.JSON(http.StatusCreated, toSpotResp(s))
}

// GetSpot handles GET /v1/spots/:id.
func (h *RegistryHandler) GetSpot(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	s, err := h.SpotRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSpotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	return c.JSON(http.StatusOK, toSpotResp(s))
}

// ListSpots handles GET /v1/spots with optional ?type=, ?occupied= and
// ?active= filters.
func (h *RegistryHandler) ListSpots(c echo.Context) error {
	parseFlag := func(name string) (*bool, error) {
		switch c.QueryParam(name) {
		case "true":
			t := true
			return &t, nil
		case "false":
			f := false
			return &f, nil
		case "":
			return nil, nil
		}
		return nil, errors.New(name + " must be true or false")
	}
	occupied, err := parseFlag("occupied")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	active, err := parseFlag("active")
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": err.Error()})
	}
	spotType := strings.ToUpper(strings.TrimSpace(c.QueryParam("type")))
	if spotType != "" && !model.ValidSpotType(spotType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be COMMON, PRIORITY or FACULTY"})
	}
	items, err := h.SpotRepo.List(c.Request().Context(), spotType, occupied, active)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]spotResp, 0, len(items))
	for i := range items {
		out = append(out, toSpotResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// ListAvailableSpots handles GET /v1/spots/available: active spots that
// are currently free, optionally restricted by ?type=.
func (h *RegistryHandler) ListAvailableSpots(c echo.Context) error {
	spotType := strings.ToUpper(strings.TrimSpace(c.QueryParam("type")))
	if spotType != "" && !model.ValidSpotType(spotType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "type must be COMMON, PRIORITY or FACULTY"})
	}
	items, err := h.SpotRepo.ListAvailable(c.Request().Context(), spotType)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	out := make([]spotResp, 0, len(items))
	for i := range items {
		out = append(out, toSpotResp(&items[i]))
	}
	return c.JSON(http.StatusOK, echo.Map{"items": out})
}

// UpdateSpot handles PUT /v1/spots/:id.  Any attempt to set occupancy
// through this endpoint is a 400.
func (h *RegistryHandler) UpdateSpot(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var req spotReq
	if err := c.Bind(&req); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if req.IsOccupied != nil || req.Occupied != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "occupancy cannot be set directly"})
	}
	req.Number = strings.ToUpper(strings.TrimSpace(req.Number))
	req.SpotType = strings.ToUpper(strings.TrimSpace(req.SpotType))
	if req.Number == "" {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "number is required"})
	}
	if req.SpotType != "" && !model.ValidSpotType(req.SpotType) {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "spot_type must be COMMON, PRIORITY or FACULTY"})
	}
	current, err := h.SpotRepo.GetByID(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSpotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "db error"})
	}
	s := &model.Spot{
		ID:       id,
		Number:   req.Number,
		Location: req.Location,
		SpotType: current.SpotType,
		IsActive: current.IsActive,
	}
	if req.SpotType != "" {
		s.SpotType = req.SpotType
	}
	if req.IsActive != nil {
		s.IsActive = *req.IsActive
	}
	if err := h.SpotRepo.Update(c.Request().Context(), s); err != nil {
		if errors.Is(err, repository.ErrSpotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
		}
		if errors.Is(err, repository.ErrSpotNumberExists) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "spot number already exists"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "update failed"})
	}
	return c.JSON(http.StatusOK, toSpotResp(s))
}

// DeleteSpot handles DELETE /v1/spots/:id.  Spots with session history
// are protected by the RESTRICT foreign key.
func (h *RegistryHandler) DeleteSpot(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	if err := h.SpotRepo.Delete(c.Request().Context(), id); err != nil {
		if errors.Is(err, repository.ErrSpotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
		}
		if errors.Is(err, repository.ErrConflict) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "spot has parking history"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "delete failed"})
	}
	return c.NoContent(http.StatusNoContent)
}
