package handler

import (
	"context"
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/queue"
	"github.com/dmonteiro/campus-parking/internal/repository"
	queue_publisher "github.com/dmonteiro/campus-parking/internal/service"
)

// ParkingHandler serves the entry/exit workflow and session queries.
// Entry and exit each run inside a single transaction so the session
// row and the spot's occupancy flag move together; a failure anywhere
// rolls back both.  Event publication happens only after commit and is
// fire-and-forget.
type ParkingHandler struct {
	SessionRepo *repository.SessionRepo // session persistence, owns the DB handle
	VehicleRepo *repository.VehicleRepo // vehicle lookups inside the entry transaction
	SpotRepo    *repository.SpotRepo    // spot lookups and occupancy flips
}

// NewParkingHandler constructs a ParkingHandler with the provided
// repositories.  All dependencies must be non-nil.
func NewParkingHandler(sessionRepo *repository.SessionRepo, vehicleRepo *repository.VehicleRepo, spotRepo *repository.SpotRepo) *ParkingHandler {
	if sessionRepo == nil || vehicleRepo == nil || spotRepo == nil {
		panic("nil repository passed to NewParkingHandler")
	}
	return &ParkingHandler{SessionRepo: sessionRepo, VehicleRepo: vehicleRepo, SpotRepo: spotRepo}
}

// publishEvent sends a parking event without blocking the response.
// Publish failures only log; the committed transaction is the source of
// truth and is never affected.
func publishEvent(ev queue.ParkingEvent) {
	go func() {
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		_ = queue_publisher.PublishParkingEvent(ctx, ev)
	}()
}

// RegisterEntry handles POST /v1/parking-sessions.  It checks in a
// vehicle: the vehicle and spot must exist, the spot must be active and
// free, and the vehicle must not already be parked.  The new session
// and the spot's occupancy flip commit atomically.
func (h *ParkingHandler) RegisterEntry(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	var body struct {
		VehicleID uint64 `json:"vehicle_id"`
		SpotID    uint64 `json:"spot_id"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.VehicleID == 0 || body.SpotID == 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "vehicle_id and spot_id are required"})
	}

	ctx := c.Request().Context()
	tx, err := h.SessionRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	vehicle, err := h.VehicleRepo.GetByIDTx(ctx, tx, body.VehicleID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "vehicle not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	spot, err := h.SpotRepo.GetByIDTx(ctx, tx, body.SpotID)
	if err != nil {
		if errors.Is(err, repository.ErrSpotNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "spot not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if !spot.IsActive {
		return c.JSON(http.StatusConflict, echo.Map{"error": "spot is not in service"})
	}
	if spot.IsOccupied {
		return c.JSON(http.StatusConflict, echo.Map{"error": "spot already occupied"})
	}
	active, err := h.SessionRepo.ActiveByVehicleTx(ctx, tx, body.VehicleID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if active != nil {
		return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle already has an active session"})
	}

	sessionID, enteredAt, err := h.SessionRepo.CreateTx(ctx, tx, body.VehicleID, body.SpotID)
	if err != nil {
		if errors.Is(err, repository.ErrVehicleParked) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "vehicle already has an active session"})
		}
		if errors.Is(err, repository.ErrSpotOccupied) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "spot already occupied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to create session"})
	}
	if err := h.SpotRepo.SetOccupiedTx(ctx, tx, body.SpotID, true); err != nil {
		if errors.Is(err, repository.ErrSpotOccupied) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "spot already occupied"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update spot"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	detail, err := h.SessionRepo.GetDetail(ctx, sessionID)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}
	publishEvent(queue.ParkingEvent{
		Event:      queue.EventEntry,
		SessionID:  sessionID,
		VehicleID:  vehicle.ID,
		Plate:      vehicle.Plate,
		SpotID:     spot.ID,
		SpotNumber: spot.Number,
		OperatorID: operatorID,
		EnteredAt:  enteredAt.Format(time.RFC3339),
	})
	return c.JSON(http.StatusCreated, detail)
}

// RegisterExit handles PATCH /v1/parking-sessions/:id/exit.  It closes
// an active session, frees the spot and stores the amount paid
// verbatim.  A second exit for the same session is rejected with 409
// and the original exit timestamp so the first exit stays untouched.
func (h *ParkingHandler) RegisterExit(c echo.Context) error {
	operatorID, err := getUserID(c)
	if err != nil {
		return c.JSON(http.StatusUnauthorized, echo.Map{"error": "unauthorized"})
	}
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	var body struct {
		AmountPaid *float64 `json:"amount_paid"`
	}
	if err := c.Bind(&body); err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid request body"})
	}
	if body.AmountPaid != nil && *body.AmountPaid < 0 {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "amount_paid cannot be negative"})
	}

	ctx := c.Request().Context()
	tx, err := h.SessionRepo.DB().BeginTx(ctx, nil)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to start transaction"})
	}
	committed := false
	defer func() {
		if !committed {
			_ = tx.Rollback()
		}
	}()

	spotID, exitedAt, err := h.SessionRepo.GetForExitTx(ctx, tx, id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	if exitedAt != nil {
		return c.JSON(http.StatusConflict, echo.Map{
			"error":     "exit already registered",
			"exited_at": exitedAt.Format(time.RFC3339),
		})
	}
	if err := h.SessionRepo.CloseTx(ctx, tx, id, body.AmountPaid); err != nil {
		if errors.Is(err, repository.ErrExitRegistered) {
			return c.JSON(http.StatusConflict, echo.Map{"error": "exit already registered"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to close session"})
	}
	if err := h.SpotRepo.SetOccupiedTx(ctx, tx, spotID, false); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to update spot"})
	}
	if err := tx.Commit(); err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to commit transaction"})
	}
	committed = true

	detail, err := h.SessionRepo.GetDetail(ctx, id)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "failed to load session"})
	}
	ev := queue.ParkingEvent{
		Event:      queue.EventExit,
		SessionID:  detail.ID,
		VehicleID:  detail.Vehicle.ID,
		Plate:      detail.Vehicle.Plate,
		SpotID:     detail.Spot.ID,
		SpotNumber: detail.Spot.Number,
		OperatorID: operatorID,
		EnteredAt:  detail.EnteredAt,
		AmountPaid: detail.AmountPaid,
	}
	if detail.ExitedAt != nil {
		ev.ExitedAt = *detail.ExitedAt
	}
	publishEvent(ev)
	return c.JSON(http.StatusOK, detail)
}

// ListActive handles GET /v1/parking-sessions/active: open sessions
// ordered by entry time ascending, so the longest-parked vehicle comes
// first.
func (h *ParkingHandler) ListActive(c echo.Context) error {
	items, err := h.SessionRepo.ListActive(c.Request().Context())
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// ListSessions handles GET /v1/parking-sessions with optional
// ?vehicle_id=, ?spot_id=, ?from= and ?to= filters.  Timestamps accept
// RFC 3339 or a bare date.  History is ordered newest entry first and
// enriched with the vehicle's owner.
func (h *ParkingHandler) ListSessions(c echo.Context) error {
	var f repository.SessionFilter
	if raw := c.QueryParam("vehicle_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid vehicle_id"})
		}
		f.VehicleID = n
	}
	if raw := c.QueryParam("spot_id"); raw != "" {
		n, err := strconv.ParseUint(raw, 10, 64)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid spot_id"})
		}
		f.SpotID = n
	}
	parseTS := func(raw string) (time.Time, error) {
		if t, err := time.Parse(time.RFC3339, raw); err == nil {
			return t, nil
		}
		return time.Parse("2006-01-02", raw)
	}
	if raw := c.QueryParam("from"); raw != "" {
		t, err := parseTS(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid from timestamp"})
		}
		f.From = t
	}
	if raw := c.QueryParam("to"); raw != "" {
		t, err := parseTS(raw)
		if err != nil {
			return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid to timestamp"})
		}
		f.To = t
	}
	items, err := h.SessionRepo.List(c.Request().Context(), f)
	if err != nil {
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, echo.Map{"items": items})
}

// GetSession handles GET /v1/parking-sessions/:id.
func (h *ParkingHandler) GetSession(c echo.Context) error {
	id, err := pathID(c)
	if err != nil {
		return c.JSON(http.StatusBadRequest, echo.Map{"error": "invalid id"})
	}
	detail, err := h.SessionRepo.GetDetail(c.Request().Context(), id)
	if err != nil {
		if errors.Is(err, repository.ErrSessionNotFound) {
			return c.JSON(http.StatusNotFound, echo.Map{"error": "session not found"})
		}
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "database error"})
	}
	return c.JSON(http.StatusOK, detail)
}
