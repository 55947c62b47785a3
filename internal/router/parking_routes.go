package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/handler"
	"github.com/dmonteiro/campus-parking/internal/middleware"
	"github.com/dmonteiro/campus-parking/internal/model"
)

// RegisterParking registers the entry/exit workflow and session queries
// under /v1.  Every staff role may operate the gate, so GATEKEEPER is
// enough for all of these routes.
func RegisterParking(e *echo.Echo, h *handler.ParkingHandler, jwtSecret string) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGatekeeper, model.RoleAdmin, model.RoleMaster),
	)

	g.POST("/parking-sessions", h.RegisterEntry)
	g.PATCH("/parking-sessions/:id/exit", h.RegisterExit)
	g.GET("/parking-sessions", h.ListSessions)
	// Registered before :id so "active" is not parsed as an id.
	g.GET("/parking-sessions/active", h.ListActive)
	g.GET("/parking-sessions/:id", h.GetSession)
}
