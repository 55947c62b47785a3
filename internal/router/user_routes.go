package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/handler"
	"github.com/dmonteiro/campus-parking/internal/middleware"
	"github.com/dmonteiro/campus-parking/internal/model"
)

// RegisterUsers registers the operator-account endpoints under /v1.
// Only MASTER accounts can manage other accounts.
func RegisterUsers(e *echo.Echo, h *handler.UserHandler, jwtSecret string) {
	g := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleMaster),
	)

	g.POST("/users", h.CreateUser)
	g.GET("/users", h.ListUsers)
	g.GET("/users/:id", h.GetUser)
	g.PUT("/users/:id", h.UpdateUser)
	g.DELETE("/users/:id", h.DeactivateUser)
}
