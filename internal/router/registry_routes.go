package router

import (
	"github.com/labstack/echo/v4"

	"github.com/dmonteiro/campus-parking/internal/handler"
	"github.com/dmonteiro/campus-parking/internal/middleware"
	"github.com/dmonteiro/campus-parking/internal/model"
)

// RegisterRegistry registers the student, faculty, vehicle and spot
// endpoints under /v1.  Reads are open to every staff role so
// gatekeepers can look up vehicles and free spots; writes require ADMIN
// or MASTER.
func RegisterRegistry(e *echo.Echo, h *handler.RegistryHandler, jwtSecret string) {
	read := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleGatekeeper, model.RoleAdmin, model.RoleMaster),
	)
	write := e.Group("/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin, model.RoleMaster),
	)

	// ---- Students ----
	write.POST("/students", h.CreateStudent)
	read.GET("/students", h.ListStudents)
	read.GET("/students/:id", h.GetStudent)
	write.PUT("/students/:id", h.UpdateStudent)
	write.DELETE("/students/:id", h.DeleteStudent)

	// ---- Faculty ----
	write.POST("/faculty", h.CreateFaculty)
	read.GET("/faculty", h.ListFaculty)
	read.GET("/faculty/:id", h.GetFaculty)
	write.PUT("/faculty/:id", h.UpdateFaculty)
	write.DELETE("/faculty/:id", h.DeleteFaculty)

	// ---- Vehicles ----
	write.POST("/vehicles", h.CreateVehicle)
	read.GET("/vehicles", h.ListVehicles)
	read.GET("/vehicles/:id", h.GetVehicle)
	write.PUT("/vehicles/:id", h.UpdateVehicle)
	write.DELETE("/vehicles/:id", h.DeleteVehicle)

	// ---- Spots ----
	write.POST("/spots", h.CreateSpot)
	read.GET("/spots", h.ListSpots)
	// Registered before :id so "available" is not parsed as an id.
	read.GET("/spots/available", h.ListAvailableSpots)
	read.GET("/spots/:id", h.GetSpot)
	write.PUT("/spots/:id", h.UpdateSpot)
	write.DELETE("/spots/:id", h.DeleteSpot)
}
