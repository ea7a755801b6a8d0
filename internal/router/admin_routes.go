package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/handler"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

// AdminHandlers groups the handlers behind /v1/admin.
type AdminHandlers struct {
	Locations    *handler.AdminLocationHandler
	Appointments *handler.AdminAppointmentHandler
	Users        *handler.AdminUserHandler
	Settings     *handler.AdminSettingsHandler
	Dashboard    *handler.AdminDashboardHandler
	DevData      *handler.AdminDevDataHandler
}

// RegisterAdmin registers the administration routes.  Every route needs a
// valid JWT with the ADMIN role.
func RegisterAdmin(e *echo.Echo, h AdminHandlers, jwtSecret string, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1/admin",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleAdmin),
		orPass(limit),
	)

	// Branches
	g.GET("/branches", h.Locations.ListBranches)
	g.POST("/branches", h.Locations.CreateBranch)
	g.PUT("/branches/:id", h.Locations.UpdateBranch)
	g.DELETE("/branches/:id", h.Locations.DeleteBranch)
	g.GET("/branches/:id/settings", h.Settings.GetBranch)
	g.PUT("/branches/:id/settings", h.Settings.UpdateBranch)

	// Services
	g.GET("/services", h.Locations.ListServices)
	g.POST("/services", h.Locations.CreateService)
	g.PUT("/services/:id", h.Locations.UpdateService)
	g.DELETE("/services/:id", h.Locations.DeleteService)

	// Branch services
	g.GET("/branch-services", h.Locations.ListBranchServices)
	g.POST("/branch-services", h.Locations.CreateBranchService)
	g.DELETE("/branch-services/:id", h.Locations.DeleteBranchService)

	// Appointments
	g.GET("/appointments", h.Appointments.List)
	g.GET("/appointments/:id", h.Appointments.Get)
	g.PUT("/appointments/:id/status", h.Appointments.UpdateStatus)
	g.DELETE("/appointments/:id", h.Appointments.Delete)

	// Users
	g.GET("/users", h.Users.List)
	g.POST("/users", h.Users.Create)
	g.PATCH("/users/:id", h.Users.Patch)
	g.DELETE("/users/:id", h.Users.Delete)
	g.GET("/roles", h.Users.Roles)

	g.GET("/settings", h.Settings.GetGlobal)
	g.PUT("/settings", h.Settings.UpdateGlobal)

	g.GET("/dashboard", h.Dashboard.Get)
	g.POST("/devdata/generate", h.DevData.Generate)
}
