package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/bqomis-portal/internal/handler"
	"github.com/iliyamo/bqomis-portal/internal/middleware"
	"github.com/iliyamo/bqomis-portal/internal/model"
)

// ClientHandlers groups the handlers behind the client routes.
type ClientHandlers struct {
	Finder    *handler.FinderHandler
	Booking   *handler.BookingHandler
	Reference *handler.ReferenceHandler
}

// RegisterClient registers the finder, booking and reference routes under
// /v1.  Admins may use them too.  cache wraps the reference lists only.
func RegisterClient(e *echo.Echo, h ClientHandlers, jwtSecret string, cache, limit echo.MiddlewareFunc) {
	g := e.Group(
		"/v1",
		middleware.JWTAuth(jwtSecret),
		middleware.RequireRole(model.RoleClient, model.RoleAdmin),
		orPass(limit),
	)

	g.GET("/finder", h.Finder.View)
	g.POST("/finder/province", h.Finder.Province)
	g.POST("/finder/district", h.Finder.District)
	g.POST("/finder/branch", h.Finder.Branch)
	g.POST("/finder/back", h.Finder.Back)
	g.POST("/finder/book", h.Finder.Book)

	g.GET("/booking/slots", h.Booking.Slots)
	g.POST("/booking", h.Booking.Create)

	g.GET("/provinces", h.Reference.Provinces, orPass(cache))
	g.GET("/districts", h.Reference.Districts, orPass(cache))
}
