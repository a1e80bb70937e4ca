package router

import "github.com/labstack/echo/v4"

// RegisterRequester registers the endpoints used by guests: booking,
// cancelling, browsing their own history and reviewing.
func RegisterRequester(e *echo.Echo, h Handlers, g Guards) {
	r := e.Group("/v1")
	mw := authenticated(g)
	r.POST("/bookings", h.Bookings.Create, mw...)
	r.GET("/bookings/:id", h.Bookings.Get, mw...)
	r.GET("/me/bookings", h.Bookings.ListMine, mw...)
	r.POST("/bookings/:id/cancel", h.Bookings.Cancel, mw...)
	r.POST("/reviews", h.Reviews.Submit, mw...)
}
