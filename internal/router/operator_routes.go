package router

import "github.com/labstack/echo/v4"

// RegisterOperator registers the endpoints used by resource operators:
// listing management, status changes, escrow attachment and the per
// resource booking list.  Ownership is checked by the services.
func RegisterOperator(e *echo.Echo, h Handlers, g Guards) {
	o := e.Group("/v1")
	mw := authenticated(g)
	o.POST("/listings", h.Listings.Create, mw...)
	o.PUT("/listings/:id", h.Listings.Update, mw...)
	o.PATCH("/listings/:id/status", h.Listings.UpdateStatus, mw...)
	o.GET("/resources/:id/bookings", h.Bookings.ListByResource, mw...)
	o.PATCH("/bookings/:id/status", h.Bookings.UpdateStatus, mw...)
	o.PUT("/bookings/:id/escrow", h.Bookings.SetEscrow, mw...)
}
