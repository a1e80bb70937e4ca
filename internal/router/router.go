// Package router registers the booking API routes on an Echo instance.
package router

import (
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-ledger/internal/handler"
	"github.com/iliyamo/booking-ledger/internal/middleware"
)

// Handlers bundles every HTTP handler of the API.
type Handlers struct {
	Health   *handler.HealthHandler
	Bookings *handler.BookingHandler
	Listings *handler.ListingHandler
	Reviews  *handler.ReviewHandler
}

// Guards holds the middleware applied to route groups.  Cache wraps the
// public reads and RateLimit the authenticated API; either may be nil.
type Guards struct {
	JWTSecret string
	Cache     echo.MiddlewareFunc
	RateLimit echo.MiddlewareFunc
}

// Register wires every route of the API.
func Register(e *echo.Echo, h Handlers, g Guards) {
	RegisterRoutes(e, h.Health)
	RegisterPublic(e, h, g.Cache)
	RegisterRequester(e, h, g)
	RegisterOperator(e, h, g)
}

// RegisterRoutes registers the unauthenticated health check.
func RegisterRoutes(e *echo.Echo, health *handler.HealthHandler) {
	e.GET("/healthz", health.Health)
}

// RegisterPublic registers the anonymous read endpoints.  Listing and
// review reads are served through cache when one is given; availability
// always reads the ledger since callers act on its answer.
func RegisterPublic(e *echo.Echo, h Handlers, cache echo.MiddlewareFunc) {
	var mw []echo.MiddlewareFunc
	if cache != nil {
		mw = append(mw, cache)
	}
	g := e.Group("/v1")
	g.GET("/listings", h.Listings.List, mw...)
	g.GET("/listings/:id", h.Listings.Get, mw...)
	g.GET("/users/:id/reviews", h.Reviews.List, mw...)
	g.GET("/users/:id/reputation", h.Reviews.Reputation, mw...)
	g.GET("/resources/:id/availability", h.Bookings.Availability)
}

// authenticated returns the middleware chain of protected routes: JWT
// first so the limiter can key on the principal.
func authenticated(g Guards) []echo.MiddlewareFunc {
	mw := []echo.MiddlewareFunc{middleware.JWTAuth(g.JWTSecret)}
	if g.RateLimit != nil {
		mw = append(mw, g.RateLimit)
	}
	return mw
}
