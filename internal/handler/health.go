package handler

import (
	"context"
	"net/http"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-ledger/internal/database"
)

// HealthHandler reports liveness together with database reachability.
type HealthHandler struct {
	DB *sqlx.DB
}

// NewHealthHandler constructs a HealthHandler.
func NewHealthHandler(db *sqlx.DB) *HealthHandler { return &HealthHandler{DB: db} }

// Health handles GET /healthz.  It answers 503 when the database cannot be
// reached within two seconds.
func (h *HealthHandler) Health(c echo.Context) error {
	ctx, cancel := context.WithTimeout(c.Request().Context(), 2*time.Second)
	defer cancel()
	if err := h.DB.PingContext(ctx); err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": "database unreachable"})
	}
	version, err := database.SchemaVersion(ctx, h.DB)
	if err != nil {
		return c.JSON(http.StatusServiceUnavailable, echo.Map{"status": "unavailable", "error": "schema version unknown"})
	}
	return c.JSON(http.StatusOK, echo.Map{"status": "ok", "schema_version": version})
}
