package handler

import (
	"log/slog"
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// statusByKind maps domain error kinds to HTTP status codes.
var statusByKind = map[string]int{
	"NotFound":                http.StatusNotFound,
	"InvalidDates":            http.StatusBadRequest,
	"InvalidPrice":            http.StatusBadRequest,
	"InvalidInput":            http.StatusBadRequest,
	"InvalidRating":           http.StatusBadRequest,
	"BookingOverlap":          http.StatusConflict,
	"EscrowAlreadySet":        http.StatusConflict,
	"ListingExists":           http.StatusConflict,
	"DuplicateReview":         http.StatusConflict,
	"InvalidStatusTransition": http.StatusUnprocessableEntity,
	"Unauthorized":            http.StatusForbidden,
	"UnauthorizedReviewer":    http.StatusForbidden,
}

// writeError renders err as {"error", "kind"}.  Errors that are not domain
// errors are logged and hidden behind a generic 500.
func writeError(c echo.Context, err error) error {
	kind := model.ErrorKind(err)
	status, ok := statusByKind[kind]
	if !ok {
		slog.Error("request failed", "method", c.Request().Method, "path", c.Path(), "error", err)
		return c.JSON(http.StatusInternalServerError, echo.Map{"error": "internal error", "kind": kind})
	}
	return c.JSON(status, echo.Map{"error": err.Error(), "kind": kind})
}

func badRequest(c echo.Context, msg string) error {
	return c.JSON(http.StatusBadRequest, echo.Map{"error": msg, "kind": "InvalidInput"})
}
