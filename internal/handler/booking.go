package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-ledger/internal/middleware"
	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/service"
)

// BookingHandler exposes the booking engine over HTTP.  Authenticated
// routes act on behalf of the principal attested by the JWT middleware.
type BookingHandler struct {
	Bookings *service.BookingService
}

// NewBookingHandler constructs a BookingHandler.
func NewBookingHandler(bookings *service.BookingService) *BookingHandler {
	if bookings == nil {
		panic("nil booking service passed to NewBookingHandler")
	}
	return &BookingHandler{Bookings: bookings}
}

type createBookingRequest struct {
	ResourceID  string       `json:"resource_id"`
	RequesterID string       `json:"requester_id"`
	Start       uint64       `json:"start"`
	End         uint64       `json:"end"`
	TotalPrice  model.Amount `json:"total_price"`
}

// Create handles POST /v1/bookings.  requester_id defaults to the caller;
// naming someone else fails with 403.
func (h *BookingHandler) Create(c echo.Context) error {
	var body createBookingRequest
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if body.RequesterID == "" {
		body.RequesterID = middleware.Principal(c)
	}
	id, err := h.Bookings.Create(c.Request().Context(), service.CreateBookingInput{
		ResourceID:  body.ResourceID,
		RequesterID: body.RequesterID,
		Start:       body.Start,
		End:         body.End,
		TotalPrice:  body.TotalPrice,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, echo.Map{"id": id})
}

// Get handles GET /v1/bookings/:id.
func (h *BookingHandler) Get(c echo.Context) error {
	id, err := pathUint(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	res, err := h.Bookings.Get(c.Request().Context(), id)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// ListByResource handles GET /v1/resources/:id/bookings.
func (h *BookingHandler) ListByResource(c echo.Context) error {
	list, err := h.Bookings.ListByResource(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// ListMine handles GET /v1/me/bookings.
func (h *BookingHandler) ListMine(c echo.Context) error {
	list, err := h.Bookings.ListByRequester(c.Request().Context(), middleware.Principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// Availability handles GET /v1/resources/:id/availability?start=&end=.
func (h *BookingHandler) Availability(c echo.Context) error {
	start, err := queryUint(c, "start")
	if err != nil {
		return badRequest(c, err.Error())
	}
	end, err := queryUint(c, "end")
	if err != nil {
		return badRequest(c, err.Error())
	}
	resource := c.Param("id")
	free, err := h.Bookings.CheckAvailability(c.Request().Context(), resource, start, end)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"resource_id": resource, "start": start, "end": end, "available": free})
}

// Cancel handles POST /v1/bookings/:id/cancel.  Only the requester may
// cancel.
func (h *BookingHandler) Cancel(c echo.Context) error {
	id, err := pathUint(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	if _, err := h.Bookings.Cancel(c.Request().Context(), id, middleware.Principal(c)); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "status": model.StatusCancelled})
}

// UpdateStatus handles PATCH /v1/bookings/:id/status with {"status": ...}.
// The caller must operate the booked resource.
func (h *BookingHandler) UpdateStatus(c echo.Context) error {
	id, err := pathUint(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	next, err := model.ParseStatus(body.Status)
	if err != nil {
		return writeError(c, err)
	}
	res, err := h.Bookings.UpdateStatus(c.Request().Context(), id, next, middleware.Principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, res)
}

// SetEscrow handles PUT /v1/bookings/:id/escrow.
func (h *BookingHandler) SetEscrow(c echo.Context) error {
	id, err := pathUint(c, "id")
	if err != nil {
		return badRequest(c, err.Error())
	}
	var body struct {
		EscrowRef   string `json:"escrow_ref"`
		ContractRef string `json:"contract_ref"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	if _, err := h.Bookings.SetEscrow(c.Request().Context(), id, body.EscrowRef, body.ContractRef); err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"id": id, "escrow_ref": body.EscrowRef})
}
