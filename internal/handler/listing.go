package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-ledger/internal/middleware"
	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/service"
)

// ListingHandler exposes the listing registry.
type ListingHandler struct {
	Listings *service.ListingService
}

// NewListingHandler constructs a ListingHandler.
func NewListingHandler(listings *service.ListingService) *ListingHandler {
	return &ListingHandler{Listings: listings}
}

// Create handles POST /v1/listings with {"id", "data_hash"}.  The caller
// becomes the owner.
func (h *ListingHandler) Create(c echo.Context) error {
	var body struct {
		ID       string `json:"id"`
		DataHash string `json:"data_hash"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	l, err := h.Listings.CreateListing(c.Request().Context(), body.ID, body.DataHash, middleware.Principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, l)
}

// Update handles PUT /v1/listings/:id with {"data_hash"}.
func (h *ListingHandler) Update(c echo.Context) error {
	var body struct {
		DataHash string `json:"data_hash"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	l, err := h.Listings.UpdateListing(c.Request().Context(), c.Param("id"), body.DataHash, middleware.Principal(c))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// UpdateStatus handles PATCH /v1/listings/:id/status with {"status"}.
func (h *ListingHandler) UpdateStatus(c echo.Context) error {
	var body struct {
		Status string `json:"status"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	status, err := model.ParseListingStatus(body.Status)
	if err != nil {
		return writeError(c, err)
	}
	l, err := h.Listings.UpdateListingStatus(c.Request().Context(), c.Param("id"), middleware.Principal(c), status)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// Get handles GET /v1/listings/:id.
func (h *ListingHandler) Get(c echo.Context) error {
	l, err := h.Listings.GetListing(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, l)
}

// List handles GET /v1/listings.
func (h *ListingHandler) List(c echo.Context) error {
	list, err := h.Listings.ListListings(c.Request().Context())
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}
