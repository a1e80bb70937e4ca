package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"github.com/iliyamo/booking-ledger/internal/middleware"
	"github.com/iliyamo/booking-ledger/internal/service"
)

// ReviewHandler exposes the review ledger.
type ReviewHandler struct {
	Reviews *service.ReviewService
}

// NewReviewHandler constructs a ReviewHandler.
func NewReviewHandler(reviews *service.ReviewService) *ReviewHandler {
	return &ReviewHandler{Reviews: reviews}
}

// Submit handles POST /v1/reviews.  The caller is the reviewer.
func (h *ReviewHandler) Submit(c echo.Context) error {
	var body struct {
		BookingID uint64 `json:"booking_id"`
		Target    string `json:"target"`
		Rating    int    `json:"rating"`
		Comment   string `json:"comment"`
	}
	if err := c.Bind(&body); err != nil {
		return badRequest(c, "invalid request body")
	}
	rv, err := h.Reviews.Submit(c.Request().Context(), service.SubmitReviewInput{
		BookingID: body.BookingID,
		Reviewer:  middleware.Principal(c),
		Target:    body.Target,
		Rating:    body.Rating,
		Comment:   body.Comment,
	})
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusCreated, rv)
}

// List handles GET /v1/users/:id/reviews.
func (h *ReviewHandler) List(c echo.Context) error {
	list, err := h.Reviews.ReviewsFor(c.Request().Context(), c.Param("id"))
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"items": list})
}

// Reputation handles GET /v1/users/:id/reputation.  The score is the
// average rating times 100.
func (h *ReviewHandler) Reputation(c echo.Context) error {
	user := c.Param("id")
	score, err := h.Reviews.Reputation(c.Request().Context(), user)
	if err != nil {
		return writeError(c, err)
	}
	return c.JSON(http.StatusOK, echo.Map{"user": user, "reputation": score})
}
