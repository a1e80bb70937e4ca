package model

import "errors"

// Domain errors shared by the service, repository, handler and CLI layers.
// Callers match them with errors.Is; lower layers wrap them with context
// using fmt.Errorf("...: %w", err).
var (
	// ErrNotFound is returned when a lookup by key has no matching record.
	ErrNotFound = errors.New("not found")
	// ErrInvalidDates is returned when a reservation interval does not
	// satisfy start < end.
	ErrInvalidDates = errors.New("invalid dates: start must be before end")
	// ErrInvalidPrice is returned when a reservation price is not positive.
	ErrInvalidPrice = errors.New("invalid price: total price must be positive")
	// ErrBookingOverlap is returned when the requested interval intersects
	// an active reservation on the same resource.
	ErrBookingOverlap = errors.New("booking overlaps an existing reservation")
	// ErrUnauthorized is returned when the acting principal does not hold
	// the role the operation requires.
	ErrUnauthorized = errors.New("unauthorized")
	// ErrInvalidStatusTransition is returned for status changes that are
	// not an edge of the reservation state machine.
	ErrInvalidStatusTransition = errors.New("invalid status transition")
	// ErrEscrowAlreadySet is returned when a reservation already carries a
	// different escrow reference.
	ErrEscrowAlreadySet = errors.New("escrow reference already set")

	// ErrListingExists is returned when a listing id is already registered.
	ErrListingExists = errors.New("listing already exists")

	// ErrInvalidRating is returned for ratings outside 1..5.
	ErrInvalidRating = errors.New("invalid rating: must be between 1 and 5")
	// ErrDuplicateReview is returned when the reviewer already reviewed the
	// booking.
	ErrDuplicateReview = errors.New("duplicate review")
	// ErrUnauthorizedReviewer is returned when the reviewer is not a party
	// to a completed booking.
	ErrUnauthorizedReviewer = errors.New("reviewer is not allowed to review this booking")
	// ErrInvalidInput is returned for empty identifiers, oversize comments
	// and unknown enum values.
	ErrInvalidInput = errors.New("invalid input")
)

// kinds maps each sentinel to the stable code used in API and CLI output.
var kinds = []struct {
	err  error
	kind string
}{
	{ErrNotFound, "NotFound"},
	{ErrInvalidDates, "InvalidDates"},
	{ErrInvalidPrice, "InvalidPrice"},
	{ErrBookingOverlap, "BookingOverlap"},
	{ErrUnauthorized, "Unauthorized"},
	{ErrInvalidStatusTransition, "InvalidStatusTransition"},
	{ErrEscrowAlreadySet, "EscrowAlreadySet"},
	{ErrListingExists, "ListingExists"},
	{ErrInvalidRating, "InvalidRating"},
	{ErrDuplicateReview, "DuplicateReview"},
	{ErrUnauthorizedReviewer, "UnauthorizedReviewer"},
	{ErrInvalidInput, "InvalidInput"},
}

// ErrorKind returns the stable kind name of a domain error, or "Internal"
// for anything else.
func ErrorKind(err error) string {
	for _, k := range kinds {
		if errors.Is(err, k.err) {
			return k.kind
		}
	}
	return "Internal"
}
