package model

import (
	"fmt"
	"strings"
	"time"
)

// Status is the lifecycle state of a reservation.  PENDING is the only
// initial state; CANCELLED and COMPLETED are terminal.
type Status string

const (
	StatusPending   Status = "PENDING"
	StatusConfirmed Status = "CONFIRMED"
	StatusCancelled Status = "CANCELLED"
	StatusCompleted Status = "COMPLETED"
)

// ActiveStatuses lists the states whose intervals block new bookings on
// the same resource.
var ActiveStatuses = []Status{StatusPending, StatusConfirmed}

// transitions holds every legal edge of the reservation state machine.
// Anything not listed here, including a move to the same state, is
// rejected.
var transitions = map[Status][]Status{
	StatusPending:   {StatusConfirmed, StatusCancelled},
	StatusConfirmed: {StatusCompleted, StatusCancelled},
}

// CanTransitionTo reports whether a reservation in state s may move to next.
func (s Status) CanTransitionTo(next Status) bool {
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// IsActive reports whether the status takes part in overlap detection.
func (s Status) IsActive() bool {
	return s == StatusPending || s == StatusConfirmed
}

// IsTerminal reports whether no transition leaves s.
func (s Status) IsTerminal() bool {
	return s == StatusCancelled || s == StatusCompleted
}

// Valid reports whether s is one of the four known states.
func (s Status) Valid() bool {
	switch s {
	case StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted:
		return true
	}
	return false
}

// ParseStatus converts user input such as "confirmed" or "CONFIRMED" into
// a Status.  Unknown values are reported as an error.
func ParseStatus(s string) (Status, error) {
	st := Status(strings.ToUpper(strings.TrimSpace(s)))
	if !st.Valid() {
		return "", fmt.Errorf("unknown reservation status %q: %w", s, ErrInvalidInput)
	}
	return st, nil
}

// Interval is a half-open range [Start, End) of epoch seconds.
type Interval struct {
	Start uint64 `json:"start"`
	End   uint64 `json:"end"`
}

// Valid reports whether Start is strictly before End.
func (iv Interval) Valid() bool {
	return iv.Start < iv.End
}

// Overlaps reports whether two half-open intervals share at least one
// second.  Touching intervals (one ends where the other starts) do not
// overlap.
func (iv Interval) Overlaps(other Interval) bool {
	return iv.Start < other.End && other.Start < iv.End
}

// Reservation records one requester's claim on one resource for one
// half-open interval.  Reservations are never deleted; cancellation and
// completion are recorded through Status.
//
// Fields:
//
//	ID                – dense identifier assigned at creation, starting at 0.
//	ResourceID        – opaque key of the booked resource (a listing id).
//	RequesterID       – principal holding the reservation.
//	Interval          – booked range in epoch seconds.
//	TotalPrice        – strictly positive amount in the smallest currency unit.
//	Status            – lifecycle state.
//	EscrowRef         – external escrow record, set at most once.
//	EscrowContractRef – contract that owns EscrowRef.
//	CreatedAt         – ledger time of creation.
//	UpdatedAt         – ledger time of the last mutation.
type Reservation struct {
	ID                uint64    `json:"id"`
	ResourceID        string    `json:"resource_id"`
	RequesterID       string    `json:"requester_id"`
	Interval          Interval  `json:"interval"`
	TotalPrice        Amount    `json:"total_price"`
	Status            Status    `json:"status"`
	EscrowRef         *string   `json:"escrow_ref,omitempty"`
	EscrowContractRef *string   `json:"escrow_contract_ref,omitempty"`
	CreatedAt         time.Time `json:"created_at"`
	UpdatedAt         time.Time `json:"updated_at"`
}

// IsActive reports whether the reservation currently blocks its interval.
func (r *Reservation) IsActive() bool {
	return r.Status.IsActive()
}
