// Package queue defines booking events and moves them over RabbitMQ.
package queue

import (
	"time"

	"github.com/google/uuid"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// EventType names what happened to a reservation.
type EventType string

const (
	EventBookingCreated       EventType = "booking.created"
	EventBookingStatusChanged EventType = "booking.status_changed"
	EventBookingCancelled     EventType = "booking.cancelled"
	EventBookingEscrowSet     EventType = "booking.escrow_set"
)

// BookingEvent is published after a reservation mutation commits.  It
// carries a snapshot of the reservation so consumers can log, notify or
// feed analytics without querying the ledger.
type BookingEvent struct {
	ID            string       `json:"id"`
	Type          EventType    `json:"type"`
	ReservationID uint64       `json:"reservation_id"`
	ResourceID    string       `json:"resource_id"`
	RequesterID   string       `json:"requester_id"`
	Status        model.Status `json:"status"`
	Start         uint64       `json:"start"`
	End           uint64       `json:"end"`
	TotalPrice    model.Amount `json:"total_price"`
	EscrowRef     string       `json:"escrow_ref,omitempty"`
	OccurredAt    time.Time    `json:"occurred_at"`
}

// NewBookingEvent snapshots res into an event of the given type.
func NewBookingEvent(typ EventType, res model.Reservation, at time.Time) BookingEvent {
	ev := BookingEvent{
		ID:            uuid.NewString(),
		Type:          typ,
		ReservationID: res.ID,
		ResourceID:    res.ResourceID,
		RequesterID:   res.RequesterID,
		Status:        res.Status,
		Start:         res.Interval.Start,
		End:           res.Interval.End,
		TotalPrice:    res.TotalPrice,
		OccurredAt:    at.UTC(),
	}
	if res.EscrowRef != nil {
		ev.EscrowRef = *res.EscrowRef
	}
	return ev
}
