package service

import (
	"context"

	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/queue"
	"github.com/iliyamo/booking-ledger/internal/repository"
)

// ReservationStore is the durable reservation collection the booking
// engine mutates.  Every write happens inside Atomic, which serializes
// callers on the same resource and rolls back on error.
type ReservationStore interface {
	Atomic(ctx context.Context, resourceID string, fn func(tx repository.ReservationTx) error) error
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	ListByResource(ctx context.Context, resourceID string) ([]model.Reservation, error)
	ListByRequester(ctx context.Context, requesterID string) ([]model.Reservation, error)
	ListActiveByResource(ctx context.Context, resourceID string) ([]model.Reservation, error)
}

// ListingStore persists the listing registry.
type ListingStore interface {
	Create(ctx context.Context, l *model.Listing) error
	GetByID(ctx context.Context, id string) (*model.Listing, error)
	List(ctx context.Context) ([]model.Listing, error)
	UpdateByIDAndOwner(ctx context.Context, l *model.Listing) error
}

// ReviewStore persists the review ledger.
type ReviewStore interface {
	Create(ctx context.Context, rv *model.Review) error
	Exists(ctx context.Context, bookingID uint64, reviewer string) (bool, error)
	ListByTarget(ctx context.Context, target string) ([]model.Review, error)
	RatingTotals(ctx context.Context, target string) (count, sum int64, err error)
}

// OperatorResolver names the principal allowed to confirm and complete
// reservations on a resource.  It returns model.ErrNotFound when the
// resource has no operator.
type OperatorResolver interface {
	OperatorOf(ctx context.Context, resourceID string) (string, error)
}

// BookingReader is the read surface other components use to inspect a
// reservation.
type BookingReader interface {
	Get(ctx context.Context, id uint64) (*model.Reservation, error)
}

// EventPublisher delivers booking events after a successful commit.
type EventPublisher interface {
	Publish(ctx context.Context, ev queue.BookingEvent) error
}
