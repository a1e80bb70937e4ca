package service

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/queue"
	"github.com/iliyamo/booking-ledger/internal/repository"
)

// BookingService is the booking engine.  It validates input, keeps active
// reservations of a resource disjoint, assigns ids, drives the status state
// machine and answers queries.  Each mutating call is all-or-nothing: it
// either commits every write or none.
type BookingService struct {
	store     ReservationStore
	operators OperatorResolver
	authz     Authorizer
	events    EventPublisher
	clock     Clock
}

// NewBookingService wires the engine.  events may be nil to disable event
// publishing and clock may be nil to use the system clock.
func NewBookingService(store ReservationStore, operators OperatorResolver, authz Authorizer, events EventPublisher, clock Clock) *BookingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &BookingService{store: store, operators: operators, authz: authz, events: events, clock: clock}
}

// CreateBookingInput carries the arguments of Create.
type CreateBookingInput struct {
	ResourceID  string
	RequesterID string
	Start       uint64
	End         uint64
	TotalPrice  model.Amount
}

// Create stores a new PENDING reservation and returns its id.  Checks run
// in a fixed order and the first failure wins: ErrInvalidDates,
// ErrInvalidPrice, ErrInvalidInput (empty ids), ErrUnauthorized (the
// requester is not the caller), ErrBookingOverlap.  A failed call does not
// consume an id.
func (s *BookingService) Create(ctx context.Context, in CreateBookingInput) (uint64, error) {
	iv := model.Interval{Start: in.Start, End: in.End}
	if !iv.Valid() {
		return 0, fmt.Errorf("create booking [%d, %d): %w", in.Start, in.End, model.ErrInvalidDates)
	}
	if in.TotalPrice.Sign() <= 0 {
		return 0, fmt.Errorf("create booking with price %s: %w", in.TotalPrice, model.ErrInvalidPrice)
	}
	if in.ResourceID == "" || in.RequesterID == "" {
		return 0, fmt.Errorf("create booking: resource and requester are required: %w", model.ErrInvalidInput)
	}
	if err := s.authz.Authorize(ctx, in.RequesterID); err != nil {
		return 0, fmt.Errorf("create booking: %w", err)
	}

	now := s.clock.Now()
	res := &model.Reservation{
		ResourceID:  in.ResourceID,
		RequesterID: in.RequesterID,
		Interval:    iv,
		TotalPrice:  in.TotalPrice,
		Status:      model.StatusPending,
		CreatedAt:   now,
		UpdatedAt:   now,
	}
	err := s.store.Atomic(ctx, in.ResourceID, func(tx repository.ReservationTx) error {
		active, err := tx.ListActiveByResource(ctx, in.ResourceID)
		if err != nil {
			return err
		}
		if c := firstConflict(active, iv); c != nil {
			return fmt.Errorf("create booking [%d, %d) on %q conflicts with reservation %d: %w",
				in.Start, in.End, in.ResourceID, c.ID, model.ErrBookingOverlap)
		}
		return tx.Create(ctx, res)
	})
	if err != nil {
		return 0, err
	}

	slog.Info("booking created", "id", res.ID, "resource", res.ResourceID, "requester", res.RequesterID,
		"start", res.Interval.Start, "end", res.Interval.End)
	s.publish(ctx, queue.EventBookingCreated, res)
	return res.ID, nil
}

// CheckAvailability reports whether [start, end) is free of PENDING and
// CONFIRMED reservations on the resource.  It has no side effects.
func (s *BookingService) CheckAvailability(ctx context.Context, resourceID string, start, end uint64) (bool, error) {
	active, err := s.store.ListActiveByResource(ctx, resourceID)
	if err != nil {
		return false, fmt.Errorf("check availability of %q: %w", resourceID, err)
	}
	return firstConflict(active, model.Interval{Start: start, End: end}) == nil, nil
}

// Get returns a reservation or an error wrapping model.ErrNotFound.
func (s *BookingService) Get(ctx context.Context, id uint64) (*model.Reservation, error) {
	res, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get booking: %w", err)
	}
	return res, nil
}

// ListByResource returns every reservation of a resource, any status, in
// creation order.
func (s *BookingService) ListByResource(ctx context.Context, resourceID string) ([]model.Reservation, error) {
	out, err := s.store.ListByResource(ctx, resourceID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of %q: %w", resourceID, err)
	}
	return out, nil
}

// ListByRequester returns every reservation of a requester in creation
// order.
func (s *BookingService) ListByRequester(ctx context.Context, requesterID string) ([]model.Reservation, error) {
	out, err := s.store.ListByRequester(ctx, requesterID)
	if err != nil {
		return nil, fmt.Errorf("list bookings of requester %q: %w", requesterID, err)
	}
	return out, nil
}

// UpdateStatus moves a reservation along the state machine on behalf of the
// resource operator.  Failures, in order: ErrNotFound, ErrUnauthorized
// (actor is not attested, is the requester, or does not operate the
// resource), ErrInvalidStatusTransition.
func (s *BookingService) UpdateStatus(ctx context.Context, id uint64, next model.Status, actor string) (*model.Reservation, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update status: %w", err)
	}
	if err := s.authorizeOperator(ctx, current, actor); err != nil {
		return nil, fmt.Errorf("update status of booking %d: %w", id, err)
	}

	var updated *model.Reservation
	err = s.store.Atomic(ctx, current.ResourceID, func(tx repository.ReservationTx) error {
		res, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !res.Status.CanTransitionTo(next) {
			return fmt.Errorf("booking %d: %s -> %s: %w", id, res.Status, next, model.ErrInvalidStatusTransition)
		}
		res.Status = next
		res.UpdatedAt = s.clock.Now()
		if err := tx.Update(ctx, res); err != nil {
			return err
		}
		updated = res
		return nil
	})
	if err != nil {
		return nil, err
	}

	slog.Info("booking status changed", "id", id, "status", next, "actor", actor)
	s.publish(ctx, queue.EventBookingStatusChanged, updated)
	return updated, nil
}

// Cancel cancels a PENDING or CONFIRMED reservation on behalf of its
// requester and frees its interval.  Failures, in order: ErrNotFound,
// ErrUnauthorized, ErrInvalidStatusTransition.
func (s *BookingService) Cancel(ctx context.Context, id uint64, requester string) (bool, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("cancel booking: %w", err)
	}
	if err := s.authz.Authorize(ctx, requester); err != nil {
		return false, fmt.Errorf("cancel booking %d: %w", id, err)
	}
	if requester != current.RequesterID {
		return false, fmt.Errorf("cancel booking %d: only the requester may cancel: %w", id, model.ErrUnauthorized)
	}

	var cancelled *model.Reservation
	err = s.store.Atomic(ctx, current.ResourceID, func(tx repository.ReservationTx) error {
		res, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if !res.Status.CanTransitionTo(model.StatusCancelled) {
			return fmt.Errorf("cancel booking %d in status %s: %w", id, res.Status, model.ErrInvalidStatusTransition)
		}
		res.Status = model.StatusCancelled
		res.UpdatedAt = s.clock.Now()
		if err := tx.Update(ctx, res); err != nil {
			return err
		}
		cancelled = res
		return nil
	})
	if err != nil {
		return false, err
	}

	slog.Info("booking cancelled", "id", id, "requester", requester)
	s.publish(ctx, queue.EventBookingCancelled, cancelled)
	return true, nil
}

// SetEscrow attaches an external escrow reference to a reservation.  The
// reference is write-once: repeating the call with the same values
// succeeds without a write, a different value fails with
// ErrEscrowAlreadySet.
func (s *BookingService) SetEscrow(ctx context.Context, id uint64, escrowRef, contractRef string) (bool, error) {
	current, err := s.store.GetByID(ctx, id)
	if err != nil {
		return false, fmt.Errorf("set escrow: %w", err)
	}
	if escrowRef == "" {
		return false, fmt.Errorf("set escrow on booking %d: empty reference: %w", id, model.ErrInvalidInput)
	}

	var changed *model.Reservation
	err = s.store.Atomic(ctx, current.ResourceID, func(tx repository.ReservationTx) error {
		res, err := tx.GetByID(ctx, id)
		if err != nil {
			return err
		}
		if res.EscrowRef != nil {
			if *res.EscrowRef == escrowRef && deref(res.EscrowContractRef) == contractRef {
				return nil
			}
			return fmt.Errorf("booking %d already references escrow %q: %w", id, *res.EscrowRef, model.ErrEscrowAlreadySet)
		}
		res.EscrowRef = &escrowRef
		if contractRef != "" {
			res.EscrowContractRef = &contractRef
		}
		res.UpdatedAt = s.clock.Now()
		if err := tx.Update(ctx, res); err != nil {
			return err
		}
		changed = res
		return nil
	})
	if err != nil {
		return false, err
	}

	if changed != nil {
		slog.Info("booking escrow set", "id", id, "escrow_ref", escrowRef)
		s.publish(ctx, queue.EventBookingEscrowSet, changed)
	}
	return true, nil
}

func (s *BookingService) authorizeOperator(ctx context.Context, res *model.Reservation, actor string) error {
	if err := s.authz.Authorize(ctx, actor); err != nil {
		return err
	}
	if actor == res.RequesterID {
		return fmt.Errorf("requester cannot change the status of their own booking: %w", model.ErrUnauthorized)
	}
	operator, err := s.operators.OperatorOf(ctx, res.ResourceID)
	if errors.Is(err, model.ErrNotFound) {
		return fmt.Errorf("resource %q has no operator: %w", res.ResourceID, model.ErrUnauthorized)
	}
	if err != nil {
		return err
	}
	if operator != actor {
		return fmt.Errorf("%q does not operate resource %q: %w", actor, res.ResourceID, model.ErrUnauthorized)
	}
	return nil
}

// publish emits a booking event.  Delivery problems are logged and never
// undo the committed operation.
func (s *BookingService) publish(ctx context.Context, typ queue.EventType, res *model.Reservation) {
	if s.events == nil || res == nil {
		return
	}
	ev := queue.NewBookingEvent(typ, *res, s.clock.Now())
	if err := s.events.Publish(ctx, ev); err != nil {
		slog.Warn("publish booking event failed", "type", typ, "booking", res.ID, "error", err)
	}
}

// firstConflict returns an active reservation whose interval overlaps iv,
// or nil.  Scan order carries no meaning.
func firstConflict(active []model.Reservation, iv model.Interval) *model.Reservation {
	for i := range active {
		if active[i].IsActive() && active[i].Interval.Overlaps(iv) {
			return &active[i]
		}
	}
	return nil
}

func deref(s *string) string {
	if s == nil {
		return ""
	}
	return *s
}
