package service

import (
	"context"
	"errors"
	"fmt"
	"unicode/utf8"

	"github.com/google/uuid"
	"golang.org/x/text/unicode/norm"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// ReviewService is the append-only review and reputation ledger.  Reviews
// are accepted only for COMPLETED reservations and only between their two
// parties: the requester and the resource operator.
type ReviewService struct {
	store     ReviewStore
	bookings  BookingReader
	operators OperatorResolver
	authz     Authorizer
	clock     Clock
}

// NewReviewService wires the review ledger.  clock may be nil.
func NewReviewService(store ReviewStore, bookings BookingReader, operators OperatorResolver, authz Authorizer, clock Clock) *ReviewService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ReviewService{store: store, bookings: bookings, operators: operators, authz: authz, clock: clock}
}

// SubmitReviewInput carries the arguments of Submit.
type SubmitReviewInput struct {
	BookingID uint64
	Reviewer  string
	Target    string
	Rating    int
	Comment   string
}

// Submit records a review.  Checks run in order: ErrInvalidRating,
// ErrInvalidInput (comment longer than model.MaxCommentLength characters,
// empty or identical parties), ErrUnauthorized (reviewer not attested),
// ErrNotFound (booking), ErrUnauthorizedReviewer (booking not completed or
// parties do not match it), ErrDuplicateReview.
func (s *ReviewService) Submit(ctx context.Context, in SubmitReviewInput) (*model.Review, error) {
	if in.Rating < 1 || in.Rating > 5 {
		return nil, fmt.Errorf("submit review with rating %d: %w", in.Rating, model.ErrInvalidRating)
	}
	comment := norm.NFC.String(in.Comment)
	if n := utf8.RuneCountInString(comment); n > model.MaxCommentLength {
		return nil, fmt.Errorf("submit review: comment has %d characters, limit is %d: %w", n, model.MaxCommentLength, model.ErrInvalidInput)
	}
	if in.Reviewer == "" || in.Target == "" || in.Reviewer == in.Target {
		return nil, fmt.Errorf("submit review: reviewer and target must be distinct and non-empty: %w", model.ErrInvalidInput)
	}
	if err := s.authz.Authorize(ctx, in.Reviewer); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}

	booking, err := s.bookings.Get(ctx, in.BookingID)
	if err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}
	if booking.Status != model.StatusCompleted {
		return nil, fmt.Errorf("submit review: booking %d is %s: %w", booking.ID, booking.Status, model.ErrUnauthorizedReviewer)
	}
	operator, err := s.operators.OperatorOf(ctx, booking.ResourceID)
	if err != nil && !errors.Is(err, model.ErrNotFound) {
		return nil, fmt.Errorf("submit review: %w", err)
	}
	if !isCounterparty(booking.RequesterID, operator, in.Reviewer, in.Target) {
		return nil, fmt.Errorf("submit review: %q cannot review %q for booking %d: %w",
			in.Reviewer, in.Target, booking.ID, model.ErrUnauthorizedReviewer)
	}

	exists, err := s.store.Exists(ctx, in.BookingID, in.Reviewer)
	if err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}
	if exists {
		return nil, fmt.Errorf("submit review: booking %d by %q: %w", in.BookingID, in.Reviewer, model.ErrDuplicateReview)
	}

	id, err := uuid.NewV7()
	if err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}
	rv := &model.Review{
		ID:        id.String(),
		BookingID: in.BookingID,
		Reviewer:  in.Reviewer,
		Target:    in.Target,
		Rating:    in.Rating,
		Comment:   comment,
		CreatedAt: s.clock.Now(),
	}
	if err := s.store.Create(ctx, rv); err != nil {
		return nil, fmt.Errorf("submit review: %w", err)
	}
	return rv, nil
}

// ReviewsFor returns the reviews left for target in submission order.
func (s *ReviewService) ReviewsFor(ctx context.Context, target string) ([]model.Review, error) {
	out, err := s.store.ListByTarget(ctx, target)
	if err != nil {
		return nil, fmt.Errorf("list reviews for %q: %w", target, err)
	}
	return out, nil
}

// Reputation returns the average rating of target multiplied by 100 and
// truncated, so 4.5 stars is 450.  A principal without reviews has 0.
func (s *ReviewService) Reputation(ctx context.Context, target string) (uint32, error) {
	n, sum, err := s.store.RatingTotals(ctx, target)
	if err != nil {
		return 0, fmt.Errorf("reputation of %q: %w", target, err)
	}
	if n == 0 {
		return 0, nil
	}
	return uint32(sum * 100 / n), nil
}

// isCounterparty reports whether reviewer and target are the two distinct
// parties of a booking.
func isCounterparty(requester, operator, reviewer, target string) bool {
	if operator == "" {
		return false
	}
	return (reviewer == requester && target == operator) ||
		(reviewer == operator && target == requester)
}
