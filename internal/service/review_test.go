package service

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// completed books villa for alice from olga and walks it to COMPLETED.
func (f *fixture) completed(t *testing.T) uint64 {
	t.Helper()
	f.listing(t, "villa", "olga")
	id := f.book(t, "villa", "alice", jan1, jan2)
	for _, next := range []model.Status{model.StatusConfirmed, model.StatusCompleted} {
		_, err := f.bookings.UpdateStatus(as("olga"), id, next, "olga")
		require.NoError(t, err)
	}
	return id
}

func TestSubmitReviewBothDirections(t *testing.T) {
	f := newFixture(t)
	id := f.completed(t)

	rv, err := f.reviews.Submit(as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "olga", Rating: 5, Comment: "lovely"})
	require.NoError(t, err)
	assert.NotEmpty(t, rv.ID)
	assert.Equal(t, f.clock.Now(), rv.CreatedAt)

	_, err = f.reviews.Submit(as("olga"), SubmitReviewInput{BookingID: id, Reviewer: "olga", Target: "alice", Rating: 4})
	require.NoError(t, err)

	_, err = f.reviews.Submit(as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "olga", Rating: 1})
	assert.ErrorIs(t, err, model.ErrDuplicateReview)

	list, err := f.reviews.ReviewsFor(context.Background(), "olga")
	require.NoError(t, err)
	require.Len(t, list, 1)
	assert.Equal(t, "lovely", list[0].Comment)
	assert.Equal(t, 5, list[0].Rating)
}

func TestSubmitReviewRules(t *testing.T) {
	f := newFixture(t)
	id := f.completed(t)
	pendingID := f.book(t, "villa", "bob", jan2, jan3)

	tests := []struct {
		name string
		ctx  context.Context
		in   SubmitReviewInput
		want error
	}{
		{"rating too low", as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "olga", Rating: 0}, model.ErrInvalidRating},
		{"rating too high", as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "olga", Rating: 6}, model.ErrInvalidRating},
		{"comment too long", as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "olga", Rating: 3, Comment: strings.Repeat("a", model.MaxCommentLength+1)}, model.ErrInvalidInput},
		{"self review", as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "alice", Rating: 3}, model.ErrInvalidInput},
		{"not attested", as("mallory"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "olga", Rating: 3}, model.ErrUnauthorized},
		{"unknown booking", as("alice"), SubmitReviewInput{BookingID: 99, Reviewer: "alice", Target: "olga", Rating: 3}, model.ErrNotFound},
		{"not completed", as("bob"), SubmitReviewInput{BookingID: pendingID, Reviewer: "bob", Target: "olga", Rating: 3}, model.ErrUnauthorizedReviewer},
		{"stranger", as("carol"), SubmitReviewInput{BookingID: id, Reviewer: "carol", Target: "olga", Rating: 3}, model.ErrUnauthorizedReviewer},
		{"wrong target", as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "carol", Rating: 3}, model.ErrUnauthorizedReviewer},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := f.reviews.Submit(tt.ctx, tt.in)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestCommentLimitCountsCharacters(t *testing.T) {
	f := newFixture(t)
	id := f.completed(t)

	// Multi-byte characters count once each.
	comment := strings.Repeat("é", model.MaxCommentLength)
	_, err := f.reviews.Submit(as("alice"), SubmitReviewInput{BookingID: id, Reviewer: "alice", Target: "olga", Rating: 4, Comment: comment})
	assert.NoError(t, err)
}

func TestReputation(t *testing.T) {
	f := newFixture(t)
	f.listing(t, "villa", "olga")
	ctx := context.Background()

	rep, err := f.reviews.Reputation(ctx, "olga")
	require.NoError(t, err)
	assert.Zero(t, rep)

	ratings := map[string]int{"alice": 5, "bob": 4, "carol": 4}
	start := jan1
	for _, guest := range []string{"alice", "bob", "carol"} {
		id := f.book(t, "villa", guest, start, start+3600)
		start += 3600
		for _, next := range []model.Status{model.StatusConfirmed, model.StatusCompleted} {
			_, err := f.bookings.UpdateStatus(as("olga"), id, next, "olga")
			require.NoError(t, err)
		}
		_, err := f.reviews.Submit(as(guest), SubmitReviewInput{BookingID: id, Reviewer: guest, Target: "olga", Rating: ratings[guest]})
		require.NoError(t, err)
	}

	rep, err = f.reviews.Reputation(ctx, "olga")
	require.NoError(t, err)
	assert.Equal(t, uint32(433), rep, "13/3 stars truncated")
}
