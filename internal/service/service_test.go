package service

import (
	"context"
	"errors"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/database"
	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/queue"
	"github.com/iliyamo/booking-ledger/internal/repository"
)

const (
	jan1 = uint64(1704067200)
	jan2 = uint64(1704153600)
	jan3 = uint64(1704240000)
	jan4 = uint64(1704326400)
)

var price = model.NewAmount(1000000000)

// recordingPublisher collects published events and can be told to fail.
type recordingPublisher struct {
	mu     sync.Mutex
	events []queue.BookingEvent
	err    error
}

func (p *recordingPublisher) Publish(_ context.Context, ev queue.BookingEvent) error {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.events = append(p.events, ev)
	return p.err
}

func (p *recordingPublisher) types() []queue.EventType {
	p.mu.Lock()
	defer p.mu.Unlock()
	out := make([]queue.EventType, len(p.events))
	for i, ev := range p.events {
		out[i] = ev.Type
	}
	return out
}

type fixture struct {
	bookings  *BookingService
	listings  *ListingService
	reviews   *ReviewService
	publisher *recordingPublisher
	clock     *ManualClock
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	ctx := context.Background()
	db, err := database.OpenSQLite(ctx, filepath.Join(t.TempDir(), "ledger.db"))
	require.NoError(t, err)
	t.Cleanup(func() { db.Close() })
	require.NoError(t, database.Migrate(ctx, db))

	clock := NewManualClock(time.Date(2023, 12, 1, 9, 0, 0, 0, time.UTC))
	pub := &recordingPublisher{}
	authz := ContextAuthorizer{}
	listings := NewListingService(repository.NewListingRepo(db), authz, clock)
	bookings := NewBookingService(repository.NewReservationRepo(db), listings, authz, pub, clock)
	reviews := NewReviewService(repository.NewReviewRepo(db), bookings, listings, authz, clock)
	return &fixture{bookings: bookings, listings: listings, reviews: reviews, publisher: pub, clock: clock}
}

// as returns a context attested for principal.
func as(principal string) context.Context {
	return WithPrincipal(context.Background(), principal)
}

func (f *fixture) listing(t *testing.T, id, owner string) {
	t.Helper()
	_, err := f.listings.CreateListing(as(owner), id, "hash-"+id, owner)
	require.NoError(t, err)
}

func (f *fixture) book(t *testing.T, resource, requester string, start, end uint64) uint64 {
	t.Helper()
	id, err := f.bookings.Create(as(requester), CreateBookingInput{
		ResourceID: resource, RequesterID: requester, Start: start, End: end, TotalPrice: price,
	})
	require.NoError(t, err)
	return id
}

func (f *fixture) tryBook(requester, resource string, start, end uint64) (uint64, error) {
	return f.bookings.Create(as(requester), CreateBookingInput{
		ResourceID: resource, RequesterID: requester, Start: start, End: end, TotalPrice: price,
	})
}

// errorsIsAny reports whether err matches one of targets.
func errorsIsAny(err error, targets ...error) bool {
	for _, t := range targets {
		if errors.Is(err, t) {
			return true
		}
	}
	return false
}
