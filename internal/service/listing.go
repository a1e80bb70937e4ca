package service

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// ListingService is the listing registry.  It also resolves the operator
// of a resource for the booking engine: the operator is the owner of the
// listing whose id equals the resource id.
type ListingService struct {
	store ListingStore
	authz Authorizer
	clock Clock
}

// NewListingService wires the registry.  clock may be nil.
func NewListingService(store ListingStore, authz Authorizer, clock Clock) *ListingService {
	if clock == nil {
		clock = SystemClock{}
	}
	return &ListingService{store: store, authz: authz, clock: clock}
}

// CreateListing registers a new AVAILABLE listing owned by owner.
func (s *ListingService) CreateListing(ctx context.Context, id, dataHash, owner string) (*model.Listing, error) {
	if id == "" || owner == "" {
		return nil, fmt.Errorf("create listing: id and owner are required: %w", model.ErrInvalidInput)
	}
	if err := s.authz.Authorize(ctx, owner); err != nil {
		return nil, fmt.Errorf("create listing %q: %w", id, err)
	}
	now := s.clock.Now()
	l := &model.Listing{
		ID:        id,
		DataHash:  dataHash,
		Owner:     owner,
		Status:    model.ListingAvailable,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.store.Create(ctx, l); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	slog.Info("listing created", "id", id, "owner", owner)
	return l, nil
}

// UpdateListing replaces the data hash of a listing.  Only the owner may
// do so.
func (s *ListingService) UpdateListing(ctx context.Context, id, dataHash, owner string) (*model.Listing, error) {
	return s.mutate(ctx, id, owner, func(l *model.Listing) { l.DataHash = dataHash })
}

// UpdateListingStatus changes the availability marker of a listing.  Only
// the owner may do so.
func (s *ListingService) UpdateListingStatus(ctx context.Context, id, owner string, status model.ListingStatus) (*model.Listing, error) {
	if _, err := model.ParseListingStatus(string(status)); err != nil {
		return nil, fmt.Errorf("update listing %q: %w", id, err)
	}
	return s.mutate(ctx, id, owner, func(l *model.Listing) { l.Status = status })
}

// mutate applies change to the listing after checking, in order, that the
// caller is attested as owner, that the listing exists and that owner
// owns it.
func (s *ListingService) mutate(ctx context.Context, id, owner string, change func(*model.Listing)) (*model.Listing, error) {
	if err := s.authz.Authorize(ctx, owner); err != nil {
		return nil, fmt.Errorf("update listing %q: %w", id, err)
	}
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	if l.Owner != owner {
		return nil, fmt.Errorf("update listing %q: only the owner can update it: %w", id, model.ErrUnauthorized)
	}
	change(l)
	l.UpdatedAt = s.clock.Now()
	if err := s.store.UpdateByIDAndOwner(ctx, l); err != nil {
		return nil, fmt.Errorf("update listing: %w", err)
	}
	return l, nil
}

// GetListing returns a listing or an error wrapping model.ErrNotFound.
func (s *ListingService) GetListing(ctx context.Context, id string) (*model.Listing, error) {
	l, err := s.store.GetByID(ctx, id)
	if err != nil {
		return nil, fmt.Errorf("get listing: %w", err)
	}
	return l, nil
}

// ListListings returns every listing ordered by id.
func (s *ListingService) ListListings(ctx context.Context) ([]model.Listing, error) {
	out, err := s.store.List(ctx)
	if err != nil {
		return nil, fmt.Errorf("list listings: %w", err)
	}
	return out, nil
}

// OperatorOf returns the owner of the listing registered for resourceID.
func (s *ListingService) OperatorOf(ctx context.Context, resourceID string) (string, error) {
	l, err := s.store.GetByID(ctx, resourceID)
	if err != nil {
		return "", err
	}
	return l.Owner, nil
}
