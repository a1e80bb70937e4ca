package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/model"
)

func TestCreateListing(t *testing.T) {
	f := newFixture(t)

	l, err := f.listings.CreateListing(as("olga"), "villa", "bafy-1", "olga")
	require.NoError(t, err)
	assert.Equal(t, model.ListingAvailable, l.Status)

	_, err = f.listings.CreateListing(as("olga"), "villa", "bafy-2", "olga")
	assert.ErrorIs(t, err, model.ErrListingExists)

	_, err = f.listings.CreateListing(as("mallory"), "cabin", "bafy-3", "olga")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = f.listings.CreateListing(as("olga"), "", "bafy-4", "olga")
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	got, err := f.listings.GetListing(context.Background(), "villa")
	require.NoError(t, err)
	assert.Equal(t, "bafy-1", got.DataHash)
	assert.Equal(t, "olga", got.Owner)
}

func TestUpdateListingOwnership(t *testing.T) {
	f := newFixture(t)
	f.listing(t, "villa", "olga")

	_, err := f.listings.UpdateListing(as("mallory"), "villa", "forged", "mallory")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = f.listings.UpdateListing(as("mallory"), "villa", "forged", "olga")
	assert.ErrorIs(t, err, model.ErrUnauthorized)

	_, err = f.listings.UpdateListing(as("olga"), "nowhere", "h", "olga")
	assert.ErrorIs(t, err, model.ErrNotFound)

	l, err := f.listings.UpdateListing(as("olga"), "villa", "bafy-2", "olga")
	require.NoError(t, err)
	assert.Equal(t, "bafy-2", l.DataHash)

	l, err = f.listings.UpdateListingStatus(as("olga"), "villa", "olga", model.ListingMaintenance)
	require.NoError(t, err)
	assert.Equal(t, model.ListingMaintenance, l.Status)

	_, err = f.listings.UpdateListingStatus(as("olga"), "villa", "olga", model.ListingStatus("HAUNTED"))
	assert.ErrorIs(t, err, model.ErrInvalidInput)

	got, err := f.listings.GetListing(context.Background(), "villa")
	require.NoError(t, err)
	assert.Equal(t, "bafy-2", got.DataHash)
	assert.Equal(t, model.ListingMaintenance, got.Status)
}

func TestListListingsAndOperator(t *testing.T) {
	f := newFixture(t)
	f.listing(t, "villa", "olga")
	f.listing(t, "cabin", "oscar")
	ctx := context.Background()

	all, err := f.listings.ListListings(ctx)
	require.NoError(t, err)
	require.Len(t, all, 2)
	assert.Equal(t, "cabin", all[0].ID)

	op, err := f.listings.OperatorOf(ctx, "villa")
	require.NoError(t, err)
	assert.Equal(t, "olga", op)

	_, err = f.listings.OperatorOf(ctx, "loft")
	assert.ErrorIs(t, err, model.ErrNotFound)
}
