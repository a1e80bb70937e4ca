package model

import (
	"fmt"
	"strings"
	"time"
)

// ListingStatus describes whether a listed resource is open for bookings.
type ListingStatus string

const (
	ListingAvailable   ListingStatus = "AVAILABLE"
	ListingBooked      ListingStatus = "BOOKED"
	ListingMaintenance ListingStatus = "MAINTENANCE"
	ListingInactive    ListingStatus = "INACTIVE"
)

// ParseListingStatus converts user input into a ListingStatus.
func ParseListingStatus(s string) (ListingStatus, error) {
	st := ListingStatus(strings.ToUpper(strings.TrimSpace(s)))
	switch st {
	case ListingAvailable, ListingBooked, ListingMaintenance, ListingInactive:
		return st, nil
	}
	return "", fmt.Errorf("%w: unknown listing status %q", ErrInvalidInput, s)
}

// Listing registers a bookable resource and its owner.  The owner is the
// operator allowed to confirm and complete reservations on the resource
// whose id equals the listing id.
//
// Fields:
//
//	ID        – resource identifier, unique across the registry.
//	DataHash  – content hash of the off-ledger listing document.
//	Owner     – principal that created the listing.
//	Status    – availability marker maintained by the owner.
//	CreatedAt – ledger time of registration.
//	UpdatedAt – ledger time of the last change.
type Listing struct {
	ID        string        `json:"id"`
	DataHash  string        `json:"data_hash"`
	Owner     string        `json:"owner"`
	Status    ListingStatus `json:"status"`
	CreatedAt time.Time     `json:"created_at"`
	UpdatedAt time.Time     `json:"updated_at"`
}
