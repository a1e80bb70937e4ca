package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// ListingRepo persists the listing registry.  Ownership rules live in the
// service layer; the repository only guarantees id uniqueness and that
// updates are applied to the row owned by the caller.
type ListingRepo struct {
	db *sqlx.DB
}

// NewListingRepo constructs a ListingRepo with the provided DB handle.
func NewListingRepo(db *sqlx.DB) *ListingRepo { return &ListingRepo{db: db} }

type listingRecord struct {
	ID        string `db:"id"`
	DataHash  string `db:"data_hash"`
	Owner     string `db:"owner"`
	Status    string `db:"status"`
	CreatedAt int64  `db:"created_at"`
	UpdatedAt int64  `db:"updated_at"`
}

func (rec listingRecord) toModel() model.Listing {
	return model.Listing{
		ID:        rec.ID,
		DataHash:  rec.DataHash,
		Owner:     rec.Owner,
		Status:    model.ListingStatus(rec.Status),
		CreatedAt: unixFromDB(rec.CreatedAt),
		UpdatedAt: unixFromDB(rec.UpdatedAt),
	}
}

// Create inserts a new listing.  A listing with the same id yields
// model.ErrListingExists.
func (r *ListingRepo) Create(ctx context.Context, l *model.Listing) error {
	const q = `INSERT INTO listings (id, data_hash, owner, status, created_at, updated_at) VALUES (?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		l.ID, l.DataHash, l.Owner, string(l.Status), unixToDB(l.CreatedAt), unixToDB(l.UpdatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("listing %q: %w", l.ID, model.ErrListingExists)
		}
		return err
	}
	return nil
}

// GetByID fetches a listing or returns model.ErrNotFound.
func (r *ListingRepo) GetByID(ctx context.Context, id string) (*model.Listing, error) {
	const q = `SELECT id, data_hash, owner, status, created_at, updated_at FROM listings WHERE id = ?`
	var rec listingRecord
	if err := r.db.GetContext(ctx, &rec, r.db.Rebind(q), id); err != nil {
		return nil, notFound(err, "listing %q", id)
	}
	l := rec.toModel()
	return &l, nil
}

// List returns every listing ordered by id.
func (r *ListingRepo) List(ctx context.Context) ([]model.Listing, error) {
	const q = `SELECT id, data_hash, owner, status, created_at, updated_at FROM listings ORDER BY id`
	var recs []listingRecord
	if err := r.db.SelectContext(ctx, &recs, q); err != nil {
		return nil, err
	}
	out := make([]model.Listing, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}

// UpdateByIDAndOwner writes data hash, status and updated_at of the listing
// if it is still owned by l.Owner.  It returns model.ErrUnauthorized when
// the row exists under a different owner and model.ErrNotFound when it
// does not exist at all.
func (r *ListingRepo) UpdateByIDAndOwner(ctx context.Context, l *model.Listing) error {
	const q = `UPDATE listings SET data_hash = ?, status = ?, updated_at = ? WHERE id = ? AND owner = ?`
	res, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		l.DataHash, string(l.Status), unixToDB(l.UpdatedAt), l.ID, l.Owner)
	if err != nil {
		return err
	}
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n > 0 {
		return nil
	}
	// Zero rows: either the listing is gone, owned by someone else, or (on
	// MySQL) the values were already current.
	current, err := r.GetByID(ctx, l.ID)
	if err != nil {
		return err
	}
	if current.Owner != l.Owner {
		return fmt.Errorf("listing %q: %w", l.ID, model.ErrUnauthorized)
	}
	return nil
}
