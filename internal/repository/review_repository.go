package repository

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// ReviewRepo stores the append-only review ledger.  A reviewer can review a
// booking once; the (booking_id, reviewer) unique key enforces it.
type ReviewRepo struct {
	db *sqlx.DB
}

// NewReviewRepo constructs a ReviewRepo.
func NewReviewRepo(db *sqlx.DB) *ReviewRepo { return &ReviewRepo{db: db} }

type reviewRecord struct {
	ID        string `db:"id"`
	BookingID int64  `db:"booking_id"`
	Reviewer  string `db:"reviewer"`
	Target    string `db:"target"`
	Rating    int    `db:"rating"`
	Comment   string `db:"comment"`
	CreatedAt int64  `db:"created_at"`
}

// Create appends a review.  A second review of the same booking by the same
// reviewer yields model.ErrDuplicateReview.
func (r *ReviewRepo) Create(ctx context.Context, rv *model.Review) error {
	const q = `INSERT INTO reviews (id, booking_id, reviewer, target, rating, comment, created_at) VALUES (?, ?, ?, ?, ?, ?, ?)`
	_, err := r.db.ExecContext(ctx, r.db.Rebind(q),
		rv.ID, u64ToDB(rv.BookingID), rv.Reviewer, rv.Target, rv.Rating, rv.Comment, unixToDB(rv.CreatedAt))
	if err != nil {
		if isUniqueViolation(err) {
			return fmt.Errorf("review of booking %d by %q: %w", rv.BookingID, rv.Reviewer, model.ErrDuplicateReview)
		}
		return err
	}
	return nil
}

// Exists reports whether reviewer already reviewed the booking.
func (r *ReviewRepo) Exists(ctx context.Context, bookingID uint64, reviewer string) (bool, error) {
	const q = `SELECT COUNT(*) FROM reviews WHERE booking_id = ? AND reviewer = ?`
	var n int
	if err := r.db.GetContext(ctx, &n, r.db.Rebind(q), u64ToDB(bookingID), reviewer); err != nil {
		return false, err
	}
	return n > 0, nil
}

// ListByTarget returns the reviews left for target in submission order.
// Review ids are time-ordered UUIDs, so they break ties inside one second.
func (r *ReviewRepo) ListByTarget(ctx context.Context, target string) ([]model.Review, error) {
	const q = `SELECT id, booking_id, reviewer, target, rating, comment, created_at
		FROM reviews WHERE target = ? ORDER BY created_at, id`
	var recs []reviewRecord
	if err := r.db.SelectContext(ctx, &recs, r.db.Rebind(q), target); err != nil {
		return nil, err
	}
	out := make([]model.Review, 0, len(recs))
	for _, rec := range recs {
		out = append(out, model.Review{
			ID:        rec.ID,
			BookingID: u64FromDB(rec.BookingID),
			Reviewer:  rec.Reviewer,
			Target:    rec.Target,
			Rating:    rec.Rating,
			Comment:   rec.Comment,
			CreatedAt: unixFromDB(rec.CreatedAt),
		})
	}
	return out, nil
}

// RatingTotals returns the number of reviews for target and the sum of
// their ratings.
func (r *ReviewRepo) RatingTotals(ctx context.Context, target string) (count, sum int64, err error) {
	const q = `SELECT COUNT(*) AS n, COALESCE(SUM(rating), 0) AS total FROM reviews WHERE target = ?`
	var row struct {
		N     int64 `db:"n"`
		Total int64 `db:"total"`
	}
	if err := r.db.GetContext(ctx, &row, r.db.Rebind(q), target); err != nil {
		return 0, 0, err
	}
	return row.N, row.Total, nil
}
