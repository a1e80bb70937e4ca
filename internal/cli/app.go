package cli

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
	"github.com/spf13/cobra"

	"github.com/iliyamo/booking-ledger/internal/database"
	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/repository"
	"github.com/iliyamo/booking-ledger/internal/service"
)

// ledger is the set of services a command runs against.  The CLI has
// direct database access, so every named principal is trusted.
type ledger struct {
	db       *sqlx.DB
	bookings *service.BookingService
	listings *service.ListingService
	reviews  *service.ReviewService
}

// openLedger opens the SQLite ledger at path and brings its schema up to
// date.  clock may be nil for wall-clock time.
func openLedger(ctx context.Context, path string, clock service.Clock) (*ledger, error) {
	db, err := database.OpenSQLite(ctx, path)
	if err != nil {
		return nil, err
	}
	if err := database.Migrate(ctx, db); err != nil {
		db.Close()
		return nil, err
	}
	authz := service.TrustedAuthorizer{}
	listings := service.NewListingService(repository.NewListingRepo(db), authz, clock)
	bookings := service.NewBookingService(repository.NewReservationRepo(db), listings, authz, nil, clock)
	reviews := service.NewReviewService(repository.NewReviewRepo(db), bookings, listings, authz, clock)
	return &ledger{db: db, bookings: bookings, listings: listings, reviews: reviews}, nil
}

func (l *ledger) Close() error { return l.db.Close() }

func newFormatter(opts *RootOptions, cmd *cobra.Command) *OutputFormatter {
	return &OutputFormatter{
		Format:    opts.Format,
		Writer:    cmd.OutOrStdout(),
		ErrWriter: cmd.ErrOrStderr(),
		Verbose:   opts.Verbose,
	}
}

// withLedger opens the ledger named by --db, runs fn and closes it.
func withLedger(opts *RootOptions, cmd *cobra.Command, fn func(ctx context.Context, l *ledger, out *OutputFormatter) error) error {
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	out := newFormatter(opts, cmd)
	out.VerboseLog("opening ledger %s", opts.DB)
	l, err := openLedger(ctx, opts.DB, nil)
	if err != nil {
		return WrapExitError(ExitCommandError, fmt.Sprintf("open ledger %s", opts.DB), err)
	}
	defer l.Close()
	return fn(ctx, l, out)
}

// formatReservation renders a reservation on one line.
func formatReservation(r *model.Reservation) string {
	s := fmt.Sprintf("booking %d %s requester=%s [%d, %d) price=%s status=%s",
		r.ID, r.ResourceID, r.RequesterID, r.Interval.Start, r.Interval.End, r.TotalPrice, r.Status)
	if r.EscrowRef != nil {
		s += " escrow=" + *r.EscrowRef
	}
	return s
}

func formatListing(l *model.Listing) string {
	return fmt.Sprintf("listing %s owner=%s status=%s hash=%s", l.ID, l.Owner, l.Status, l.DataHash)
}

func formatReview(r *model.Review) string {
	s := fmt.Sprintf("review of booking %d by %s for %s rating=%d", r.BookingID, r.Reviewer, r.Target, r.Rating)
	if r.Comment != "" {
		s += fmt.Sprintf(" comment=%q", r.Comment)
	}
	return s
}
