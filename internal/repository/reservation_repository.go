package repository

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/jmoiron/sqlx"

	"github.com/iliyamo/booking-ledger/internal/model"
)

// ReservationRepo persists reservations.  Reads may run anywhere; every
// write goes through Atomic so that it happens under the lock of the
// reservation's resource.
type ReservationRepo struct {
	db *sqlx.DB
}

// NewReservationRepo returns a ReservationRepo bound to the given database.
func NewReservationRepo(db *sqlx.DB) *ReservationRepo { return &ReservationRepo{db: db} }

// ReservationTx is the view of the reservation table available inside an
// Atomic block.  Every call participates in the block's transaction.
type ReservationTx interface {
	// GetByID loads a reservation or returns model.ErrNotFound.
	GetByID(ctx context.Context, id uint64) (*model.Reservation, error)
	// ListActiveByResource returns the PENDING and CONFIRMED reservations
	// of a resource in creation order.
	ListActiveByResource(ctx context.Context, resourceID string) ([]model.Reservation, error)
	// Create allocates the next reservation id, stores res under it and
	// writes the id back into res.
	Create(ctx context.Context, res *model.Reservation) error
	// Update rewrites the mutable columns (status, escrow, updated_at).
	Update(ctx context.Context, res *model.Reservation) error
}

// reservationRecord mirrors the reservations table.  Business logic uses
// model.Reservation instead.
type reservationRecord struct {
	ID                int64          `db:"id"`
	ResourceID        string         `db:"resource_id"`
	RequesterID       string         `db:"requester_id"`
	StartsAt          int64          `db:"starts_at"`
	EndsAt            int64          `db:"ends_at"`
	TotalPrice        model.Amount   `db:"total_price"`
	Status            string         `db:"status"`
	EscrowRef         sql.NullString `db:"escrow_ref"`
	EscrowContractRef sql.NullString `db:"escrow_contract_ref"`
	CreatedAt         int64          `db:"created_at"`
	UpdatedAt         int64          `db:"updated_at"`
}

func (rec reservationRecord) toModel() model.Reservation {
	res := model.Reservation{
		ID:          u64FromDB(rec.ID),
		ResourceID:  rec.ResourceID,
		RequesterID: rec.RequesterID,
		Interval:    model.Interval{Start: u64FromDB(rec.StartsAt), End: u64FromDB(rec.EndsAt)},
		TotalPrice:  rec.TotalPrice,
		Status:      model.Status(rec.Status),
		CreatedAt:   unixFromDB(rec.CreatedAt),
		UpdatedAt:   unixFromDB(rec.UpdatedAt),
	}
	if rec.EscrowRef.Valid {
		ref := rec.EscrowRef.String
		res.EscrowRef = &ref
	}
	if rec.EscrowContractRef.Valid {
		ref := rec.EscrowContractRef.String
		res.EscrowContractRef = &ref
	}
	return res
}

func nullable(s *string) sql.NullString {
	if s == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *s, Valid: true}
}

const reservationColumns = `id, resource_id, requester_id, starts_at, ends_at, total_price, status,
	escrow_ref, escrow_contract_ref, created_at, updated_at`

// Atomic runs fn inside one database transaction that holds the lock row of
// resourceID.  Concurrent Atomic calls for the same resource run one after
// the other; calls for different resources only contend on the id counter
// when both create a reservation.  If fn returns an error nothing it wrote
// survives and no id is consumed.
func (r *ReservationRepo) Atomic(ctx context.Context, resourceID string, fn func(tx ReservationTx) error) (err error) {
	tx, err := r.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if err = lockResource(ctx, tx, resourceID); err != nil {
		return err
	}
	if err = fn(&reservationTx{tx: tx}); err != nil {
		return err
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// lockResource makes sure the lock row of the resource exists and then
// takes a row lock on it for the rest of the transaction.
func lockResource(ctx context.Context, tx *sqlx.Tx, resourceID string) error {
	if _, err := tx.ExecContext(ctx, tx.Rebind(insertIgnore(tx, "booking_locks", "resource_id")), resourceID); err != nil {
		return fmt.Errorf("ensure lock row for %q: %w", resourceID, err)
	}
	var held string
	q := tx.Rebind(`SELECT resource_id FROM booking_locks WHERE resource_id = ?` + forUpdate(tx))
	if err := tx.GetContext(ctx, &held, q, resourceID); err != nil {
		return fmt.Errorf("lock resource %q: %w", resourceID, err)
	}
	return nil
}

// GetByID fetches a reservation outside of any transaction.
func (r *ReservationRepo) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return getReservation(ctx, r.db, id, false)
}

// ListByResource returns every reservation of a resource, any status, in
// creation order.
func (r *ReservationRepo) ListByResource(ctx context.Context, resourceID string) ([]model.Reservation, error) {
	return selectReservations(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations WHERE resource_id = ? ORDER BY id`, resourceID)
}

// ListByRequester returns every reservation held by a requester in creation
// order.
func (r *ReservationRepo) ListByRequester(ctx context.Context, requesterID string) ([]model.Reservation, error) {
	return selectReservations(ctx, r.db,
		`SELECT `+reservationColumns+` FROM reservations WHERE requester_id = ? ORDER BY id`, requesterID)
}

// ListActiveByResource returns the PENDING and CONFIRMED reservations of a
// resource without taking any lock.  It backs read-only availability
// queries.
func (r *ReservationRepo) ListActiveByResource(ctx context.Context, resourceID string) ([]model.Reservation, error) {
	return listActive(ctx, r.db, resourceID)
}

type reservationTx struct {
	tx *sqlx.Tx
}

func (t *reservationTx) GetByID(ctx context.Context, id uint64) (*model.Reservation, error) {
	return getReservation(ctx, t.tx, id, true)
}

func (t *reservationTx) ListActiveByResource(ctx context.Context, resourceID string) ([]model.Reservation, error) {
	return listActive(ctx, t.tx, resourceID)
}

func (t *reservationTx) Create(ctx context.Context, res *model.Reservation) error {
	var next int64
	q := t.tx.Rebind(`SELECT next_id FROM booking_sequence WHERE name = ?` + forUpdate(t.tx))
	if err := t.tx.GetContext(ctx, &next, q, "reservations"); err != nil {
		return fmt.Errorf("read reservation sequence: %w", err)
	}
	if _, err := t.tx.ExecContext(ctx,
		t.tx.Rebind(`UPDATE booking_sequence SET next_id = ? WHERE name = ?`), next+1, "reservations"); err != nil {
		return fmt.Errorf("advance reservation sequence: %w", err)
	}

	const insert = `INSERT INTO reservations (` + reservationColumns + `)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(insert),
		next, res.ResourceID, res.RequesterID,
		u64ToDB(res.Interval.Start), u64ToDB(res.Interval.End),
		res.TotalPrice, string(res.Status),
		nullable(res.EscrowRef), nullable(res.EscrowContractRef),
		unixToDB(res.CreatedAt), unixToDB(res.UpdatedAt))
	if err != nil {
		return fmt.Errorf("insert reservation: %w", err)
	}
	res.ID = u64FromDB(next)
	return nil
}

func (t *reservationTx) Update(ctx context.Context, res *model.Reservation) error {
	const q = `UPDATE reservations SET status = ?, escrow_ref = ?, escrow_contract_ref = ?, updated_at = ?
		WHERE id = ?`
	_, err := t.tx.ExecContext(ctx, t.tx.Rebind(q),
		string(res.Status), nullable(res.EscrowRef), nullable(res.EscrowContractRef),
		unixToDB(res.UpdatedAt), u64ToDB(res.ID))
	if err != nil {
		return fmt.Errorf("update reservation %d: %w", res.ID, err)
	}
	return nil
}

func getReservation(ctx context.Context, c conn, id uint64, lock bool) (*model.Reservation, error) {
	q := `SELECT ` + reservationColumns + ` FROM reservations WHERE id = ?`
	if lock {
		q += forUpdate(c)
	}
	var rec reservationRecord
	if err := c.GetContext(ctx, &rec, c.Rebind(q), u64ToDB(id)); err != nil {
		return nil, notFound(err, "reservation %d", id)
	}
	res := rec.toModel()
	return &res, nil
}

func listActive(ctx context.Context, c conn, resourceID string) ([]model.Reservation, error) {
	query, args, err := sqlx.In(`SELECT `+reservationColumns+` FROM reservations
		WHERE resource_id = ? AND status IN (?) ORDER BY id`, resourceID, statusStrings(model.ActiveStatuses))
	if err != nil {
		return nil, err
	}
	return selectReservations(ctx, c, query, args...)
}

func selectReservations(ctx context.Context, c conn, q string, args ...any) ([]model.Reservation, error) {
	var recs []reservationRecord
	if err := c.SelectContext(ctx, &recs, c.Rebind(q), args...); err != nil {
		return nil, err
	}
	out := make([]model.Reservation, 0, len(recs))
	for _, rec := range recs {
		out = append(out, rec.toModel())
	}
	return out, nil
}

func statusStrings(ss []model.Status) []string {
	out := make([]string, len(ss))
	for i, s := range ss {
		out[i] = string(s)
	}
	return out
}
