package repository

import (
	"context"
	"time"

	"github.com/jmoiron/sqlx"
)

// conn is satisfied by both *sqlx.DB and *sqlx.Tx so that read helpers can
// run inside or outside a transaction.  Queries are written with '?'
// placeholders and passed through Rebind for the active driver.
type conn interface {
	sqlx.ExtContext
	GetContext(ctx context.Context, dest any, query string, args ...any) error
	SelectContext(ctx context.Context, dest any, query string, args ...any) error
}

// forUpdate returns the row-locking suffix for drivers that support it.
// SQLite runs on a single connection, so every transaction is already
// exclusive.
func forUpdate(c conn) string {
	if c.DriverName() == "sqlite3" {
		return ""
	}
	return " FOR UPDATE"
}

// insertIgnore returns an INSERT statement that silently skips rows whose
// primary key already exists.
func insertIgnore(c conn, table, column string) string {
	switch c.DriverName() {
	case "mysql":
		return "INSERT IGNORE INTO " + table + " (" + column + ") VALUES (?)"
	case "sqlite3":
		return "INSERT OR IGNORE INTO " + table + " (" + column + ") VALUES (?)"
	default:
		return "INSERT INTO " + table + " (" + column + ") VALUES (?) ON CONFLICT DO NOTHING"
	}
}

// Unsigned 64-bit values (epoch seconds, ids) live in signed BIGINT
// columns.  The conversion keeps every bit, so values above MaxInt64 read
// back unchanged.
func u64ToDB(v uint64) int64   { return int64(v) }
func u64FromDB(v int64) uint64 { return uint64(v) }

func unixToDB(t time.Time) int64   { return t.Unix() }
func unixFromDB(v int64) time.Time { return time.Unix(v, 0).UTC() }
