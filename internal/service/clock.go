package service

import (
	"sync/atomic"
	"time"
)

// Clock supplies ledger time.  Reservations and reviews are stamped with
// whole seconds in UTC.
type Clock interface {
	Now() time.Time
}

// SystemClock reads the wall clock.
type SystemClock struct{}

func (SystemClock) Now() time.Time { return time.Now().UTC().Truncate(time.Second) }

// ManualClock is a Clock that only moves when told to.  It is safe for
// concurrent use.
type ManualClock struct {
	unix atomic.Int64
}

// NewManualClock returns a ManualClock set to t.
func NewManualClock(t time.Time) *ManualClock {
	c := &ManualClock{}
	c.Set(t)
	return c
}

func (c *ManualClock) Now() time.Time { return time.Unix(c.unix.Load(), 0).UTC() }

// Set moves the clock to t.
func (c *ManualClock) Set(t time.Time) { c.unix.Store(t.Unix()) }

// Advance moves the clock forward by d.
func (c *ManualClock) Advance(d time.Duration) { c.unix.Add(int64(d / time.Second)) }
