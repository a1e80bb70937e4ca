package notification

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/model"
	"github.com/iliyamo/booking-ledger/internal/queue"
)

func TestDisabledNotifierDropsMessages(t *testing.T) {
	n, err := NewTelegramNotifier("", 0)
	require.NoError(t, err)
	assert.NoError(t, n.Notify(context.Background(), queue.BookingEvent{ID: "x"}))
}

func TestMessage(t *testing.T) {
	ev := queue.BookingEvent{
		Type:          queue.EventBookingCreated,
		ReservationID: 3,
		ResourceID:    "villa",
		RequesterID:   "alice",
		Status:        model.StatusPending,
		Start:         1704067200,
		End:           1704153600,
	}
	assert.Equal(t,
		"*New booking request*\n\nBooking: #3\nResource: villa\nGuest: alice\nStatus: PENDING\nFrom: 01.01.2024 00:00\nTo: 02.01.2024 00:00 (UTC)",
		Message(ev))
}

func TestMessageUnknownTypeAndHugeEpoch(t *testing.T) {
	ev := queue.BookingEvent{Type: "booking.other", Start: ^uint64(0) - 1, End: ^uint64(0)}
	msg := Message(ev)
	assert.Contains(t, msg, "*booking.other*")
	assert.Contains(t, msg, "18446744073709551615")
}
