package queue

import (
	"context"
	"encoding/json"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/iliyamo/booking-ledger/internal/model"
)

type recordingNotifier struct {
	events []BookingEvent
	err    error
}

func (n *recordingNotifier) Notify(_ context.Context, ev BookingEvent) error {
	n.events = append(n.events, ev)
	return n.err
}

func sampleEvent() BookingEvent {
	ref := "escrow-9"
	res := model.Reservation{
		ID:          7,
		ResourceID:  "villa",
		RequesterID: "alice",
		Interval:    model.Interval{Start: 1704067200, End: 1704153600},
		TotalPrice:  model.NewAmount(1000000000),
		Status:      model.StatusConfirmed,
		EscrowRef:   &ref,
	}
	return NewBookingEvent(EventBookingStatusChanged, res, time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC))
}

func TestNewBookingEventSnapshotsReservation(t *testing.T) {
	ev := sampleEvent()
	assert.NotEmpty(t, ev.ID)
	assert.Equal(t, uint64(7), ev.ReservationID)
	assert.Equal(t, model.StatusConfirmed, ev.Status)
	assert.Equal(t, "escrow-9", ev.EscrowRef)
}

func TestFormatLine(t *testing.T) {
	line := FormatLine(sampleEvent())
	assert.Equal(t,
		"[2024-01-01T12:00:00Z] booking.status_changed | reservation_id=7 | resource=\"villa\" | requester=\"alice\" | status=CONFIRMED | interval=[1704067200,1704153600) | total=1000000000 | escrow=escrow-9\n",
		line)
}

func TestHandleWritesLogAndNotifies(t *testing.T) {
	dir := t.TempDir()
	n := &recordingNotifier{err: errors.New("telegram down")}
	c := &Consumer{LogDir: dir, Notifier: n}

	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)
	require.NoError(t, c.handle(context.Background(), body))
	require.NoError(t, c.handle(context.Background(), body))

	data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	require.NoError(t, err)
	assert.Equal(t, FormatLine(sampleEvent())+FormatLine(sampleEvent()), string(data))
	assert.Len(t, n.events, 2)
	assert.Equal(t, "villa", n.events[0].ResourceID)
}

func TestHandleRejectsGarbage(t *testing.T) {
	c := &Consumer{LogDir: t.TempDir()}
	assert.Error(t, c.handle(context.Background(), []byte("not json")))
}

func TestHandleWithoutNotifierOnlyLogs(t *testing.T) {
	dir := t.TempDir()
	c := &Consumer{LogDir: dir}

	body, err := json.Marshal(sampleEvent())
	require.NoError(t, err)
	require.NoError(t, c.handle(context.Background(), body))

	data, err := os.ReadFile(filepath.Join(dir, "booking.log"))
	require.NoError(t, err)
	assert.Equal(t, FormatLine(sampleEvent()), string(data))
}
