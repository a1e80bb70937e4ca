package model

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestStatusTransitions(t *testing.T) {
	all := []Status{StatusPending, StatusConfirmed, StatusCancelled, StatusCompleted}
	legal := map[[2]Status]bool{
		{StatusPending, StatusConfirmed}:   true,
		{StatusPending, StatusCancelled}:   true,
		{StatusConfirmed, StatusCompleted}: true,
		{StatusConfirmed, StatusCancelled}: true,
	}

	for _, from := range all {
		for _, to := range all {
			t.Run(string(from)+"->"+string(to), func(t *testing.T) {
				assert.Equal(t, legal[[2]Status{from, to}], from.CanTransitionTo(to))
			})
		}
	}
}

func TestStatusConfirmedBackToPendingIsRejected(t *testing.T) {
	assert.False(t, StatusConfirmed.CanTransitionTo(StatusPending))
}

func TestStatusClassification(t *testing.T) {
	assert.True(t, StatusPending.IsActive())
	assert.True(t, StatusConfirmed.IsActive())
	assert.False(t, StatusCancelled.IsActive())
	assert.False(t, StatusCompleted.IsActive())

	assert.True(t, StatusCancelled.IsTerminal())
	assert.True(t, StatusCompleted.IsTerminal())
	assert.False(t, StatusPending.IsTerminal())

	assert.ElementsMatch(t, []Status{StatusPending, StatusConfirmed}, ActiveStatuses)
}

func TestParseStatus(t *testing.T) {
	st, err := ParseStatus(" confirmed ")
	require.NoError(t, err)
	assert.Equal(t, StatusConfirmed, st)

	_, err = ParseStatus("archived")
	assert.Error(t, err)
}

func TestIntervalOverlaps(t *testing.T) {
	tests := []struct {
		name string
		a, b Interval
		want bool
	}{
		{"adjacent after", Interval{1704067200, 1704153600}, Interval{1704153600, 1704240000}, false},
		{"adjacent before", Interval{1704153600, 1704240000}, Interval{1704067200, 1704153600}, false},
		{"partial", Interval{1704067200, 1704240000}, Interval{1704153600, 1704326400}, true},
		{"contained", Interval{10, 100}, Interval{20, 30}, true},
		{"identical", Interval{10, 20}, Interval{10, 20}, true},
		{"disjoint", Interval{10, 20}, Interval{30, 40}, false},
		{"single second", Interval{10, 11}, Interval{10, 11}, true},
		{"max values", Interval{^uint64(0) - 1, ^uint64(0)}, Interval{0, ^uint64(0)}, true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.a.Overlaps(tt.b))
			assert.Equal(t, tt.want, tt.b.Overlaps(tt.a))
		})
	}
}

func TestIntervalValid(t *testing.T) {
	assert.True(t, Interval{1, 2}.Valid())
	assert.False(t, Interval{2, 2}.Valid())
	assert.False(t, Interval{3, 2}.Valid())
	assert.False(t, Interval{^uint64(0), ^uint64(0)}.Valid())
}
