package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// monday returns an instant on Monday 2025-06-23 at the given wall clock.
func monday(hour, minute int) time.Time {
	return time.Date(2025, 6, 23, hour, minute, 0, 0, time.UTC)
}

func mondayMorningCandidates(t *testing.T) []CandidateSlot {
	t.Helper()
	slots, err := GenerateSlots(window(9, 0, 12, 0, 30))
	require.NoError(t, err)
	require.Len(t, slots, 6)
	return slots
}

func slotStarts(slots []CandidateSlot) []string {
	starts := make([]string, len(slots))
	for i, s := range slots {
		starts[i] = s.Start.Format("15:04")
	}
	return starts
}

func TestFilterNoAppointments(t *testing.T) {
	candidates := mondayMorningCandidates(t)

	got := FilterConflicts(candidates, nil, monday(8, 0))
	assert.Equal(t, []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}, slotStarts(got))
}

func TestFilterBlockingAppointment(t *testing.T) {
	candidates := mondayMorningCandidates(t)
	existing := []Booking{
		{Start: monday(10, 0), End: monday(10, 30), Status: StatusScheduled},
	}

	got := FilterConflicts(candidates, existing, monday(8, 0))
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, slotStarts(got))
}

func TestFilterPastSlots(t *testing.T) {
	candidates := mondayMorningCandidates(t)

	// At 10:15, everything starting at or before 10:15 is gone.
	got := FilterConflicts(candidates, nil, monday(10, 15))
	assert.Equal(t, []string{"10:30", "11:00", "11:30"}, slotStarts(got))
}

func TestFilterSlotStartingExactlyNow(t *testing.T) {
	candidates := mondayMorningCandidates(t)

	// start <= now drops the slot, so 10:30 itself is not bookable at 10:30.
	got := FilterConflicts(candidates, nil, monday(10, 30))
	assert.Equal(t, []string{"11:00", "11:30"}, slotStarts(got))
}

func TestFilterNonBlockingStatuses(t *testing.T) {
	candidates := mondayMorningCandidates(t)

	tests := []struct {
		status Status
		blocks bool
	}{
		{StatusScheduled, true},
		{StatusConfirmed, true},
		{StatusInProgress, true},
		{StatusCompleted, false},
		{StatusCancelled, false},
		{StatusNoShow, false},
		{StatusRescheduled, false},
	}
	for _, tt := range tests {
		t.Run(string(tt.status), func(t *testing.T) {
			existing := []Booking{
				{Start: monday(10, 0), End: monday(10, 30), Status: tt.status},
			}
			got := FilterConflicts(candidates, existing, monday(8, 0))
			if tt.blocks {
				assert.Len(t, got, 5)
				assert.NotContains(t, slotStarts(got), "10:00")
			} else {
				assert.Len(t, got, 6)
				assert.Contains(t, slotStarts(got), "10:00")
			}
		})
	}
}

func TestFilterHalfOpenIntervals(t *testing.T) {
	candidates := mondayMorningCandidates(t)

	// An appointment ending exactly at 10:00 does not touch the 10:00 slot,
	// and one starting exactly at 10:30 does not touch the 10:00 slot either.
	existing := []Booking{
		{Start: monday(9, 30), End: monday(10, 0), Status: StatusScheduled},
		{Start: monday(10, 30), End: monday(11, 0), Status: StatusScheduled},
	}
	got := FilterConflicts(candidates, existing, monday(8, 0))
	assert.Contains(t, slotStarts(got), "10:00")
	assert.NotContains(t, slotStarts(got), "09:30")
	assert.NotContains(t, slotStarts(got), "10:30")
}

func TestFilterPartialOverlap(t *testing.T) {
	candidates := mondayMorningCandidates(t)

	// 10:15-10:45 straddles two slots; both must go.
	existing := []Booking{
		{Start: monday(10, 15), End: monday(10, 45), Status: StatusConfirmed},
	}
	got := FilterConflicts(candidates, existing, monday(8, 0))
	assert.Equal(t, []string{"09:00", "09:30", "11:00", "11:30"}, slotStarts(got))
}

func TestFilterIsIdempotent(t *testing.T) {
	candidates := mondayMorningCandidates(t)
	existing := []Booking{
		{Start: monday(10, 0), End: monday(10, 30), Status: StatusScheduled},
	}
	now := monday(9, 10)

	once := FilterConflicts(candidates, existing, now)
	twice := FilterConflicts(once, existing, now)
	assert.Equal(t, once, twice)
}

func TestBookableSlotsPipeline(t *testing.T) {
	e := NewEngine(time.UTC, 0)
	rule := mondayRule(TimeOfDay{9, 0}, TimeOfDay{12, 0}, 30)
	from := monday(0, 0)

	// Scenario B end to end: one booked 10:00 appointment leaves five slots.
	existing := []Booking{
		{Start: monday(10, 0), End: monday(10, 30), Status: StatusScheduled},
	}
	got, err := e.BookableSlots([]AvailabilityRule{rule}, existing, from, from, monday(8, 0))
	require.NoError(t, err)
	assert.Equal(t, []string{"09:00", "09:30", "10:30", "11:00", "11:30"}, slotStarts(got))
}

func TestBookableSlotsEmptyRange(t *testing.T) {
	e := NewEngine(time.UTC, 0)
	got, err := e.BookableSlots(nil, nil, monday(0, 0), monday(0, 0), monday(8, 0))
	require.NoError(t, err)
	assert.Empty(t, got)
}
