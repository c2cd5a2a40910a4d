package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func window(startHour, startMin, endHour, endMin, durationMin int) AvailabilityWindow {
	date := time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)
	return AvailabilityWindow{
		Date:                date,
		Start:               time.Date(2025, 6, 23, startHour, startMin, 0, 0, time.UTC),
		End:                 time.Date(2025, 6, 23, endHour, endMin, 0, 0, time.UTC),
		SlotDurationMinutes: durationMin,
	}
}

func TestGenerateSlots(t *testing.T) {
	// 09:00-12:00 at 30 minutes: six slots, the last starting 11:30.
	slots, err := GenerateSlots(window(9, 0, 12, 0, 30))
	require.NoError(t, err)
	require.Len(t, slots, 6)

	wantStarts := []string{"09:00", "09:30", "10:00", "10:30", "11:00", "11:30"}
	for i, s := range slots {
		assert.Equal(t, wantStarts[i], s.Start.Format("15:04"))
		assert.Equal(t, 30*time.Minute, s.End.Sub(s.Start))
	}
}

func TestGenerateSlotsDiscardsPartialTrailing(t *testing.T) {
	// 09:00-10:45 at 30 minutes: 10:30-11:00 would overrun, so the last
	// offered slot is 10:00-10:30. Never truncated.
	slots, err := GenerateSlots(window(9, 0, 10, 45, 30))
	require.NoError(t, err)
	require.Len(t, slots, 3)
	assert.Equal(t, "10:00", slots[2].Start.Format("15:04"))
	assert.Equal(t, "10:30", slots[2].End.Format("15:04"))
}

func TestGenerateSlotsExactFit(t *testing.T) {
	slots, err := GenerateSlots(window(9, 0, 10, 0, 60))
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, "09:00", slots[0].Start.Format("15:04"))
	assert.Equal(t, "10:00", slots[0].End.Format("15:04"))
}

func TestGenerateSlotsWindowTooShort(t *testing.T) {
	slots, err := GenerateSlots(window(9, 0, 9, 20, 30))
	require.NoError(t, err)
	assert.Empty(t, slots)
}

func TestGenerateSlotsInvalidDuration(t *testing.T) {
	for _, d := range []int{0, -30} {
		_, err := GenerateSlots(window(9, 0, 12, 0, d))
		assert.ErrorIs(t, err, ErrInvalidDuration)
	}
}

func TestSlotsStayInsideWindow(t *testing.T) {
	tests := []struct {
		name string
		w    AvailabilityWindow
	}{
		{"half hour", window(9, 0, 12, 0, 30)},
		{"quarter hour", window(8, 15, 17, 40, 15)},
		{"long blocks", window(9, 0, 18, 0, 240)},
		{"odd duration", window(9, 0, 12, 0, 45)},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			slots, err := GenerateSlots(tt.w)
			require.NoError(t, err)
			step := time.Duration(tt.w.SlotDurationMinutes) * time.Minute
			for _, s := range slots {
				assert.False(t, s.Start.Before(tt.w.Start))
				assert.False(t, s.End.After(tt.w.End))
				assert.Equal(t, step, s.End.Sub(s.Start))
			}
		})
	}
}
