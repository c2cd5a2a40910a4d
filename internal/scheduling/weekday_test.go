package scheduling

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWeekdayOf(t *testing.T) {
	tests := []struct {
		date time.Time
		want Weekday
	}{
		{time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC), Monday},
		{time.Date(2025, 6, 24, 0, 0, 0, 0, time.UTC), Tuesday},
		{time.Date(2025, 6, 25, 0, 0, 0, 0, time.UTC), Wednesday},
		{time.Date(2025, 6, 26, 0, 0, 0, 0, time.UTC), Thursday},
		{time.Date(2025, 6, 27, 0, 0, 0, 0, time.UTC), Friday},
		{time.Date(2025, 6, 28, 0, 0, 0, 0, time.UTC), Saturday},
		{time.Date(2025, 6, 29, 0, 0, 0, 0, time.UTC), Sunday},
	}
	for _, tt := range tests {
		t.Run(tt.want.String(), func(t *testing.T) {
			assert.Equal(t, tt.want, WeekdayOf(tt.date))
		})
	}
}

func TestWeekdayNumbering(t *testing.T) {
	// Monday=1 .. Sunday=7 is the contract every adapter converts into.
	assert.Equal(t, 1, int(Monday))
	assert.Equal(t, 7, int(Sunday))
	assert.False(t, Weekday(0).Valid())
	assert.False(t, Weekday(8).Valid())
}

func TestAnchor(t *testing.T) {
	date := time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)

	got, err := Anchor(date, TimeOfDay{Hour: 9, Minute: 30}, time.UTC)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 23, 9, 30, 0, 0, time.UTC), got)
}

func TestAnchorPracticeTimeZone(t *testing.T) {
	loc, err := time.LoadLocation("Europe/Berlin")
	require.NoError(t, err)

	// The date may arrive in any zone; anchoring happens on the calendar
	// date as seen from the practice zone.
	date := time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)
	got, err := Anchor(date, TimeOfDay{Hour: 9, Minute: 0}, loc)
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 6, 23, 9, 0, 0, 0, loc), got)
}

func TestAnchorRejectsOutOfRange(t *testing.T) {
	date := time.Date(2025, 6, 23, 0, 0, 0, 0, time.UTC)
	tests := []struct {
		name string
		tod  TimeOfDay
	}{
		{"hour too large", TimeOfDay{Hour: 24, Minute: 0}},
		{"negative hour", TimeOfDay{Hour: -1, Minute: 0}},
		{"minute too large", TimeOfDay{Hour: 12, Minute: 60}},
		{"negative minute", TimeOfDay{Hour: 12, Minute: -5}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Anchor(date, tt.tod, time.UTC)
			assert.ErrorIs(t, err, ErrInvalidTimeOfDay)
		})
	}
}

func TestTimeOfDayString(t *testing.T) {
	assert.Equal(t, "09:05", TimeOfDay{Hour: 9, Minute: 5}.String())
	assert.Equal(t, "23:59", TimeOfDay{Hour: 23, Minute: 59}.String())
}
