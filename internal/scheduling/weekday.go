package scheduling

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidTimeOfDay = errors.New("invalid time of day")

// Weekday is the canonical day-of-week numbering used everywhere in the
// engine: Monday=1 .. Sunday=7. Anything else (0-indexed Sundays, name
// strings) is an adapter concern at the persistence boundary.
type Weekday int

const (
	Monday Weekday = iota + 1
	Tuesday
	Wednesday
	Thursday
	Friday
	Saturday
	Sunday
)

var weekdayNames = [...]string{"monday", "tuesday", "wednesday", "thursday", "friday", "saturday", "sunday"}

func (d Weekday) Valid() bool {
	return d >= Monday && d <= Sunday
}

func (d Weekday) String() string {
	if !d.Valid() {
		return fmt.Sprintf("weekday(%d)", int(d))
	}
	return weekdayNames[d-1]
}

// WeekdayOf maps a calendar date onto the canonical numbering.
// time.Weekday counts Sunday as 0; we fold that onto Sunday=7.
func WeekdayOf(t time.Time) Weekday {
	wd := t.Weekday()
	if wd == time.Sunday {
		return Sunday
	}
	return Weekday(wd)
}

// TimeOfDay is a wall-clock hour and minute with no date attached.
type TimeOfDay struct {
	Hour   int
	Minute int
}

func (t TimeOfDay) Valid() bool {
	return t.Hour >= 0 && t.Hour <= 23 && t.Minute >= 0 && t.Minute <= 59
}

func (t TimeOfDay) String() string {
	return fmt.Sprintf("%02d:%02d", t.Hour, t.Minute)
}

// MinutesFromMidnight orders two TimeOfDay values without anchoring them.
func (t TimeOfDay) MinutesFromMidnight() int {
	return t.Hour*60 + t.Minute
}

// Anchor combines a calendar date with a wall-clock time into an absolute
// instant in loc. Out-of-range hour/minute is rejected, never clamped.
func Anchor(date time.Time, tod TimeOfDay, loc *time.Location) (time.Time, error) {
	if !tod.Valid() {
		return time.Time{}, fmt.Errorf("%w: %02d:%02d", ErrInvalidTimeOfDay, tod.Hour, tod.Minute)
	}
	y, m, d := date.In(loc).Date()
	return time.Date(y, m, d, tod.Hour, tod.Minute, 0, 0, loc), nil
}
