package scheduling

import (
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

const DefaultMaxRangeDays = 180

var (
	ErrRangeTooLarge = errors.New("date range exceeds maximum lookahead")
	ErrInvalidRange  = errors.New("range start is after range end")
	ErrInvalidRule   = errors.New("invalid availability rule")
)

// AvailabilityRule is one recurring weekly block of bookable hours for a
// doctor. Rules are maintained by practice staff and read-only here.
// Overlapping rules for the same weekday are tolerated: each expands on
// its own and the candidates they produce may overlap.
type AvailabilityRule struct {
	ID                  uuid.UUID
	DoctorID            uuid.UUID
	Weekday             Weekday
	Start               TimeOfDay
	End                 TimeOfDay
	SlotDurationMinutes int
	Active              bool
}

// Validate checks the fields staff can get wrong when creating a rule.
// All failures wrap ErrInvalidRule; the more specific sentinels are
// preserved underneath where they apply.
func (r AvailabilityRule) Validate() error {
	if !r.Weekday.Valid() {
		return fmt.Errorf("%w: weekday out of range: %d", ErrInvalidRule, int(r.Weekday))
	}
	if !r.Start.Valid() {
		return fmt.Errorf("%w: start %w: %s", ErrInvalidRule, ErrInvalidTimeOfDay, r.Start)
	}
	if !r.End.Valid() {
		return fmt.Errorf("%w: end %w: %s", ErrInvalidRule, ErrInvalidTimeOfDay, r.End)
	}
	if r.Start.MinutesFromMidnight() >= r.End.MinutesFromMidnight() {
		return fmt.Errorf("%w: start %s must be before end %s", ErrInvalidRule, r.Start, r.End)
	}
	if r.SlotDurationMinutes <= 0 {
		return fmt.Errorf("%w: %w: %d minutes", ErrInvalidRule, ErrInvalidDuration, r.SlotDurationMinutes)
	}
	return nil
}

// AvailabilityWindow is one rule anchored to one concrete date. Windows are
// ephemeral: they exist only between expansion and slot generation.
type AvailabilityWindow struct {
	Date                time.Time
	Start               time.Time
	End                 time.Time
	SlotDurationMinutes int
}

// Engine runs the slot pipeline for one practice. It holds the practice
// time zone and the lookahead cap; everything else is passed per call so
// the methods stay deterministic for a given input.
type Engine struct {
	loc          *time.Location
	maxRangeDays int
}

func NewEngine(loc *time.Location, maxRangeDays int) *Engine {
	if loc == nil {
		loc = time.UTC
	}
	if maxRangeDays <= 0 {
		maxRangeDays = DefaultMaxRangeDays
	}
	return &Engine{loc: loc, maxRangeDays: maxRangeDays}
}

func (e *Engine) Location() *time.Location { return e.loc }

// Expand walks every calendar date in [from, to] (inclusive, practice time
// zone) and emits one window per active rule matching that date's weekday.
// Output order is date ascending, then rule input order; callers must not
// assume anything finer.
func (e *Engine) Expand(rules []AvailabilityRule, from, to time.Time) ([]AvailabilityWindow, error) {
	start := StartOfDay(from, e.loc)
	end := StartOfDay(to, e.loc)

	if start.After(end) {
		return nil, fmt.Errorf("%w: %s > %s", ErrInvalidRange, start.Format("2006-01-02"), end.Format("2006-01-02"))
	}
	// Count calendar days, not elapsed hours: DST makes some days 23h or 25h.
	days := int(utcMidnight(end).Sub(utcMidnight(start)).Hours()/24) + 1
	if days > e.maxRangeDays {
		return nil, fmt.Errorf("%w: %d days requested, max %d", ErrRangeTooLarge, days, e.maxRangeDays)
	}

	var windows []AvailabilityWindow
	for d := start; !d.After(end); d = d.AddDate(0, 0, 1) {
		wd := WeekdayOf(d)
		for _, rule := range rules {
			if !rule.Active || rule.Weekday != wd {
				continue
			}
			ws, err := Anchor(d, rule.Start, e.loc)
			if err != nil {
				return nil, fmt.Errorf("anchor rule %s start: %w", rule.ID, err)
			}
			we, err := Anchor(d, rule.End, e.loc)
			if err != nil {
				return nil, fmt.Errorf("anchor rule %s end: %w", rule.ID, err)
			}
			windows = append(windows, AvailabilityWindow{
				Date:                d,
				Start:               ws,
				End:                 we,
				SlotDurationMinutes: rule.SlotDurationMinutes,
			})
		}
	}
	return windows, nil
}

// BookableSlots runs the whole pipeline: expand rules over the range,
// subdivide each window, then drop candidates that collide with blocking
// appointments or have already started by now.
func (e *Engine) BookableSlots(rules []AvailabilityRule, existing []Booking, from, to, now time.Time) ([]CandidateSlot, error) {
	windows, err := e.Expand(rules, from, to)
	if err != nil {
		return nil, err
	}

	var candidates []CandidateSlot
	for _, w := range windows {
		slots, err := GenerateSlots(w)
		if err != nil {
			return nil, err
		}
		candidates = append(candidates, slots...)
	}

	return FilterConflicts(candidates, existing, now), nil
}

// StartOfDay truncates an instant to midnight of its calendar date in loc.
func StartOfDay(t time.Time, loc *time.Location) time.Time {
	y, m, d := t.In(loc).Date()
	return time.Date(y, m, d, 0, 0, 0, 0, loc)
}

func utcMidnight(t time.Time) time.Time {
	y, m, d := t.Date()
	return time.Date(y, m, d, 0, 0, 0, 0, time.UTC)
}
