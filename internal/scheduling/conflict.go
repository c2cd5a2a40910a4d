package scheduling

import "time"

// Booking is the conflict filter's view of an existing appointment: just
// the interval and the status that decides whether it still blocks.
type Booking struct {
	Start  time.Time
	End    time.Time
	Status Status
}

// FilterConflicts returns the candidates that are actually bookable:
// those that do not overlap any blocking appointment and have not already
// started by now. Input order is preserved, so filtering an already
// filtered list with the same inputs is a no-op.
//
// This is the only place interval overlap is defined. Intervals are
// half-open [start, end): back-to-back slots sharing an endpoint do not
// overlap.
func FilterConflicts(candidates []CandidateSlot, existing []Booking, now time.Time) []CandidateSlot {
	bookable := make([]CandidateSlot, 0, len(candidates))
	for _, c := range candidates {
		if !c.Start.After(now) {
			continue
		}
		if conflicts(c, existing) {
			continue
		}
		bookable = append(bookable, c)
	}
	return bookable
}

func conflicts(c CandidateSlot, existing []Booking) bool {
	// Practice scale keeps the naive scan cheap; pre-sort plus binary
	// search only becomes worth it well beyond daily clinic volumes.
	for _, b := range existing {
		if !b.Status.Blocks() {
			continue
		}
		if Overlaps(c.Start, c.End, b.Start, b.End) {
			return true
		}
	}
	return false
}

// Overlaps reports whether the half-open intervals [aStart, aEnd) and
// [bStart, bEnd) intersect.
func Overlaps(aStart, aEnd, bStart, bEnd time.Time) bool {
	return aStart.Before(bEnd) && bStart.Before(aEnd)
}
