package scheduling

import (
	"errors"
	"fmt"
	"time"
)

var ErrInvalidDuration = errors.New("invalid slot duration")

// CandidateSlot is one concrete bookable interval [Start, End).
type CandidateSlot struct {
	Start time.Time
	End   time.Time
}

// GenerateSlots subdivides a window into fixed-duration slots. The stride
// never overruns the window: a trailing partial slot is discarded, not
// truncated.
func GenerateSlots(w AvailabilityWindow) ([]CandidateSlot, error) {
	if w.SlotDurationMinutes <= 0 {
		return nil, fmt.Errorf("%w: %d minutes", ErrInvalidDuration, w.SlotDurationMinutes)
	}

	step := time.Duration(w.SlotDurationMinutes) * time.Minute
	var slots []CandidateSlot
	for s := w.Start; !s.Add(step).After(w.End); s = s.Add(step) {
		slots = append(slots, CandidateSlot{Start: s, End: s.Add(step)})
	}
	return slots, nil
}
