package scheduling

import "fmt"

// Status is an appointment lifecycle state. Values match the column values
// persisted by the repository.
type Status string

const (
	StatusScheduled   Status = "scheduled"
	StatusConfirmed   Status = "confirmed"
	StatusInProgress  Status = "in_progress"
	StatusCompleted   Status = "completed"
	StatusCancelled   Status = "cancelled"
	StatusNoShow      Status = "no_show"
	StatusRescheduled Status = "rescheduled"
)

// transitions is the single source of truth for legal status changes.
// Terminal statuses have no entry.
var transitions = map[Status][]Status{
	StatusScheduled:  {StatusConfirmed, StatusInProgress, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusConfirmed:  {StatusInProgress, StatusCancelled, StatusNoShow, StatusRescheduled},
	StatusInProgress: {StatusCompleted, StatusNoShow, StatusCancelled},
}

// ParseStatus validates a wire/DB string against the known statuses.
func ParseStatus(s string) (Status, error) {
	switch st := Status(s); st {
	case StatusScheduled, StatusConfirmed, StatusInProgress, StatusCompleted,
		StatusCancelled, StatusNoShow, StatusRescheduled:
		return st, nil
	}
	return "", fmt.Errorf("unknown appointment status %q", s)
}

// Blocks reports whether an appointment in this status still occupies its
// interval for conflict purposes. Terminal-but-attended Completed does not:
// the room is free again, only active bookings fence off their time.
func (s Status) Blocks() bool {
	switch s {
	case StatusScheduled, StatusConfirmed, StatusInProgress:
		return true
	}
	return false
}

// Terminal reports whether no further transition is permitted from s.
func (s Status) Terminal() bool {
	_, ok := transitions[s]
	return !ok
}

// IllegalTransitionError reports a status change outside the transition
// table. It carries both endpoints so callers can surface them.
type IllegalTransitionError struct {
	From Status
	To   Status
}

func (e *IllegalTransitionError) Error() string {
	return fmt.Sprintf("illegal transition from %s to %s", e.From, e.To)
}

// Transition validates a requested status change and returns the resulting
// status. Pure: it never mutates anything and both outcomes are functions
// of the two inputs alone. Serializing concurrent transitions on the same
// appointment is the persistence layer's job.
func Transition(from, to Status) (Status, error) {
	for _, allowed := range transitions[from] {
		if allowed == to {
			return to, nil
		}
	}
	return "", &IllegalTransitionError{From: from, To: to}
}
