package appointment

import (
	"context"
	"errors"
	"time"

	"github.com/google/uuid"

	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

var (
	ErrDoctorNotFound      = errors.New("doctor not found")
	ErrPatientNotFound     = errors.New("patient not found")
	ErrRuleNotFound        = errors.New("availability rule not found")
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrSlotTaken is returned by BookAppointment when the interval is
	// already held by a blocking appointment at insert time.
	ErrSlotTaken = errors.New("interval already booked")
)

// Repository contains all DB interactions needed by the service.
type Repository interface {
	GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error)
	GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error)

	// Availability rules (staff-maintained, read-only to the engine)
	ListRulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]scheduling.AvailabilityRule, error)
	CreateRule(ctx context.Context, rule scheduling.AvailabilityRule) (*scheduling.AvailabilityRule, error)

	// For slot computation and conflict checks
	ListAppointmentsByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error)
	GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error)

	// BookAppointment re-validates non-overlap for the doctor/interval pair
	// and inserts the scheduled row inside one transaction.
	BookAppointment(ctx context.Context, doctorID, patientID uuid.UUID, start, end time.Time, reason *string) (*Appointment, error)

	// UpdateAppointmentStatus is a compare-and-swap on the status column.
	UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to scheduling.Status) (*Appointment, error)

	// No-show sweeper
	FindOverdueActive(ctx context.Context, before time.Time) ([]Appointment, error)

	// Event logging
	InsertEvent(ctx context.Context, ev EventLog) error
}
