package appointment

import (
	"time"

	"github.com/google/uuid"

	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

type Doctor struct {
	ID        uuid.UUID
	Name      string
	Specialty *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

type Patient struct {
	ID        uuid.UUID
	Name      string
	Email     *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Appointment is one booked slot. Rows are never deleted: cancelled and
// no-show appointments stay on record and simply stop blocking slots.
type Appointment struct {
	ID        uuid.UUID
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Start     time.Time
	End       time.Time
	Status    scheduling.Status
	Reason    *string
	CreatedAt time.Time
	UpdatedAt time.Time
}

// Booking projects the appointment down to what the conflict filter needs.
func (a Appointment) Booking() scheduling.Booking {
	return scheduling.Booking{Start: a.Start, End: a.End, Status: a.Status}
}

type EventLog struct {
	ID            int64
	EventType     string
	AppointmentID *uuid.UUID
	Payload       []byte
	CreatedAt     time.Time
}
