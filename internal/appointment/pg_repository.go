package appointment

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

type PgRepository struct {
	pool *pgxpool.Pool
}

func NewPgRepository(pool *pgxpool.Pool) *PgRepository {
	return &PgRepository{pool: pool}
}

// Helpers

func scanDoctor(row pgx.Row) (*Doctor, error) {
	var d Doctor
	var specialty *string

	err := row.Scan(
		&d.ID,
		&d.Name,
		&specialty,
		&d.CreatedAt,
		&d.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrDoctorNotFound
		}
		return nil, err
	}

	d.Specialty = specialty
	return &d, nil
}

func scanPatient(row pgx.Row) (*Patient, error) {
	var p Patient
	var email *string

	err := row.Scan(
		&p.ID,
		&p.Name,
		&email,
		&p.CreatedAt,
		&p.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrPatientNotFound
		}
		return nil, err
	}

	p.Email = email
	return &p, nil
}

func scanRule(row pgx.Row) (*scheduling.AvailabilityRule, error) {
	var r scheduling.AvailabilityRule
	var weekday int

	err := row.Scan(
		&r.ID,
		&r.DoctorID,
		&weekday,
		&r.Start.Hour,
		&r.Start.Minute,
		&r.End.Hour,
		&r.End.Minute,
		&r.SlotDurationMinutes,
		&r.Active,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrRuleNotFound
		}
		return nil, err
	}

	r.Weekday = scheduling.Weekday(weekday)
	return &r, nil
}

func scanAppointment(row pgx.Row) (*Appointment, error) {
	var a Appointment
	var status string
	var reason *string

	err := row.Scan(
		&a.ID,
		&a.DoctorID,
		&a.PatientID,
		&a.Start,
		&a.End,
		&status,
		&reason,
		&a.CreatedAt,
		&a.UpdatedAt,
	)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, ErrAppointmentNotFound
		}
		return nil, err
	}

	a.Status = scheduling.Status(status)
	a.Reason = reason
	return &a, nil
}

// Interface methods

func (r *PgRepository) GetDoctorByID(ctx context.Context, id uuid.UUID) (*Doctor, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, specialty, created_at, updated_at
		FROM doctors
		WHERE id = $1
	`, id)
	return scanDoctor(row)
}

func (r *PgRepository) GetPatientByID(ctx context.Context, id uuid.UUID) (*Patient, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, name, email, created_at, updated_at
		FROM patients
		WHERE id = $1
	`, id)
	return scanPatient(row)
}

func (r *PgRepository) ListRulesByDoctor(ctx context.Context, doctorID uuid.UUID) ([]scheduling.AvailabilityRule, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, weekday, start_hour, start_minute, end_hour, end_minute, slot_duration_minutes, active
		FROM availability_rules
		WHERE doctor_id = $1
		ORDER BY created_at, id
	`, doctorID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []scheduling.AvailabilityRule
	for rows.Next() {
		rule, err := scanRule(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *rule)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) CreateRule(ctx context.Context, rule scheduling.AvailabilityRule) (*scheduling.AvailabilityRule, error) {
	id := uuid.New()

	row := r.pool.QueryRow(ctx, `
		INSERT INTO availability_rules (id, doctor_id, weekday, start_hour, start_minute, end_hour, end_minute, slot_duration_minutes, active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, now(), now())
		RETURNING id, doctor_id, weekday, start_hour, start_minute, end_hour, end_minute, slot_duration_minutes, active
	`, id, rule.DoctorID, int(rule.Weekday), rule.Start.Hour, rule.Start.Minute,
		rule.End.Hour, rule.End.Minute, rule.SlotDurationMinutes, rule.Active)

	return scanRule(row)
}

func (r *PgRepository) ListAppointmentsByDoctorBetween(ctx context.Context, doctorID uuid.UUID, from, to time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at
		FROM appointments
		WHERE doctor_id = $1
		  AND start_time < $3
		  AND end_time > $2
		ORDER BY start_time
	`, doctorID, from, to)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) GetAppointmentByID(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		SELECT id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at
		FROM appointments
		WHERE id = $1
	`, id)
	return scanAppointment(row)
}

// BookAppointment inserts a scheduled appointment after re-checking, inside
// the same transaction, that no blocking appointment overlaps the interval.
// The slot list the caller saw may be stale by now, so this check is the
// one that counts.
func (r *PgRepository) BookAppointment(ctx context.Context, doctorID, patientID uuid.UUID, start, end time.Time, reason *string) (*Appointment, error) {
	tx, err := r.pool.Begin(ctx)
	if err != nil {
		return nil, fmt.Errorf("begin booking tx: %w", err)
	}
	defer tx.Rollback(ctx)

	var blockerID uuid.UUID
	err = tx.QueryRow(ctx, `
		SELECT id
		FROM appointments
		WHERE doctor_id = $1
		  AND status IN ('scheduled', 'confirmed', 'in_progress')
		  AND start_time < $3
		  AND end_time > $2
		LIMIT 1
		FOR UPDATE
	`, doctorID, start, end).Scan(&blockerID)
	if err == nil {
		return nil, ErrSlotTaken
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return nil, fmt.Errorf("check overlapping appointments: %w", err)
	}

	id := uuid.New()
	row := tx.QueryRow(ctx, `
		INSERT INTO appointments (id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, 'scheduled', $6, now(), now())
		RETURNING id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at
	`, id, doctorID, patientID, start, end, reason)

	appt, err := scanAppointment(row)
	if err != nil {
		return nil, fmt.Errorf("insert appointment: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return nil, fmt.Errorf("commit booking tx: %w", err)
	}

	return appt, nil
}

func (r *PgRepository) UpdateAppointmentStatus(ctx context.Context, id uuid.UUID, from, to scheduling.Status) (*Appointment, error) {
	row := r.pool.QueryRow(ctx, `
		UPDATE appointments
		SET status = $2,
		    updated_at = now()
		WHERE id = $1
		  AND status = $3
		RETURNING id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at
	`, id, string(to), string(from))

	return scanAppointment(row)
}

func (r *PgRepository) FindOverdueActive(ctx context.Context, before time.Time) ([]Appointment, error) {
	rows, err := r.pool.Query(ctx, `
		SELECT id, doctor_id, patient_id, start_time, end_time, status, reason, created_at, updated_at
		FROM appointments
		WHERE status IN ('scheduled', 'confirmed')
		  AND end_time < $1
	`, before)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var result []Appointment
	for rows.Next() {
		a, err := scanAppointment(rows)
		if err != nil {
			return nil, err
		}
		result = append(result, *a)
	}

	if err := rows.Err(); err != nil {
		return nil, err
	}

	return result, nil
}

func (r *PgRepository) InsertEvent(ctx context.Context, ev EventLog) error {
	_, err := r.pool.Exec(ctx, `
		INSERT INTO event_logs (event_type, appointment_id, payload, created_at)
		VALUES ($1, $2, $3, COALESCE($4, now()))
	`, ev.EventType, ev.AppointmentID, ev.Payload, nullableTime(ev.CreatedAt))
	if err != nil {
		return fmt.Errorf("insert event log: %w", err)
	}

	return nil
}

func nullableTime(t time.Time) *time.Time {
	if t.IsZero() {
		return nil
	}
	return &t
}
