package appointment

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/brightclinic/practice-scheduling/internal/config"
	redisclient "github.com/brightclinic/practice-scheduling/internal/redis"
	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

const (
	EventAppointmentBooked = "APPOINTMENT_BOOKED"
	EventStatusChanged     = "APPOINTMENT_STATUS_CHANGED"
	EventNoShowSwept       = "APPOINTMENT_NO_SHOW_SWEPT"
)

var (
	// ErrSlotNoLongerAvailable surfaces the write-time overlap re-check: the
	// slot list the caller booked from went stale. Retry with fresh slots.
	ErrSlotNoLongerAvailable = errors.New("slot is no longer available")

	// ErrDoctorBeingBooked means the per-doctor lock is held by another
	// booking request. Also retryable.
	ErrDoctorBeingBooked = errors.New("doctor is currently being booked, please retry")

	// ErrConcurrentTransition means the appointment's status changed
	// between read and write; the caller lost the race.
	ErrConcurrentTransition = errors.New("appointment status changed concurrently")

	ErrInvalidInterval = errors.New("appointment end must be after start")
	ErrSlotInPast      = errors.New("slot start is in the past")
)

type Service struct {
	repo   Repository
	locker redisclient.Locker
	engine *scheduling.Engine
	cfg    config.Config
	logger *zap.Logger
	now    func() time.Time
}

func NewService(repo Repository, locker redisclient.Locker, engine *scheduling.Engine, cfg config.Config, logger *zap.Logger) *Service {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &Service{
		repo:   repo,
		locker: locker,
		engine: engine,
		cfg:    cfg,
		logger: logger,
		now:    time.Now,
	}
}

// BookableSlots computes the bookable slots for one doctor over an
// inclusive date range. now comes from the caller so the pipeline stays
// deterministic; handlers pass the request time.
func (s *Service) BookableSlots(ctx context.Context, doctorID uuid.UUID, from, to, now time.Time) ([]scheduling.CandidateSlot, error) {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	rules, err := s.repo.ListRulesByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list availability rules: %w", err)
	}

	// Windows can start before `from` on from's own date, so the
	// appointment query spans whole days.
	loc := s.engine.Location()
	rangeStart := scheduling.StartOfDay(from, loc)
	rangeEnd := scheduling.StartOfDay(to, loc).AddDate(0, 0, 1)

	appts, err := s.repo.ListAppointmentsByDoctorBetween(ctx, doctorID, rangeStart, rangeEnd)
	if err != nil {
		return nil, fmt.Errorf("list appointments: %w", err)
	}

	existing := make([]scheduling.Booking, len(appts))
	for i, a := range appts {
		existing[i] = a.Booking()
	}

	return s.engine.BookableSlots(rules, existing, from, to, now)
}

type BookRequest struct {
	DoctorID  uuid.UUID
	PatientID uuid.UUID
	Start     time.Time
	End       time.Time
	Reason    *string
}

// Book reserves a slot for a patient. A per-doctor lock narrows the race
// between concurrent requests; the transactional overlap re-check in the
// repository is the invariant that actually decides the winner.
func (s *Service) Book(ctx context.Context, req BookRequest) (*Appointment, error) {
	if !req.End.After(req.Start) {
		return nil, ErrInvalidInterval
	}
	if !req.Start.After(s.now()) {
		return nil, ErrSlotInPast
	}

	if _, err := s.repo.GetDoctorByID(ctx, req.DoctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}
	if _, err := s.repo.GetPatientByID(ctx, req.PatientID); err != nil {
		if errors.Is(err, ErrPatientNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load patient: %w", err)
	}

	var created *Appointment

	err := s.locker.WithDoctorLock(ctx, req.DoctorID, func(lockCtx context.Context) error {
		appt, err := s.repo.BookAppointment(lockCtx, req.DoctorID, req.PatientID, req.Start, req.End, req.Reason)
		if err != nil {
			if errors.Is(err, ErrSlotTaken) {
				return ErrSlotNoLongerAvailable
			}
			return fmt.Errorf("book appointment: %w", err)
		}

		created = appt

		s.logEvent(lockCtx, appt.ID, EventAppointmentBooked, map[string]any{
			"doctor_id":  req.DoctorID.String(),
			"patient_id": req.PatientID.String(),
			"start":      req.Start,
			"end":        req.End,
		})
		return nil
	})

	if err != nil {
		if errors.Is(err, redisclient.ErrLockNotAcquired) {
			return nil, ErrDoctorBeingBooked
		}
		return nil, err
	}

	s.logger.Info("appointment booked",
		zap.String("appointment_id", created.ID.String()),
		zap.String("doctor_id", req.DoctorID.String()),
		zap.Time("start", req.Start),
	)

	return created, nil
}

// Transition applies a lifecycle change to one appointment. Validation is
// the pure transition table; persistence is a compare-and-swap so two
// racing requests cannot both win.
func (s *Service) Transition(ctx context.Context, id uuid.UUID, target scheduling.Status) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load appointment: %w", err)
	}

	next, err := scheduling.Transition(appt.Status, target)
	if err != nil {
		return nil, err
	}

	updated, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, next)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			// The row exists, so the CAS lost to a concurrent transition.
			return nil, ErrConcurrentTransition
		}
		return nil, fmt.Errorf("update appointment status: %w", err)
	}

	s.logEvent(ctx, updated.ID, EventStatusChanged, map[string]any{
		"from": string(appt.Status),
		"to":   string(next),
	})

	s.logger.Info("appointment status changed",
		zap.String("appointment_id", updated.ID.String()),
		zap.String("from", string(appt.Status)),
		zap.String("to", string(next)),
	)

	return updated, nil
}

// GetAppointment retrieves one appointment by ID.
func (s *Service) GetAppointment(ctx context.Context, id uuid.UUID) (*Appointment, error) {
	appt, err := s.repo.GetAppointmentByID(ctx, id)
	if err != nil {
		if errors.Is(err, ErrAppointmentNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// MarkOverdueNoShows sweeps scheduled/confirmed appointments whose end
// passed more than the grace period ago into no_show. Intended to be
// called by the worker periodically.
func (s *Service) MarkOverdueNoShows(ctx context.Context) (int, error) {
	cutoff := s.now().Add(-s.cfg.NoShowGrace)

	overdue, err := s.repo.FindOverdueActive(ctx, cutoff)
	if err != nil {
		return 0, fmt.Errorf("find overdue appointments: %w", err)
	}

	swept := 0
	for _, appt := range overdue {
		next, err := scheduling.Transition(appt.Status, scheduling.StatusNoShow)
		if err != nil {
			// Status moved since the query; leave it to the next run.
			continue
		}

		if _, err := s.repo.UpdateAppointmentStatus(ctx, appt.ID, appt.Status, next); err != nil {
			if errors.Is(err, ErrAppointmentNotFound) {
				continue
			}
			s.logger.Warn("failed to sweep appointment",
				zap.String("appointment_id", appt.ID.String()),
				zap.Error(err),
			)
			continue
		}

		swept++
		s.logEvent(ctx, appt.ID, EventNoShowSwept, map[string]any{
			"previous_status": string(appt.Status),
			"cutoff":          cutoff,
		})
	}

	return swept, nil
}

// CreateRule validates and stores a staff-authored availability rule.
func (s *Service) CreateRule(ctx context.Context, rule scheduling.AvailabilityRule) (*scheduling.AvailabilityRule, error) {
	if err := rule.Validate(); err != nil {
		return nil, err
	}

	if _, err := s.repo.GetDoctorByID(ctx, rule.DoctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	created, err := s.repo.CreateRule(ctx, rule)
	if err != nil {
		return nil, fmt.Errorf("create rule: %w", err)
	}
	return created, nil
}

// ListRules returns the doctor's availability rules, active or not.
func (s *Service) ListRules(ctx context.Context, doctorID uuid.UUID) ([]scheduling.AvailabilityRule, error) {
	if _, err := s.repo.GetDoctorByID(ctx, doctorID); err != nil {
		if errors.Is(err, ErrDoctorNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("load doctor: %w", err)
	}

	rules, err := s.repo.ListRulesByDoctor(ctx, doctorID)
	if err != nil {
		return nil, fmt.Errorf("list rules: %w", err)
	}
	return rules, nil
}

func (s *Service) logEvent(ctx context.Context, appointmentID uuid.UUID, eventType string, payload map[string]any) {
	data, err := json.Marshal(payload)
	if err != nil {
		s.logger.Warn("failed to marshal event payload",
			zap.String("event_type", eventType),
			zap.Error(err),
		)
		data = nil
	}

	apptID := appointmentID

	ev := EventLog{
		EventType:     eventType,
		AppointmentID: &apptID,
		Payload:       data,
		CreatedAt:     s.now(),
	}

	if err := s.repo.InsertEvent(ctx, ev); err != nil {
		s.logger.Warn("failed to insert event log",
			zap.String("event_type", eventType),
			zap.String("appointment_id", appointmentID.String()),
			zap.Error(err),
		)
	}
}
