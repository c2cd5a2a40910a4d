package api

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/brightclinic/practice-scheduling/internal/appointment"
	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

type stubService struct {
	slots      []scheduling.CandidateSlot
	slotsErr   error
	booked     *appointment.Appointment
	bookErr    error
	appt       *appointment.Appointment
	apptErr    error
	transition *appointment.Appointment
	transErr   error
	rule       *scheduling.AvailabilityRule
	ruleErr    error
	rules      []scheduling.AvailabilityRule
	rulesErr   error

	gotBook   appointment.BookRequest
	gotTarget scheduling.Status
}

func (s *stubService) BookableSlots(ctx context.Context, doctorID uuid.UUID, from, to, now time.Time) ([]scheduling.CandidateSlot, error) {
	return s.slots, s.slotsErr
}

func (s *stubService) Book(ctx context.Context, req appointment.BookRequest) (*appointment.Appointment, error) {
	s.gotBook = req
	return s.booked, s.bookErr
}

func (s *stubService) GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error) {
	return s.appt, s.apptErr
}

func (s *stubService) Transition(ctx context.Context, id uuid.UUID, target scheduling.Status) (*appointment.Appointment, error) {
	s.gotTarget = target
	return s.transition, s.transErr
}

func (s *stubService) CreateRule(ctx context.Context, rule scheduling.AvailabilityRule) (*scheduling.AvailabilityRule, error) {
	return s.rule, s.ruleErr
}

func (s *stubService) ListRules(ctx context.Context, doctorID uuid.UUID) ([]scheduling.AvailabilityRule, error) {
	return s.rules, s.rulesErr
}

func newTestRouter(svc BookingService) http.Handler {
	return NewRouter(RouterConfig{
		Service:  svc,
		Location: time.UTC,
		Logger:   zap.NewNop(),
		Env:      "test",
		Version:  "test",
	})
}

func sampleAppointment() *appointment.Appointment {
	return &appointment.Appointment{
		ID:        uuid.New(),
		DoctorID:  uuid.New(),
		PatientID: uuid.New(),
		Start:     time.Date(2025, 6, 23, 10, 0, 0, 0, time.UTC),
		End:       time.Date(2025, 6, 23, 10, 30, 0, 0, time.UTC),
		Status:    scheduling.StatusScheduled,
	}
}

func TestListSlots(t *testing.T) {
	svc := &stubService{
		slots: []scheduling.CandidateSlot{
			{
				Start: time.Date(2025, 6, 23, 9, 0, 0, 0, time.UTC),
				End:   time.Date(2025, 6, 23, 9, 30, 0, 0, time.UTC),
			},
		},
	}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.NewString()+"/slots?from=2025-06-23&to=2025-06-23", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)

	var resp SlotsResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	require.Len(t, resp.Slots, 1)
	assert.Equal(t, "2025-06-23", resp.From)
}

func TestListSlotsValidation(t *testing.T) {
	router := newTestRouter(&stubService{})

	tests := []struct {
		name string
		url  string
		code string
	}{
		{"bad doctor id", "/doctors/not-a-uuid/slots?from=2025-06-23&to=2025-06-23", "invalid_doctor_id"},
		{"missing from", "/doctors/" + uuid.NewString() + "/slots?to=2025-06-23", "invalid_from"},
		{"bad to", "/doctors/" + uuid.NewString() + "/slots?from=2025-06-23&to=yesterday", "invalid_to"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, tt.url, nil)
			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, req)

			assert.Equal(t, http.StatusBadRequest, rec.Code)
			var resp ErrorResponse
			require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
			assert.Equal(t, tt.code, resp.Error)
		})
	}
}

func TestListSlotsRangeTooLarge(t *testing.T) {
	svc := &stubService{slotsErr: scheduling.ErrRangeTooLarge}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/doctors/"+uuid.NewString()+"/slots?from=2025-06-23&to=2026-06-23", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "range_too_large")
}

func TestBookAppointment(t *testing.T) {
	appt := sampleAppointment()
	svc := &stubService{booked: appt}
	router := newTestRouter(svc)

	body := BookAppointmentRequest{
		DoctorID:  appt.DoctorID.String(),
		PatientID: appt.PatientID.String(),
		Start:     appt.Start.Format(time.RFC3339),
		End:       appt.End.Format(time.RFC3339),
	}
	buf, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp AppointmentResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, appt.ID, resp.ID)
	assert.Equal(t, "scheduled", resp.Status)
	assert.Equal(t, appt.Start, svc.gotBook.Start)
}

func TestBookAppointmentConflict(t *testing.T) {
	svc := &stubService{bookErr: appointment.ErrSlotNoLongerAvailable}
	router := newTestRouter(svc)

	body := BookAppointmentRequest{
		DoctorID:  uuid.NewString(),
		PatientID: uuid.NewString(),
		Start:     "2025-06-23T10:00:00Z",
		End:       "2025-06-23T10:30:00Z",
	}
	buf, _ := json.Marshal(body)

	req := httptest.NewRequest(http.MethodPost, "/appointments", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "slot_no_longer_available")
}

func TestTransitionAppointment(t *testing.T) {
	appt := sampleAppointment()
	appt.Status = scheduling.StatusConfirmed
	svc := &stubService{transition: appt}
	router := newTestRouter(svc)

	buf, _ := json.Marshal(TransitionRequest{Status: "confirmed"})
	req := httptest.NewRequest(http.MethodPost, "/appointments/"+appt.ID.String()+"/status", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, scheduling.StatusConfirmed, svc.gotTarget)
}

func TestTransitionIllegal(t *testing.T) {
	svc := &stubService{
		transErr: &scheduling.IllegalTransitionError{
			From: scheduling.StatusInProgress,
			To:   scheduling.StatusConfirmed,
		},
	}
	router := newTestRouter(svc)

	buf, _ := json.Marshal(TransitionRequest{Status: "confirmed"})
	req := httptest.NewRequest(http.MethodPost, "/appointments/"+uuid.NewString()+"/status", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusConflict, rec.Code)
	assert.Contains(t, rec.Body.String(), "illegal_transition")
	assert.Contains(t, rec.Body.String(), "in_progress")
}

func TestTransitionUnknownStatus(t *testing.T) {
	router := newTestRouter(&stubService{})

	buf, _ := json.Marshal(TransitionRequest{Status: "attending"})
	req := httptest.NewRequest(http.MethodPost, "/appointments/"+uuid.NewString()+"/status", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_status")
}

func TestCreateRule(t *testing.T) {
	doctorID := uuid.New()
	rule := &scheduling.AvailabilityRule{
		ID:                  uuid.New(),
		DoctorID:            doctorID,
		Weekday:             scheduling.Monday,
		Start:               scheduling.TimeOfDay{Hour: 9},
		End:                 scheduling.TimeOfDay{Hour: 17},
		SlotDurationMinutes: 30,
		Active:              true,
	}
	svc := &stubService{rule: rule}
	router := newTestRouter(svc)

	buf, _ := json.Marshal(CreateRuleRequest{
		Weekday:             1,
		Start:               "09:00",
		End:                 "17:00",
		SlotDurationMinutes: 30,
	})
	req := httptest.NewRequest(http.MethodPost, "/doctors/"+doctorID.String()+"/rules", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	require.Equal(t, http.StatusCreated, rec.Code)

	var resp RuleResponse
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &resp))
	assert.Equal(t, "09:00", resp.Start)
	assert.Equal(t, 1, resp.Weekday)
}

func TestCreateRuleInvalid(t *testing.T) {
	svc := &stubService{ruleErr: scheduling.ErrInvalidRule}
	router := newTestRouter(svc)

	buf, _ := json.Marshal(CreateRuleRequest{Weekday: 9, Start: "09:00", End: "17:00", SlotDurationMinutes: 30})
	req := httptest.NewRequest(http.MethodPost, "/doctors/"+uuid.NewString()+"/rules", bytes.NewReader(buf))
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Contains(t, rec.Body.String(), "invalid_rule")
}

func TestGetAppointmentNotFound(t *testing.T) {
	svc := &stubService{apptErr: appointment.ErrAppointmentNotFound}
	router := newTestRouter(svc)

	req := httptest.NewRequest(http.MethodGet, "/appointments/"+uuid.NewString(), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestRequestIDHeaderRoundTrip(t *testing.T) {
	router := newTestRouter(&stubService{})

	req := httptest.NewRequest(http.MethodGet, "/health/live", nil)
	req.Header.Set("X-Request-ID", "req-42")
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, "req-42", rec.Header().Get("X-Request-ID"))
}
