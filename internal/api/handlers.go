package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/brightclinic/practice-scheduling/internal/appointment"
	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

const dateLayout = "2006-01-02"

func listSlotsHandler(svc BookingService, loc *time.Location) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		from, err := parseDateParam(r, "from", loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_from", err.Error())
			return
		}
		to, err := parseDateParam(r, "to", loc)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_to", err.Error())
			return
		}

		slots, err := svc.BookableSlots(r.Context(), doctorID, from, to, time.Now())
		if err != nil {
			handleSlotsError(w, err)
			return
		}

		resp := SlotsResponse{
			DoctorID: doctorID,
			From:     from.Format(dateLayout),
			To:       to.Format(dateLayout),
			Slots:    make([]SlotResponse, len(slots)),
		}
		for i, s := range slots {
			resp.Slots[i] = SlotResponse{Start: s.Start, End: s.End}
		}

		writeJSON(w, http.StatusOK, resp)
	}
}

func bookAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		var req BookAppointmentRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		doctorID, err := uuid.Parse(req.DoctorID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "doctor_id must be a valid UUID")
			return
		}
		patientID, err := uuid.Parse(req.PatientID)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_patient_id", "patient_id must be a valid UUID")
			return
		}
		start, err := time.Parse(time.RFC3339, req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start", "start must be RFC 3339")
			return
		}
		end, err := time.Parse(time.RFC3339, req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end", "end must be RFC 3339")
			return
		}

		appt, err := svc.Book(r.Context(), appointment.BookRequest{
			DoctorID:  doctorID,
			PatientID: patientID,
			Start:     start,
			End:       end,
			Reason:    req.Reason,
		})
		if err != nil {
			handleBookError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toAppointmentResponse(appt))
	}
}

func getAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		appt, err := svc.GetAppointment(r.Context(), id)
		if err != nil {
			if errors.Is(err, appointment.ErrAppointmentNotFound) {
				writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
				return
			}
			writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func transitionAppointmentHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		id, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_appointment_id", "id must be a valid UUID")
			return
		}

		var req TransitionRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		target, err := scheduling.ParseStatus(req.Status)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_status", err.Error())
			return
		}

		appt, err := svc.Transition(r.Context(), id, target)
		if err != nil {
			handleTransitionError(w, err)
			return
		}

		writeJSON(w, http.StatusOK, toAppointmentResponse(appt))
	}
}

func createRuleHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		var req CreateRuleRequest
		if err := json.NewDecoder(r.Body).Decode(&req); err != nil {
			writeError(w, http.StatusBadRequest, "invalid_request_body", "could not parse JSON")
			return
		}

		start, err := parseTimeOfDay(req.Start)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_start", err.Error())
			return
		}
		end, err := parseTimeOfDay(req.End)
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_end", err.Error())
			return
		}

		active := true
		if req.Active != nil {
			active = *req.Active
		}

		rule, err := svc.CreateRule(r.Context(), scheduling.AvailabilityRule{
			DoctorID:            doctorID,
			Weekday:             scheduling.Weekday(req.Weekday),
			Start:               start,
			End:                 end,
			SlotDurationMinutes: req.SlotDurationMinutes,
			Active:              active,
		})
		if err != nil {
			handleRuleError(w, err)
			return
		}

		writeJSON(w, http.StatusCreated, toRuleResponse(*rule))
	}
}

func listRulesHandler(svc BookingService) http.HandlerFunc {
	return func(w http.ResponseWriter, r *http.Request) {
		doctorID, err := uuid.Parse(chi.URLParam(r, "id"))
		if err != nil {
			writeError(w, http.StatusBadRequest, "invalid_doctor_id", "id must be a valid UUID")
			return
		}

		rules, err := svc.ListRules(r.Context(), doctorID)
		if err != nil {
			handleRuleError(w, err)
			return
		}

		resp := make([]RuleResponse, len(rules))
		for i, rule := range rules {
			resp[i] = toRuleResponse(rule)
		}
		writeJSON(w, http.StatusOK, resp)
	}
}

// Error mapping

func handleSlotsError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, scheduling.ErrRangeTooLarge):
		writeError(w, http.StatusBadRequest, "range_too_large", err.Error())
	case errors.Is(err, scheduling.ErrInvalidRange):
		writeError(w, http.StatusBadRequest, "invalid_range", err.Error())
	case errors.Is(err, scheduling.ErrInvalidTimeOfDay),
		errors.Is(err, scheduling.ErrInvalidDuration):
		writeError(w, http.StatusUnprocessableEntity, "invalid_rule_data", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleBookError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, appointment.ErrPatientNotFound):
		writeError(w, http.StatusNotFound, "patient_not_found", err.Error())
	case errors.Is(err, appointment.ErrInvalidInterval):
		writeError(w, http.StatusBadRequest, "invalid_interval", err.Error())
	case errors.Is(err, appointment.ErrSlotInPast):
		writeError(w, http.StatusBadRequest, "slot_in_past", err.Error())
	case errors.Is(err, appointment.ErrSlotNoLongerAvailable):
		writeError(w, http.StatusConflict, "slot_no_longer_available", "slot was booked by someone else, refresh and pick another")
	case errors.Is(err, appointment.ErrDoctorBeingBooked):
		writeError(w, http.StatusConflict, "doctor_being_booked", "another booking for this doctor is in flight, please retry shortly")
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleTransitionError(w http.ResponseWriter, err error) {
	var illegal *scheduling.IllegalTransitionError
	switch {
	case errors.Is(err, appointment.ErrAppointmentNotFound):
		writeError(w, http.StatusNotFound, "appointment_not_found", err.Error())
	case errors.As(err, &illegal):
		writeError(w, http.StatusConflict, "illegal_transition", illegal.Error())
	case errors.Is(err, appointment.ErrConcurrentTransition):
		writeError(w, http.StatusConflict, "concurrent_update", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

func handleRuleError(w http.ResponseWriter, err error) {
	switch {
	case errors.Is(err, appointment.ErrDoctorNotFound):
		writeError(w, http.StatusNotFound, "doctor_not_found", err.Error())
	case errors.Is(err, scheduling.ErrInvalidRule):
		writeError(w, http.StatusBadRequest, "invalid_rule", err.Error())
	default:
		writeError(w, http.StatusInternalServerError, "internal_error", err.Error())
	}
}

// Helpers

func parseDateParam(r *http.Request, name string, loc *time.Location) (time.Time, error) {
	v := r.URL.Query().Get(name)
	if v == "" {
		return time.Time{}, fmt.Errorf("%s is required (YYYY-MM-DD)", name)
	}
	t, err := time.ParseInLocation(dateLayout, v, loc)
	if err != nil {
		return time.Time{}, fmt.Errorf("%s must be YYYY-MM-DD", name)
	}
	return t, nil
}

func parseTimeOfDay(v string) (scheduling.TimeOfDay, error) {
	var h, m int
	if _, err := fmt.Sscanf(v, "%d:%d", &h, &m); err != nil {
		return scheduling.TimeOfDay{}, fmt.Errorf("time of day must be HH:MM, got %q", v)
	}
	return scheduling.TimeOfDay{Hour: h, Minute: m}, nil
}

func toAppointmentResponse(a *appointment.Appointment) AppointmentResponse {
	return AppointmentResponse{
		ID:        a.ID,
		DoctorID:  a.DoctorID,
		PatientID: a.PatientID,
		Start:     a.Start,
		End:       a.End,
		Status:    string(a.Status),
		Reason:    a.Reason,
	}
}

func toRuleResponse(r scheduling.AvailabilityRule) RuleResponse {
	return RuleResponse{
		ID:                  r.ID,
		DoctorID:            r.DoctorID,
		Weekday:             int(r.Weekday),
		Start:               r.Start.String(),
		End:                 r.End.String(),
		SlotDurationMinutes: r.SlotDurationMinutes,
		Active:              r.Active,
	}
}
