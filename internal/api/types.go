package api

import (
	"time"

	"github.com/google/uuid"
)

type SlotResponse struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

type SlotsResponse struct {
	DoctorID uuid.UUID      `json:"doctor_id"`
	From     string         `json:"from"`
	To       string         `json:"to"`
	Slots    []SlotResponse `json:"slots"`
}

type BookAppointmentRequest struct {
	DoctorID  string  `json:"doctor_id"`
	PatientID string  `json:"patient_id"`
	Start     string  `json:"start"` // RFC 3339
	End       string  `json:"end"`   // RFC 3339
	Reason    *string `json:"reason,omitempty"`
}

type TransitionRequest struct {
	Status string `json:"status"`
}

type AppointmentResponse struct {
	ID        uuid.UUID `json:"id"`
	DoctorID  uuid.UUID `json:"doctor_id"`
	PatientID uuid.UUID `json:"patient_id"`
	Start     time.Time `json:"start"`
	End       time.Time `json:"end"`
	Status    string    `json:"status"`
	Reason    *string   `json:"reason,omitempty"`
}

type CreateRuleRequest struct {
	Weekday             int    `json:"weekday"` // Monday=1 .. Sunday=7
	Start               string `json:"start"`   // "HH:MM"
	End                 string `json:"end"`     // "HH:MM"
	SlotDurationMinutes int    `json:"slot_duration_minutes"`
	Active              *bool  `json:"active,omitempty"` // defaults to true
}

type RuleResponse struct {
	ID                  uuid.UUID `json:"id"`
	DoctorID            uuid.UUID `json:"doctor_id"`
	Weekday             int       `json:"weekday"`
	Start               string    `json:"start"`
	End                 string    `json:"end"`
	SlotDurationMinutes int       `json:"slot_duration_minutes"`
	Active              bool      `json:"active"`
}

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}
