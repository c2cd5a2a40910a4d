package api

import (
	"context"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.uber.org/zap"

	"github.com/brightclinic/practice-scheduling/internal/appointment"
	"github.com/brightclinic/practice-scheduling/internal/scheduling"
)

// BookingService is what the handlers need from the appointment service.
// Declared here so tests can stand in for the real thing.
type BookingService interface {
	BookableSlots(ctx context.Context, doctorID uuid.UUID, from, to, now time.Time) ([]scheduling.CandidateSlot, error)
	Book(ctx context.Context, req appointment.BookRequest) (*appointment.Appointment, error)
	GetAppointment(ctx context.Context, id uuid.UUID) (*appointment.Appointment, error)
	Transition(ctx context.Context, id uuid.UUID, target scheduling.Status) (*appointment.Appointment, error)
	CreateRule(ctx context.Context, rule scheduling.AvailabilityRule) (*scheduling.AvailabilityRule, error)
	ListRules(ctx context.Context, doctorID uuid.UUID) ([]scheduling.AvailabilityRule, error)
}

type RouterConfig struct {
	Service  BookingService
	Location *time.Location
	Logger   *zap.Logger
	PgPool   *pgxpool.Pool
	Redis    *redis.Client
	Env      string
	Version  string
}

func NewRouter(cfg RouterConfig) http.Handler {
	r := chi.NewRouter()

	r.Use(RequestIDMiddleware)
	r.Use(LoggingMiddleware(cfg.Logger))

	// Health endpoints
	health := NewHealthHandler(cfg.PgPool, cfg.Redis, cfg.Env, cfg.Version)
	r.Get("/health/live", health.Liveness)
	r.Get("/health/ready", health.Readiness)

	// Slot and rule endpoints
	r.Get("/doctors/{id}/slots", listSlotsHandler(cfg.Service, cfg.Location))
	r.Get("/doctors/{id}/rules", listRulesHandler(cfg.Service))
	r.Post("/doctors/{id}/rules", createRuleHandler(cfg.Service))

	// Appointment endpoints
	r.Post("/appointments", bookAppointmentHandler(cfg.Service))
	r.Get("/appointments/{id}", getAppointmentHandler(cfg.Service))
	r.Post("/appointments/{id}/status", transitionAppointmentHandler(cfg.Service))

	return r
}
