package schedule

import (
	"context"
	"time"

	appointmentRepo "fixmo/database/repository/appointment"
	availabilityRepo "fixmo/database/repository/availability"
	"fixmo/models"
	"fixmo/services/notification"
)

// BookingRequest is the input to the conflict guard.
type BookingRequest struct {
	ProviderID        string
	CustomerID        string
	Date              string // "2006-01-02"
	Start             int    // minutes from midnight
	RepairDescription string
	FinalPrice        float64
}

// SyncReport summarizes one weekly reset/sync run.
type SyncReport struct {
	FlagsCleared  int64 `json:"flagsCleared"`
	Finished      int64 `json:"finished"`
	FlagsRestored int   `json:"flagsRestored"`
	Unmatched     int   `json:"unmatched"`
	ItemErrors    int   `json:"itemErrors"`
}

// Engine is the availability and booking conflict engine. It is the only
// entry point allowed to create appointments from slot-booking requests.
type Engine interface {
	SetWeeklyTemplate(ctx context.Context, providerID string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error)
	ListTemplate(ctx context.Context, providerID string, activeOnly bool) ([]models.AvailabilitySlot, error)
	SetTemplateActive(ctx context.Context, slotID string, active bool) error

	ResolveAvailability(ctx context.Context, providerID, date string) ([]models.ProjectedSlot, error)
	RequestBooking(ctx context.Context, req BookingRequest) (*models.Appointment, error)

	GetAppointment(ctx context.Context, id string) (*models.Appointment, error)
	TransitionAppointment(ctx context.Context, id string, to models.AppointmentStatus, fields TransitionFields) (*models.Appointment, error)
	RescheduleAppointment(ctx context.Context, id, newDate string, newStart int, reason string) (*models.Appointment, error)

	RunWeeklySync(ctx context.Context) (SyncReport, error)
}

// TransitionFields carries the optional per-transition payload. Fields that
// are irrelevant to a given transition are ignored, not silently applied.
type TransitionFields struct {
	CancellationReason string
	FinalPrice         *float64
}

// DefaultScheduleEngine is the production engine.
type DefaultScheduleEngine struct {
	Availability availabilityRepo.AvailabilityRepository
	Appointments appointmentRepo.AppointmentRepository
	Notifier     notification.NotificationService
	Cache        AvailabilityCache

	CommitTimeout time.Duration
	StaleHorizon  time.Duration

	// now is swappable in tests.
	now func() time.Time
}

// NewDefaultScheduleEngine wires the engine with its collaborators. Notifier
// and cache may be nil; both are best-effort.
func NewDefaultScheduleEngine(
	avail availabilityRepo.AvailabilityRepository,
	appts appointmentRepo.AppointmentRepository,
	notifier notification.NotificationService,
	cache AvailabilityCache,
) *DefaultScheduleEngine {
	return &DefaultScheduleEngine{
		Availability:  avail,
		Appointments:  appts,
		Notifier:      notifier,
		Cache:         cache,
		CommitTimeout: 10 * time.Second,
		StaleHorizon:  7 * 24 * time.Hour,
		now:           time.Now,
	}
}
