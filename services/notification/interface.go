package notification

import (
	"context"

	"fixmo/models"

	"go.uber.org/zap"
)

// NotificationService is the post-commit dispatcher. Dispatch is
// best-effort and fire-and-forget: a failure here must never roll back the
// booking it announces. Actual delivery (push, email) lives behind this
// interface outside the engine.
type NotificationService interface {
	NotifyBookingConfirmed(ctx context.Context, appt *models.Appointment) error
	NotifyStatusChanged(ctx context.Context, appt *models.Appointment, previous models.AppointmentStatus) error
}

// LogNotificationService records dispatches to the application log. It is
// the default wiring when no delivery backend is configured.
type LogNotificationService struct {
	Logger *zap.Logger
}

func NewLogNotificationService(logger *zap.Logger) *LogNotificationService {
	return &LogNotificationService{Logger: logger}
}

func (s *LogNotificationService) NotifyBookingConfirmed(ctx context.Context, appt *models.Appointment) error {
	s.Logger.Info("booking confirmed",
		zap.String("appointmentId", appt.ID),
		zap.String("providerId", appt.ProviderID),
		zap.String("customerId", appt.CustomerID),
		zap.String("date", appt.Date),
		zap.String("time", models.FormatClock(appt.Start)),
	)
	return nil
}

func (s *LogNotificationService) NotifyStatusChanged(ctx context.Context, appt *models.Appointment, previous models.AppointmentStatus) error {
	s.Logger.Info("appointment status changed",
		zap.String("appointmentId", appt.ID),
		zap.String("from", string(previous)),
		zap.String("to", string(appt.Status)),
	)
	return nil
}
