package schedule

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	appointmentRepo "fixmo/database/repository/appointment"
	"fixmo/models"
	"fixmo/utils"

	"go.uber.org/zap"
)

// GetAppointment fetches one appointment by id.
func (e *DefaultScheduleEngine) GetAppointment(ctx context.Context, id string) (*models.Appointment, error) {
	appt, err := e.Appointments.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, &NotFoundError{Resource: "appointment", Key: id}
		}
		return nil, fmt.Errorf("get appointment: %w", err)
	}
	return appt, nil
}

// TransitionAppointment applies a status change validated against the state
// machine. Fields irrelevant to the requested transition are ignored.
// Cancellation is allowed from any non-terminal state and requires a reason.
func (e *DefaultScheduleEngine) TransitionAppointment(ctx context.Context, id string, to models.AppointmentStatus, fields TransitionFields) (*models.Appointment, error) {
	if !to.Valid() {
		return nil, &ValidationError{Message: fmt.Sprintf("unknown status %q", to)}
	}

	current, err := e.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if !current.Status.CanTransitionTo(to) {
		return nil, &InvalidTransitionError{From: current.Status, To: to}
	}

	set := map[string]any{}
	switch to {
	case models.StatusCancelled:
		if strings.TrimSpace(fields.CancellationReason) == "" {
			return nil, &ValidationError{Message: "cancellation requires a reason"}
		}
		set["cancellationReason"] = fields.CancellationReason
	case models.StatusCompleted:
		if fields.FinalPrice != nil {
			set["finalPrice"] = *fields.FinalPrice
		}
	}

	// The current status rides in the update filter so a concurrent
	// transition (or the maintenance sweep) cannot be overwritten blindly.
	updated, err := e.Appointments.UpdateStatus(ctx, id, []models.AppointmentStatus{current.Status}, to, set)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrStatusConflict) {
			return nil, &ConflictError{Inner: err}
		}
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, &NotFoundError{Resource: "appointment", Key: id}
		}
		return nil, fmt.Errorf("transition appointment: %w", err)
	}

	// A cancellation frees the occurrence; drop any cached projection.
	if to.Terminal() {
		e.invalidateProvider(ctx, updated.ProviderID)
	}

	if e.Notifier != nil {
		go func(a models.Appointment, prev models.AppointmentStatus) {
			nctx, ncancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer ncancel()
			if err := e.Notifier.NotifyStatusChanged(nctx, &a, prev); err != nil {
				utils.GetLogger().Warn("status notification failed",
					zap.String("appointmentId", a.ID), zap.Error(err))
			}
		}(*updated, current.Status)
	}

	return updated, nil
}

// RescheduleAppointment moves an open appointment to a new occurrence. The
// appointment resets to accepted (it does not pass through pending again)
// and the reason is prefixed onto the audit note so prior entries survive.
func (e *DefaultScheduleEngine) RescheduleAppointment(ctx context.Context, id, newDate string, newStart int, reason string) (*models.Appointment, error) {
	day, err := models.ParseDate(newDate)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if strings.TrimSpace(reason) == "" {
		return nil, &ValidationError{Message: "reschedule requires a reason"}
	}

	current, err := e.GetAppointment(ctx, id)
	if err != nil {
		return nil, err
	}
	if current.Status.Terminal() {
		return nil, &InvalidTransitionError{From: current.Status, To: models.StatusAccepted}
	}

	// The new occurrence must be free and offered by an active window.
	tmpl, err := e.Availability.GetByOccurrenceKey(ctx, current.ProviderID, day.Weekday(), newStart)
	if err != nil {
		return nil, &NotFoundError{
			Resource: "availability slot",
			Key:      fmt.Sprintf("%s %s %s", current.ProviderID, day.Weekday(), models.FormatClock(newStart)),
		}
	}
	existing, err := e.Appointments.FindByProviderAndOccurrence(ctx, current.ProviderID, newDate, newStart)
	if err != nil {
		return nil, fmt.Errorf("reschedule: %w", err)
	}
	if existing != nil && existing.ID != id {
		return nil, &SlotUnavailableError{ProviderID: current.ProviderID, Date: newDate, Start: newStart}
	}

	note := fmt.Sprintf("[rescheduled from %s %s] %s",
		current.Date, models.FormatClock(current.Start), reason)
	if current.CancellationReason != "" {
		note = note + "; " + current.CancellationReason
	}

	updated, err := e.Appointments.Reschedule(ctx, id, newDate, tmpl.Start, tmpl.End, note)
	if err != nil {
		if errors.Is(err, appointmentRepo.ErrOccurrenceTaken) {
			return nil, &SlotUnavailableError{ProviderID: current.ProviderID, Date: newDate, Start: newStart}
		}
		if errors.Is(err, appointmentRepo.ErrAppointmentNotFound) {
			return nil, &NotFoundError{Resource: "appointment", Key: id}
		}
		return nil, fmt.Errorf("reschedule: %w", err)
	}

	e.invalidateProvider(ctx, current.ProviderID)
	return updated, nil
}
