package schedule

import (
	"context"
	"errors"
	"fmt"
	"time"

	appointmentRepo "fixmo/database/repository/appointment"
	availabilityRepo "fixmo/database/repository/availability"
	"fixmo/models"
	"fixmo/utils"

	"go.uber.org/zap"
)

// RequestBooking is the sole write path that turns a slot-booking request
// into an appointment. The availability re-check runs inside the same
// transaction as the insert, so of N concurrent requests for one occurrence
// exactly one commits; the rest receive SlotUnavailableError. Raw storage
// conflicts never escape uninterpreted.
func (e *DefaultScheduleEngine) RequestBooking(ctx context.Context, req BookingRequest) (*models.Appointment, error) {
	logger := utils.GetLogger()

	day, err := models.ParseDate(req.Date)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}
	if req.ProviderID == "" || req.CustomerID == "" {
		return nil, &ValidationError{Message: "provider and customer ids are required"}
	}

	// Step 1: an active template must exist for (provider, weekday, start).
	tmpl, err := e.Availability.GetByOccurrenceKey(ctx, req.ProviderID, day.Weekday(), req.Start)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrSlotNotFound) {
			return nil, &NotFoundError{
				Resource: "availability slot",
				Key:      fmt.Sprintf("%s %s %s", req.ProviderID, day.Weekday(), models.FormatClock(req.Start)),
			}
		}
		return nil, fmt.Errorf("request booking: %w", err)
	}

	appt := &models.Appointment{
		ProviderID:        req.ProviderID,
		CustomerID:        req.CustomerID,
		Date:              req.Date,
		Start:             tmpl.Start,
		End:               tmpl.End,
		ScheduledAt:       day.Add(time.Duration(tmpl.Start) * time.Minute),
		Status:            models.StatusAccepted,
		FinalPrice:        req.FinalPrice,
		RepairDescription: req.RepairDescription,
		AvailabilityID:    tmpl.ID,
	}

	// Step 2: atomic check-then-create under a bounded deadline. One retry
	// on a storage-level conflict, then the slot is reported unavailable.
	commitCtx, cancel := context.WithTimeout(ctx, e.CommitTimeout)
	defer cancel()

	for attempt := 0; ; attempt++ {
		err = e.Appointments.CreateIfOccurrenceFree(commitCtx, appt)
		if err == nil {
			break
		}
		if errors.Is(err, appointmentRepo.ErrOccurrenceTaken) {
			return nil, &SlotUnavailableError{ProviderID: req.ProviderID, Date: req.Date, Start: req.Start}
		}
		if commitCtx.Err() != nil {
			return nil, &TimeoutError{Op: "booking commit"}
		}
		if attempt == 0 {
			logger.Warn("booking commit conflicted, retrying once",
				zap.String("providerId", req.ProviderID),
				zap.String("date", req.Date),
				zap.Error(err),
			)
			continue
		}
		return nil, &ConflictError{Inner: err}
	}

	// Step 3: post-commit side effects, all best-effort. The booked flag is
	// only a cache for the maintenance job and the notification dispatch
	// must not roll back the booking.
	e.invalidateProvider(ctx, req.ProviderID)

	if err := e.Availability.SetBooked(ctx, tmpl.ID, true, req.Date); err != nil {
		logger.Warn("booked-flag cache write failed",
			zap.String("slotId", tmpl.ID), zap.Error(err))
	}

	if e.Notifier != nil {
		go func(a models.Appointment) {
			nctx, ncancel := context.WithTimeout(context.Background(), 10*time.Second)
			defer ncancel()
			if err := e.Notifier.NotifyBookingConfirmed(nctx, &a); err != nil {
				logger.Warn("booking notification failed",
					zap.String("appointmentId", a.ID), zap.Error(err))
			}
		}(*appt)
	}

	logger.Info("booking committed",
		zap.String("appointmentId", appt.ID),
		zap.String("providerId", appt.ProviderID),
		zap.String("date", appt.Date),
		zap.String("time", models.FormatClock(appt.Start)),
	)
	return appt, nil
}

// invalidateProvider drops cached projections for the provider so the next
// read reflects the committed write.
func (e *DefaultScheduleEngine) invalidateProvider(ctx context.Context, providerID string) {
	if e.Cache == nil {
		return
	}
	if err := e.Cache.InvalidateProvider(ctx, providerID); err != nil {
		utils.GetLogger().Warn("availability cache invalidation failed",
			zap.String("providerId", providerID), zap.Error(err))
	}
}
