package schedule

import (
	"context"
	"fmt"

	"fixmo/models"
	"fixmo/utils"

	"go.uber.org/zap"
)

// ResolveAvailability projects the provider's weekly template onto one
// concrete calendar date and annotates each window with its occurrence
// status. Statuses follow rolling weekly recurrence: each occurrence is
// resolved independently against the appointment ledger for exactly that
// date, so booking one Monday never shadows any other Monday. The template's
// booked flag is deliberately ignored here; it is a maintenance cache, not
// a source of truth.
func (e *DefaultScheduleEngine) ResolveAvailability(ctx context.Context, providerID, date string) ([]models.ProjectedSlot, error) {
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, &ValidationError{Message: err.Error()}
	}

	// The epoch is captured before any ledger read. A booking that commits
	// while this projection is being computed bumps it, and the cache write
	// below is dropped rather than resurrecting the pre-commit view.
	var epoch string
	if e.Cache != nil {
		if cached, ok := e.Cache.Get(ctx, providerID, date); ok {
			return cached, nil
		}
		epoch = e.Cache.Epoch(ctx, providerID)
	}

	templates, err := e.Availability.ListByProviderAndDay(ctx, providerID, day.Weekday(), true)
	if err != nil {
		return nil, fmt.Errorf("resolve availability: %w", err)
	}

	projected := make([]models.ProjectedSlot, 0, len(templates))
	for _, tmpl := range templates {
		slot := models.ProjectedSlot{
			Slot:   tmpl,
			Date:   date,
			Status: models.SlotAvailable,
		}

		// Deactivated windows are filtered out by the query above; the
		// branch stays for callers projecting a slot fetched earlier.
		if !tmpl.Active {
			slot.Status = models.SlotInactive
			projected = append(projected, slot)
			continue
		}

		appt, err := e.Appointments.FindByProviderAndOccurrence(ctx, providerID, date, tmpl.Start)
		if err != nil {
			return nil, fmt.Errorf("resolve availability: %w", err)
		}
		if appt != nil {
			slot.Status = models.SlotBooked
			slot.Appointment = appt
		}
		projected = append(projected, slot)
	}

	if e.Cache != nil {
		if err := e.Cache.SetIfCurrent(ctx, providerID, date, projected, epoch); err != nil {
			utils.GetLogger().Warn("availability cache write failed",
				zap.String("providerId", providerID), zap.Error(err))
		}
	}
	return projected, nil
}
