package schedule

import (
	"context"
	"fmt"

	"fixmo/models"
	"fixmo/utils"

	"go.uber.org/zap"
)

// RunWeeklySync is the periodic reset/reconciliation pass. It is idempotent
// and partial-failure tolerant: each item is processed independently, a
// failure is logged and the batch continues, and a second consecutive run
// produces the same end state as the first.
func (e *DefaultScheduleEngine) RunWeeklySync(ctx context.Context) (SyncReport, error) {
	logger := utils.GetLogger()
	var report SyncReport

	cutoff := e.now().Add(-e.StaleHorizon).Format(models.DateLayout)

	// Phase 1: clear booked-flag cache entries whose occurrence has fully
	// elapsed. The flags are advisory, so a failed clear only means the
	// next run retries it.
	cleared, err := e.Availability.ClearBookedBefore(ctx, cutoff)
	if err != nil {
		logger.Error("weekly sync: stale flag reset failed", zap.Error(err))
		report.ItemErrors++
	} else {
		report.FlagsCleared = cleared
	}

	// Phase 2: close out appointments left hanging past the horizon. The
	// status set is in the update filter, so an in-flight legitimate
	// transition wins over the sweep.
	finished, err := e.Appointments.FinishStaleBefore(ctx, cutoff)
	if err != nil {
		logger.Error("weekly sync: stale appointment sweep failed", zap.Error(err))
		report.ItemErrors++
	} else {
		report.Finished = finished
	}

	// Phase 3: reconcile flags against the ledger. Every open appointment
	// should have its originating window flagged; a missing window is a
	// data-quality warning, never a reason to abort the run.
	open, err := e.Appointments.ListOpen(ctx)
	if err != nil {
		logger.Error("weekly sync: listing open appointments failed", zap.Error(err))
		report.ItemErrors++
		return report, fmt.Errorf("weekly sync: %w", err)
	}

	for _, appt := range open {
		day, err := models.ParseDate(appt.Date)
		if err != nil {
			logger.Warn("weekly sync: appointment with malformed date",
				zap.String("appointmentId", appt.ID), zap.String("date", appt.Date))
			report.ItemErrors++
			continue
		}

		tmpl, err := e.Availability.GetByOccurrenceKey(ctx, appt.ProviderID, day.Weekday(), appt.Start)
		if err != nil {
			logger.Warn("weekly sync: no template for open appointment",
				zap.String("appointmentId", appt.ID),
				zap.String("providerId", appt.ProviderID),
				zap.String("date", appt.Date),
				zap.String("time", models.FormatClock(appt.Start)),
			)
			report.Unmatched++
			continue
		}

		if tmpl.Booked && tmpl.BookedFor == appt.Date {
			continue // already consistent
		}
		if err := e.Availability.SetBooked(ctx, tmpl.ID, true, appt.Date); err != nil {
			logger.Warn("weekly sync: booked flag restore failed",
				zap.String("slotId", tmpl.ID), zap.Error(err))
			report.ItemErrors++
			continue
		}
		report.FlagsRestored++
	}

	logger.Info("weekly sync completed",
		zap.Int64("flagsCleared", report.FlagsCleared),
		zap.Int64("finished", report.Finished),
		zap.Int("flagsRestored", report.FlagsRestored),
		zap.Int("unmatched", report.Unmatched),
		zap.Int("itemErrors", report.ItemErrors),
	)
	return report, nil
}
