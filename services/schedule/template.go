package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"

	availabilityRepo "fixmo/database/repository/availability"
	"fixmo/models"
	"fixmo/utils"

	"go.uber.org/zap"
)

const minutesPerDay = 24 * 60

// SetWeeklyTemplate replaces the provider's full weekly template. Windows
// with start >= end are rejected, as are overlapping windows on the same
// day. Existing appointments that no longer fit the new template are left
// untouched; the weekly sync job surfaces them as reconciliation warnings.
func (e *DefaultScheduleEngine) SetWeeklyTemplate(ctx context.Context, providerID string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	if providerID == "" {
		return nil, &ValidationError{Message: "provider id is required"}
	}
	if err := validateTemplate(slots); err != nil {
		return nil, err
	}

	saved, err := e.Availability.ReplaceForProvider(ctx, providerID, slots)
	if err != nil {
		return nil, fmt.Errorf("set weekly template: %w", err)
	}

	e.invalidateProvider(ctx, providerID)

	utils.GetLogger().Info("weekly template replaced",
		zap.String("providerId", providerID),
		zap.Int("slots", len(saved)),
	)
	return saved, nil
}

// ListTemplate returns the provider's template ordered by (day, start).
func (e *DefaultScheduleEngine) ListTemplate(ctx context.Context, providerID string, activeOnly bool) ([]models.AvailabilitySlot, error) {
	slots, err := e.Availability.ListByProvider(ctx, providerID, activeOnly)
	if err != nil {
		return nil, fmt.Errorf("list template: %w", err)
	}
	return slots, nil
}

// SetTemplateActive soft-toggles one window. Appointment history is not
// altered; deactivation only removes the window from future resolutions.
func (e *DefaultScheduleEngine) SetTemplateActive(ctx context.Context, slotID string, active bool) error {
	slot, err := e.Availability.GetByID(ctx, slotID)
	if err != nil {
		if errors.Is(err, availabilityRepo.ErrSlotNotFound) {
			return &NotFoundError{Resource: "availability slot", Key: slotID}
		}
		return fmt.Errorf("toggle template: %w", err)
	}

	if err := e.Availability.SetActive(ctx, slotID, active); err != nil {
		return fmt.Errorf("toggle template: %w", err)
	}

	e.invalidateProvider(ctx, slot.ProviderID)
	return nil
}

func validateTemplate(slots []models.AvailabilitySlot) error {
	for i, s := range slots {
		if s.Start < 0 || s.End > minutesPerDay {
			return &ValidationError{Message: fmt.Sprintf("slot %d: window outside the day", i+1)}
		}
		if s.Start >= s.End {
			return &ValidationError{Message: fmt.Sprintf("slot %d: start must be before end", i+1)}
		}
	}

	// Overlap check per day: sort by (day, start) and compare neighbours.
	sorted := make([]models.AvailabilitySlot, len(slots))
	copy(sorted, slots)
	sort.Slice(sorted, func(i, j int) bool {
		if sorted[i].DayOfWeek != sorted[j].DayOfWeek {
			return sorted[i].DayOfWeek < sorted[j].DayOfWeek
		}
		return sorted[i].Start < sorted[j].Start
	})
	for i := 1; i < len(sorted); i++ {
		if sorted[i].Overlaps(sorted[i-1]) {
			return &ValidationError{Message: fmt.Sprintf(
				"overlapping windows on %s: %s-%s and %s-%s",
				sorted[i].DayOfWeek,
				models.FormatClock(sorted[i-1].Start), models.FormatClock(sorted[i-1].End),
				models.FormatClock(sorted[i].Start), models.FormatClock(sorted[i].End),
			)}
		}
	}
	return nil
}
