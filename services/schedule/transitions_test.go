package schedule

import (
	"context"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixmo/models"
)

func bookTestAppointment(t *testing.T, e *DefaultScheduleEngine, avail *memAvailabilityRepo) *models.Appointment {
	t.Helper()
	seedMondayTemplate(avail, "prov-1")
	appt, err := e.RequestBooking(context.Background(), BookingRequest{
		ProviderID: "prov-1", CustomerID: "cust-1", Date: "2025-07-07", Start: 600,
	})
	require.NoError(t, err)
	return appt
}

func TestTransitionHappyPath(t *testing.T) {
	e, avail, _ := newTestEngine()
	appt := bookTestAppointment(t, e, avail)
	ctx := context.Background()

	for _, next := range []models.AppointmentStatus{
		models.StatusOnTheWay, models.StatusInProgress,
	} {
		updated, err := e.TransitionAppointment(ctx, appt.ID, next, TransitionFields{})
		require.NoError(t, err, string(next))
		assert.Equal(t, next, updated.Status)
	}

	price := 1800.0
	done, err := e.TransitionAppointment(ctx, appt.ID, models.StatusCompleted,
		TransitionFields{FinalPrice: &price})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCompleted, done.Status)
	assert.Equal(t, 1800.0, done.FinalPrice)
	assert.False(t, done.Open)
}

func TestTransitionSkippingStagesRejected(t *testing.T) {
	e, avail, _ := newTestEngine()
	appt := bookTestAppointment(t, e, avail)

	_, err := e.TransitionAppointment(context.Background(), appt.ID, models.StatusCompleted, TransitionFields{})
	assert.True(t, IsInvalidTransition(err), "got %v", err)
}

func TestTransitionCancelRequiresReason(t *testing.T) {
	e, avail, _ := newTestEngine()
	appt := bookTestAppointment(t, e, avail)
	ctx := context.Background()

	_, err := e.TransitionAppointment(ctx, appt.ID, models.StatusCancelled, TransitionFields{})
	assert.True(t, IsValidation(err), "got %v", err)

	_, err = e.TransitionAppointment(ctx, appt.ID, models.StatusCancelled,
		TransitionFields{CancellationReason: "   "})
	assert.True(t, IsValidation(err), "got %v", err)

	cancelled, err := e.TransitionAppointment(ctx, appt.ID, models.StatusCancelled,
		TransitionFields{CancellationReason: "customer travelling"})
	require.NoError(t, err)
	assert.Equal(t, models.StatusCancelled, cancelled.Status)
	assert.Equal(t, "customer travelling", cancelled.CancellationReason)

	// Terminal is final.
	_, err = e.TransitionAppointment(ctx, appt.ID, models.StatusAccepted, TransitionFields{})
	assert.True(t, IsInvalidTransition(err), "got %v", err)
}

func TestTransitionUnknownStatusAndAppointment(t *testing.T) {
	e, avail, _ := newTestEngine()
	appt := bookTestAppointment(t, e, avail)
	ctx := context.Background()

	_, err := e.TransitionAppointment(ctx, appt.ID, models.AppointmentStatus("archived"), TransitionFields{})
	assert.True(t, IsValidation(err), "got %v", err)

	_, err = e.TransitionAppointment(ctx, "missing", models.StatusOnTheWay, TransitionFields{})
	assert.True(t, IsNotFound(err), "got %v", err)
}

func TestRescheduleMovesOccurrence(t *testing.T) {
	e, avail, _ := newTestEngine()
	appt := bookTestAppointment(t, e, avail)
	ctx := context.Background()

	// Advance the appointment first; reschedule must reset it to accepted.
	_, err := e.TransitionAppointment(ctx, appt.ID, models.StatusOnTheWay, TransitionFields{})
	require.NoError(t, err)

	moved, err := e.RescheduleAppointment(ctx, appt.ID, "2025-07-14", 600, "provider double-checked stock")
	require.NoError(t, err)
	assert.Equal(t, "2025-07-14", moved.Date)
	assert.Equal(t, models.StatusAccepted, moved.Status)
	assert.True(t, strings.HasPrefix(moved.CancellationReason, "[rescheduled from 2025-07-07 10:00]"),
		"note %q", moved.CancellationReason)

	// The vacated occurrence is bookable again.
	slots, err := e.ResolveAvailability(ctx, "prov-1", "2025-07-07")
	require.NoError(t, err)
	require.Len(t, slots, 1)
	assert.Equal(t, models.SlotAvailable, slots[0].Status)
}

func TestRescheduleTargetMustBeFree(t *testing.T) {
	e, avail, _ := newTestEngine()
	appt := bookTestAppointment(t, e, avail)
	ctx := context.Background()

	_, err := e.RequestBooking(ctx, BookingRequest{
		ProviderID: "prov-1", CustomerID: "cust-2", Date: "2025-07-14", Start: 600,
	})
	require.NoError(t, err)

	_, err = e.RescheduleAppointment(ctx, appt.ID, "2025-07-14", 600, "attempting to move")
	assert.True(t, IsSlotUnavailable(err), "got %v", err)

	// No template on the target weekday.
	_, err = e.RescheduleAppointment(ctx, appt.ID, "2025-07-09", 600, "attempting to move")
	assert.True(t, IsNotFound(err), "got %v", err)

	// A reason is mandatory.
	_, err = e.RescheduleAppointment(ctx, appt.ID, "2025-07-21", 600, "")
	assert.True(t, IsValidation(err), "got %v", err)
}

func TestRescheduleTerminalAppointmentRejected(t *testing.T) {
	e, avail, _ := newTestEngine()
	appt := bookTestAppointment(t, e, avail)
	ctx := context.Background()

	_, err := e.TransitionAppointment(ctx, appt.ID, models.StatusCancelled,
		TransitionFields{CancellationReason: "done with it"})
	require.NoError(t, err)

	_, err = e.RescheduleAppointment(ctx, appt.ID, "2025-07-14", 600, "too late")
	assert.True(t, IsInvalidTransition(err), "got %v", err)
}
