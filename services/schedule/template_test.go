package schedule

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"fixmo/models"
)

func TestSetWeeklyTemplateRejectsInvertedWindow(t *testing.T) {
	e, _, _ := newTestEngine()

	_, err := e.SetWeeklyTemplate(context.Background(), "prov-1", []models.AvailabilitySlot{
		{DayOfWeek: time.Monday, Start: 11 * 60, End: 10 * 60},
	})
	assert.True(t, IsValidation(err), "got %v", err)

	_, err = e.SetWeeklyTemplate(context.Background(), "prov-1", []models.AvailabilitySlot{
		{DayOfWeek: time.Monday, Start: 600, End: 600},
	})
	assert.True(t, IsValidation(err), "got %v", err)
}

func TestSetWeeklyTemplateRejectsOverlap(t *testing.T) {
	e, _, _ := newTestEngine()

	_, err := e.SetWeeklyTemplate(context.Background(), "prov-1", []models.AvailabilitySlot{
		{DayOfWeek: time.Monday, Start: 600, End: 720},
		{DayOfWeek: time.Monday, Start: 660, End: 780},
	})
	assert.True(t, IsValidation(err), "got %v", err)

	// Same windows on different days are fine.
	saved, err := e.SetWeeklyTemplate(context.Background(), "prov-1", []models.AvailabilitySlot{
		{DayOfWeek: time.Monday, Start: 600, End: 720, Active: true},
		{DayOfWeek: time.Tuesday, Start: 660, End: 780, Active: true},
	})
	require.NoError(t, err)
	assert.Len(t, saved, 2)
}

func TestSetWeeklyTemplateReplacePreservesSurvivingWindowIDs(t *testing.T) {
	e, _, _ := newTestEngine()
	ctx := context.Background()

	first, err := e.SetWeeklyTemplate(ctx, "prov-1", []models.AvailabilitySlot{
		{DayOfWeek: time.Monday, Start: 600, End: 660, Active: true},
		{DayOfWeek: time.Wednesday, Start: 840, End: 900, Active: true},
	})
	require.NoError(t, err)
	require.Len(t, first, 2)

	// The Monday window survives the replace, Wednesday moves.
	second, err := e.SetWeeklyTemplate(ctx, "prov-1", []models.AvailabilitySlot{
		{DayOfWeek: time.Monday, Start: 600, End: 660, Active: true},
		{DayOfWeek: time.Thursday, Start: 840, End: 900, Active: true},
	})
	require.NoError(t, err)
	require.Len(t, second, 2)
	assert.Equal(t, first[0].ID, second[0].ID)

	// The dropped Wednesday window is deactivated, not deleted.
	all, err := e.ListTemplate(ctx, "prov-1", false)
	require.NoError(t, err)
	assert.Len(t, all, 3)

	active, err := e.ListTemplate(ctx, "prov-1", true)
	require.NoError(t, err)
	assert.Len(t, active, 2)
}

func TestSetTemplateActiveUnknownSlot(t *testing.T) {
	e, _, _ := newTestEngine()
	err := e.SetTemplateActive(context.Background(), "nope", false)
	assert.True(t, IsNotFound(err), "got %v", err)
}
