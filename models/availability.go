package models

import (
	"fmt"
	"strings"
	"time"
)

// AvailabilitySlot is one recurring weekly window a provider offers:
// a day of week plus a start/end expressed as minutes from midnight
// (e.g., 600 for 10:00 AM). Times are wall-clock local to the provider;
// no timezone conversion is applied anywhere in the engine.
type AvailabilitySlot struct {
	ID         string       `bson:"id" json:"id"`
	ProviderID string       `bson:"providerId" json:"providerId"`
	DayOfWeek  time.Weekday `bson:"dayOfWeek" json:"dayOfWeek"`
	Start      int          `bson:"start" json:"start"`
	End        int          `bson:"end" json:"end"`
	Active     bool         `bson:"active" json:"active"`

	// Booked is a maintenance-job cache, never the source of truth.
	// The resolver always re-derives occurrence status from the
	// appointment ledger for the concrete date being asked about.
	Booked    bool   `bson:"booked" json:"booked"`
	BookedFor string `bson:"bookedFor,omitempty" json:"bookedFor,omitempty"` // occurrence date the flag was set for, "2006-01-02"

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// SlotStatus is the resolved state of one occurrence of a template.
type SlotStatus string

const (
	SlotAvailable SlotStatus = "available"
	SlotBooked    SlotStatus = "booked"
	SlotInactive  SlotStatus = "inactive"
)

// ProjectedSlot is the per-date projection of a template produced by the
// resolver. It is derived data and is never persisted.
type ProjectedSlot struct {
	Slot        AvailabilitySlot `json:"slot"`
	Date        string           `json:"date"` // "2006-01-02"
	Status      SlotStatus       `json:"status"`
	Appointment *Appointment     `json:"appointment,omitempty"`
}

// WeeklySlotInput is the wire shape for one template window as submitted by
// the provider app: legacy weekday labels and "HH:MM" clock strings.
type WeeklySlotInput struct {
	DayOfWeek string `json:"dayOfWeek" binding:"required"`
	StartTime string `json:"startTime" binding:"required"`
	EndTime   string `json:"endTime" binding:"required"`
	Active    *bool  `json:"active,omitempty"`
}

// SetWeeklyTemplateRequest defines the payload for replacing a provider's
// full weekly template.
type SetWeeklyTemplateRequest struct {
	Slots []WeeklySlotInput `json:"slots" binding:"required"`
}

const DateLayout = "2006-01-02"

var weekdayByLabel = map[string]time.Weekday{
	"sunday":    time.Sunday,
	"monday":    time.Monday,
	"tuesday":   time.Tuesday,
	"wednesday": time.Wednesday,
	"thursday":  time.Thursday,
	"friday":    time.Friday,
	"saturday":  time.Saturday,
}

// ParseWeekday converts a legacy weekday label ("Monday", "monday", ...)
// into a typed weekday. Matching is case-insensitive so the locale-formatted
// strings the old clients send keep working.
func ParseWeekday(label string) (time.Weekday, error) {
	wd, ok := weekdayByLabel[strings.ToLower(strings.TrimSpace(label))]
	if !ok {
		return 0, fmt.Errorf("invalid day of week %q", label)
	}
	return wd, nil
}

// ParseClock converts a 24-hour "HH:MM" string into minutes from midnight.
func ParseClock(s string) (int, error) {
	t, err := time.Parse("15:04", strings.TrimSpace(s))
	if err != nil {
		return 0, fmt.Errorf("invalid time %q: expected HH:MM", s)
	}
	return t.Hour()*60 + t.Minute(), nil
}

// FormatClock renders minutes from midnight as a 24-hour "HH:MM" string.
func FormatClock(minutes int) string {
	return fmt.Sprintf("%02d:%02d", minutes/60, minutes%60)
}

// ParseDate parses a "2006-01-02" calendar date.
func ParseDate(s string) (time.Time, error) {
	d, err := time.Parse(DateLayout, strings.TrimSpace(s))
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: expected YYYY-MM-DD", s)
	}
	return d, nil
}

// Overlaps reports whether two windows on the same day share any minutes.
func (s AvailabilitySlot) Overlaps(other AvailabilitySlot) bool {
	if s.DayOfWeek != other.DayOfWeek {
		return false
	}
	return s.Start < other.End && other.Start < s.End
}
