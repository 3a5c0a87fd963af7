package models

import "time"

// AppointmentStatus is the lifecycle state of an appointment.
type AppointmentStatus string

const (
	StatusPending    AppointmentStatus = "pending"
	StatusAccepted   AppointmentStatus = "accepted"
	StatusOnTheWay   AppointmentStatus = "on_the_way"
	StatusInProgress AppointmentStatus = "in_progress"
	StatusCompleted  AppointmentStatus = "completed"
	StatusCancelled  AppointmentStatus = "cancelled"

	// StatusFinished is a terminal equivalent of completed, applied only by
	// batch maintenance to entries left hanging past their scheduled date.
	StatusFinished AppointmentStatus = "finished"
)

// transitions lists the forward edges of the status state machine.
// Cancellation is handled separately: it is allowed from any non-terminal
// state and requires a reason.
var transitions = map[AppointmentStatus][]AppointmentStatus{
	StatusPending:    {StatusAccepted},
	StatusAccepted:   {StatusOnTheWay, StatusInProgress},
	StatusOnTheWay:   {StatusInProgress},
	StatusInProgress: {StatusCompleted},
}

// Terminal reports whether no further transitions are allowed.
func (s AppointmentStatus) Terminal() bool {
	switch s {
	case StatusCompleted, StatusCancelled, StatusFinished:
		return true
	}
	return false
}

// CanTransitionTo reports whether the state machine permits moving from s
// to next.
func (s AppointmentStatus) CanTransitionTo(next AppointmentStatus) bool {
	if s.Terminal() {
		return false
	}
	if next == StatusCancelled {
		return true
	}
	for _, allowed := range transitions[s] {
		if allowed == next {
			return true
		}
	}
	return false
}

// Valid reports whether s is a known status value.
func (s AppointmentStatus) Valid() bool {
	switch s {
	case StatusPending, StatusAccepted, StatusOnTheWay, StatusInProgress,
		StatusCompleted, StatusCancelled, StatusFinished:
		return true
	}
	return false
}

// OpenStatuses returns every non-terminal status. Appointments in one of
// these states hold their occurrence against double booking.
func OpenStatuses() []AppointmentStatus {
	return []AppointmentStatus{StatusPending, StatusAccepted, StatusOnTheWay, StatusInProgress}
}

// Appointment is one concrete, dated booking against a provider.
// The occurrence key is (ProviderID, Date, Start): Date is the calendar day
// in "2006-01-02" form and Start is minutes from midnight, mirroring the
// template representation so the resolver's exact-date match is a plain
// equality on both fields.
type Appointment struct {
	ID         string `bson:"id" json:"id"`
	ProviderID string `bson:"providerId" json:"providerId"`
	CustomerID string `bson:"customerId" json:"customerId"`

	Date  string `bson:"date" json:"date"`
	Start int    `bson:"start" json:"start"`
	End   int    `bson:"end" json:"end"`

	// ScheduledAt is Date+Start as a single timestamp, kept for horizon
	// queries (stale sweep). Wall-clock local, minute granularity.
	ScheduledAt time.Time `bson:"scheduledAt" json:"scheduledAt"`

	Status AppointmentStatus `bson:"status" json:"status"`

	// Open mirrors !Status.Terminal() and backs the partial unique index
	// that enforces at most one open appointment per occurrence.
	Open bool `bson:"open" json:"-"`

	FinalPrice         float64 `bson:"finalPrice,omitempty" json:"finalPrice,omitempty"`
	CancellationReason string  `bson:"cancellationReason,omitempty" json:"cancellationReason,omitempty"`
	RepairDescription  string  `bson:"repairDescription" json:"repairDescription"`

	// AvailabilityID points back at the originating template window.
	AvailabilityID string `bson:"availabilityId,omitempty" json:"availabilityId,omitempty"`

	CreatedAt time.Time `bson:"createdAt" json:"createdAt"`
	UpdatedAt time.Time `bson:"updatedAt" json:"updatedAt"`
}

// OccurrenceTime materializes Date+Start into a timestamp.
func (a Appointment) OccurrenceTime() (time.Time, error) {
	d, err := ParseDate(a.Date)
	if err != nil {
		return time.Time{}, err
	}
	return d.Add(time.Duration(a.Start) * time.Minute), nil
}
