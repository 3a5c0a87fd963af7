package schedule

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	appointmentRepo "fixmo/database/repository/appointment"
	availabilityRepo "fixmo/database/repository/availability"
	"fixmo/models"
)

// memAvailabilityRepo is an in-memory AvailabilityRepository with the same
// semantics as the Mongo implementation, including the soft replace and the
// active-only occurrence lookup.
type memAvailabilityRepo struct {
	mu    sync.Mutex
	slots map[string]*models.AvailabilitySlot

	failSetBooked bool
	failClear     bool
}

func newMemAvailabilityRepo() *memAvailabilityRepo {
	return &memAvailabilityRepo{slots: make(map[string]*models.AvailabilitySlot)}
}

func (r *memAvailabilityRepo) seed(slot models.AvailabilitySlot) models.AvailabilitySlot {
	r.mu.Lock()
	defer r.mu.Unlock()
	if slot.ID == "" {
		slot.ID = uuid.NewString()
	}
	cp := slot
	r.slots[cp.ID] = &cp
	return cp
}

func (r *memAvailabilityRepo) ReplaceForProvider(ctx context.Context, providerID string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	for _, s := range r.slots {
		if s.ProviderID == providerID {
			s.Active = false
		}
	}

	var out []models.AvailabilitySlot
	for _, in := range slots {
		var match *models.AvailabilitySlot
		for _, s := range r.slots {
			if s.ProviderID == providerID && s.DayOfWeek == in.DayOfWeek && s.Start == in.Start && s.End == in.End {
				match = s
				break
			}
		}
		if match == nil {
			match = &models.AvailabilitySlot{
				ID:         uuid.NewString(),
				ProviderID: providerID,
				DayOfWeek:  in.DayOfWeek,
				Start:      in.Start,
				End:        in.End,
				CreatedAt:  time.Now(),
			}
			r.slots[match.ID] = match
		}
		match.Active = in.Active
		match.UpdatedAt = time.Now()
		out = append(out, *match)
	}
	sortSlots(out)
	return out, nil
}

func (r *memAvailabilityRepo) ListByProvider(ctx context.Context, providerID string, activeOnly bool) ([]models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	var out []models.AvailabilitySlot
	for _, s := range r.slots {
		if s.ProviderID != providerID {
			continue
		}
		if activeOnly && !s.Active {
			continue
		}
		out = append(out, *s)
	}
	sortSlots(out)
	return out, nil
}

func (r *memAvailabilityRepo) ListByProviderAndDay(ctx context.Context, providerID string, day time.Weekday, activeOnly bool) ([]models.AvailabilitySlot, error) {
	all, _ := r.ListByProvider(ctx, providerID, activeOnly)
	var out []models.AvailabilitySlot
	for _, s := range all {
		if s.DayOfWeek == day {
			out = append(out, s)
		}
	}
	return out, nil
}

func (r *memAvailabilityRepo) GetByID(ctx context.Context, slotID string) (*models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return nil, availabilityRepo.ErrSlotNotFound
	}
	cp := *s
	return &cp, nil
}

func (r *memAvailabilityRepo) GetByOccurrenceKey(ctx context.Context, providerID string, day time.Weekday, start int) (*models.AvailabilitySlot, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, s := range r.slots {
		if s.ProviderID == providerID && s.DayOfWeek == day && s.Start == start && s.Active {
			cp := *s
			return &cp, nil
		}
	}
	return nil, availabilityRepo.ErrSlotNotFound
}

func (r *memAvailabilityRepo) SetActive(ctx context.Context, slotID string, active bool) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	s, ok := r.slots[slotID]
	if !ok {
		return availabilityRepo.ErrSlotNotFound
	}
	s.Active = active
	s.UpdatedAt = time.Now()
	return nil
}

func (r *memAvailabilityRepo) SetBooked(ctx context.Context, slotID string, booked bool, bookedFor string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failSetBooked {
		return errors.New("flag write refused")
	}
	s, ok := r.slots[slotID]
	if !ok {
		return availabilityRepo.ErrSlotNotFound
	}
	s.Booked = booked
	if booked {
		s.BookedFor = bookedFor
	} else {
		s.BookedFor = ""
	}
	s.UpdatedAt = time.Now()
	return nil
}

func (r *memAvailabilityRepo) ClearBookedBefore(ctx context.Context, cutoffDate string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.failClear {
		return 0, errors.New("flag clear refused")
	}
	var n int64
	for _, s := range r.slots {
		if s.Booked && (s.BookedFor == "" || s.BookedFor < cutoffDate) {
			s.Booked = false
			s.BookedFor = ""
			n++
		}
	}
	return n, nil
}

func (r *memAvailabilityRepo) EnsureIndexes(ctx context.Context) error { return nil }

func sortSlots(slots []models.AvailabilitySlot) {
	sort.Slice(slots, func(i, j int) bool {
		if slots[i].DayOfWeek != slots[j].DayOfWeek {
			return slots[i].DayOfWeek < slots[j].DayOfWeek
		}
		return slots[i].Start < slots[j].Start
	})
}

// memAppointmentRepo mirrors the Mongo repository's occurrence guarantees:
// CreateIfOccurrenceFree checks and inserts under one lock, so concurrent
// callers observe the same all-or-nothing behaviour as the transactional
// path backed by the partial unique index.
type memAppointmentRepo struct {
	mu    sync.Mutex
	appts map[string]*models.Appointment
}

func newMemAppointmentRepo() *memAppointmentRepo {
	return &memAppointmentRepo{appts: make(map[string]*models.Appointment)}
}

// Create mirrors the plain insert: the occurrence check here stands in for
// the partial unique index, which rejects a second open appointment on any
// insert path, transactional or not.
func (r *memAppointmentRepo) Create(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if !appt.Status.Terminal() && r.occurrenceTakenLocked(appt) {
		return appointmentRepo.ErrOccurrenceTaken
	}
	return r.insertLocked(appt)
}

func (r *memAppointmentRepo) CreateIfOccurrenceFree(ctx context.Context, appt *models.Appointment) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	if r.occurrenceTakenLocked(appt) {
		return appointmentRepo.ErrOccurrenceTaken
	}
	return r.insertLocked(appt)
}

func (r *memAppointmentRepo) occurrenceTakenLocked(appt *models.Appointment) bool {
	for _, a := range r.appts {
		if a.Open && a.ProviderID == appt.ProviderID && a.Date == appt.Date && a.Start == appt.Start {
			return true
		}
	}
	return false
}

func (r *memAppointmentRepo) insertLocked(appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.NewString()
	}
	appt.Open = !appt.Status.Terminal()
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	cp := *appt
	r.appts[cp.ID] = &cp
	return nil
}

func (r *memAppointmentRepo) GetByID(ctx context.Context, id string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	cp := *a
	return &cp, nil
}

func (r *memAppointmentRepo) FindByProviderAndOccurrence(ctx context.Context, providerID, date string, start int) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for _, a := range r.appts {
		if a.Open && a.ProviderID == providerID && a.Date == date && a.Start == start {
			cp := *a
			return &cp, nil
		}
	}
	return nil, nil
}

func (r *memAppointmentRepo) ListOpen(ctx context.Context) ([]models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var out []models.Appointment
	for _, a := range r.appts {
		if a.Open {
			out = append(out, *a)
		}
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Date != out[j].Date {
			return out[i].Date < out[j].Date
		}
		return out[i].Start < out[j].Start
	})
	return out, nil
}

func (r *memAppointmentRepo) UpdateStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, set map[string]any) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	if len(from) > 0 {
		allowed := false
		for _, s := range from {
			if a.Status == s {
				allowed = true
				break
			}
		}
		if !allowed {
			return nil, appointmentRepo.ErrStatusConflict
		}
	}
	a.Status = to
	a.Open = !to.Terminal()
	a.UpdatedAt = time.Now()
	if v, ok := set["cancellationReason"]; ok {
		a.CancellationReason = v.(string)
	}
	if v, ok := set["finalPrice"]; ok {
		a.FinalPrice = v.(float64)
	}
	cp := *a
	return &cp, nil
}

func (r *memAppointmentRepo) Reschedule(ctx context.Context, id string, date string, start, end int, auditNote string) (*models.Appointment, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	a, ok := r.appts[id]
	if !ok || !a.Open {
		return nil, appointmentRepo.ErrAppointmentNotFound
	}
	for _, other := range r.appts {
		if other.ID != id && other.Open && other.ProviderID == a.ProviderID && other.Date == date && other.Start == start {
			return nil, appointmentRepo.ErrOccurrenceTaken
		}
	}
	day, err := models.ParseDate(date)
	if err != nil {
		return nil, err
	}
	a.Date = date
	a.Start = start
	a.End = end
	a.ScheduledAt = day.Add(time.Duration(start) * time.Minute)
	a.Status = models.StatusAccepted
	a.Open = true
	a.CancellationReason = auditNote
	a.UpdatedAt = time.Now()
	cp := *a
	return &cp, nil
}

func (r *memAppointmentRepo) FinishStaleBefore(ctx context.Context, cutoffDate string) (int64, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	var n int64
	for _, a := range r.appts {
		if a.Date < cutoffDate && (a.Status == models.StatusAccepted || a.Status == models.StatusOnTheWay) {
			a.Status = models.StatusFinished
			a.Open = false
			a.UpdatedAt = time.Now()
			n++
		}
	}
	return n, nil
}

func (r *memAppointmentRepo) EnsureIndexes(ctx context.Context) error { return nil }

// memAvailabilityCache implements the epoch-guarded cache contract in
// memory: SetIfCurrent drops the write when the provider was invalidated
// after the epoch was captured.
type memAvailabilityCache struct {
	mu      sync.Mutex
	entries map[string][]models.ProjectedSlot
	epochs  map[string]int
}

func newMemAvailabilityCache() *memAvailabilityCache {
	return &memAvailabilityCache{
		entries: make(map[string][]models.ProjectedSlot),
		epochs:  make(map[string]int),
	}
}

func cacheKey(providerID, date string) string { return providerID + "|" + date }

func (c *memAvailabilityCache) Get(ctx context.Context, providerID, date string) ([]models.ProjectedSlot, bool) {
	c.mu.Lock()
	defer c.mu.Unlock()
	slots, ok := c.entries[cacheKey(providerID, date)]
	return slots, ok
}

func (c *memAvailabilityCache) Epoch(ctx context.Context, providerID string) string {
	c.mu.Lock()
	defer c.mu.Unlock()
	return fmt.Sprintf("%d", c.epochs[providerID])
}

func (c *memAvailabilityCache) SetIfCurrent(ctx context.Context, providerID, date string, slots []models.ProjectedSlot, epoch string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	if fmt.Sprintf("%d", c.epochs[providerID]) != epoch {
		return nil
	}
	c.entries[cacheKey(providerID, date)] = slots
	return nil
}

func (c *memAvailabilityCache) InvalidateProvider(ctx context.Context, providerID string) error {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.epochs[providerID]++
	prefix := providerID + "|"
	for k := range c.entries {
		if strings.HasPrefix(k, prefix) {
			delete(c.entries, k)
		}
	}
	return nil
}

// hookedAppointmentRepo fires a callback after each occurrence lookup, for
// interleaving a concurrent writer between a ledger read and what follows.
type hookedAppointmentRepo struct {
	appointmentRepo.AppointmentRepository
	afterFind func()
}

func (r *hookedAppointmentRepo) FindByProviderAndOccurrence(ctx context.Context, providerID, date string, start int) (*models.Appointment, error) {
	appt, err := r.AppointmentRepository.FindByProviderAndOccurrence(ctx, providerID, date, start)
	if r.afterFind != nil {
		r.afterFind()
	}
	return appt, err
}

// flakyAppointmentRepo fails the first n commit attempts with a raw storage
// error, then delegates.
type flakyAppointmentRepo struct {
	appointmentRepo.AppointmentRepository
	failures int
	calls    int
}

func (r *flakyAppointmentRepo) CreateIfOccurrenceFree(ctx context.Context, appt *models.Appointment) error {
	r.calls++
	if r.calls <= r.failures {
		return errors.New("write conflict during plan execution")
	}
	return r.AppointmentRepository.CreateIfOccurrenceFree(ctx, appt)
}

// stalledAppointmentRepo blocks every commit until the caller's deadline
// expires.
type stalledAppointmentRepo struct {
	appointmentRepo.AppointmentRepository
}

func (r *stalledAppointmentRepo) CreateIfOccurrenceFree(ctx context.Context, appt *models.Appointment) error {
	<-ctx.Done()
	return ctx.Err()
}

// newTestEngine builds an engine over fresh in-memory repositories with a
// pinned clock.
func newTestEngine() (*DefaultScheduleEngine, *memAvailabilityRepo, *memAppointmentRepo) {
	avail := newMemAvailabilityRepo()
	appts := newMemAppointmentRepo()
	e := NewDefaultScheduleEngine(avail, appts, nil, nil)
	e.now = func() time.Time {
		return time.Date(2025, time.July, 15, 12, 0, 0, 0, time.UTC)
	}
	return e, avail, appts
}

func seedMondayTemplate(avail *memAvailabilityRepo, providerID string) models.AvailabilitySlot {
	return avail.seed(models.AvailabilitySlot{
		ProviderID: providerID,
		DayOfWeek:  time.Monday,
		Start:      10 * 60,
		End:        11 * 60,
		Active:     true,
	})
}
