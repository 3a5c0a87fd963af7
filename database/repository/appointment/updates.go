// File: database/repository/appointment/updates.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fixmo/models"
)

// UpdateStatus applies a status transition as a conditional update: the
// allowed source statuses live in the filter, so a concurrent writer (live
// transition or maintenance sweep) cannot be clobbered. Returns the updated
// document, or ErrStatusConflict when the appointment exists but its status
// moved out of the allowed set.
func (r *mongoAppointmentRepo) UpdateStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, set map[string]any) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{"id": id}
	if len(from) > 0 {
		statuses := make(bson.A, 0, len(from))
		for _, s := range from {
			statuses = append(statuses, s)
		}
		filter["status"] = bson.M{"$in": statuses}
	}

	fields := bson.M{
		"status":    to,
		"open":      !to.Terminal(),
		"updatedAt": time.Now(),
	}
	for k, v := range set {
		fields[k] = v
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Appointment
	err := r.coll.FindOneAndUpdate(ctx, filter, bson.M{"$set": fields}, opts).Decode(&updated)
	if err == nil {
		return &updated, nil
	}
	if err != mongo.ErrNoDocuments {
		return nil, fmt.Errorf("status update failed: %w", err)
	}

	// Distinguish a missing appointment from a lost status race.
	if _, getErr := r.GetByID(ctx, id); getErr != nil {
		return nil, getErr
	}
	return nil, ErrStatusConflict
}

// Reschedule moves an open appointment to a new occurrence and resets it to
// accepted, prefixing the audit note onto the cancellation-reason field so
// the trail of moves is preserved.
func (r *mongoAppointmentRepo) Reschedule(ctx context.Context, id string, date string, start, end int, auditNote string) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	scheduledAt, err := models.ParseDate(date)
	if err != nil {
		return nil, err
	}

	filter := bson.M{"id": id, "open": true}
	update := bson.M{
		"$set": bson.M{
			"date":               date,
			"start":              start,
			"end":                end,
			"scheduledAt":        scheduledAt.Add(time.Duration(start) * time.Minute),
			"status":             models.StatusAccepted,
			"open":               true,
			"cancellationReason": auditNote,
			"updatedAt":          time.Now(),
		},
	}

	opts := options.FindOneAndUpdate().SetReturnDocument(options.After)
	var updated models.Appointment
	if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&updated); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrAppointmentNotFound
		}
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrOccurrenceTaken
		}
		return nil, fmt.Errorf("reschedule failed: %w", err)
	}
	return &updated, nil
}
