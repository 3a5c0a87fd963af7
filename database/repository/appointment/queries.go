// File: database/repository/appointment/queries.go
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

// FindByProviderAndOccurrence returns the open appointment holding exactly
// the given (provider, date, start) occurrence, or nil if the occurrence is
// free. This is the resolver's join key: the match is by concrete calendar
// date, never by the template row.
func (r *mongoAppointmentRepo) FindByProviderAndOccurrence(ctx context.Context, providerID, date string, start int) (*models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"providerId": providerID,
		"date":       date,
		"start":      start,
		"open":       true,
	}

	var appt models.Appointment
	if err := r.coll.FindOne(ctx, filter).Decode(&appt); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, nil
		}
		return nil, fmt.Errorf("occurrence lookup failed: %w", err)
	}
	return &appt, nil
}

func (r *mongoAppointmentRepo) ListOpen(ctx context.Context) ([]models.Appointment, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	opts := options.Find().SetSort(bson.D{{Key: "date", Value: 1}, {Key: "start", Value: 1}})
	cursor, err := r.coll.Find(ctx, bson.M{"open": true}, opts)
	if err != nil {
		return nil, fmt.Errorf("failed to fetch open appointments: %w", err)
	}
	defer cursor.Close(ctx)

	var appts []models.Appointment
	if err := cursor.All(ctx, &appts); err != nil {
		return nil, fmt.Errorf("error decoding appointments: %w", err)
	}
	return appts, nil
}

// FinishStaleBefore moves accepted/on_the_way appointments whose date is
// before the cutoff to finished. The status set lives in the filter so a
// concurrent legitimate transition is never clobbered. ISO dates compare
// correctly as strings.
func (r *mongoAppointmentRepo) FinishStaleBefore(ctx context.Context, cutoffDate string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	filter := bson.M{
		"date":   bson.M{"$lt": cutoffDate},
		"status": bson.M{"$in": bson.A{models.StatusAccepted, models.StatusOnTheWay}},
	}
	update := bson.M{
		"$set": bson.M{
			"status":    models.StatusFinished,
			"open":      false,
			"updatedAt": time.Now(),
		},
	}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to finish stale appointments: %w", err)
	}
	return res.ModifiedCount, nil
}
