// File: database/repository/appointment/transaction.go
package appointmentRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"

	"fixmo/models"
)

// CreateIfOccurrenceFree inserts the appointment inside a transaction that
// first re-checks no open appointment holds the same (provider, date, start)
// occurrence. Together with the partial unique index on open appointments
// this closes the race between availability check and create: of two
// concurrent requests for the same occurrence, exactly one commits.
func (r *mongoAppointmentRepo) CreateIfOccurrenceFree(ctx context.Context, appt *models.Appointment) error {
	if appt.ID == "" {
		appt.ID = uuid.New().String()
	}
	now := time.Now()
	appt.CreatedAt = now
	appt.UpdatedAt = now
	appt.Open = !appt.Status.Terminal()

	sess, err := r.client.StartSession()
	if err != nil {
		return fmt.Errorf("could not start mongo session: %w", err)
	}
	defer sess.EndSession(ctx)

	txnFn := func(sc mongo.SessionContext) error {
		count, err := r.coll.CountDocuments(sc, bson.M{
			"providerId": appt.ProviderID,
			"date":       appt.Date,
			"start":      appt.Start,
			"open":       true,
		})
		if err != nil {
			return fmt.Errorf("occurrence re-check failed: %w", err)
		}
		if count > 0 {
			return ErrOccurrenceTaken
		}

		if _, err := r.coll.InsertOne(sc, appt); err != nil {
			if mongo.IsDuplicateKeyError(err) {
				return ErrOccurrenceTaken
			}
			return fmt.Errorf("insert appointment failed: %w", err)
		}
		return nil
	}

	if err := mongo.WithSession(ctx, sess, func(sc mongo.SessionContext) error {
		if err := sc.StartTransaction(); err != nil {
			return err
		}
		if err := txnFn(sc); err != nil {
			_ = sc.AbortTransaction(sc)
			return err
		}
		return sc.CommitTransaction(sc)
	}); err != nil {
		if err == ErrOccurrenceTaken {
			return err
		}
		return fmt.Errorf("booking transaction failed: %w", err)
	}

	return nil
}
