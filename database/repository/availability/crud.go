// File: database/repository/availability/crud.go
package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"fixmo/models"
)

// ReplaceForProvider swaps in the provider's full weekly template. Existing
// windows are soft-deactivated rather than deleted so appointment history
// keeps valid back-references; an incoming window matching an existing
// (day, start, end) reactivates that row instead of inserting a duplicate.
func (r *mongoAvailabilityRepo) ReplaceForProvider(ctx context.Context, providerID string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	now := time.Now()

	_, err := r.coll.UpdateMany(ctx,
		bson.M{"providerId": providerID},
		bson.M{"$set": bson.M{"active": false, "updatedAt": now}},
	)
	if err != nil {
		return nil, fmt.Errorf("failed to retire existing template: %w", err)
	}

	out := make([]models.AvailabilitySlot, 0, len(slots))
	for _, slot := range slots {
		filter := bson.M{
			"providerId": providerID,
			"dayOfWeek":  slot.DayOfWeek,
			"start":      slot.Start,
			"end":        slot.End,
		}
		update := bson.M{
			"$set": bson.M{
				"active":    slot.Active,
				"updatedAt": now,
			},
			"$setOnInsert": bson.M{
				"id":         uuid.New().String(),
				"providerId": providerID,
				"dayOfWeek":  slot.DayOfWeek,
				"start":      slot.Start,
				"end":        slot.End,
				"booked":     false,
				"createdAt":  now,
			},
		}
		opts := options.FindOneAndUpdate().
			SetUpsert(true).
			SetReturnDocument(options.After)

		var saved models.AvailabilitySlot
		if err := r.coll.FindOneAndUpdate(ctx, filter, update, opts).Decode(&saved); err != nil {
			return nil, fmt.Errorf("failed to upsert template slot: %w", err)
		}
		out = append(out, saved)
	}
	return out, nil
}

func (r *mongoAvailabilityRepo) GetByID(ctx context.Context, slotID string) (*models.AvailabilitySlot, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	var slot models.AvailabilitySlot
	if err := r.coll.FindOne(ctx, bson.M{"id": slotID}).Decode(&slot); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrSlotNotFound
		}
		return nil, fmt.Errorf("find error: %w", err)
	}
	return &slot, nil
}

func (r *mongoAvailabilityRepo) SetActive(ctx context.Context, slotID string, active bool) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	res, err := r.coll.UpdateOne(ctx,
		bson.M{"id": slotID},
		bson.M{"$set": bson.M{"active": active, "updatedAt": time.Now()}},
	)
	if err != nil {
		return fmt.Errorf("failed to toggle template slot: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotNotFound
	}
	return nil
}
