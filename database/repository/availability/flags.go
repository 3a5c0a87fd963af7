// File: database/repository/availability/flags.go
package availabilityRepo

import (
	"context"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson"
)

// SetBooked writes the booked-flag cache for one template window. The flag
// is informational only; occurrence status is always re-derived from the
// appointment ledger.
func (r *mongoAvailabilityRepo) SetBooked(ctx context.Context, slotID string, booked bool, bookedFor string) error {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	set := bson.M{
		"booked":    booked,
		"updatedAt": time.Now(),
	}
	update := bson.M{"$set": set}
	if booked {
		set["bookedFor"] = bookedFor
	} else {
		update["$unset"] = bson.M{"bookedFor": ""}
	}

	res, err := r.coll.UpdateOne(ctx, bson.M{"id": slotID}, update)
	if err != nil {
		return fmt.Errorf("failed to set booked flag: %w", err)
	}
	if res.MatchedCount == 0 {
		return ErrSlotNotFound
	}
	return nil
}

// ClearBookedBefore drops booked flags whose recorded occurrence has fully
// elapsed. Windows flagged without a recorded occurrence date are cleared
// too; a flag that cannot say which date it covers is stale by definition.
func (r *mongoAvailabilityRepo) ClearBookedBefore(ctx context.Context, cutoffDate string) (int64, error) {
	ctx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()

	filter := bson.M{
		"booked": true,
		"$or": bson.A{
			bson.M{"bookedFor": bson.M{"$lt": cutoffDate}},
			bson.M{"bookedFor": bson.M{"$exists": false}},
		},
	}
	update := bson.M{
		"$set":   bson.M{"booked": false, "updatedAt": time.Now()},
		"$unset": bson.M{"bookedFor": ""},
	}

	res, err := r.coll.UpdateMany(ctx, filter, update)
	if err != nil {
		return 0, fmt.Errorf("failed to clear stale booked flags: %w", err)
	}
	return res.ModifiedCount, nil
}
