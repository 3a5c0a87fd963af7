// File: database/repository/availability/interface.go
package availabilityRepo

import (
	"context"
	"time"

	"fixmo/database"
	"fixmo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

type AvailabilityRepository interface {
	ReplaceForProvider(ctx context.Context, providerID string, slots []models.AvailabilitySlot) ([]models.AvailabilitySlot, error)
	ListByProvider(ctx context.Context, providerID string, activeOnly bool) ([]models.AvailabilitySlot, error)
	ListByProviderAndDay(ctx context.Context, providerID string, day time.Weekday, activeOnly bool) ([]models.AvailabilitySlot, error)
	GetByID(ctx context.Context, slotID string) (*models.AvailabilitySlot, error)
	GetByOccurrenceKey(ctx context.Context, providerID string, day time.Weekday, start int) (*models.AvailabilitySlot, error)
	SetActive(ctx context.Context, slotID string, active bool) error
	SetBooked(ctx context.Context, slotID string, booked bool, bookedFor string) error
	ClearBookedBefore(ctx context.Context, cutoffDate string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAvailabilityRepo struct {
	coll *mongo.Collection
}

// NewMongoAvailabilityRepo constructs a Mongo-backed AvailabilityRepository.
func NewMongoAvailabilityRepo(client *mongo.Client) AvailabilityRepository {
	db := client.Database(database.Name)
	return &mongoAvailabilityRepo{
		coll: db.Collection("availability"),
	}
}
