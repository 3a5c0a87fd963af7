// File: database/repository/appointment/interface.go
package appointmentRepo

import (
	"context"
	"errors"

	"fixmo/database"
	"fixmo/models"

	"go.mongodb.org/mongo-driver/mongo"
)

var (
	// ErrOccurrenceTaken reports that an open appointment already holds the
	// (provider, date, start) occurrence.
	ErrOccurrenceTaken = errors.New("occurrence already has an open appointment")

	// ErrAppointmentNotFound is returned when no appointment matches.
	ErrAppointmentNotFound = errors.New("appointment not found")

	// ErrStatusConflict reports that a conditional status update matched no
	// document because the status changed underneath the caller.
	ErrStatusConflict = errors.New("appointment status changed concurrently")
)

type AppointmentRepository interface {
	Create(ctx context.Context, appt *models.Appointment) error
	CreateIfOccurrenceFree(ctx context.Context, appt *models.Appointment) error
	GetByID(ctx context.Context, id string) (*models.Appointment, error)
	FindByProviderAndOccurrence(ctx context.Context, providerID, date string, start int) (*models.Appointment, error)
	ListOpen(ctx context.Context) ([]models.Appointment, error)
	UpdateStatus(ctx context.Context, id string, from []models.AppointmentStatus, to models.AppointmentStatus, set map[string]any) (*models.Appointment, error)
	Reschedule(ctx context.Context, id string, date string, start, end int, auditNote string) (*models.Appointment, error)
	FinishStaleBefore(ctx context.Context, cutoffDate string) (int64, error)
	EnsureIndexes(ctx context.Context) error
}

type mongoAppointmentRepo struct {
	coll   *mongo.Collection
	client *mongo.Client
}

// NewMongoAppointmentRepo constructs a Mongo-backed AppointmentRepository.
func NewMongoAppointmentRepo(client *mongo.Client) AppointmentRepository {
	db := client.Database(database.Name)
	return &mongoAppointmentRepo{
		coll:   db.Collection("appointments"),
		client: client,
	}
}
