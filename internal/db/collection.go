package db

import (
	"context"

	"github.com/ukydev/carbvium/internal/models"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// VehicleCollection defines the read operations on the vehicle catalog.
type VehicleCollection interface {
	FindVehicles(ctx context.Context, filter interface{}, opts ...*options.FindOptions) (VehicleCursor, error)
	FindVehicleByUniqueID(ctx context.Context, uniqueID string) (*models.Vehicle, error)
}

// VehicleWriter upserts catalog records. Only the seeding tool writes.
type VehicleWriter interface {
	UpsertVehicle(ctx context.Context, vehicle models.Vehicle) (bool, error)
}

// VehicleCursor defines the interface for vehicle cursor operations.
type VehicleCursor interface {
	All(ctx context.Context, out interface{}) error
	Close(ctx context.Context) error
}
