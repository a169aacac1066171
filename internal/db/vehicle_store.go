package db

import (
	"context"
	"errors"
	"fmt"

	"github.com/ukydev/carbvium/internal/catalog"
	"github.com/ukydev/carbvium/internal/models"
	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo/options"
)

// ErrDataAccess wraps any failure talking to the vehicle store. Callers
// must treat it as an error, never as an empty result.
var ErrDataAccess = errors.New("vehicle data access failed")

// PopularModels are the models shown on the default comparison chart.
var PopularModels = []string{
	"Swift", "Baleno", "WagonR CNG", "Nexon EV", "Punch EV",
	"Creta", "Scorpio N", "Venue", "Innova Hycross Hybrid",
	"Seltos", "Bolero Neo", "Tiago EV", "Celerio", "Amaze", "Elevate",
}

// chartFields is the projection used for chart endpoints.
var chartFields = []string{
	"unique_id", "company_name", "model_name", "vehicle_type",
	"total_lifecycle_co2_kg", "price_inr_lakhs", "category", "mileage",
}

// VehicleStore runs catalog queries against a VehicleCollection.
type VehicleStore struct {
	collection VehicleCollection
}

// NewVehicleStore creates a store over the given collection.
func NewVehicleStore(collection VehicleCollection) *VehicleStore {
	return &VehicleStore{collection: collection}
}

// Query describes a fetch: which fields to return, the store-side filter
// and an optional ordering. Empty fields means the whole document; an empty
// sort keeps the store's natural order.
type Query struct {
	Fields []string
	Filter bson.M
	Sort   bson.D
}

// Fetch runs a raw query against the store.
func (s *VehicleStore) Fetch(ctx context.Context, q Query) ([]models.Vehicle, error) {
	filter := q.Filter
	if filter == nil {
		filter = bson.M{}
	}

	opts := options.Find()
	if len(q.Fields) > 0 {
		projection := bson.M{"_id": 0}
		for _, f := range q.Fields {
			projection[f] = 1
		}
		opts.SetProjection(projection)
	}
	if len(q.Sort) > 0 {
		opts.SetSort(q.Sort)
	}

	cursor, err := s.collection.FindVehicles(ctx, filter, opts)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataAccess, err)
	}
	defer cursor.Close(ctx)

	var vehicles []models.Vehicle
	if err := cursor.All(ctx, &vehicles); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrDataAccess, err)
	}
	if vehicles == nil {
		vehicles = []models.Vehicle{}
	}
	return vehicles, nil
}

// ListVehicles returns the vehicles matching the criteria in store order.
// The vehicle type is filtered by the store and the rest in memory.
func (s *VehicleStore) ListVehicles(ctx context.Context, c catalog.Criteria) ([]models.Vehicle, error) {
	vehicles, err := s.Fetch(ctx, Query{Filter: c.StoreFilter()})
	if err != nil {
		return nil, err
	}
	return residual(vehicles, c), nil
}

// ChartVehicles is ListVehicles with the reduced chart projection.
func (s *VehicleStore) ChartVehicles(ctx context.Context, c catalog.Criteria) ([]models.Vehicle, error) {
	vehicles, err := s.Fetch(ctx, Query{Fields: chartFields, Filter: c.StoreFilter()})
	if err != nil {
		return nil, err
	}
	return residual(vehicles, c), nil
}

// residual applies the predicates the store could not evaluate.
func residual(vehicles []models.Vehicle, c catalog.Criteria) []models.Vehicle {
	if c.IsAll() {
		return vehicles
	}
	return catalog.FilterVehicles(vehicles, c)
}

// TopModels returns the catalog entries whose model name is in names.
func (s *VehicleStore) TopModels(ctx context.Context, names []string) ([]models.Vehicle, error) {
	return s.Fetch(ctx, Query{
		Fields: []string{"unique_id", "company_name", "model_name", "total_lifecycle_co2_kg", "vehicle_type"},
		Filter: bson.M{"model_name": bson.M{"$in": names}},
	})
}

// GetVehicle returns one vehicle by its unique id.
func (s *VehicleStore) GetVehicle(ctx context.Context, uniqueID string) (*models.Vehicle, error) {
	vehicle, err := s.collection.FindVehicleByUniqueID(ctx, uniqueID)
	if err != nil {
		if errors.Is(err, ErrVehicleNotFound) {
			return nil, err
		}
		return nil, fmt.Errorf("%w: %v", ErrDataAccess, err)
	}
	return vehicle, nil
}
