package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carbvium/internal/config"
	"github.com/ukydev/carbvium/internal/db"
	"github.com/ukydev/carbvium/internal/models"
)

// seedResult counts per-record outcomes of a seeding run.
type seedResult struct {
	Inserted int
	Updated  int
	Skipped  int
	Failed   int
}

// loadVehicles decodes a JSON array of vehicles.
func loadVehicles(r io.Reader) ([]models.Vehicle, error) {
	var vehicles []models.Vehicle
	if err := json.NewDecoder(r).Decode(&vehicles); err != nil {
		return nil, fmt.Errorf("failed to decode vehicles: %w", err)
	}
	return vehicles, nil
}

func validateVehicle(v models.Vehicle) error {
	var missing []string
	if strings.TrimSpace(v.UniqueID) == "" {
		missing = append(missing, "unique_id")
	}
	if strings.TrimSpace(v.ModelName) == "" {
		missing = append(missing, "model_name")
	}
	if v.TotalLifecycleCO2Kg == nil {
		missing = append(missing, "total_lifecycle_co2_kg")
	}
	if len(missing) > 0 {
		return fmt.Errorf("missing required fields: %s", strings.Join(missing, ", "))
	}
	if !models.IsValidVehicleType(v.VehicleType) {
		return fmt.Errorf("invalid vehicle_type %q", v.VehicleType)
	}
	if *v.TotalLifecycleCO2Kg < 0 {
		return fmt.Errorf("total_lifecycle_co2_kg must not be negative")
	}
	return nil
}

// seedVehicles upserts every valid vehicle and logs the outcome of each one.
func seedVehicles(ctx context.Context, writer db.VehicleWriter, vehicles []models.Vehicle) seedResult {
	var res seedResult
	for i, v := range vehicles {
		entry := log.WithFields(log.Fields{
			"index":     i,
			"unique_id": v.UniqueID,
			"model":     v.DisplayName(),
		})

		if err := validateVehicle(v); err != nil {
			entry.WithError(err).Warn("Skipping vehicle")
			res.Skipped++
			continue
		}

		created, err := writer.UpsertVehicle(ctx, v)
		if err != nil {
			entry.WithError(err).Error("Failed to upsert vehicle")
			res.Failed++
			continue
		}
		if created {
			entry.Info("Inserted vehicle")
			res.Inserted++
		} else {
			entry.Debug("Updated vehicle")
			res.Updated++
		}
	}
	return res
}

// seedSource picks the input file from the first argument or SEED_FILE.
func seedSource(args []string) string {
	if len(args) > 0 && args[0] != "" {
		return args[0]
	}
	return os.Getenv("SEED_FILE")
}

func readVehicles(path string) ([]models.Vehicle, error) {
	if path == "" {
		log.Info("No seed file given, using built-in sample")
		return sampleVehicles(), nil
	}
	f, err := os.Open(path)
	if err != nil {
		return nil, fmt.Errorf("failed to open seed file: %w", err)
	}
	defer f.Close()
	return loadVehicles(f)
}

func main() {
	cfg := config.Load()
	cfg.ConfigureLogging()

	path := seedSource(os.Args[1:])
	vehicles, err := readVehicles(path)
	if err != nil {
		log.WithError(err).WithField("file", path).Fatal("Failed to load vehicles")
	}

	client, err := db.ConnectMongo(cfg.MongoURI)
	if err != nil {
		log.WithError(err).Fatal("Failed to connect to MongoDB")
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)

	database := client.Database(cfg.MongoDB)
	if err := db.EnsureIndexes(ctx, database); err != nil {
		log.WithError(err).Warn("Failed to create indexes")
	}

	writer := &db.MongoVehicleCollection{Collection: database.Collection(db.VehiclesCollection)}

	log.WithFields(log.Fields{
		"vehicles": len(vehicles),
		"database": cfg.MongoDB,
	}).Info("Seeding vehicle catalog")

	res := seedVehicles(ctx, writer, vehicles)
	log.WithFields(log.Fields{
		"inserted": res.Inserted,
		"updated":  res.Updated,
		"skipped":  res.Skipped,
		"failed":   res.Failed,
	}).Info("Seeding completed")

	cancel()
	if err := client.Disconnect(context.Background()); err != nil {
		log.WithError(err).Warn("MongoDB disconnect error")
	}
	if res.Failed > 0 {
		os.Exit(1)
	}
}
