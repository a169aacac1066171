package main

import (
	"strings"

	"github.com/ukydev/carbvium/internal/models"
)

type sampleRow struct {
	company, model, category string
	vt                       models.VehicleType
	price                    float64
	manufacturing, battery   float64
	running                  float64
	mileage, hp              float64
}

// Lifecycle figures assume 150,000 km of use.
var sampleRows = []sampleRow{
	{"Maruti Suzuki", "Swift", "Hatchback", models.VehicleTypeFuel, 6.5, 6200, 0, 17800, 24.8, 89},
	{"Maruti Suzuki", "Baleno", "Hatchback", models.VehicleTypeFuel, 7.0, 6500, 0, 18600, 22.9, 89},
	{"Maruti Suzuki", "WagonR CNG", "Hatchback", models.VehicleTypeFuel, 6.4, 5900, 0, 14100, 34.0, 56},
	{"Tata", "Nexon EV", "SUV", models.VehicleTypeEV, 14.5, 7800, 4200, 9600, 8.2, 127},
	{"Tata", "Punch EV", "SUV", models.VehicleTypeEV, 11.0, 6900, 3100, 8700, 8.9, 80},
	{"Hyundai", "Creta", "SUV", models.VehicleTypeFuel, 11.0, 8900, 0, 24300, 17.4, 113},
	{"Mahindra", "Scorpio N", "SUV", models.VehicleTypeFuel, 13.9, 10200, 0, 30100, 14.0, 200},
	{"Hyundai", "Venue", "SUV", models.VehicleTypeFuel, 7.9, 7400, 0, 20700, 18.3, 82},
	{"Toyota", "Innova Hycross Hybrid", "MUV", models.VehicleTypeHybrid, 25.9, 11100, 1300, 15800, 23.2, 184},
	{"Kia", "Seltos", "SUV", models.VehicleTypeFuel, 10.9, 8800, 0, 23900, 17.0, 113},
	{"Mahindra", "Bolero Neo", "SUV", models.VehicleTypeFuel, 9.9, 9400, 0, 27200, 17.3, 100},
	{"Tata", "Tiago EV", "Hatchback", models.VehicleTypeEV, 8.0, 5600, 2600, 8200, 9.4, 74},
	{"Maruti Suzuki", "Celerio", "Hatchback", models.VehicleTypeFuel, 5.4, 5400, 0, 16200, 26.0, 66},
	{"Honda", "Amaze", "Sedan", models.VehicleTypeFuel, 7.2, 6600, 0, 19100, 18.6, 89},
	{"Honda", "Elevate", "SUV", models.VehicleTypeFuel, 11.6, 8600, 0, 22800, 16.9, 119},
}

const sampleDistanceKm = 150000

func sampleVehicles() []models.Vehicle {
	out := make([]models.Vehicle, 0, len(sampleRows))
	for _, r := range sampleRows {
		total := r.manufacturing + r.battery + r.running
		v := models.Vehicle{
			UniqueID:            sampleID(r.company, r.model),
			CompanyName:         r.company,
			ModelName:           r.model,
			Category:            models.String(r.category),
			VehicleType:         r.vt,
			PriceLakhs:          models.Float(r.price),
			ManufacturingCO2Kg:  models.Float(r.manufacturing),
			RunningCO2Kg:        models.Float(r.running),
			TotalLifecycleCO2Kg: models.Float(total),
			LifecycleIntensity:  models.Float(total / sampleDistanceKm),
			Mileage:             models.Float(r.mileage),
			Horsepower:          models.Float(r.hp),
		}
		if r.battery > 0 {
			v.BatteryCO2Kg = models.Float(r.battery)
		}
		out = append(out, v)
	}
	return out
}

func sampleID(company, model string) string {
	id := strings.ToLower(company + "-" + model)
	return strings.Join(strings.Fields(id), "-")
}
