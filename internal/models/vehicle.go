package models

import (
	"strings"
)

// VehicleType is the powertrain class of a vehicle.
type VehicleType string

const (
	VehicleTypeEV     VehicleType = "EV"
	VehicleTypeFuel   VehicleType = "FUEL"
	VehicleTypeHybrid VehicleType = "HYBRID"
)

// IsValidVehicleType checks if a vehicle type is one of the known classes
func IsValidVehicleType(t VehicleType) bool {
	switch t {
	case VehicleTypeEV, VehicleTypeFuel, VehicleTypeHybrid:
		return true
	default:
		return false
	}
}

// EmissionsBand classifies a vehicle by total lifecycle CO2.
type EmissionsBand string

const (
	EmissionsLow     EmissionsBand = "low"
	EmissionsMedium  EmissionsBand = "medium"
	EmissionsHigh    EmissionsBand = "high"
	EmissionsUnknown EmissionsBand = "unknown"
)

// Vehicle is one model variant with its lifecycle emissions and price.
// Optional numeric fields are pointers so an absent value is distinguishable from zero.
type Vehicle struct {
	UniqueID            string      `bson:"unique_id" json:"unique_id"`
	CompanyName         string      `bson:"company_name" json:"company_name"`
	ModelName           string      `bson:"model_name" json:"model_name"`
	Category            *string     `bson:"category,omitempty" json:"category,omitempty"`
	VehicleType         VehicleType `bson:"vehicle_type" json:"vehicle_type"`
	PriceLakhs          *float64    `bson:"price_inr_lakhs,omitempty" json:"price_inr_lakhs"`
	ManufacturingCO2Kg  *float64    `bson:"manufacturing_co2_kg,omitempty" json:"manufacturing_co2_kg,omitempty"`
	BatteryCO2Kg        *float64    `bson:"battery_co2_kg,omitempty" json:"battery_co2_kg,omitempty"`
	RunningCO2Kg        *float64    `bson:"running_co2_kg,omitempty" json:"running_co2_kg,omitempty"`
	TotalLifecycleCO2Kg *float64    `bson:"total_lifecycle_co2_kg,omitempty" json:"total_lifecycle_co2_kg"`
	LifecycleIntensity  *float64    `bson:"lifecycle_intensity_kg_per_km,omitempty" json:"lifecycle_intensity_kg_per_km,omitempty"`
	Mileage             *float64    `bson:"mileage,omitempty" json:"mileage,omitempty"`
	Horsepower          *float64    `bson:"horsepower,omitempty" json:"horsepower,omitempty"`
	ImageLink           string      `bson:"image_link,omitempty" json:"image_link,omitempty"`
}

// DisplayName joins company and model the way the dashboard labels chart bars.
func (v Vehicle) DisplayName() string {
	return strings.TrimSpace(v.CompanyName + " " + v.ModelName)
}

// EmissionsBand returns the badge band for the vehicle's total lifecycle CO2.
func (v Vehicle) EmissionsBand() EmissionsBand {
	if v.TotalLifecycleCO2Kg == nil {
		return EmissionsUnknown
	}
	co2 := *v.TotalLifecycleCO2Kg
	switch {
	case co2 < 10000:
		return EmissionsLow
	case co2 < 15000:
		return EmissionsMedium
	default:
		return EmissionsHigh
	}
}

// Float returns a pointer to f. Handy for building optional fields.
func Float(f float64) *float64 {
	return &f
}

// String returns a pointer to s.
func String(s string) *string {
	return &s
}
