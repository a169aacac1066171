package models

import (
	"time"
)

// SearchEvent records a single catalog query for analytics.
type SearchEvent struct {
	ID          string    `json:"id"`
	Endpoint    string    `json:"endpoint"`
	VehicleType string    `json:"vehicle_type"`
	PriceRange  string    `json:"price_range"`
	Category    string    `json:"category"`
	Mileage     float64   `json:"mileage,omitempty"`
	ResultCount int       `json:"result_count"`
	LatencyMs   int64     `json:"latency_ms"`
	UserID      string    `json:"user_id,omitempty"`
	CreatedAt   time.Time `json:"created_at"`
}
