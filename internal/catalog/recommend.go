package catalog

import (
	"math"

	"github.com/ukydev/carbvium/internal/models"
)

// Recommendation is the lowest-emission vehicle of a candidate set and how
// much it saves compared to the rest.
type Recommendation struct {
	Best            models.Vehicle `json:"best"`
	Worst           models.Vehicle `json:"worst"`
	MeanCO2         float64        `json:"mean_co2_kg"`
	CO2Saved        int64          `json:"co2_saved_kg"`
	PercentSaved    int64          `json:"percent_saved"`
	ComparedToWorst int64          `json:"compared_to_worst_kg"`
	Candidates      int            `json:"candidates"`
}

// ComputeRecommendation scores the candidate set. It returns nil when there
// is nothing to recommend: an empty set, or a best vehicle with no total CO2.
func ComputeRecommendation(vehicles []models.Vehicle) *Recommendation {
	if len(vehicles) == 0 {
		return nil
	}

	best, worst := vehicles[0], vehicles[0]
	var sum float64
	var counted int
	for i, v := range vehicles {
		if v.TotalLifecycleCO2Kg != nil {
			sum += *v.TotalLifecycleCO2Kg
			counted++
		}
		if i == 0 {
			continue
		}
		// strict comparisons keep the first of equal values
		if co2Less(v, best) {
			best = v
		}
		if co2Less(worst, v) {
			worst = v
		}
	}

	if best.TotalLifecycleCO2Kg == nil {
		return nil
	}

	var mean float64
	if counted > 0 {
		mean = sum / float64(counted)
	}

	bestCO2 := *best.TotalLifecycleCO2Kg
	worstCO2 := bestCO2
	if worst.TotalLifecycleCO2Kg != nil {
		worstCO2 = *worst.TotalLifecycleCO2Kg
	}

	var percent float64
	if mean != 0 {
		percent = 100 * (mean - bestCO2) / mean
	}

	return &Recommendation{
		Best:            best,
		Worst:           worst,
		MeanCO2:         mean,
		CO2Saved:        roundFloor(mean - bestCO2),
		PercentSaved:    roundFloor(percent),
		ComparedToWorst: roundFloor(worstCO2 - bestCO2),
		Candidates:      len(vehicles),
	}
}

// co2Less orders by total CO2. A missing value never beats a present one
// and is never beaten by one, so comparisons with it are false.
func co2Less(a, b models.Vehicle) bool {
	if a.TotalLifecycleCO2Kg == nil || b.TotalLifecycleCO2Kg == nil {
		return false
	}
	return *a.TotalLifecycleCO2Kg < *b.TotalLifecycleCO2Kg
}

// roundFloor rounds half up and clamps at zero.
func roundFloor(x float64) int64 {
	r := math.Floor(x + 0.5)
	if r < 0 || math.IsNaN(r) {
		return 0
	}
	return int64(r)
}
