package catalog

import (
	"strings"

	"github.com/ukydev/carbvium/internal/models"
)

// FilterVehicles returns the vehicles satisfying every active criterion, in
// input order. The input slice is not modified.
func FilterVehicles(vehicles []models.Vehicle, c Criteria) []models.Vehicle {
	out := make([]models.Vehicle, 0, len(vehicles))
	for _, v := range vehicles {
		if c.Match(v) {
			out = append(out, v)
		}
	}
	return out
}

// Match reports whether a single vehicle passes the criteria.
func (c Criteria) Match(v models.Vehicle) bool {
	return c.matchType(v) && c.matchCategory(v) && c.matchPrice(v) && c.matchMileage(v)
}

func (c Criteria) matchType(v models.Vehicle) bool {
	if c.typeIsAll() {
		return true
	}
	return string(v.VehicleType) == c.VehicleType
}

func (c Criteria) matchCategory(v models.Vehicle) bool {
	if c.categoryIsAll() {
		return true
	}
	if v.Category == nil {
		return false
	}
	return strings.Contains(strings.ToLower(*v.Category), strings.ToLower(c.Category))
}

func (c Criteria) matchPrice(v models.Vehicle) bool {
	if c.priceIsAll() {
		return true
	}
	if v.PriceLakhs == nil {
		return c.Policy == PolicyLenient
	}
	return InPriceRange(*v.PriceLakhs, c.PriceRange)
}

// Units are not normalized: EV km/charge and fuel km/l compare against the same threshold.
func (c Criteria) matchMileage(v models.Vehicle) bool {
	if !c.mileageActive() {
		return true
	}
	return v.Mileage != nil && *v.Mileage >= c.Mileage
}

// InPriceRange reports whether price (in lakhs) falls in the band.
// Unknown bands match everything.
func InPriceRange(price float64, r PriceRange) bool {
	switch r {
	case PriceLow:
		return price < 10
	case PriceMid:
		return price >= 10 && price <= 20
	case PriceHigh:
		return price > 20
	default:
		return true
	}
}
