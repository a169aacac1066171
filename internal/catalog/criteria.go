// Package catalog filters the vehicle catalog, picks a shuffled top-N for
// charts and scores the lowest-emission recommendation.
package catalog

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/ukydev/carbvium/internal/models"
	"go.mongodb.org/mongo-driver/bson"
)

// All disables a criterion.
const All = "all"

// PriceRange is a price band in lakhs.
type PriceRange string

const (
	PriceAll  PriceRange = All
	PriceLow  PriceRange = "low"  // < 10
	PriceMid  PriceRange = "mid"  // [10, 20]
	PriceHigh PriceRange = "high" // > 20
)

// MissingFieldPolicy decides how records without a price are treated by a price band.
type MissingFieldPolicy int

const (
	// PolicyLenient lets records with no price through every price band.
	PolicyLenient MissingFieldPolicy = iota
	// PolicyStrict drops records with no price once a band is selected.
	PolicyStrict
)

// Criteria is the set of user-selected filters for one request.
type Criteria struct {
	VehicleType string
	PriceRange  PriceRange
	Category    string
	Mileage     float64
	Policy      MissingFieldPolicy
}

// AllCriteria returns criteria that match every vehicle.
func AllCriteria() Criteria {
	return Criteria{
		VehicleType: All,
		PriceRange:  PriceAll,
		Category:    All,
	}
}

// ParseCriteria builds criteria from URL query parameters. Unknown or
// malformed values fall back to "all" instead of failing the request.
func ParseCriteria(q url.Values) Criteria {
	c := AllCriteria()

	if vt := strings.TrimSpace(q.Get("vehicleType")); vt != "" {
		if models.IsValidVehicleType(models.VehicleType(strings.ToUpper(vt))) {
			c.VehicleType = strings.ToUpper(vt)
		}
	}

	switch PriceRange(strings.ToLower(strings.TrimSpace(q.Get("priceRange")))) {
	case PriceLow:
		c.PriceRange = PriceLow
	case PriceMid:
		c.PriceRange = PriceMid
	case PriceHigh:
		c.PriceRange = PriceHigh
	}

	if cat := strings.TrimSpace(q.Get("category")); cat != "" {
		c.Category = cat
	}

	if m := strings.TrimSpace(q.Get("mileage")); m != "" {
		if f, err := strconv.ParseFloat(m, 64); err == nil && f > 0 {
			c.Mileage = f
		}
	}

	return c
}

// IsAll reports whether the criteria match everything.
func (c Criteria) IsAll() bool {
	return c.typeIsAll() && c.priceIsAll() && c.categoryIsAll() && !c.mileageActive()
}

// StoreFilter returns the part of the criteria the document store can
// evaluate directly. The remaining predicates run in memory.
func (c Criteria) StoreFilter() bson.M {
	filter := bson.M{}
	if !c.typeIsAll() {
		filter["vehicle_type"] = c.VehicleType
	}
	return filter
}

func (c Criteria) typeIsAll() bool {
	return c.VehicleType == "" || strings.EqualFold(c.VehicleType, All)
}

func (c Criteria) priceIsAll() bool {
	return c.PriceRange == "" || c.PriceRange == PriceAll
}

func (c Criteria) categoryIsAll() bool {
	return c.Category == "" || strings.EqualFold(c.Category, All)
}

// mileageActive is only true with a concrete vehicle type selected.
func (c Criteria) mileageActive() bool {
	return !c.typeIsAll() && c.Mileage > 0
}
