package handlers

import (
	"context"
	"errors"
	"net/http"
	"time"

	"github.com/google/uuid"
	log "github.com/sirupsen/logrus"
	"github.com/ukydev/carbvium/internal/catalog"
	"github.com/ukydev/carbvium/internal/db"
	"github.com/ukydev/carbvium/internal/events"
	"github.com/ukydev/carbvium/internal/middleware"
	"github.com/ukydev/carbvium/internal/models"
)

// VehicleStore is the catalog query surface the handlers need.
type VehicleStore interface {
	ListVehicles(ctx context.Context, c catalog.Criteria) ([]models.Vehicle, error)
	ChartVehicles(ctx context.Context, c catalog.Criteria) ([]models.Vehicle, error)
	TopModels(ctx context.Context, names []string) ([]models.Vehicle, error)
	GetVehicle(ctx context.Context, uniqueID string) (*models.Vehicle, error)
}

// ChartEntry is a vehicle with the label and badge the chart shows for it.
type ChartEntry struct {
	models.Vehicle
	Name          string               `json:"name"`
	EmissionsBand models.EmissionsBand `json:"emissions_band"`
}

// VehicleDetail is the single-vehicle response.
type VehicleDetail struct {
	models.Vehicle
	EmissionsBand models.EmissionsBand `json:"emissions_band"`
}

// RecommendationResponse wraps a possibly absent recommendation.
type RecommendationResponse struct {
	Recommendation *catalog.Recommendation `json:"recommendation"`
	Candidates     int                     `json:"candidates"`
}

// VehicleHandler serves the catalog endpoints
type VehicleHandler struct {
	store     VehicleStore
	shuffler  *catalog.Shuffler
	publisher events.Publisher
	policy    catalog.MissingFieldPolicy
	topN      int
}

// VehicleHandlerOption customises a VehicleHandler
type VehicleHandlerOption func(*VehicleHandler)

// WithShuffler sets the top-N shuffler.
func WithShuffler(s *catalog.Shuffler) VehicleHandlerOption {
	return func(h *VehicleHandler) { h.shuffler = s }
}

// WithPublisher sets the search event publisher.
func WithPublisher(p events.Publisher) VehicleHandlerOption {
	return func(h *VehicleHandler) { h.publisher = p }
}

// WithPolicy sets how records with missing prices are filtered.
func WithPolicy(p catalog.MissingFieldPolicy) VehicleHandlerOption {
	return func(h *VehicleHandler) { h.policy = p }
}

// WithTopN sets the chart size.
func WithTopN(n int) VehicleHandlerOption {
	return func(h *VehicleHandler) {
		if n > 0 {
			h.topN = n
		}
	}
}

// NewVehicleHandler creates a new catalog handler
func NewVehicleHandler(store VehicleStore, opts ...VehicleHandlerOption) *VehicleHandler {
	h := &VehicleHandler{
		store:     store,
		shuffler:  catalog.NewShuffler(nil),
		publisher: events.NopPublisher{},
		policy:    catalog.PolicyLenient,
		topN:      catalog.DefaultTopN,
	}
	for _, opt := range opts {
		opt(h)
	}
	return h
}

// ListVehicles returns every vehicle matching the query criteria
func (h *VehicleHandler) ListVehicles(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	criteria := h.criteria(r)

	vehicles, err := h.store.ListVehicles(r.Context(), criteria)
	if err != nil {
		h.dataAccessError(w, r, err)
		return
	}

	h.publish(r, criteria, len(vehicles), start)
	writeJSON(w, http.StatusOK, vehicles)
}

// TopCarbon returns the fixed set of popular models shown by default
func (h *VehicleHandler) TopCarbon(w http.ResponseWriter, r *http.Request) {
	vehicles, err := h.store.TopModels(r.Context(), db.PopularModels)
	if err != nil {
		h.dataAccessError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, chartEntries(vehicles))
}

// FilteredTopCarbon returns a shuffled top-N of the vehicles matching the criteria
func (h *VehicleHandler) FilteredTopCarbon(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	criteria := h.criteria(r)

	vehicles, err := h.store.ChartVehicles(r.Context(), criteria)
	if err != nil {
		h.dataAccessError(w, r, err)
		return
	}

	top := h.shuffler.SelectRandomTopN(vehicles, h.topN)
	h.publish(r, criteria, len(top), start)
	writeJSON(w, http.StatusOK, chartEntries(top))
}

// GetVehicle returns a single vehicle by unique id
func (h *VehicleHandler) GetVehicle(w http.ResponseWriter, r *http.Request) {
	uniqueID := r.PathValue("uniqueId")
	if uniqueID == "" {
		writeError(w, http.StatusBadRequest, "Vehicle id is required")
		return
	}

	vehicle, err := h.store.GetVehicle(r.Context(), uniqueID)
	if err != nil {
		if errors.Is(err, db.ErrVehicleNotFound) {
			writeError(w, http.StatusNotFound, "Vehicle not found")
			return
		}
		h.dataAccessError(w, r, err)
		return
	}

	writeJSON(w, http.StatusOK, VehicleDetail{Vehicle: *vehicle, EmissionsBand: vehicle.EmissionsBand()})
}

// Recommendation scores the vehicles matching the criteria. An absent
// recommendation is returned as null, not as zero savings.
func (h *VehicleHandler) Recommendation(w http.ResponseWriter, r *http.Request) {
	start := time.Now()
	criteria := h.criteria(r)

	vehicles, err := h.store.ListVehicles(r.Context(), criteria)
	if err != nil {
		h.dataAccessError(w, r, err)
		return
	}

	h.publish(r, criteria, len(vehicles), start)
	writeJSON(w, http.StatusOK, RecommendationResponse{
		Recommendation: catalog.ComputeRecommendation(vehicles),
		Candidates:     len(vehicles),
	})
}

func (h *VehicleHandler) criteria(r *http.Request) catalog.Criteria {
	c := catalog.ParseCriteria(r.URL.Query())
	c.Policy = h.policy
	return c
}

func (h *VehicleHandler) dataAccessError(w http.ResponseWriter, r *http.Request, err error) {
	log.WithError(err).WithFields(log.Fields{
		"request_id": middleware.GetRequestID(r.Context()),
		"path":       r.URL.Path,
	}).Error("Vehicle query failed")
	writeError(w, http.StatusInternalServerError, "Failed to fetch vehicles")
}

func (h *VehicleHandler) publish(r *http.Request, c catalog.Criteria, count int, start time.Time) {
	event := models.SearchEvent{
		ID:          uuid.NewString(),
		Endpoint:    r.URL.Path,
		VehicleType: c.VehicleType,
		PriceRange:  string(c.PriceRange),
		Category:    c.Category,
		Mileage:     c.Mileage,
		ResultCount: count,
		LatencyMs:   time.Since(start).Milliseconds(),
		CreatedAt:   time.Now().UTC(),
	}
	if claims, ok := middleware.GetUserFromContext(r.Context()); ok {
		event.UserID = claims.UserID
	}
	h.publisher.Publish(event)
}

func chartEntries(vehicles []models.Vehicle) []ChartEntry {
	out := make([]ChartEntry, 0, len(vehicles))
	for _, v := range vehicles {
		out = append(out, ChartEntry{Vehicle: v, Name: v.DisplayName(), EmissionsBand: v.EmissionsBand()})
	}
	return out
}
