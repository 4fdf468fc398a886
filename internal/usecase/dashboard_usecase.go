// Package usecase defines the application-facing interfaces and the
// published dashboard state consumed by the delivery layer.
package usecase

import (
	"context"
	"time"

	"skycast/internal/domain/apperr"
	"skycast/internal/domain/entity"

	"github.com/google/uuid"
)

// Tab indices published for the UI. The primary tab shows the dashboard.
const (
	TabDashboard = 0
	TabPlaces    = 1
)

// MapRegion is the published map focus in plain coordinates.
type MapRegion struct {
	CenterLatitude  float64 `json:"centerLatitude"`
	CenterLongitude float64 `json:"centerLongitude"`
	LatitudeSpan    float64 `json:"latitudeSpan"`
	LongitudeSpan   float64 `json:"longitudeSpan"`
}

// PlaceSummary is the visited-list view of a place.
type PlaceSummary struct {
	ID         uuid.UUID `json:"id"`
	Name       string    `json:"name"`
	Latitude   float64   `json:"latitude"`
	Longitude  float64   `json:"longitude"`
	LastUsedAt time.Time `json:"lastUsedAt"`
	POICount   int       `json:"poiCount"`
}

// DashboardState is the full published state. It is only updated after all
// required fetches of a load operation succeed; mid-operation the only
// observable change is the Loading flag.
type DashboardState struct {
	Query       string                    `json:"query"`
	Current     *entity.CurrentConditions `json:"current,omitempty"`
	Forecast    []entity.DailyForecast    `json:"forecast"`
	POIs        []entity.PointOfInterest  `json:"pois"`
	ActivePlace string                    `json:"activePlace"`
	Region      MapRegion                 `json:"region"`
	Visited     []PlaceSummary            `json:"visited"`
	Loading     bool                      `json:"loading"`
	Notice      *apperr.Notice            `json:"notice,omitempty"`
	ActiveTab   int                       `json:"activeTab"`
}

// DashboardUsecase is the orchestration engine: it coordinates geocoding,
// weather retrieval, POI discovery, persistence, and the recency ordering of
// saved places, and publishes a single consistent state for rendering.
type DashboardUsecase interface {
	// Bootstrap loads the visited list from the structured store, seeding it
	// from the flat snapshot when the structured store is empty.
	Bootstrap(ctx context.Context) error

	// SubmitQuery runs a search. Blank input publishes an informational
	// notice and falls back to the default location.
	SubmitQuery(ctx context.Context, text string)

	// LoadDefault loads the fixed fallback location without geocoding.
	LoadDefault(ctx context.Context)

	// LoadPlace reloads a saved place. Failures are published but do not
	// trigger the default-location fallback.
	LoadPlace(ctx context.Context, id uuid.UUID) error

	// DeletePlace removes a place from both stores and the visited list.
	DeletePlace(ctx context.Context, id uuid.UUID) error

	// Focus recenters the published map region without a reload.
	Focus(lat, lon, span float64)

	// State returns a copy of the published state.
	State() DashboardState

	// VisitedPlaces returns the current recency ordering.
	VisitedPlaces() []PlaceSummary
}
