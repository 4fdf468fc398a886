// Package poi implements nearby point-of-interest discovery via a bounded
// Nominatim category search.
package poi

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"skycast/config"
	"skycast/internal/domain/apperr"
	"skycast/internal/domain/entity"
	"skycast/internal/domain/service"

	"github.com/google/uuid"
	"github.com/paulmach/orb"
	"github.com/paulmach/orb/geo"
)

// rawLimit caps how many candidates we pull from the provider before
// deduplication trims the list down.
const rawLimit = 50

// Discovery finds nearby attractions for a coordinate. It implements
// service.POIProvider.
type Discovery struct {
	baseURL      string
	userAgent    string
	category     string
	radiusMeters float64
	httpClient   *http.Client
	logger       *slog.Logger
}

// New is the fx provider for POI discovery.
func New(cfg *config.Config, logger *slog.Logger) service.POIProvider {
	return NewDiscovery(cfg.POI, logger)
}

func NewDiscovery(cfg *config.POIConfig, logger *slog.Logger) *Discovery {
	return &Discovery{
		baseURL:      cfg.BaseURL,
		userAgent:    cfg.UserAgent,
		category:     cfg.Category,
		radiusMeters: cfg.RadiusMeters,
		httpClient:   &http.Client{Timeout: cfg.Timeout},
		logger:       logger,
	}
}

var _ service.POIProvider = (*Discovery)(nil)

type poiResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
}

// Discover runs a fixed-radius category search around the coordinate,
// deduplicates by normalized name in provider order (first occurrence wins),
// and truncates to limit. Results are not yet persisted: PlaceID stays zero
// until a Place takes ownership.
func (d *Discovery) Discover(ctx context.Context, lat, lon float64, limit int) ([]*entity.PointOfInterest, error) {
	bound := geo.NewBoundAroundPoint(orb.Point{lon, lat}, d.radiusMeters)

	params := url.Values{}
	params.Set("q", d.category)
	params.Set("format", "json")
	params.Set("limit", strconv.Itoa(rawLimit))
	params.Set("bounded", "1")
	// viewbox is left,top,right,bottom in lon/lat.
	params.Set("viewbox", fmt.Sprintf("%f,%f,%f,%f", bound.Min[0], bound.Max[1], bound.Max[0], bound.Min[1]))

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, d.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperr.InvalidURL(err)
	}
	req.Header.Set("User-Agent", d.userAgent)

	resp, err := d.httpClient.Do(req)
	if err != nil {
		return nil, apperr.Network(err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.InvalidResponse(resp.StatusCode)
	}

	var results []poiResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, apperr.Decoding(err)
	}

	return dedupe(results, limit), nil
}

func dedupe(results []poiResult, limit int) []*entity.PointOfInterest {
	seen := make(map[string]struct{}, len(results))
	pois := make([]*entity.PointOfInterest, 0, limit)

	for _, result := range results {
		if len(pois) >= limit {
			break
		}

		name := result.Name
		if name == "" {
			name = result.DisplayName
		}

		key := entity.NormalizeName(name)
		if key == "" {
			continue
		}
		if _, dup := seen[key]; dup {
			continue
		}

		lat, latErr := strconv.ParseFloat(result.Lat, 64)
		lon, lonErr := strconv.ParseFloat(result.Lon, 64)
		if latErr != nil || lonErr != nil {
			continue
		}

		seen[key] = struct{}{}
		pois = append(pois, &entity.PointOfInterest{
			ID:        uuid.New(),
			Name:      name,
			Latitude:  lat,
			Longitude: lon,
		})
	}

	return pois
}
