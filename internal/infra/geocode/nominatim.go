// Package geocode implements the place resolver against a Nominatim-style
// forward geocoding endpoint.
package geocode

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"net/url"
	"strconv"

	"skycast/config"
	"skycast/internal/domain/apperr"
	"skycast/internal/domain/service"
)

// Resolver normalizes a free-text query into a canonical name plus
// coordinates. It implements service.Geocoder.
type Resolver struct {
	baseURL    string
	userAgent  string
	httpClient *http.Client
	logger     *slog.Logger
}

// New is the fx provider for the geocoding resolver.
func New(cfg *config.Config, logger *slog.Logger) service.Geocoder {
	return NewResolver(cfg.Geocoding, logger)
}

func NewResolver(cfg *config.GeocodingConfig, logger *slog.Logger) *Resolver {
	return &Resolver{
		baseURL:    cfg.BaseURL,
		userAgent:  cfg.UserAgent,
		httpClient: &http.Client{Timeout: cfg.Timeout},
		logger:     logger,
	}
}

var _ service.Geocoder = (*Resolver)(nil)

// searchResult is the subset of the Nominatim search response we consume.
type searchResult struct {
	Name        string `json:"name"`
	DisplayName string `json:"display_name"`
	Lat         string `json:"lat"`
	Lon         string `json:"lon"`
	Address     struct {
		City    string `json:"city"`
		Town    string `json:"town"`
		Village string `json:"village"`
	} `json:"address"`
}

// Resolve geocodes the query. Provider failures and empty result sets both
// surface as GeocodingFailed carrying the original query.
func (r *Resolver) Resolve(ctx context.Context, query string) (*service.ResolvedLocation, error) {
	params := url.Values{}
	params.Set("q", query)
	params.Set("format", "json")
	params.Set("addressdetails", "1")
	params.Set("limit", "1")
	params.Set("accept-language", "en")

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, r.baseURL+"?"+params.Encode(), nil)
	if err != nil {
		return nil, apperr.GeocodingFailed(query, err)
	}
	req.Header.Set("User-Agent", r.userAgent)

	resp, err := r.httpClient.Do(req)
	if err != nil {
		return nil, apperr.GeocodingFailed(query, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, apperr.GeocodingFailed(query, apperr.InvalidResponse(resp.StatusCode))
	}

	var results []searchResult
	if err := json.NewDecoder(resp.Body).Decode(&results); err != nil {
		return nil, apperr.GeocodingFailed(query, apperr.Decoding(err))
	}
	if len(results) == 0 {
		return nil, apperr.GeocodingFailed(query, nil)
	}

	best := results[0]

	lat, latErr := strconv.ParseFloat(best.Lat, 64)
	lon, lonErr := strconv.ParseFloat(best.Lon, 64)
	if latErr != nil || lonErr != nil {
		return nil, apperr.GeocodingFailed(query, apperr.MissingData("best match has no usable coordinates"))
	}

	return &service.ResolvedLocation{
		Name:      canonicalName(best, query),
		Latitude:  lat,
		Longitude: lon,
	}, nil
}

// canonicalName picks the display name: locality beats the provider's
// generic name, which beats the original query. First non-empty wins.
func canonicalName(result searchResult, query string) string {
	for _, candidate := range []string{
		result.Address.City,
		result.Address.Town,
		result.Address.Village,
		result.Name,
	} {
		if candidate != "" {
			return candidate
		}
	}

	return query
}
