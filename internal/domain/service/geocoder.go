// Package service defines the interfaces for external collaborators the
// orchestrator depends on: geocoding, weather, and POI providers.
package service

import "context"

// ResolvedLocation is a geocoded best match for a free-text query.
type ResolvedLocation struct {
	Name      string
	Latitude  float64
	Longitude float64
}

// Geocoder resolves a free-text place name to a canonical name and coordinates.
type Geocoder interface {
	// Resolve returns the best match, or an apperr.GeocodingFailed error
	// carrying the original query when the provider fails or finds nothing.
	Resolve(ctx context.Context, query string) (*ResolvedLocation, error)
}
