// Package entity contains the core business objects of the project.
package entity

import (
	"strings"
	"time"

	"github.com/google/uuid"
)

// Place is a named, coordinate-located location the user has visited or saved.
// It owns an ordered collection of points of interest.
type Place struct {
	ID         uuid.UUID          // Stable unique identifier, generated at creation, never reused.
	Name       string             // Display name; unique within the visited set under case-insensitive comparison.
	Latitude   float64            // Valid range [-90, 90].
	Longitude  float64            // Valid range [-180, 180].
	LastUsedAt time.Time          // Monotonically updated on every load.
	POIs       []*PointOfInterest // Ordered, exclusively owned once persisted.
}

// NewPlace creates a Place with a fresh identity and the given owned POIs.
// The POIs' back-references are set to the new Place.
func NewPlace(name string, lat, lon float64, now time.Time, pois []*PointOfInterest) *Place {
	place := &Place{
		ID:         uuid.New(),
		Name:       name,
		Latitude:   lat,
		Longitude:  lon,
		LastUsedAt: now,
		POIs:       pois,
	}
	for _, poi := range pois {
		poi.PlaceID = place.ID
	}

	return place
}

// NameMatches compares the place name case-insensitively, the lookup and
// dedup key for the visited set.
func (p *Place) NameMatches(name string) bool {
	return strings.EqualFold(p.Name, name)
}

// PointOfInterest is a discovered attraction near a Place. It is owned by
// exactly one Place once persisted; PlaceID is a non-owning back-reference
// used only for cascade delete.
type PointOfInterest struct {
	ID        uuid.UUID `json:"id"`
	PlaceID   uuid.UUID `json:"placeId"`
	Name      string    `json:"name"`
	Latitude  float64   `json:"latitude"`
	Longitude float64   `json:"longitude"`
}

// NormalizeName is the POI dedup key: trimmed and lower-cased.
func NormalizeName(name string) string {
	return strings.ToLower(strings.TrimSpace(name))
}

// PlaceSnapshot is the compact flat-store representation of a Place:
// name and coordinates only, no POIs, no timestamps.
type PlaceSnapshot struct {
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
}
