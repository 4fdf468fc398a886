// Package repository defines the interfaces for the persistence layer.
// These interfaces act as a contract between the domain/application layers
// and the infrastructure layer.
package repository

import (
	"context"
	"time"

	"skycast/internal/domain/entity"
	"skycast/internal/errors"

	"github.com/google/uuid"
)

// ErrPlaceNotFound is returned when a place is not found in the structured store.
var ErrPlaceNotFound = errors.New("place not found")

// PlaceRepository is the structured store: the authoritative owner of the
// Place/PointOfInterest graph.
type PlaceRepository interface {
	// CreatePlace persists a new place together with its owned POIs.
	CreatePlace(ctx context.Context, place *entity.Place) error

	// AppendPOIs attaches newly discovered POIs to an existing place.
	AppendPOIs(ctx context.Context, placeID uuid.UUID, pois []*entity.PointOfInterest) error

	// UpdateLastUsed bumps the recency timestamp of a place.
	UpdateLastUsed(ctx context.Context, placeID uuid.UUID, lastUsedAt time.Time) error

	// DeletePlace removes a place and cascades to its POIs.
	// Returns ErrPlaceNotFound if no row was affected.
	DeletePlace(ctx context.Context, placeID uuid.UUID) error

	// FindAllByRecency returns all places with their POIs, most recently used first.
	FindAllByRecency(ctx context.Context) ([]*entity.Place, error)

	// CountPlaces returns the number of stored places, used by the bootstrap rule.
	CountPlaces(ctx context.Context) (int64, error)
}
