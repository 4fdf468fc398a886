package service

import (
	"context"

	"skycast/internal/domain/entity"
)

// POIProvider discovers nearby points of interest for a coordinate. Results
// are deduplicated by normalized name, capped at limit, and not yet persisted.
type POIProvider interface {
	Discover(ctx context.Context, lat, lon float64, limit int) ([]*entity.PointOfInterest, error)
}
