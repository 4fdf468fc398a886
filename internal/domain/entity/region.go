package entity

import (
	"github.com/paulmach/orb"
)

// MapRegion is the published map focus: a center coordinate plus a
// latitude/longitude zoom span.
type MapRegion struct {
	Center  orb.Point
	LatSpan float64
	LonSpan float64
}

// NewMapRegion centers a region on the given coordinate with a symmetric span.
func NewMapRegion(lat, lon, span float64) MapRegion {
	return MapRegion{
		Center:  orb.Point{lon, lat},
		LatSpan: span,
		LonSpan: span,
	}
}

// Bound returns the region's bounding box.
func (r MapRegion) Bound() orb.Bound {
	half := orb.Point{r.LonSpan / 2, r.LatSpan / 2}

	return orb.Bound{
		Min: orb.Point{r.Center[0] - half[0], r.Center[1] - half[1]},
		Max: orb.Point{r.Center[0] + half[0], r.Center[1] + half[1]},
	}
}
