package entity

import (
	"github.com/google/uuid"
)

// VisitedList is the in-memory recency ordering of saved places, most recent
// first. It mirrors the structured store and holds at most one entry per
// Place identity. Reordering is remove-then-push-front, never an in-place
// sort, so ties keep most-recent-operation order.
type VisitedList struct {
	places []*Place
}

// NewVisitedList builds a list from places already ordered most recent first.
func NewVisitedList(places []*Place) *VisitedList {
	return &VisitedList{places: places}
}

func (l *VisitedList) Len() int {
	return len(l.places)
}

// Places returns a copy of the ordering.
func (l *VisitedList) Places() []*Place {
	out := make([]*Place, len(l.places))
	copy(out, l.places)

	return out
}

// FindByName performs the case-insensitive lookup used for dedup and cache hits.
func (l *VisitedList) FindByName(name string) *Place {
	for _, p := range l.places {
		if p.NameMatches(name) {
			return p
		}
	}

	return nil
}

// FindByID returns the place with the given identity, or nil.
func (l *VisitedList) FindByID(id uuid.UUID) *Place {
	for _, p := range l.places {
		if p.ID == id {
			return p
		}
	}

	return nil
}

// PushFront moves a place to the front, removing any stale entry with the
// same identity first.
func (l *VisitedList) PushFront(place *Place) {
	l.Remove(place.ID)
	l.places = append([]*Place{place}, l.places...)
}

// Remove drops the place with the given identity, reporting whether it was present.
func (l *VisitedList) Remove(id uuid.UUID) bool {
	for i, p := range l.places {
		if p.ID == id {
			l.places = append(l.places[:i], l.places[i+1:]...)

			return true
		}
	}

	return false
}

// Snapshot produces the compact flat-store view of the current ordering.
func (l *VisitedList) Snapshot() []PlaceSnapshot {
	out := make([]PlaceSnapshot, 0, len(l.places))
	for _, p := range l.places {
		out = append(out, PlaceSnapshot{
			Name:      p.Name,
			Latitude:  p.Latitude,
			Longitude: p.Longitude,
		})
	}

	return out
}
