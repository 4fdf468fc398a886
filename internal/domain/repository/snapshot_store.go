package repository

import (
	"context"

	"skycast/internal/domain/entity"
)

// SnapshotStore is the lightweight flat store: a single JSON snapshot of the
// visited list used only to bootstrap the structured store when it is empty.
// It is a write-behind cache, never a read target after bootstrap.
type SnapshotStore interface {
	// Read decodes the snapshot. Absent or malformed data reads as empty
	// with no error.
	Read(ctx context.Context) ([]entity.PlaceSnapshot, error)

	// Write replaces the snapshot with the current visited ordering.
	Write(ctx context.Context, places []entity.PlaceSnapshot) error
}
