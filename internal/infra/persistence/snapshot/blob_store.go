// Package snapshot implements the flat store: a compact JSON snapshot of the
// visited list kept in a single blob key, read only to bootstrap the
// structured store when it is empty.
package snapshot

import (
	"context"
	"encoding/json"
	"log/slog"
	"os"

	"skycast/config"
	"skycast/internal/domain/entity"
	"skycast/internal/domain/repository"
	"skycast/internal/errors"

	"go.uber.org/fx"
	"gocloud.dev/blob"
	"gocloud.dev/blob/fileblob"
	"gocloud.dev/gcerrors"
)

// BlobStore implements repository.SnapshotStore on top of a gocloud blob
// bucket. The default wiring uses a local fileblob bucket, but any blob
// driver works.
type BlobStore struct {
	bucket *blob.Bucket
	key    string
	logger *slog.Logger
}

// Params defines the required parameters
type Params struct {
	fx.In
	fx.Lifecycle

	Config *config.Config
	Logger *slog.Logger
}

// New opens the configured fileblob bucket and wires its lifecycle.
func New(params Params) (repository.SnapshotStore, error) {
	dir := params.Config.Snapshot.Dir
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return nil, errors.Wrap(err, "failed to create snapshot directory")
	}

	bucket, err := fileblob.OpenBucket(dir, nil)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open snapshot bucket")
	}

	params.Append(fx.Hook{
		OnStop: func(_ context.Context) error {
			return bucket.Close()
		},
	})

	return NewBlobStore(bucket, params.Config.Snapshot.Key, params.Logger), nil
}

// NewBlobStore builds a store around an already-open bucket.
func NewBlobStore(bucket *blob.Bucket, key string, logger *slog.Logger) *BlobStore {
	return &BlobStore{bucket: bucket, key: key, logger: logger}
}

var _ repository.SnapshotStore = (*BlobStore)(nil)

// Read decodes the snapshot. A missing key or malformed payload is silently
// treated as an empty snapshot; only transport-level failures surface.
func (s *BlobStore) Read(ctx context.Context) ([]entity.PlaceSnapshot, error) {
	data, err := s.bucket.ReadAll(ctx, s.key)
	if err != nil {
		if gcerrors.Code(err) == gcerrors.NotFound {
			return nil, nil
		}

		return nil, errors.Wrap(err, "failed to read snapshot")
	}

	var places []entity.PlaceSnapshot
	if err := json.Unmarshal(data, &places); err != nil {
		if s.logger != nil {
			s.logger.Warn("discarding malformed snapshot", slog.String("error", err.Error()))
		}

		return nil, nil
	}

	return places, nil
}

// Write replaces the snapshot with the given ordering.
func (s *BlobStore) Write(ctx context.Context, places []entity.PlaceSnapshot) error {
	if places == nil {
		places = []entity.PlaceSnapshot{}
	}

	data, err := json.Marshal(places)
	if err != nil {
		return errors.Wrap(err, "failed to encode snapshot")
	}

	if err := s.bucket.WriteAll(ctx, s.key, data, nil); err != nil {
		return errors.Wrap(err, "failed to write snapshot")
	}

	return nil
}
