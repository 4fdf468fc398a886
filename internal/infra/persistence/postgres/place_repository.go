package postgres

import (
	"context"
	"time"

	"skycast/internal/domain/entity"
	"skycast/internal/domain/repository"
	"skycast/internal/errors"
	"skycast/internal/infra/persistence/model"

	"github.com/google/uuid"
	"gorm.io/gorm"
)

// placeRepository implements repository.PlaceRepository.
type placeRepository struct {
	db *gorm.DB
}

// NewPlaceRepository is the constructor for placeRepository.
func NewPlaceRepository(db *gorm.DB) repository.PlaceRepository {
	return &placeRepository{db: db}
}

// CreatePlace persists a new place together with its owned POIs.
func (repo *placeRepository) CreatePlace(ctx context.Context, place *entity.Place) error {
	placeM := fromPlaceDomain(place)

	if err := repo.db.WithContext(ctx).Create(placeM).Error; err != nil {
		return errors.Wrap(err, "failed to create place")
	}

	return nil
}

// AppendPOIs attaches newly discovered POIs to an existing place.
func (repo *placeRepository) AppendPOIs(ctx context.Context, placeID uuid.UUID, pois []*entity.PointOfInterest) error {
	if len(pois) == 0 {
		return nil
	}

	poiModels := make([]model.POIModel, 0, len(pois))
	for _, poi := range pois {
		poiModels = append(poiModels, fromPOIDomain(placeID, poi))
	}

	if err := repo.db.WithContext(ctx).Create(&poiModels).Error; err != nil {
		return errors.Wrap(err, "failed to append points of interest")
	}

	return nil
}

// UpdateLastUsed bumps the recency timestamp of a place.
func (repo *placeRepository) UpdateLastUsed(ctx context.Context, placeID uuid.UUID, lastUsedAt time.Time) error {
	result := repo.db.WithContext(ctx).
		Model(&model.PlaceModel{}).
		Where("id = ?", placeID).
		Update("last_used_at", lastUsedAt)

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to update last used timestamp")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPlaceNotFound
	}

	return nil
}

// DeletePlace removes a place; the POIs go with it via the FK cascade.
func (repo *placeRepository) DeletePlace(ctx context.Context, placeID uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", placeID).
		Delete(&model.PlaceModel{})

	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete place")
	}
	if result.RowsAffected == 0 {
		return repository.ErrPlaceNotFound
	}

	return nil
}

// FindAllByRecency returns all places with their POIs, most recently used first.
func (repo *placeRepository) FindAllByRecency(ctx context.Context) ([]*entity.Place, error) {
	var placeModels []model.PlaceModel
	err := repo.db.WithContext(ctx).
		Preload("POIs", func(db *gorm.DB) *gorm.DB {
			return db.Order("points_of_interest.created_at ASC")
		}).
		Order("last_used_at DESC").
		Find(&placeModels).Error
	if err != nil {
		return nil, errors.Wrap(err, "failed to load places by recency")
	}

	places := make([]*entity.Place, 0, len(placeModels))
	for i := range placeModels {
		places = append(places, toPlaceDomain(&placeModels[i]))
	}

	return places, nil
}

// CountPlaces returns the number of stored places.
func (repo *placeRepository) CountPlaces(ctx context.Context) (int64, error) {
	var count int64
	if err := repo.db.WithContext(ctx).Model(&model.PlaceModel{}).Count(&count).Error; err != nil {
		return 0, errors.Wrap(err, "failed to count places")
	}

	return count, nil
}

// --- Mapper Functions ---

func toPlaceDomain(data *model.PlaceModel) *entity.Place {
	if data == nil {
		return nil
	}

	pois := make([]*entity.PointOfInterest, 0, len(data.POIs))
	for i := range data.POIs {
		pois = append(pois, toPOIDomain(&data.POIs[i]))
	}

	return &entity.Place{
		ID:         data.ID,
		Name:       data.Name,
		Latitude:   data.Latitude,
		Longitude:  data.Longitude,
		LastUsedAt: data.LastUsedAt,
		POIs:       pois,
	}
}

func toPOIDomain(data *model.POIModel) *entity.PointOfInterest {
	return &entity.PointOfInterest{
		ID:        data.ID,
		PlaceID:   data.PlaceID,
		Name:      data.Name,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
	}
}

func fromPlaceDomain(data *entity.Place) *model.PlaceModel {
	if data == nil {
		return nil
	}

	poiModels := make([]model.POIModel, 0, len(data.POIs))
	for _, poi := range data.POIs {
		poiModels = append(poiModels, fromPOIDomain(data.ID, poi))
	}

	return &model.PlaceModel{
		ID:         data.ID,
		Name:       data.Name,
		Latitude:   data.Latitude,
		Longitude:  data.Longitude,
		LastUsedAt: data.LastUsedAt,
		POIs:       poiModels,
	}
}

func fromPOIDomain(placeID uuid.UUID, data *entity.PointOfInterest) model.POIModel {
	return model.POIModel{
		ID:        data.ID,
		PlaceID:   placeID,
		Name:      data.Name,
		Latitude:  data.Latitude,
		Longitude: data.Longitude,
	}
}
