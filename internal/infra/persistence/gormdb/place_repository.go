package gormdb

import (
	"context"

	"placemap/internal/domain/entity"
	domainerrors "placemap/internal/domain/errors"
	"placemap/internal/domain/repository"
	"placemap/internal/infra/persistence/model"

	"github.com/google/uuid"
	"github.com/pkg/errors"
	"gorm.io/gorm"
)

// placeRepository implements the repository.PlaceRepository interface.
type placeRepository struct {
	db *gorm.DB
}

// NewPlaceRepository is the constructor for placeRepository.
func NewPlaceRepository(db *gorm.DB) repository.PlaceRepository {
	return &placeRepository{
		db: db,
	}
}

// FindAllPlaces retrieves every place, oldest first.
func (repo *placeRepository) FindAllPlaces(ctx context.Context) ([]*entity.Place, error) {
	var placeModels []*model.PlaceModel

	if err := repo.db.WithContext(ctx).
		Order("created_at ASC").
		Order("id ASC").
		Find(&placeModels).Error; err != nil {
		return nil, errors.Wrap(err, "failed to find places")
	}

	places := make([]*entity.Place, 0, len(placeModels))
	for _, placeM := range placeModels {
		places = append(places, toPlaceDomain(placeM))
	}

	return places, nil
}

// CreatePlace inserts a place. The row ID is assigned by the model hook.
func (repo *placeRepository) CreatePlace(ctx context.Context, place *entity.Place) (*entity.Place, error) {
	placeM := fromPlaceDomain(place)

	if err := repo.db.WithContext(ctx).Create(placeM).Error; err != nil {
		if isNotNullConstraintViolation(err) || isCheckConstraintViolation(err) {
			return nil, domainerrors.ErrValidationFailed.WrapMessage("place violates a table constraint")
		}

		return nil, domainerrors.NewDatabaseExecuteError(err, "failed to create place")
	}

	return toPlaceDomain(placeM), nil
}

// DeletePlace removes a place by ID.
func (repo *placeRepository) DeletePlace(ctx context.Context, id uuid.UUID) error {
	result := repo.db.WithContext(ctx).
		Where("id = ?", id).
		Delete(&model.PlaceModel{})
	if result.Error != nil {
		return errors.Wrap(result.Error, "failed to delete place")
	}

	if result.RowsAffected == 0 {
		return repository.ErrPlaceNotFound
	}

	return nil
}

func fromPlaceDomain(place *entity.Place) *model.PlaceModel {
	return &model.PlaceModel{
		Name:        place.Name,
		Description: place.Description,
		Category:    place.Category.String(),
		Lat:         place.Location.Lat,
		Lng:         place.Location.Lng,
		CreatorID:   place.CreatorID,
		CreatedAt:   place.CreatedAt,
	}
}

func toPlaceDomain(placeM *model.PlaceModel) *entity.Place {
	return &entity.Place{
		ID:          placeM.ID,
		Name:        placeM.Name,
		Description: placeM.Description,
		Category:    entity.Category(placeM.Category),
		Location:    entity.LatLng{Lat: placeM.Lat, Lng: placeM.Lng},
		CreatorID:   placeM.CreatorID,
		CreatedAt:   placeM.CreatedAt,
	}
}
