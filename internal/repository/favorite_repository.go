package repository

import (
	"context"

	"gorm.io/gorm"

	"realestate/internal/model"
)

// FavoriteRepository defines favorite persistence operations.
type FavoriteRepository interface {
	Create(ctx context.Context, favorite *model.Favorite) error
	Find(ctx context.Context, userID, listingID uint) (*model.Favorite, error)
	Delete(ctx context.Context, favorite *model.Favorite) error
	ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error)
}

type favoriteRepository struct {
	db *gorm.DB
}

// NewFavoriteRepository creates a new favorite repository.
func NewFavoriteRepository(db *gorm.DB) FavoriteRepository {
	return &favoriteRepository{db: db}
}

func (r *favoriteRepository) Create(ctx context.Context, favorite *model.Favorite) error {
	return r.db.WithContext(ctx).Omit("User", "Listing").Create(favorite).Error
}

func (r *favoriteRepository) Find(ctx context.Context, userID, listingID uint) (*model.Favorite, error) {
	var fav model.Favorite
	if err := r.db.WithContext(ctx).
		Where("user_id = ? AND listing_id = ?", userID, listingID).
		First(&fav).Error; err != nil {
		return nil, err
	}
	return &fav, nil
}

func (r *favoriteRepository) Delete(ctx context.Context, favorite *model.Favorite) error {
	return r.db.WithContext(ctx).Delete(favorite).Error
}

// ListByUser returns the user's favorites newest first with listing and images loaded.
func (r *favoriteRepository) ListByUser(ctx context.Context, userID uint) ([]model.Favorite, error) {
	favorites := []model.Favorite{}
	if err := r.db.WithContext(ctx).
		Preload("Listing").
		Preload("Listing.Images", func(db *gorm.DB) *gorm.DB {
			return db.Order("listing_images.id ASC")
		}).
		Where("user_id = ?", userID).
		Order("created_at DESC").Order("id DESC").
		Find(&favorites).Error; err != nil {
		return nil, err
	}
	return favorites, nil
}
