package repository

import (
	"context"

	"gorm.io/gorm"
	"gorm.io/gorm/clause"

	"realestate/internal/model"
	"realestate/internal/query"
)

// OrphanReport counts rows cleaned up by DeleteOrphans.
type OrphanReport struct {
	Images    int64
	Features  int64
	Favorites int64
	Messages  int64
}

// Total is the number of rows touched.
func (r OrphanReport) Total() int64 {
	return r.Images + r.Features + r.Favorites + r.Messages
}

// ListingRepository defines listing persistence operations.
type ListingRepository interface {
	Create(ctx context.Context, listing *model.Listing) error
	FindByID(ctx context.Context, id uint) (*model.Listing, error)
	Browse(ctx context.Context, criteria query.ListingCriteria) ([]model.Listing, int64, error)
	Search(ctx context.Context, criteria query.ListingCriteria) ([]model.Listing, error)
	UpdateFields(ctx context.Context, id uint, changes map[string]interface{}) error
	Delete(ctx context.Context, id uint) error
	Exists(ctx context.Context, id uint) (bool, error)
	DeleteOrphans(ctx context.Context) (OrphanReport, error)
	// Transaction methods
	WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ListingRepository) error) error
}

type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new listing repository.
func NewListingRepository(db *gorm.DB) ListingRepository {
	return &listingRepository{db: db}
}

// withSummary preloads what list views render: owner and images in insertion order.
func withSummary(db *gorm.DB) *gorm.DB {
	return db.Preload("Owner").Preload("Images", func(db *gorm.DB) *gorm.DB {
		return db.Order("listing_images.id ASC")
	})
}

// Create persists the listing first, then its images and features with the new id.
func (r *listingRepository) Create(ctx context.Context, listing *model.Listing) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		images, features := listing.Images, listing.Features
		listing.Images, listing.Features = nil, nil

		if err := tx.Omit(clause.Associations).Create(listing).Error; err != nil {
			return err
		}

		for i := range images {
			images[i].ListingID = listing.ID
		}
		if len(images) > 0 {
			if err := tx.Create(&images).Error; err != nil {
				return err
			}
		}

		for i := range features {
			features[i].ListingID = listing.ID
		}
		if len(features) > 0 {
			if err := tx.Create(&features).Error; err != nil {
				return err
			}
		}

		listing.Images, listing.Features = images, features
		return nil
	})
}

// FindByID loads a listing with owner, images and features.
func (r *listingRepository) FindByID(ctx context.Context, id uint) (*model.Listing, error) {
	var listing model.Listing
	err := r.db.WithContext(ctx).
		Scopes(withSummary).
		Preload("Features", func(db *gorm.DB) *gorm.DB {
			return db.Order("property_features.id ASC")
		}).
		First(&listing, id).Error
	if err != nil {
		return nil, err
	}
	return &listing, nil
}

// Browse returns one page of filtered listings and the filtered total.
func (r *listingRepository) Browse(ctx context.Context, criteria query.ListingCriteria) ([]model.Listing, int64, error) {
	var total int64
	if err := r.db.WithContext(ctx).Model(&model.Listing{}).
		Scopes(criteria.Filter).
		Count(&total).Error; err != nil {
		return nil, 0, err
	}

	listings := []model.Listing{}
	if total == 0 {
		return listings, 0, nil
	}
	if err := r.db.WithContext(ctx).
		Scopes(criteria.Filter, criteria.Order, criteria.Window, withSummary).
		Find(&listings).Error; err != nil {
		return nil, 0, err
	}
	return listings, total, nil
}

// Search returns the most recent filtered listings up to the criteria limit.
func (r *listingRepository) Search(ctx context.Context, criteria query.ListingCriteria) ([]model.Listing, error) {
	listings := []model.Listing{}
	if err := r.db.WithContext(ctx).
		Scopes(criteria.Filter, criteria.Order, criteria.Window, withSummary).
		Find(&listings).Error; err != nil {
		return nil, err
	}
	return listings, nil
}

// UpdateFields applies a partial update; updated_at is refreshed by gorm.
func (r *listingRepository) UpdateFields(ctx context.Context, id uint, changes map[string]interface{}) error {
	if len(changes) == 0 {
		return nil
	}
	res := r.db.WithContext(ctx).Model(&model.Listing{ID: id}).Updates(changes)
	if res.Error != nil {
		return res.Error
	}
	if res.RowsAffected == 0 {
		return gorm.ErrRecordNotFound
	}
	return nil
}

// Delete removes a listing with its images, features and favorites.
// Messages about the listing are kept with listing_id cleared.
func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&model.ListingImage{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&model.PropertyFeature{}).Error; err != nil {
			return err
		}
		if err := tx.Where("listing_id = ?", id).Delete(&model.Favorite{}).Error; err != nil {
			return err
		}
		if err := tx.Model(&model.Message{}).Where("listing_id = ?", id).
			Update("listing_id", nil).Error; err != nil {
			return err
		}
		res := tx.Delete(&model.Listing{}, id)
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return gorm.ErrRecordNotFound
		}
		return nil
	})
}

func (r *listingRepository) Exists(ctx context.Context, id uint) (bool, error) {
	var n int64
	if err := r.db.WithContext(ctx).Model(&model.Listing{}).Where("id = ?", id).Count(&n).Error; err != nil {
		return false, err
	}
	return n > 0, nil
}

// DeleteOrphans removes rows that reference listings which no longer exist.
func (r *listingRepository) DeleteOrphans(ctx context.Context) (OrphanReport, error) {
	var report OrphanReport
	err := r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		ids := tx.Model(&model.Listing{}).Select("id")

		res := tx.Where("listing_id NOT IN (?)", ids).Delete(&model.ListingImage{})
		if res.Error != nil {
			return res.Error
		}
		report.Images = res.RowsAffected

		res = tx.Where("listing_id NOT IN (?)", ids).Delete(&model.PropertyFeature{})
		if res.Error != nil {
			return res.Error
		}
		report.Features = res.RowsAffected

		res = tx.Where("listing_id NOT IN (?)", ids).Delete(&model.Favorite{})
		if res.Error != nil {
			return res.Error
		}
		report.Favorites = res.RowsAffected

		res = tx.Model(&model.Message{}).
			Where("listing_id IS NOT NULL AND listing_id NOT IN (?)", ids).
			Update("listing_id", nil)
		if res.Error != nil {
			return res.Error
		}
		report.Messages = res.RowsAffected
		return nil
	})
	return report, err
}

// WithTransaction executes a function within a database transaction.
func (r *listingRepository) WithTransaction(ctx context.Context, fn func(ctx context.Context, repo ListingRepository) error) error {
	return r.db.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		txRepo := &listingRepository{db: tx}
		return fn(ctx, txRepo)
	})
}
