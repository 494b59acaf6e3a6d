package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"realestate/internal/cache"
	"realestate/internal/errors"
	"realestate/internal/model"
	"realestate/internal/query"
	"realestate/internal/repository"
)

const listingCacheTTL = 2 * time.Minute

// FeatureInput is a name/value attribute supplied on create.
type FeatureInput struct {
	Name  string
	Value string
}

// ListingInput carries the fields of a new listing.
type ListingInput struct {
	Title        string
	Description  string
	Price        decimal.Decimal
	PropertyType string
	Bedrooms     int
	Bathrooms    int
	SquareFeet   int
	Address      string
	City         string
	State        string
	ZipCode      string
	Latitude     *float64
	Longitude    *float64
	Status       model.ListingStatus
	Images       []string
	Features     []FeatureInput
}

// ListingUpdate is a partial listing change; nil fields are left untouched.
type ListingUpdate struct {
	Title        *string
	Description  *string
	Price        *decimal.Decimal
	PropertyType *string
	Bedrooms     *int
	Bathrooms    *int
	SquareFeet   *int
	Address      *string
	City         *string
	State        *string
	ZipCode      *string
	Latitude     *float64
	Longitude    *float64
	Status       *model.ListingStatus
}

// ListingPage is one page of browse results.
type ListingPage struct {
	Listings    []model.Listing
	Total       int64
	Pages       int
	CurrentPage int
	PerPage     int
}

// ListingService handles listing queries and owner mutations.
type ListingService interface {
	Browse(ctx context.Context, criteria query.ListingCriteria) (*ListingPage, error)
	Search(ctx context.Context, criteria query.ListingCriteria) ([]model.Listing, error)
	Get(ctx context.Context, id uint) (*model.Listing, error)
	Create(ctx context.Context, ownerID uint, in ListingInput) (*model.Listing, error)
	Update(ctx context.Context, actorID, id uint, update ListingUpdate) (*model.Listing, error)
	Delete(ctx context.Context, actorID, id uint) error
}

type listingService struct {
	repo  repository.ListingRepository
	cache *cache.Client
}

// NewListingService creates a new listing service.
func NewListingService(repo repository.ListingRepository, cache *cache.Client) ListingService {
	return &listingService{repo: repo, cache: cache}
}

func (s *listingService) cacheKey(id uint) string {
	return fmt.Sprintf("listing:%d", id)
}

func (s *listingService) Browse(ctx context.Context, criteria query.ListingCriteria) (*ListingPage, error) {
	listings, total, err := s.repo.Browse(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("browse listings: %w", err)
	}
	return &ListingPage{
		Listings:    listings,
		Total:       total,
		Pages:       criteria.TotalPages(total),
		CurrentPage: criteria.Page,
		PerPage:     criteria.PerPage,
	}, nil
}

func (s *listingService) Search(ctx context.Context, criteria query.ListingCriteria) ([]model.Listing, error) {
	listings, err := s.repo.Search(ctx, criteria)
	if err != nil {
		return nil, fmt.Errorf("search listings: %w", err)
	}
	return listings, nil
}

// Get serves the listing and its owner from separate cache entries. The owner
// lives under the profile key, so a profile update invalidates it for every
// listing that owner has.
func (s *listingService) Get(ctx context.Context, id uint) (*model.Listing, error) {
	var cached model.Listing
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		if s.cache.GetJSON(ctx, userCacheKey(cached.OwnerID), &cached.Owner) {
			return &cached, nil
		}
	}

	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrListingNotFound
		}
		return nil, fmt.Errorf("find listing: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), listing, listingCacheTTL)
	s.cache.SetJSON(ctx, userCacheKey(listing.OwnerID), listing.Owner, userCacheTTL)
	return listing, nil
}

func (s *listingService) Create(ctx context.Context, ownerID uint, in ListingInput) (*model.Listing, error) {
	title := strings.TrimSpace(in.Title)
	if title == "" {
		return nil, errors.ErrTitleRequired
	}
	if in.Price.IsNegative() {
		return nil, errors.ErrInvalidPrice
	}
	status := in.Status
	if status == "" {
		status = model.ListingStatusActive
	}
	if !status.Valid() {
		return nil, errors.ErrInvalidStatus
	}

	listing := &model.Listing{
		OwnerID:      ownerID,
		Title:        title,
		Slug:         slug.Make(title),
		Description:  in.Description,
		Price:        in.Price,
		PropertyType: in.PropertyType,
		Bedrooms:     in.Bedrooms,
		Bathrooms:    in.Bathrooms,
		SquareFeet:   in.SquareFeet,
		Address:      in.Address,
		City:         in.City,
		State:        in.State,
		ZipCode:      in.ZipCode,
		Latitude:     in.Latitude,
		Longitude:    in.Longitude,
		Status:       status,
	}
	for _, url := range in.Images {
		url = strings.TrimSpace(url)
		if url == "" {
			continue
		}
		listing.Images = append(listing.Images, model.ListingImage{
			ImageURL:  url,
			IsPrimary: len(listing.Images) == 0,
		})
	}
	for _, f := range in.Features {
		if strings.TrimSpace(f.Name) == "" {
			continue
		}
		listing.Features = append(listing.Features, model.PropertyFeature{
			FeatureName:  strings.TrimSpace(f.Name),
			FeatureValue: f.Value,
		})
	}

	if err := s.repo.Create(ctx, listing); err != nil {
		return nil, fmt.Errorf("create listing: %w", err)
	}
	return s.reload(ctx, listing.ID)
}

// changes converts the update into column assignments.
func (u ListingUpdate) changes() (map[string]interface{}, error) {
	changes := map[string]interface{}{}
	if u.Title != nil {
		title := strings.TrimSpace(*u.Title)
		if title == "" {
			return nil, errors.ErrTitleRequired
		}
		changes["title"] = title
		changes["slug"] = slug.Make(title)
	}
	if u.Price != nil {
		if u.Price.IsNegative() {
			return nil, errors.ErrInvalidPrice
		}
		changes["price"] = *u.Price
	}
	if u.Status != nil {
		if !u.Status.Valid() {
			return nil, errors.ErrInvalidStatus
		}
		changes["status"] = *u.Status
	}
	setString := func(col string, v *string) {
		if v != nil {
			changes[col] = *v
		}
	}
	setInt := func(col string, v *int) {
		if v != nil {
			changes[col] = *v
		}
	}
	setString("description", u.Description)
	setString("property_type", u.PropertyType)
	setString("address", u.Address)
	setString("city", u.City)
	setString("state", u.State)
	setString("zip_code", u.ZipCode)
	setInt("bedrooms", u.Bedrooms)
	setInt("bathrooms", u.Bathrooms)
	setInt("square_feet", u.SquareFeet)
	if u.Latitude != nil {
		changes["latitude"] = *u.Latitude
	}
	if u.Longitude != nil {
		changes["longitude"] = *u.Longitude
	}
	return changes, nil
}

// Update applies a partial change. Only the owner may update a listing.
func (s *listingService) Update(ctx context.Context, actorID, id uint, update ListingUpdate) (*model.Listing, error) {
	changes, err := update.changes()
	if err != nil {
		return nil, err
	}

	err = s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.ListingRepository) error {
		listing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrListingNotFound
			}
			return fmt.Errorf("find listing: %w", err)
		}
		if listing.OwnerID != actorID {
			return errors.ErrNotListingOwner
		}
		if len(changes) == 0 {
			return nil
		}
		changes["updated_at"] = time.Now()
		return repo.UpdateFields(ctx, id, changes)
	})
	if err != nil {
		return nil, err
	}

	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return s.reload(ctx, id)
}

// Delete removes a listing. Only the owner may delete it.
func (s *listingService) Delete(ctx context.Context, actorID, id uint) error {
	err := s.repo.WithTransaction(ctx, func(ctx context.Context, repo repository.ListingRepository) error {
		listing, err := repo.FindByID(ctx, id)
		if err != nil {
			if errors.Is(err, gorm.ErrRecordNotFound) {
				return errors.ErrListingNotFound
			}
			return fmt.Errorf("find listing: %w", err)
		}
		if listing.OwnerID != actorID {
			return errors.ErrNotListingOwner
		}
		return repo.Delete(ctx, id)
	})
	if err != nil {
		return err
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))
	return nil
}

func (s *listingService) reload(ctx context.Context, id uint) (*model.Listing, error) {
	listing, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrListingNotFound
		}
		return nil, fmt.Errorf("reload listing: %w", err)
	}
	return listing, nil
}
