package service

import (
	"context"
	"fmt"

	"gorm.io/gorm"

	"realestate/internal/errors"
	"realestate/internal/model"
	"realestate/internal/repository"
)

// FavoriteService manages a user's bookmarked listings.
type FavoriteService interface {
	Add(ctx context.Context, userID, listingID uint) (*model.Favorite, error)
	Remove(ctx context.Context, userID, listingID uint) error
	List(ctx context.Context, userID uint) ([]model.Favorite, error)
}

type favoriteService struct {
	favoriteRepo repository.FavoriteRepository
	listingRepo  repository.ListingRepository
}

// NewFavoriteService creates a new favorite service.
func NewFavoriteService(favoriteRepo repository.FavoriteRepository, listingRepo repository.ListingRepository) FavoriteService {
	return &favoriteService{favoriteRepo: favoriteRepo, listingRepo: listingRepo}
}

// Add bookmarks a listing. A second add of the same pair is a conflict.
func (s *favoriteService) Add(ctx context.Context, userID, listingID uint) (*model.Favorite, error) {
	exists, err := s.listingRepo.Exists(ctx, listingID)
	if err != nil {
		return nil, fmt.Errorf("check listing: %w", err)
	}
	if !exists {
		return nil, errors.ErrListingNotFound
	}

	existing, err := s.favoriteRepo.Find(ctx, userID, listingID)
	if err == nil && existing != nil {
		return nil, errors.ErrAlreadyFavorited
	}
	if err != nil && !errors.Is(err, gorm.ErrRecordNotFound) {
		return nil, fmt.Errorf("find favorite: %w", err)
	}

	favorite := &model.Favorite{UserID: userID, ListingID: listingID}
	if err := s.favoriteRepo.Create(ctx, favorite); err != nil {
		if errors.Is(err, gorm.ErrDuplicatedKey) {
			return nil, errors.ErrAlreadyFavorited
		}
		return nil, fmt.Errorf("create favorite: %w", err)
	}
	return favorite, nil
}

// Remove deletes a bookmark; removing one that does not exist is not found.
func (s *favoriteService) Remove(ctx context.Context, userID, listingID uint) error {
	favorite, err := s.favoriteRepo.Find(ctx, userID, listingID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return errors.ErrFavoriteNotFound
		}
		return fmt.Errorf("find favorite: %w", err)
	}
	if err := s.favoriteRepo.Delete(ctx, favorite); err != nil {
		return fmt.Errorf("delete favorite: %w", err)
	}
	return nil
}

func (s *favoriteService) List(ctx context.Context, userID uint) ([]model.Favorite, error) {
	favorites, err := s.favoriteRepo.ListByUser(ctx, userID)
	if err != nil {
		return nil, fmt.Errorf("list favorites: %w", err)
	}
	return favorites, nil
}
