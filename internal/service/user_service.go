package service

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"

	"realestate/internal/cache"
	"realestate/internal/errors"
	"realestate/internal/model"
	"realestate/internal/repository"
)

const userCacheTTL = 5 * time.Minute

// ProfileUpdate is a partial profile change; nil fields are left untouched.
type ProfileUpdate struct {
	Name  *string
	Phone *string
	Role  *model.Role
}

// UserService exposes profile operations for the authenticated user.
type UserService interface {
	GetProfile(ctx context.Context, id uint) (*model.User, error)
	UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*model.User, error)
}

type userService struct {
	repo  repository.UserRepository
	cache *cache.Client
}

// NewUserService builds a UserService with repository and cache.
func NewUserService(repo repository.UserRepository, cache *cache.Client) UserService {
	return &userService{repo: repo, cache: cache}
}

// userCacheKey is shared with the listing service, which caches owners here.
func userCacheKey(id uint) string {
	return fmt.Sprintf("user:%d", id)
}

func (s *userService) cacheKey(id uint) string {
	return userCacheKey(id)
}

func (s *userService) GetProfile(ctx context.Context, id uint) (*model.User, error) {
	var cached model.User
	if s.cache.GetJSON(ctx, s.cacheKey(id), &cached) {
		return &cached, nil
	}

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}

	s.cache.SetJSON(ctx, s.cacheKey(id), user, userCacheTTL)
	return user, nil
}

func (s *userService) UpdateProfile(ctx context.Context, id uint, update ProfileUpdate) (*model.User, error) {
	changes := map[string]interface{}{}
	if update.Name != nil {
		name := strings.TrimSpace(*update.Name)
		if name != "" {
			changes["name"] = name
		}
	}
	if update.Phone != nil {
		changes["phone"] = strings.TrimSpace(*update.Phone)
	}
	if update.Role != nil {
		if !update.Role.Valid() {
			return nil, errors.ErrInvalidRole
		}
		changes["role"] = *update.Role
	}

	if err := s.repo.UpdateFields(ctx, id, changes); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("update user: %w", err)
	}
	_ = s.cache.Delete(ctx, s.cacheKey(id))

	user, err := s.repo.FindByID(ctx, id)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, errors.ErrUserNotFound
		}
		return nil, fmt.Errorf("find user: %w", err)
	}
	return user, nil
}
