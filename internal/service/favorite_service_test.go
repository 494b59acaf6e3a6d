package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"gorm.io/gorm"

	"realestate/internal/errors"
	"realestate/internal/model"
)

func TestFavoriteService_Add(t *testing.T) {
	tests := []struct {
		name          string
		setupMock     func(*MockFavoriteRepository, *MockListingRepository)
		expectedError error
	}{
		{
			name: "new favorite",
			setupMock: func(f *MockFavoriteRepository, l *MockListingRepository) {
				l.On("Exists", mock.Anything, uint(9)).Return(true, nil)
				f.On("Find", mock.Anything, uint(2), uint(9)).Return(nil, gorm.ErrRecordNotFound)
				f.On("Create", mock.Anything, mock.AnythingOfType("*model.Favorite")).Return(nil)
			},
		},
		{
			name: "already favorited",
			setupMock: func(f *MockFavoriteRepository, l *MockListingRepository) {
				l.On("Exists", mock.Anything, uint(9)).Return(true, nil)
				f.On("Find", mock.Anything, uint(2), uint(9)).Return(&model.Favorite{ID: 1}, nil)
			},
			expectedError: errors.ErrAlreadyFavorited,
		},
		{
			name: "concurrent insert hits unique index",
			setupMock: func(f *MockFavoriteRepository, l *MockListingRepository) {
				l.On("Exists", mock.Anything, uint(9)).Return(true, nil)
				f.On("Find", mock.Anything, uint(2), uint(9)).Return(nil, gorm.ErrRecordNotFound)
				f.On("Create", mock.Anything, mock.AnythingOfType("*model.Favorite")).Return(gorm.ErrDuplicatedKey)
			},
			expectedError: errors.ErrAlreadyFavorited,
		},
		{
			name: "unknown listing",
			setupMock: func(f *MockFavoriteRepository, l *MockListingRepository) {
				l.On("Exists", mock.Anything, uint(9)).Return(false, nil)
			},
			expectedError: errors.ErrListingNotFound,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			favRepo := new(MockFavoriteRepository)
			listingRepo := new(MockListingRepository)
			tt.setupMock(favRepo, listingRepo)

			service := NewFavoriteService(favRepo, listingRepo)
			fav, err := service.Add(context.Background(), 2, 9)

			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, fav)
			} else {
				assert.NoError(t, err)
				assert.Equal(t, uint(2), fav.UserID)
				assert.Equal(t, uint(9), fav.ListingID)
			}
			favRepo.AssertExpectations(t)
			listingRepo.AssertExpectations(t)
		})
	}
}

func TestFavoriteService_Remove(t *testing.T) {
	favRepo := new(MockFavoriteRepository)
	existing := &model.Favorite{ID: 4, UserID: 2, ListingID: 9}
	favRepo.On("Find", mock.Anything, uint(2), uint(9)).Return(existing, nil)
	favRepo.On("Delete", mock.Anything, existing).Return(nil)
	favRepo.On("Find", mock.Anything, uint(2), uint(8)).Return(nil, gorm.ErrRecordNotFound)

	service := NewFavoriteService(favRepo, new(MockListingRepository))

	assert.NoError(t, service.Remove(context.Background(), 2, 9))
	assert.ErrorIs(t, service.Remove(context.Background(), 2, 8), errors.ErrFavoriteNotFound)
	favRepo.AssertExpectations(t)
}
