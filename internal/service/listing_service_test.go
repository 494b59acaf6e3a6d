package service

import (
	"context"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"realestate/internal/errors"
	"realestate/internal/model"
	"realestate/internal/query"
)

func ptr[T any](v T) *T { return &v }

func TestListingService_Create(t *testing.T) {
	tests := []struct {
		name          string
		input         ListingInput
		expectedError error
	}{
		{
			name:          "missing title",
			input:         ListingInput{Title: "  ", Price: decimal.NewFromInt(1)},
			expectedError: errors.ErrTitleRequired,
		},
		{
			name:          "negative price",
			input:         ListingInput{Title: "Flat", Price: decimal.NewFromInt(-1)},
			expectedError: errors.ErrInvalidPrice,
		},
		{
			name:          "unknown status",
			input:         ListingInput{Title: "Flat", Status: "rented"},
			expectedError: errors.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockListingRepository)
			service := NewListingService(repo, nil)

			listing, err := service.Create(context.Background(), 1, tt.input)
			assert.ErrorIs(t, err, tt.expectedError)
			assert.Nil(t, listing)
			repo.AssertNotCalled(t, "Create", mock.Anything, mock.Anything)
		})
	}
}

func TestListingService_CreateMarksFirstImagePrimary(t *testing.T) {
	repo := new(MockListingRepository)
	var created *model.Listing
	repo.On("Create", mock.Anything, mock.AnythingOfType("*model.Listing")).
		Run(func(args mock.Arguments) {
			created = args.Get(1).(*model.Listing)
			created.ID = 10
		}).
		Return(nil)
	repo.On("FindByID", mock.Anything, uint(10)).Return(&model.Listing{ID: 10}, nil)

	service := NewListingService(repo, nil)
	_, err := service.Create(context.Background(), 3, ListingInput{
		Title:    "Modern Loft in Mitte",
		Price:    decimal.NewFromInt(650000),
		City:     "Berlin",
		Images:   []string{"https://img/1.jpg", "", "https://img/2.jpg"},
		Features: []FeatureInput{{Name: "Balcony", Value: "yes"}, {Name: " "}},
	})
	require.NoError(t, err)

	require.NotNil(t, created)
	assert.Equal(t, uint(3), created.OwnerID)
	assert.Equal(t, model.ListingStatusActive, created.Status)
	assert.Equal(t, "modern-loft-in-mitte", created.Slug)
	require.Len(t, created.Images, 2)
	assert.True(t, created.Images[0].IsPrimary)
	assert.False(t, created.Images[1].IsPrimary)
	require.Len(t, created.Features, 1)
	assert.Equal(t, "Balcony", created.Features[0].FeatureName)
	repo.AssertExpectations(t)
}

func TestListingService_Update(t *testing.T) {
	owned := &model.Listing{ID: 7, OwnerID: 1, Title: "Old", City: "Berlin"}

	tests := []struct {
		name          string
		actor         uint
		update        ListingUpdate
		setupMock     func(*MockListingRepository)
		expectedError error
	}{
		{
			name:   "owner partial price update",
			actor:  1,
			update: ListingUpdate{Price: ptr(decimal.NewFromInt(500000))},
			setupMock: func(m *MockListingRepository) {
				m.On("FindByID", mock.Anything, uint(7)).Return(owned, nil)
				m.On("UpdateFields", mock.Anything, uint(7), mock.MatchedBy(func(c map[string]interface{}) bool {
					price, ok := c["price"].(decimal.Decimal)
					_, bumped := c["updated_at"]
					_, title := c["title"]
					_, city := c["city"]
					return ok && price.Equal(decimal.NewFromInt(500000)) && bumped && !title && !city && len(c) == 2
				})).Return(nil)
			},
		},
		{
			name:   "title change refreshes slug",
			actor:  1,
			update: ListingUpdate{Title: ptr("Sunny Altbau")},
			setupMock: func(m *MockListingRepository) {
				m.On("FindByID", mock.Anything, uint(7)).Return(owned, nil)
				m.On("UpdateFields", mock.Anything, uint(7), mock.MatchedBy(func(c map[string]interface{}) bool {
					return c["title"] == "Sunny Altbau" && c["slug"] == "sunny-altbau"
				})).Return(nil)
			},
		},
		{
			name:   "non-owner rejected",
			actor:  2,
			update: ListingUpdate{Price: ptr(decimal.NewFromInt(1))},
			setupMock: func(m *MockListingRepository) {
				m.On("FindByID", mock.Anything, uint(7)).Return(owned, nil)
			},
			expectedError: errors.ErrNotListingOwner,
		},
		{
			name:   "unknown listing",
			actor:  1,
			update: ListingUpdate{Price: ptr(decimal.NewFromInt(1))},
			setupMock: func(m *MockListingRepository) {
				m.On("FindByID", mock.Anything, uint(7)).Return(nil, gorm.ErrRecordNotFound)
			},
			expectedError: errors.ErrListingNotFound,
		},
		{
			name:          "invalid status",
			actor:         1,
			update:        ListingUpdate{Status: ptr(model.ListingStatus("gone"))},
			setupMock:     func(m *MockListingRepository) {},
			expectedError: errors.ErrInvalidStatus,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			repo := new(MockListingRepository)
			tt.setupMock(repo)
			service := NewListingService(repo, nil)

			listing, err := service.Update(context.Background(), tt.actor, 7, tt.update)
			if tt.expectedError != nil {
				assert.ErrorIs(t, err, tt.expectedError)
				assert.Nil(t, listing)
				repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
			} else {
				require.NoError(t, err)
				assert.NotNil(t, listing)
			}
			repo.AssertExpectations(t)
		})
	}
}

func TestListingService_DeleteRequiresOwner(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("FindByID", mock.Anything, uint(7)).Return(&model.Listing{ID: 7, OwnerID: 1}, nil)
	repo.On("Delete", mock.Anything, uint(7)).Return(nil).Once()
	service := NewListingService(repo, nil)

	assert.ErrorIs(t, service.Delete(context.Background(), 2, 7), errors.ErrNotListingOwner)
	assert.NoError(t, service.Delete(context.Background(), 1, 7))
	repo.AssertExpectations(t)
}

func TestListingService_GetNotFound(t *testing.T) {
	repo := new(MockListingRepository)
	repo.On("FindByID", mock.Anything, uint(99)).Return(nil, gorm.ErrRecordNotFound)
	service := NewListingService(repo, nil)

	listing, err := service.Get(context.Background(), 99)
	assert.ErrorIs(t, err, errors.ErrListingNotFound)
	assert.Nil(t, listing)
}

func TestListingService_BrowseComputesPages(t *testing.T) {
	criteria := query.ListingCriteria{Status: model.ListingStatusActive, Page: 2, PerPage: 10}
	repo := new(MockListingRepository)
	repo.On("Browse", mock.Anything, criteria).Return([]model.Listing{{ID: 1}}, int64(21), nil)
	service := NewListingService(repo, nil)

	page, err := service.Browse(context.Background(), criteria)
	require.NoError(t, err)
	assert.Equal(t, int64(21), page.Total)
	assert.Equal(t, 3, page.Pages)
	assert.Equal(t, 2, page.CurrentPage)
	assert.Len(t, page.Listings, 1)
}
