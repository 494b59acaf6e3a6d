package service

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"realestate/internal/errors"
	"realestate/internal/model"
)

func TestUserService_GetProfile(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Name: "Anna"}, nil)
	repo.On("FindByID", mock.Anything, uint(2)).Return(nil, gorm.ErrRecordNotFound)
	service := NewUserService(repo, nil)

	user, err := service.GetProfile(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, "Anna", user.Name)

	_, err = service.GetProfile(context.Background(), 2)
	assert.ErrorIs(t, err, errors.ErrUserNotFound)
}

func TestUserService_UpdateProfileIsPartial(t *testing.T) {
	repo := new(MockUserRepository)
	repo.On("UpdateFields", mock.Anything, uint(1), map[string]interface{}{"phone": "+49 30 1234"}).Return(nil)
	repo.On("FindByID", mock.Anything, uint(1)).Return(&model.User{ID: 1, Name: "Anna", Phone: "+49 30 1234"}, nil)
	service := NewUserService(repo, nil)

	user, err := service.UpdateProfile(context.Background(), 1, ProfileUpdate{Phone: ptr(" +49 30 1234 ")})
	require.NoError(t, err)
	assert.Equal(t, "Anna", user.Name)
	repo.AssertExpectations(t)
}

func TestUserService_UpdateProfileRejectsUnknownRole(t *testing.T) {
	repo := new(MockUserRepository)
	service := NewUserService(repo, nil)

	_, err := service.UpdateProfile(context.Background(), 1, ProfileUpdate{Role: ptr(model.Role("admin"))})
	assert.ErrorIs(t, err, errors.ErrInvalidRole)
	repo.AssertNotCalled(t, "UpdateFields", mock.Anything, mock.Anything, mock.Anything)
}
