package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"realestate/internal/model"
	"realestate/internal/service"
)

// UserHandler serves the authenticated user's profile.
type UserHandler struct {
	svc service.UserService
}

// NewUserHandler creates a handler layer.
func NewUserHandler(svc service.UserService) *UserHandler {
	return &UserHandler{svc: svc}
}

// UpdateProfileRequest is a partial profile update.
type UpdateProfileRequest struct {
	Name  *string `json:"name" validate:"omitempty,min=1,max=255"`
	Phone *string `json:"phone" validate:"omitempty,max=50"`
	Role  *string `json:"role" validate:"omitempty,oneof=buyer seller agent"`
}

// GetProfile godoc
// @Summary Get the current user's profile
// @Tags users
// @Produce json
// @Security BearerAuth
// @Success 200 {object} model.User
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/profile [get]
func (h *UserHandler) GetProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	user, err := h.svc.GetProfile(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}

// UpdateProfile godoc
// @Summary Update the current user's profile
// @Tags users
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body UpdateProfileRequest true "Fields to change"
// @Success 200 {object} model.User
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /user/profile [put]
func (h *UserHandler) UpdateProfile(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req UpdateProfileRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	update := service.ProfileUpdate{Name: req.Name, Phone: req.Phone}
	if req.Role != nil {
		role := model.Role(*req.Role)
		update.Role = &role
	}

	user, err := h.svc.UpdateProfile(c.Request().Context(), userID, update)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, user)
}
