package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"

	"realestate/internal/service"
)

// FavoriteHandler serves the current user's favorites.
type FavoriteHandler struct {
	svc service.FavoriteService
}

// NewFavoriteHandler creates a new favorite handler.
func NewFavoriteHandler(svc service.FavoriteService) *FavoriteHandler {
	return &FavoriteHandler{svc: svc}
}

// AddFavoriteRequest names the listing to bookmark.
type AddFavoriteRequest struct {
	ListingID uint `json:"listing_id" validate:"required"`
}

// List godoc
// @Summary List favorites
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Success 200 {array} FavoriteView
// @Failure 401 {object} errors.ErrorResponse
// @Router /favorites [get]
func (h *FavoriteHandler) List(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	favorites, err := h.svc.List(c.Request().Context(), userID)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newFavoriteViews(favorites))
}

// Add godoc
// @Summary Add a favorite
// @Tags favorites
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body AddFavoriteRequest true "Listing"
// @Success 201 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Failure 409 {object} errors.ErrorResponse
// @Router /favorites [post]
func (h *FavoriteHandler) Add(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req AddFavoriteRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	if _, err := h.svc.Add(c.Request().Context(), userID, req.ListingID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, MessageResponse{Message: "added to favorites"})
}

// Remove godoc
// @Summary Remove a favorite
// @Tags favorites
// @Produce json
// @Security BearerAuth
// @Param listingId path int true "Listing ID"
// @Success 200 {object} MessageResponse
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /favorites/{listingId} [delete]
func (h *FavoriteHandler) Remove(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	listingID, err := pathID(c, "listingId")
	if err != nil {
		return err
	}
	if err := h.svc.Remove(c.Request().Context(), userID, listingID); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "removed from favorites"})
}
