package handler

import (
	"net/http"

	"github.com/labstack/echo/v4"
	"github.com/shopspring/decimal"

	"realestate/internal/model"
	"realestate/internal/query"
	"realestate/internal/service"
)

// ListingHandler serves listing browse, search and owner mutations.
type ListingHandler struct {
	svc service.ListingService
}

// NewListingHandler creates a new listing handler.
func NewListingHandler(svc service.ListingService) *ListingHandler {
	return &ListingHandler{svc: svc}
}

// FeatureRequest is one name/value attribute.
type FeatureRequest struct {
	Name  string `json:"name" validate:"required,max=100"`
	Value string `json:"value" validate:"max=255"`
}

// CreateListingRequest is the payload of a new listing.
type CreateListingRequest struct {
	Title        string           `json:"title" validate:"required,max=255"`
	Description  string           `json:"description"`
	Price        *decimal.Decimal `json:"price" validate:"required" swaggertype:"number"`
	PropertyType string           `json:"property_type" validate:"max=50"`
	Bedrooms     int              `json:"bedrooms" validate:"min=0"`
	Bathrooms    int              `json:"bathrooms" validate:"min=0"`
	SquareFeet   int              `json:"square_feet" validate:"min=0"`
	Address      string           `json:"address" validate:"max=255"`
	City         string           `json:"city" validate:"max=100"`
	State        string           `json:"state" validate:"max=100"`
	ZipCode      string           `json:"zip_code" validate:"max=20"`
	Latitude     *float64         `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64         `json:"longitude" validate:"omitempty,longitude"`
	Status       string           `json:"status" validate:"omitempty,oneof=active sold pending"`
	Images       []string         `json:"images" validate:"dive,max=2048"`
	Features     []FeatureRequest `json:"features" validate:"dive"`
}

// UpdateListingRequest carries only the fields to change.
type UpdateListingRequest struct {
	Title        *string          `json:"title" validate:"omitempty,max=255"`
	Description  *string          `json:"description"`
	Price        *decimal.Decimal `json:"price" swaggertype:"number"`
	PropertyType *string          `json:"property_type" validate:"omitempty,max=50"`
	Bedrooms     *int             `json:"bedrooms" validate:"omitempty,min=0"`
	Bathrooms    *int             `json:"bathrooms" validate:"omitempty,min=0"`
	SquareFeet   *int             `json:"square_feet" validate:"omitempty,min=0"`
	Address      *string          `json:"address" validate:"omitempty,max=255"`
	City         *string          `json:"city" validate:"omitempty,max=100"`
	State        *string          `json:"state" validate:"omitempty,max=100"`
	ZipCode      *string          `json:"zip_code" validate:"omitempty,max=20"`
	Latitude     *float64         `json:"latitude" validate:"omitempty,latitude"`
	Longitude    *float64         `json:"longitude" validate:"omitempty,longitude"`
	Status       *string          `json:"status" validate:"omitempty,oneof=active sold pending"`
}

// Browse godoc
// @Summary Browse listings
// @Description Filters are optional; malformed numbers are ignored.
// @Tags listings
// @Produce json
// @Param status query string false "Listing status (default active)"
// @Param property_type query string false "Exact property type"
// @Param min_price query number false "Minimum price, inclusive"
// @Param max_price query number false "Maximum price, inclusive"
// @Param bedrooms query int false "Minimum bedrooms"
// @Param city query string false "City substring, case-insensitive"
// @Param page query int false "Page (default 1)"
// @Param per_page query int false "Page size (default 10, max 100)"
// @Success 200 {object} ListingPageResponse
// @Failure 500 {object} errors.ErrorResponse
// @Router /listings [get]
func (h *ListingHandler) Browse(c echo.Context) error {
	criteria := query.BrowseFromValues(c.QueryParams())
	page, err := h.svc.Browse(c.Request().Context(), criteria)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, ListingPageResponse{
		Listings:    newListingSummaries(page.Listings),
		Total:       page.Total,
		Pages:       page.Pages,
		CurrentPage: page.CurrentPage,
		PerPage:     page.PerPage,
	})
}

// Search godoc
// @Summary Search active listings
// @Description Free text matches title, description, address or city. Returns at most 20 newest matches.
// @Tags listings
// @Produce json
// @Param q query string false "Free text"
// @Param property_type query string false "Exact property type"
// @Param min_price query number false "Minimum price, inclusive"
// @Param max_price query number false "Maximum price, inclusive"
// @Param bedrooms query int false "Minimum bedrooms"
// @Param city query string false "City substring, case-insensitive"
// @Success 200 {array} ListingSummary
// @Failure 500 {object} errors.ErrorResponse
// @Router /search [get]
func (h *ListingHandler) Search(c echo.Context) error {
	listings, err := h.svc.Search(c.Request().Context(), query.SearchFromValues(c.QueryParams()))
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newListingSummaries(listings))
}

// Get godoc
// @Summary Get a listing
// @Tags listings
// @Produce json
// @Param id path int true "Listing ID"
// @Success 200 {object} ListingDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id} [get]
func (h *ListingHandler) Get(c echo.Context) error {
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	listing, err := h.svc.Get(c.Request().Context(), id)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newListingDetail(listing))
}

// Create godoc
// @Summary Create a listing
// @Description The first image becomes the primary image.
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param request body CreateListingRequest true "Listing"
// @Success 201 {object} ListingDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Router /listings [post]
func (h *ListingHandler) Create(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}

	var req CreateListingRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	in := service.ListingInput{
		Title:        req.Title,
		Description:  req.Description,
		Price:        *req.Price,
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		SquareFeet:   req.SquareFeet,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
		Status:       model.ListingStatus(req.Status),
		Images:       req.Images,
	}
	for _, f := range req.Features {
		in.Features = append(in.Features, service.FeatureInput{Name: f.Name, Value: f.Value})
	}

	listing, err := h.svc.Create(c.Request().Context(), userID, in)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusCreated, newListingDetail(listing))
}

// Update godoc
// @Summary Update a listing
// @Description Only fields present in the body change. Owner only.
// @Tags listings
// @Accept json
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Param request body UpdateListingRequest true "Fields to change"
// @Success 200 {object} ListingDetail
// @Failure 400 {object} errors.ErrorResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id} [put]
func (h *ListingHandler) Update(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}

	var req UpdateListingRequest
	if err := c.Bind(&req); err != nil {
		return invalidBody()
	}
	if err := c.Validate(&req); err != nil {
		return validationFailed(err)
	}

	update := service.ListingUpdate{
		Title:        req.Title,
		Description:  req.Description,
		Price:        req.Price,
		PropertyType: req.PropertyType,
		Bedrooms:     req.Bedrooms,
		Bathrooms:    req.Bathrooms,
		SquareFeet:   req.SquareFeet,
		Address:      req.Address,
		City:         req.City,
		State:        req.State,
		ZipCode:      req.ZipCode,
		Latitude:     req.Latitude,
		Longitude:    req.Longitude,
	}
	if req.Status != nil {
		status := model.ListingStatus(*req.Status)
		update.Status = &status
	}

	listing, err := h.svc.Update(c.Request().Context(), userID, id, update)
	if err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, newListingDetail(listing))
}

// Delete godoc
// @Summary Delete a listing
// @Description Removes images, features and favorites. Messages keep the text with no listing. Owner only.
// @Tags listings
// @Produce json
// @Security BearerAuth
// @Param id path int true "Listing ID"
// @Success 200 {object} MessageResponse
// @Failure 401 {object} errors.ErrorResponse
// @Failure 403 {object} errors.ErrorResponse
// @Failure 404 {object} errors.ErrorResponse
// @Router /listings/{id} [delete]
func (h *ListingHandler) Delete(c echo.Context) error {
	userID, err := currentUserID(c)
	if err != nil {
		return err
	}
	id, err := pathID(c, "id")
	if err != nil {
		return err
	}
	if err := h.svc.Delete(c.Request().Context(), userID, id); err != nil {
		return fail(c, err)
	}
	return c.JSON(http.StatusOK, MessageResponse{Message: "listing deleted"})
}
