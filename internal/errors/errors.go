package errors

import (
	"errors"
	"net/http"
)

var (
	// ErrUserNotFound is returned when a user is not found.
	ErrUserNotFound = errors.New("user not found")
	// ErrListingNotFound is returned when a listing is not found.
	ErrListingNotFound = errors.New("listing not found")
	// ErrFavoriteNotFound is returned when removing a favorite that does not exist.
	ErrFavoriteNotFound = errors.New("favorite not found")
	// ErrReceiverNotFound is returned when a message is addressed to an unknown user.
	ErrReceiverNotFound = errors.New("receiver not found")

	// ErrAlreadyFavorited is returned when a (user, listing) favorite already exists.
	ErrAlreadyFavorited = errors.New("already favorited")
	// ErrEmailTaken is returned when registering an email that is already in use.
	ErrEmailTaken = errors.New("email already registered")

	// ErrInvalidCredentials is returned when email or password is incorrect.
	ErrInvalidCredentials = errors.New("invalid credentials")
	// ErrInvalidRefreshToken is returned when a refresh token is invalid or expired.
	ErrInvalidRefreshToken = errors.New("invalid or expired refresh token")

	// ErrNotListingOwner is returned when a non-owner mutates a listing.
	ErrNotListingOwner = errors.New("unauthorized")

	// ErrContentRequired is returned when a message has no content.
	ErrContentRequired = errors.New("content is required")
	// ErrTitleRequired is returned when a listing has no title.
	ErrTitleRequired = errors.New("title is required")
	// ErrInvalidPrice is returned when a listing price is negative.
	ErrInvalidPrice = errors.New("price must not be negative")
	// ErrInvalidStatus is returned for an unknown listing status.
	ErrInvalidStatus = errors.New("status must be one of active, sold, pending")
	// ErrInvalidRole is returned for an unknown user role.
	ErrInvalidRole = errors.New("role must be one of buyer, seller, agent")
)

// Is reports whether any error in err's chain matches target.
func Is(err, target error) bool { return errors.Is(err, target) }

// As finds the first error in err's chain that matches target.
func As(err error, target any) bool { return errors.As(err, target) }

// ErrorResponse represents a standardized error response.
type ErrorResponse struct {
	Error string `json:"error"`
	Code  string `json:"code,omitempty"`
}

// HTTPError represents an HTTP error with status code.
type HTTPError struct {
	StatusCode int
	Message    string
	Code       string
}

func (e *HTTPError) Error() string {
	return e.Message
}

// NewHTTPError creates a new HTTP error.
func NewHTTPError(statusCode int, message, code string) *HTTPError {
	return &HTTPError{
		StatusCode: statusCode,
		Message:    message,
		Code:       code,
	}
}

// ToErrorResponse converts an HTTPError to ErrorResponse.
func (e *HTTPError) ToErrorResponse() ErrorResponse {
	return ErrorResponse{
		Error: e.Message,
		Code:  e.Code,
	}
}

type mapping struct {
	target error
	status int
	code   string
}

var mappings = []mapping{
	{ErrUserNotFound, http.StatusNotFound, "USER_NOT_FOUND"},
	{ErrListingNotFound, http.StatusNotFound, "LISTING_NOT_FOUND"},
	{ErrFavoriteNotFound, http.StatusNotFound, "FAVORITE_NOT_FOUND"},
	{ErrReceiverNotFound, http.StatusNotFound, "RECEIVER_NOT_FOUND"},
	{ErrAlreadyFavorited, http.StatusConflict, "ALREADY_FAVORITED"},
	{ErrEmailTaken, http.StatusConflict, "EMAIL_TAKEN"},
	{ErrInvalidCredentials, http.StatusUnauthorized, "INVALID_CREDENTIALS"},
	{ErrInvalidRefreshToken, http.StatusUnauthorized, "INVALID_REFRESH_TOKEN"},
	{ErrNotListingOwner, http.StatusForbidden, "NOT_LISTING_OWNER"},
	{ErrContentRequired, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrTitleRequired, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrInvalidPrice, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrInvalidStatus, http.StatusBadRequest, "VALIDATION_ERROR"},
	{ErrInvalidRole, http.StatusBadRequest, "VALIDATION_ERROR"},
}

// MapErrorToHTTP maps domain errors to HTTP errors.
func MapErrorToHTTP(err error) *HTTPError {
	for _, m := range mappings {
		if errors.Is(err, m.target) {
			return NewHTTPError(m.status, m.target.Error(), m.code)
		}
	}
	return NewHTTPError(http.StatusInternalServerError, "internal server error", "INTERNAL_ERROR")
}
