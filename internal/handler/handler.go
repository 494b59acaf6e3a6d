// Package handler exposes the HTTP API over echo.
package handler

import (
	"log"
	"net/http"
	"strconv"
	"strings"

	"github.com/golang-jwt/jwt/v5"
	"github.com/labstack/echo/v4"

	"realestate/internal/auth"
	"realestate/internal/errors"
)

// MessageResponse is a plain acknowledgement.
type MessageResponse struct {
	Message string `json:"message"`
}

// currentUserID returns the user id carried by the validated access token.
func currentUserID(c echo.Context) (uint, error) {
	token, ok := c.Get("user").(*jwt.Token)
	if !ok {
		return 0, unauthorized()
	}
	claims, ok := token.Claims.(*auth.Claims)
	if !ok || claims.UserID == 0 {
		return 0, unauthorized()
	}
	return claims.UserID, nil
}

func unauthorized() error {
	return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
		Error: "invalid or expired token",
		Code:  "UNAUTHORIZED",
	})
}

func badRequest(msg, code string) error {
	return echo.NewHTTPError(http.StatusBadRequest, errors.ErrorResponse{Error: msg, Code: code})
}

func invalidBody() error {
	return badRequest("invalid request body", "INVALID_BODY")
}

func validationFailed(err error) error {
	return badRequest(err.Error(), "VALIDATION_ERROR")
}

// fail converts a service error to its HTTP response.
func fail(c echo.Context, err error) error {
	httpErr := errors.MapErrorToHTTP(err)
	if httpErr.StatusCode >= http.StatusInternalServerError {
		log.Printf("%s %s: %v", c.Request().Method, c.Path(), err)
	}
	return echo.NewHTTPError(httpErr.StatusCode, httpErr.ToErrorResponse())
}

// pathID parses a numeric path parameter. echo lets a trailing parameter
// swallow the rest of the path, so extra segments mean no such route.
func pathID(c echo.Context, name string) (uint, error) {
	raw := c.Param(name)
	if strings.Contains(raw, "/") {
		return 0, echo.ErrNotFound
	}
	id, err := strconv.ParseUint(raw, 10, 64)
	if err != nil || id == 0 {
		return 0, badRequest("invalid "+name, "INVALID_ID")
	}
	return uint(id), nil
}
