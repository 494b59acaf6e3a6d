package router

import (
	"log"
	"net/http"

	"github.com/go-playground/validator/v10"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	echoSwagger "github.com/swaggo/echo-swagger"

	"realestate/internal/auth"
	"realestate/internal/config"
	"realestate/internal/errors"
	"realestate/internal/handler"
)

// Register wires routes and middleware.
func Register(
	e *echo.Echo,
	cfg *config.Config,
	jwtService *auth.JWTService,
	authHandler *handler.AuthHandler,
	userHandler *handler.UserHandler,
	listingHandler *handler.ListingHandler,
	favoriteHandler *handler.FavoriteHandler,
	messageHandler *handler.MessageHandler,
	realtimeHandler http.Handler,
) {
	e.HTTPErrorHandler = JSONErrorHandler
	e.Use(middleware.RequestID())
	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.CORSWithConfig(middleware.CORSConfig{
		AllowOrigins: cfg.CORSAllowOrigins,
		AllowHeaders: []string{echo.HeaderOrigin, echo.HeaderContentType, echo.HeaderAccept, echo.HeaderAuthorization},
	}))

	// Add validator
	e.Validator = &CustomValidator{validator: validator.New()}

	e.GET("/healthz", func(c echo.Context) error {
		return c.String(http.StatusOK, "ok")
	})

	e.GET("/swagger/*", echoSwagger.WrapHandler)

	// Token is checked before the upgrade, not by the JWT middleware.
	e.GET("/ws", echo.WrapHandler(realtimeHandler))

	api := e.Group("/api")

	// Public routes
	api.POST("/auth/register", authHandler.Register)
	api.POST("/auth/login", authHandler.Login)
	api.POST("/auth/refresh", authHandler.Refresh)
	api.POST("/auth/logout", authHandler.Logout)
	api.GET("/listings", listingHandler.Browse)
	api.GET("/listings/:id", listingHandler.Get)
	api.GET("/search", listingHandler.Search)

	// Attached per route so unknown /api paths still fall through to 404.
	requireAuth := echojwt.WithConfig(echojwt.Config{
		TokenLookup: "header:" + echo.HeaderAuthorization + ":Bearer ",
		ParseTokenFunc: func(c echo.Context, token string) (interface{}, error) {
			return jwtService.ParseAccessToken(token)
		},
		ErrorHandler: func(c echo.Context, err error) error {
			return echo.NewHTTPError(http.StatusUnauthorized, errors.ErrorResponse{
				Error: "invalid or expired token",
				Code:  "UNAUTHORIZED",
			})
		},
	})

	// Profile routes
	api.GET("/user/profile", userHandler.GetProfile, requireAuth)
	api.PUT("/user/profile", userHandler.UpdateProfile, requireAuth)

	// Listing routes
	api.POST("/listings", listingHandler.Create, requireAuth)
	api.PUT("/listings/:id", listingHandler.Update, requireAuth)
	api.DELETE("/listings/:id", listingHandler.Delete, requireAuth)

	// Favorite routes
	api.GET("/favorites", favoriteHandler.List, requireAuth)
	api.POST("/favorites", favoriteHandler.Add, requireAuth)
	api.DELETE("/favorites/:listingId", favoriteHandler.Remove, requireAuth)

	// Message routes
	api.GET("/messages", messageHandler.List, requireAuth)
	api.POST("/messages", messageHandler.Send, requireAuth)
}

// JSONErrorHandler writes every error as a JSON body with an error string.
func JSONErrorHandler(err error, c echo.Context) {
	if c.Response().Committed {
		return
	}

	status := http.StatusInternalServerError
	body := errors.ErrorResponse{Error: "internal server error", Code: "INTERNAL_ERROR"}

	var he *echo.HTTPError
	if errors.As(err, &he) {
		status = he.Code
		switch msg := he.Message.(type) {
		case errors.ErrorResponse:
			body = msg
		case string:
			body = errors.ErrorResponse{Error: msg}
		case error:
			body = errors.ErrorResponse{Error: msg.Error()}
		default:
			body = errors.ErrorResponse{Error: http.StatusText(status)}
		}
	} else {
		log.Printf("%s %s: unhandled error: %v", c.Request().Method, c.Path(), err)
	}

	if c.Request().Method == http.MethodHead {
		err = c.NoContent(status)
	} else {
		err = c.JSON(status, body)
	}
	if err != nil {
		log.Printf("write error response: %v", err)
	}
}

// CustomValidator wraps validator for Echo.
type CustomValidator struct {
	validator *validator.Validate
}

// Validate implements echo.Validator interface.
func (cv *CustomValidator) Validate(i interface{}) error {
	return cv.validator.Struct(i)
}
