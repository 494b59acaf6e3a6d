package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	_ "realestate/docs" // swagger docs

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"realestate/internal/auth"
	"realestate/internal/cache"
	"realestate/internal/config"
	"realestate/internal/db"
	"realestate/internal/handler"
	"realestate/internal/realtime"
	"realestate/internal/repository"
	"realestate/internal/router"
	"realestate/internal/seed"
	"realestate/internal/service"
	"realestate/internal/worker"
)

// @title Real Estate Listings API
// @version 1.0
// @description Property listings with search, favorites, owner messaging and realtime message notifications.
// @host localhost:5000
// @BasePath /api
// @schemes http
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
// @description Type "Bearer" followed by a space and JWT token.
func main() {
	cfg := config.Load()

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("database init: %v", err)
	}

	if cfg.ResetDB {
		log.Println("RESET_DB=true detected, dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Printf("Warning: reset failed: %v", err)
		}
	}

	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("auto-migrate: %v", err)
	}

	if cfg.SeedOnStart {
		seedSampleData(ctx, gormDB)
	}

	cacheClient := cache.New(cfg.RedisAddr, cfg.RedisPass, cfg.RedisDB)
	defer cacheClient.Close()
	if err := cacheClient.Ping(ctx); err != nil {
		log.Printf("Warning: redis unreachable at %s, caching and refresh tokens degrade: %v", cfg.RedisAddr, err)
	}

	// Initialize realtime delivery
	hub := realtime.NewHub()
	var publisher realtime.Publisher = hub
	if cfg.RealtimeBroker == "redis" {
		broker := realtime.NewRedisBroker(cacheClient.Redis(), hub, realtime.DefaultChannel)
		go func() {
			if err := broker.Run(ctx); err != nil && !errors.Is(err, context.Canceled) {
				log.Printf("realtime broker stopped: %v", err)
			}
		}()
		publisher = broker
	}

	// Initialize repositories
	userRepo := repository.NewUserRepository(gormDB)
	listingRepo := repository.NewListingRepository(gormDB)
	favoriteRepo := repository.NewFavoriteRepository(gormDB)
	messageRepo := repository.NewMessageRepository(gormDB)

	// Initialize auth components
	jwtService := auth.NewJWTService(cfg.JWTSecret)
	tokenStore := auth.NewTokenStore(cacheClient)

	// Initialize services
	authService := service.NewAuthService(userRepo, jwtService, tokenStore)
	userService := service.NewUserService(userRepo, cacheClient)
	listingService := service.NewListingService(listingRepo, cacheClient)
	favoriteService := service.NewFavoriteService(favoriteRepo, listingRepo)
	messageService := service.NewMessageService(messageRepo, userRepo, listingRepo, publisher)

	// Register routes
	e := echo.New()
	router.Register(
		e,
		cfg,
		jwtService,
		handler.NewAuthHandler(authService),
		handler.NewUserHandler(userService),
		handler.NewListingHandler(listingService),
		handler.NewFavoriteHandler(favoriteService),
		handler.NewMessageHandler(messageService),
		realtime.NewServer(hub, jwtService.Authenticate).AllowOrigins(cfg.CORSAllowOrigins),
	)

	if cfg.OrphanSweepCron != "" {
		sweeper, err := worker.NewOrphanSweeper(listingRepo, cfg.OrphanSweepCron)
		if err != nil {
			log.Fatalf("orphan sweeper: %v", err)
		}
		sweeper.Start()
		defer sweeper.Stop()
	}

	log.Printf("Swagger documentation available at: %s", swaggerURL(cfg.SwaggerHost))

	go func() {
		addr := ":" + cfg.ServerPort
		if err := e.Start(addr); err != nil && err != http.ErrServerClosed {
			log.Fatalf("server start: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := e.Shutdown(shutdownCtx); err != nil {
		log.Printf("server shutdown: %v", err)
	}
}

func seedSampleData(ctx context.Context, gormDB *gorm.DB) {
	fixture, err := seed.Sample()
	if err != nil {
		log.Fatalf("seed: %v", err)
	}
	report, err := seed.Run(ctx, gormDB, fixture)
	switch {
	case errors.Is(err, seed.ErrAlreadySeeded):
		log.Println("SEED_ON_START: database already has users, skipping")
	case err != nil:
		log.Fatalf("seed: %v", err)
	default:
		log.Printf("SEED_ON_START: created %d users, %d listings, %d favorites, %d messages",
			report.Users, report.Listings, report.Favorites, report.Messages)
	}
}

// swaggerURL builds the docs URL; host may already carry a scheme.
func swaggerURL(host string) string {
	if host == "" {
		// docker-compose maps the container port to 5000
		return "http://localhost:5000/swagger/index.html"
	}
	if !strings.HasPrefix(host, "http://") && !strings.HasPrefix(host, "https://") {
		host = "http://" + host
	}
	return host + "/swagger/index.html"
}
