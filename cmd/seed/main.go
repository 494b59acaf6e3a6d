package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"os"

	"realestate/internal/config"
	"realestate/internal/db"
	"realestate/internal/seed"
)

func main() {
	file := flag.String("file", "", "YAML fixture to load instead of the built-in sample data")
	reset := flag.Bool("reset", false, "drop all tables before seeding")
	flag.Parse()

	log.Println("Starting seed script...")

	// Load configuration
	cfg := config.Load()

	// Connect to database
	gormDB, err := db.Open(cfg.DBDriver, cfg.DatabaseDSN)
	if err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}
	log.Println("Connected to database")

	if *reset || cfg.ResetDB {
		log.Println("Dropping all tables...")
		if err := db.Reset(gormDB); err != nil {
			log.Fatalf("Failed to reset database: %v", err)
		}
	}

	// Run migrations to ensure schema is up to date
	if err := db.Migrate(gormDB); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}
	log.Println("Database migrations completed")

	fixture, err := loadFixture(*file)
	if err != nil {
		log.Fatalf("Failed to load fixture: %v", err)
	}

	log.Println("Seeding sample data into database...")
	report, err := seed.Run(context.Background(), gormDB, fixture)
	if errors.Is(err, seed.ErrAlreadySeeded) {
		log.Println("Database already contains users, nothing to do (use -reset to start over)")
		return
	}
	if err != nil {
		log.Fatalf("Failed to seed database: %v", err)
	}

	log.Printf("Seed completed successfully!")
	log.Printf("  - Users: %d", report.Users)
	log.Printf("  - Listings: %d", report.Listings)
	log.Printf("  - Favorites: %d", report.Favorites)
	log.Printf("  - Messages: %d", report.Messages)
	log.Println("Sample accounts use the password password123")
}

func loadFixture(path string) (*seed.Fixture, error) {
	if path == "" {
		return seed.Sample()
	}
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	return seed.Parse(data)
}
