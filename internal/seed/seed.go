// Package seed loads the sample users, listings, favorites and messages.
package seed

import (
	"context"
	_ "embed"
	"errors"
	"fmt"
	"time"

	"github.com/gosimple/slug"
	"github.com/shopspring/decimal"
	"gopkg.in/yaml.v3"
	"gorm.io/gorm"

	"realestate/internal/auth"
	"realestate/internal/model"
	"realestate/internal/repository"
)

//go:embed sample.yaml
var sampleYAML []byte

// ErrAlreadySeeded is returned when the store already has users.
var ErrAlreadySeeded = errors.New("database already contains users")

// Fixture is the sample data set.
type Fixture struct {
	Users     []UserFixture     `yaml:"users"`
	Listings  []ListingFixture  `yaml:"listings"`
	Favorites []FavoriteFixture `yaml:"favorites"`
	Messages  []MessageFixture  `yaml:"messages"`
}

type UserFixture struct {
	Name     string     `yaml:"name"`
	Email    string     `yaml:"email"`
	Password string     `yaml:"password"`
	Phone    string     `yaml:"phone"`
	Role     model.Role `yaml:"role"`
}

type ListingFixture struct {
	Key          string           `yaml:"key"`
	Owner        string           `yaml:"owner"`
	Title        string           `yaml:"title"`
	Description  string           `yaml:"description"`
	Price        string           `yaml:"price"`
	PropertyType string           `yaml:"property_type"`
	Bedrooms     int              `yaml:"bedrooms"`
	Bathrooms    int              `yaml:"bathrooms"`
	SquareFeet   int              `yaml:"square_feet"`
	Address      string           `yaml:"address"`
	City         string           `yaml:"city"`
	State        string           `yaml:"state"`
	ZipCode      string           `yaml:"zip_code"`
	Latitude     *float64         `yaml:"latitude"`
	Longitude    *float64         `yaml:"longitude"`
	Status       string           `yaml:"status"`
	Images       []string         `yaml:"images"`
	Features     []FeatureFixture `yaml:"features"`
}

type FeatureFixture struct {
	Name  string `yaml:"name"`
	Value string `yaml:"value"`
}

type FavoriteFixture struct {
	User    string `yaml:"user"`
	Listing string `yaml:"listing"`
}

type MessageFixture struct {
	From    string `yaml:"from"`
	To      string `yaml:"to"`
	Listing string `yaml:"listing"`
	Subject string `yaml:"subject"`
	Content string `yaml:"content"`
	IsRead  bool   `yaml:"is_read"`
}

// Report counts the rows created by Run.
type Report struct {
	Users     int
	Listings  int
	Favorites int
	Messages  int
}

// Parse decodes a YAML fixture.
func Parse(data []byte) (*Fixture, error) {
	var fx Fixture
	if err := yaml.Unmarshal(data, &fx); err != nil {
		return nil, fmt.Errorf("parse fixture: %w", err)
	}
	return &fx, nil
}

// Sample returns the embedded sample fixture.
func Sample() (*Fixture, error) {
	return Parse(sampleYAML)
}

// Run writes the fixture in one transaction. It refuses to run against
// a store that already has users.
func Run(ctx context.Context, gormDB *gorm.DB, fx *Fixture) (Report, error) {
	var report Report

	count, err := repository.NewUserRepository(gormDB).Count(ctx)
	if err != nil {
		return report, fmt.Errorf("count users: %w", err)
	}
	if count > 0 {
		return report, ErrAlreadySeeded
	}

	err = gormDB.WithContext(ctx).Transaction(func(tx *gorm.DB) error {
		report = Report{}
		users := repository.NewUserRepository(tx)
		listings := repository.NewListingRepository(tx)
		favorites := repository.NewFavoriteRepository(tx)
		messages := repository.NewMessageRepository(tx)

		userIDs := make(map[string]uint, len(fx.Users))
		for _, u := range fx.Users {
			hash, err := auth.HashPassword(u.Password)
			if err != nil {
				return fmt.Errorf("hash password for %s: %w", u.Email, err)
			}
			role := u.Role
			if role == "" {
				role = model.RoleBuyer
			}
			user := &model.User{Name: u.Name, Email: u.Email, PasswordHash: hash, Phone: u.Phone, Role: role}
			if err := users.Create(ctx, user); err != nil {
				return fmt.Errorf("create user %s: %w", u.Email, err)
			}
			userIDs[u.Email] = user.ID
			report.Users++
		}

		// Older fixtures first so the first listing is the oldest.
		base := time.Now().Add(-time.Duration(len(fx.Listings)+len(fx.Messages)) * time.Hour)
		listingIDs := make(map[string]uint, len(fx.Listings))
		for i, l := range fx.Listings {
			listing, err := l.toModel(userIDs)
			if err != nil {
				return err
			}
			listing.CreatedAt = base.Add(time.Duration(i) * time.Hour)
			if err := listings.Create(ctx, listing); err != nil {
				return fmt.Errorf("create listing %s: %w", l.Key, err)
			}
			listingIDs[l.Key] = listing.ID
			report.Listings++
		}

		for _, f := range fx.Favorites {
			userID, ok := userIDs[f.User]
			if !ok {
				return fmt.Errorf("favorite: unknown user %q", f.User)
			}
			listingID, ok := listingIDs[f.Listing]
			if !ok {
				return fmt.Errorf("favorite: unknown listing %q", f.Listing)
			}
			if err := favorites.Create(ctx, &model.Favorite{UserID: userID, ListingID: listingID}); err != nil {
				return fmt.Errorf("create favorite: %w", err)
			}
			report.Favorites++
		}

		msgBase := base.Add(time.Duration(len(fx.Listings)) * time.Hour)
		for i, m := range fx.Messages {
			senderID, ok := userIDs[m.From]
			if !ok {
				return fmt.Errorf("message: unknown sender %q", m.From)
			}
			receiverID, ok := userIDs[m.To]
			if !ok {
				return fmt.Errorf("message: unknown receiver %q", m.To)
			}
			msg := &model.Message{
				SenderID:   senderID,
				ReceiverID: receiverID,
				Subject:    m.Subject,
				Content:    m.Content,
				IsRead:     m.IsRead,
				CreatedAt:  msgBase.Add(time.Duration(i) * time.Hour),
			}
			if m.Listing != "" {
				listingID, ok := listingIDs[m.Listing]
				if !ok {
					return fmt.Errorf("message: unknown listing %q", m.Listing)
				}
				msg.ListingID = &listingID
			}
			if err := messages.Create(ctx, msg); err != nil {
				return fmt.Errorf("create message: %w", err)
			}
			report.Messages++
		}
		return nil
	})
	return report, err
}

func (l ListingFixture) toModel(userIDs map[string]uint) (*model.Listing, error) {
	ownerID, ok := userIDs[l.Owner]
	if !ok {
		return nil, fmt.Errorf("listing %s: unknown owner %q", l.Key, l.Owner)
	}
	price, err := decimal.NewFromString(l.Price)
	if err != nil {
		return nil, fmt.Errorf("listing %s: price %q: %w", l.Key, l.Price, err)
	}
	status := model.ListingStatus(l.Status)
	if status == "" {
		status = model.ListingStatusActive
	}

	listing := &model.Listing{
		OwnerID:      ownerID,
		Title:        l.Title,
		Slug:         slug.Make(l.Title),
		Description:  l.Description,
		Price:        price,
		PropertyType: l.PropertyType,
		Bedrooms:     l.Bedrooms,
		Bathrooms:    l.Bathrooms,
		SquareFeet:   l.SquareFeet,
		Address:      l.Address,
		City:         l.City,
		State:        l.State,
		ZipCode:      l.ZipCode,
		Latitude:     l.Latitude,
		Longitude:    l.Longitude,
		Status:       status,
	}
	for i, url := range l.Images {
		listing.Images = append(listing.Images, model.ListingImage{ImageURL: url, IsPrimary: i == 0})
	}
	for _, f := range l.Features {
		listing.Features = append(listing.Features, model.PropertyFeature{FeatureName: f.Name, FeatureValue: f.Value})
	}
	return listing, nil
}
