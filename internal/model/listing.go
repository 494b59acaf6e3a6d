package model

import (
	"time"

	"github.com/shopspring/decimal"
)

func init() {
	// prices are rendered as JSON numbers, not quoted strings
	decimal.MarshalJSONWithoutQuotes = true
}

// ListingStatus represents the sale state of a listing.
type ListingStatus string

const (
	ListingStatusActive  ListingStatus = "active"
	ListingStatusSold    ListingStatus = "sold"
	ListingStatusPending ListingStatus = "pending"
)

// Valid reports whether s is one of the known statuses.
func (s ListingStatus) Valid() bool {
	switch s {
	case ListingStatusActive, ListingStatusSold, ListingStatusPending:
		return true
	}
	return false
}

// Listing is a property offered for sale or rent.
type Listing struct {
	ID           uint            `json:"id" gorm:"primaryKey"`
	OwnerID      uint            `json:"owner_id" gorm:"not null;index"`
	Title        string          `json:"title" gorm:"size:255;not null"`
	Slug         string          `json:"slug" gorm:"size:255;index"`
	Description  string          `json:"description" gorm:"type:text"`
	Price        decimal.Decimal `json:"price" gorm:"type:decimal(14,2);not null;default:0;index"`
	PropertyType string          `json:"property_type" gorm:"size:50;index"`
	Bedrooms     int             `json:"bedrooms" gorm:"default:0;index"`
	Bathrooms    int             `json:"bathrooms" gorm:"default:0"`
	SquareFeet   int             `json:"square_feet" gorm:"default:0"`
	Address      string          `json:"address" gorm:"size:255"`
	City         string          `json:"city" gorm:"size:100;index"`
	State        string          `json:"state" gorm:"size:100"`
	ZipCode      string          `json:"zip_code" gorm:"size:20"`
	Latitude     *float64        `json:"latitude"`
	Longitude    *float64        `json:"longitude"`
	Status       ListingStatus   `json:"status" gorm:"type:varchar(20);not null;default:'active';index"`
	CreatedAt    time.Time       `json:"created_at" gorm:"index"`
	UpdatedAt    time.Time       `json:"updated_at"`

	// Relations
	Owner    User              `json:"-" gorm:"foreignKey:OwnerID"`
	Images   []ListingImage    `json:"images,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
	Features []PropertyFeature `json:"features,omitempty" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}

// PrimaryImage returns the image flagged primary, falling back to the first image.
func (l *Listing) PrimaryImage() *ListingImage {
	for i := range l.Images {
		if l.Images[i].IsPrimary {
			return &l.Images[i]
		}
	}
	if len(l.Images) > 0 {
		return &l.Images[0]
	}
	return nil
}

// PrimaryImageURL is PrimaryImage's URL, or nil when the listing has no images.
func (l *Listing) PrimaryImageURL() *string {
	img := l.PrimaryImage()
	if img == nil {
		return nil
	}
	url := img.ImageURL
	return &url
}

// ListingImage is a photo attached to a listing.
type ListingImage struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	ListingID uint      `json:"listing_id" gorm:"not null;index"`
	ImageURL  string    `json:"image_url" gorm:"type:text;not null"`
	IsPrimary bool      `json:"is_primary" gorm:"default:false"`
	CreatedAt time.Time `json:"created_at"`
}

// PropertyFeature is a free-form name/value attribute of a listing.
type PropertyFeature struct {
	ID           uint   `json:"id" gorm:"primaryKey"`
	ListingID    uint   `json:"listing_id" gorm:"not null;index"`
	FeatureName  string `json:"name" gorm:"size:100;not null"`
	FeatureValue string `json:"value" gorm:"size:255"`
}
