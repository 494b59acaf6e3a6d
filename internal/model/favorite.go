package model

import "time"

// Favorite is a user's bookmark of a listing.
// The composite unique index backs the one-favorite-per-pair rule.
type Favorite struct {
	ID        uint      `json:"id" gorm:"primaryKey"`
	UserID    uint      `json:"user_id" gorm:"not null;uniqueIndex:idx_favorite_user_listing"`
	ListingID uint      `json:"listing_id" gorm:"not null;uniqueIndex:idx_favorite_user_listing;index"`
	CreatedAt time.Time `json:"created_at"`

	// Relations
	User    User    `json:"-" gorm:"foreignKey:UserID;constraint:OnDelete:CASCADE"`
	Listing Listing `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:CASCADE"`
}
