package model

import "time"

// Message is a note from one user to another, optionally about a listing.
type Message struct {
	ID         uint      `json:"id" gorm:"primaryKey"`
	SenderID   uint      `json:"sender_id" gorm:"not null;index"`
	ReceiverID uint      `json:"receiver_id" gorm:"not null;index"`
	ListingID  *uint     `json:"listing_id" gorm:"index"`
	Subject    string    `json:"subject" gorm:"size:255"`
	Content    string    `json:"content" gorm:"type:text;not null"`
	IsRead     bool      `json:"is_read" gorm:"default:false"`
	CreatedAt  time.Time `json:"created_at" gorm:"index"`

	// Relations
	Sender   User     `json:"-" gorm:"foreignKey:SenderID"`
	Receiver User     `json:"-" gorm:"foreignKey:ReceiverID"`
	Listing  *Listing `json:"-" gorm:"foreignKey:ListingID;constraint:OnDelete:SET NULL"`
}
