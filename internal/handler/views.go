package handler

import (
	"time"

	"github.com/shopspring/decimal"

	"realestate/internal/model"
)

// OwnerView is the listing owner's contact card.
type OwnerView struct {
	ID    uint   `json:"id"`
	Name  string `json:"name"`
	Phone string `json:"phone"`
	Email string `json:"email,omitempty"`
}

// ListingSummary is a listing as shown in browse and search results.
type ListingSummary struct {
	ID           uint                `json:"id"`
	Title        string              `json:"title"`
	Description  string              `json:"description"`
	Price        decimal.Decimal     `json:"price" swaggertype:"number"`
	PropertyType string              `json:"property_type"`
	Bedrooms     int                 `json:"bedrooms"`
	Bathrooms    int                 `json:"bathrooms"`
	SquareFeet   int                 `json:"square_feet"`
	Address      string              `json:"address"`
	City         string              `json:"city"`
	State        string              `json:"state"`
	ZipCode      string              `json:"zip_code"`
	Latitude     *float64            `json:"latitude"`
	Longitude    *float64            `json:"longitude"`
	Status       model.ListingStatus `json:"status"`
	CreatedAt    time.Time           `json:"created_at"`
	Owner        OwnerView           `json:"owner"`
	PrimaryImage *string             `json:"primary_image"`
	ImageCount   int                 `json:"image_count"`
}

// ImageView is one listing photo.
type ImageView struct {
	ID        uint   `json:"id"`
	ImageURL  string `json:"image_url"`
	IsPrimary bool   `json:"is_primary"`
}

// FeatureView is one listing attribute.
type FeatureView struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// ListingDetail is a single listing with images and features.
type ListingDetail struct {
	ListingSummary
	Slug      string        `json:"slug"`
	UpdatedAt time.Time     `json:"updated_at"`
	Images    []ImageView   `json:"images"`
	Features  []FeatureView `json:"features"`
}

// ListingPageResponse is one page of browse results.
type ListingPageResponse struct {
	Listings    []ListingSummary `json:"listings"`
	Total       int64            `json:"total"`
	Pages       int              `json:"pages"`
	CurrentPage int              `json:"current_page"`
	PerPage     int              `json:"per_page"`
}

// FavoriteListingView is the listing summary embedded in a favorite.
type FavoriteListingView struct {
	ID           uint            `json:"id"`
	Title        string          `json:"title"`
	Price        decimal.Decimal `json:"price" swaggertype:"number"`
	PropertyType string          `json:"property_type"`
	City         string          `json:"city"`
	PrimaryImage *string         `json:"primary_image"`
}

// FavoriteView is one bookmarked listing.
type FavoriteView struct {
	ID        uint                `json:"id"`
	Listing   FavoriteListingView `json:"listing"`
	CreatedAt time.Time           `json:"created_at"`
}

// PartyView names a message sender or receiver.
type PartyView struct {
	ID   uint   `json:"id"`
	Name string `json:"name"`
}

// ListingRef names the listing a message is about.
type ListingRef struct {
	ID    uint   `json:"id"`
	Title string `json:"title"`
}

// MessageView is one message in a user's inbox or outbox.
type MessageView struct {
	ID        uint        `json:"id"`
	Subject   string      `json:"subject"`
	Content   string      `json:"content"`
	IsRead    bool        `json:"is_read"`
	CreatedAt time.Time   `json:"created_at"`
	Sender    PartyView   `json:"sender"`
	Receiver  PartyView   `json:"receiver"`
	Listing   *ListingRef `json:"listing"`
}

func newListingSummary(l *model.Listing) ListingSummary {
	return ListingSummary{
		ID:           l.ID,
		Title:        l.Title,
		Description:  l.Description,
		Price:        l.Price,
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
		Status:       l.Status,
		CreatedAt:    l.CreatedAt,
		Owner: OwnerView{
			ID:    l.Owner.ID,
			Name:  l.Owner.Name,
			Phone: l.Owner.Phone,
		},
		PrimaryImage: l.PrimaryImageURL(),
		ImageCount:   len(l.Images),
	}
}

func newListingSummaries(listings []model.Listing) []ListingSummary {
	out := make([]ListingSummary, 0, len(listings))
	for i := range listings {
		out = append(out, newListingSummary(&listings[i]))
	}
	return out
}

func newListingDetail(l *model.Listing) ListingDetail {
	d := ListingDetail{
		ListingSummary: newListingSummary(l),
		Slug:           l.Slug,
		UpdatedAt:      l.UpdatedAt,
		Images:         make([]ImageView, 0, len(l.Images)),
		Features:       make([]FeatureView, 0, len(l.Features)),
	}
	d.Owner.Email = l.Owner.Email
	for _, img := range l.Images {
		d.Images = append(d.Images, ImageView{ID: img.ID, ImageURL: img.ImageURL, IsPrimary: img.IsPrimary})
	}
	for _, f := range l.Features {
		d.Features = append(d.Features, FeatureView{Name: f.FeatureName, Value: f.FeatureValue})
	}
	return d
}

func newFavoriteViews(favorites []model.Favorite) []FavoriteView {
	out := make([]FavoriteView, 0, len(favorites))
	for i := range favorites {
		f := &favorites[i]
		out = append(out, FavoriteView{
			ID: f.ID,
			Listing: FavoriteListingView{
				ID:           f.Listing.ID,
				Title:        f.Listing.Title,
				Price:        f.Listing.Price,
				PropertyType: f.Listing.PropertyType,
				City:         f.Listing.City,
				PrimaryImage: f.Listing.PrimaryImageURL(),
			},
			CreatedAt: f.CreatedAt,
		})
	}
	return out
}

func newMessageView(m *model.Message) MessageView {
	v := MessageView{
		ID:        m.ID,
		Subject:   m.Subject,
		Content:   m.Content,
		IsRead:    m.IsRead,
		CreatedAt: m.CreatedAt,
		Sender:    PartyView{ID: m.Sender.ID, Name: m.Sender.Name},
		Receiver:  PartyView{ID: m.Receiver.ID, Name: m.Receiver.Name},
	}
	if m.Listing != nil {
		v.Listing = &ListingRef{ID: m.Listing.ID, Title: m.Listing.Title}
	}
	return v
}

func newMessageViews(messages []model.Message) []MessageView {
	out := make([]MessageView, 0, len(messages))
	for i := range messages {
		out = append(out, newMessageView(&messages[i]))
	}
	return out
}
