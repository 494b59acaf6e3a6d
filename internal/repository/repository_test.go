package repository

import (
	"context"
	"net/url"
	"testing"
	"time"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"realestate/internal/db"
	"realestate/internal/model"
	"realestate/internal/query"
)

func newTestDB(t *testing.T) *gorm.DB {
	t.Helper()
	gormDB, err := db.Open("sqlite", ":memory:")
	require.NoError(t, err)
	sqlDB, err := gormDB.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.Migrate(gormDB))
	return gormDB
}

type fixture struct {
	users    UserRepository
	listings ListingRepository
	favs     FavoriteRepository
	messages MessageRepository
	owner    *model.User
	base     time.Time
	seq      int
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gormDB := newTestDB(t)
	f := &fixture{
		users:    NewUserRepository(gormDB),
		listings: NewListingRepository(gormDB),
		favs:     NewFavoriteRepository(gormDB),
		messages: NewMessageRepository(gormDB),
		base:     time.Date(2024, 5, 1, 12, 0, 0, 0, time.UTC),
	}
	f.owner = f.user(t, "owner@example.com")
	return f
}

func (f *fixture) user(t *testing.T, email string) *model.User {
	t.Helper()
	u := &model.User{Name: email, Email: email, PasswordHash: "x", Role: model.RoleSeller}
	require.NoError(t, f.users.Create(context.Background(), u))
	return u
}

// listing creates a listing one minute newer than the previous one.
func (f *fixture) listing(t *testing.T, mutate func(l *model.Listing)) *model.Listing {
	t.Helper()
	f.seq++
	l := &model.Listing{
		OwnerID:      f.owner.ID,
		Title:        "Listing",
		Description:  "A place",
		Price:        decimal.NewFromInt(100000),
		PropertyType: "apartment",
		Bedrooms:     2,
		Address:      "Main Street 1",
		City:         "Hamburg",
		Status:       model.ListingStatusActive,
		CreatedAt:    f.base.Add(time.Duration(f.seq) * time.Minute),
	}
	if mutate != nil {
		mutate(l)
	}
	require.NoError(t, f.listings.Create(context.Background(), l))
	return l
}

func ids(listings []model.Listing) []uint {
	out := make([]uint, 0, len(listings))
	for _, l := range listings {
		out = append(out, l.ID)
	}
	return out
}

func TestListingRepository_CreatePersistsImagesAndFeatures(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, func(l *model.Listing) {
		l.Images = []model.ListingImage{
			{ImageURL: "https://img.test/1.jpg", IsPrimary: true},
			{ImageURL: "https://img.test/2.jpg"},
		}
		l.Features = []model.PropertyFeature{{FeatureName: "Balkon", FeatureValue: "Ja"}}
	})

	got, err := f.listings.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.Equal(t, f.owner.ID, got.Owner.ID)
	require.Len(t, got.Images, 2)
	assert.True(t, got.Images[0].IsPrimary)
	assert.Equal(t, "https://img.test/1.jpg", *got.PrimaryImageURL())
	require.Len(t, got.Features, 1)
	assert.Equal(t, "Balkon", got.Features[0].FeatureName)
}

func TestListingRepository_FindByIDUnknown(t *testing.T) {
	f := newFixture(t)
	_, err := f.listings.FindByID(context.Background(), 999)
	assert.ErrorIs(t, err, gorm.ErrRecordNotFound)
}

func TestListingRepository_BrowsePriceBounds(t *testing.T) {
	f := newFixture(t)
	cheap := f.listing(t, func(l *model.Listing) { l.Price = decimal.NewFromInt(100000) })
	mid := f.listing(t, func(l *model.Listing) { l.Price = decimal.NewFromInt(250000) })
	f.listing(t, func(l *model.Listing) { l.Price = decimal.NewFromInt(900000) })

	crit := query.BrowseFromValues(url.Values{"min_price": {"100000"}, "max_price": {"250000"}})
	got, total, err := f.listings.Browse(context.Background(), crit)
	require.NoError(t, err)
	assert.Equal(t, int64(2), total)
	assert.Equal(t, []uint{mid.ID, cheap.ID}, ids(got))

	inverted := query.BrowseFromValues(url.Values{"min_price": {"500000"}, "max_price": {"100000"}})
	got, total, err = f.listings.Browse(context.Background(), inverted)
	require.NoError(t, err)
	assert.Zero(t, total)
	assert.Empty(t, got)
}

func TestListingRepository_BrowseBedroomsIsMinimum(t *testing.T) {
	f := newFixture(t)
	f.listing(t, func(l *model.Listing) { l.Bedrooms = 1 })
	three := f.listing(t, func(l *model.Listing) { l.Bedrooms = 3 })
	five := f.listing(t, func(l *model.Listing) { l.Bedrooms = 5 })

	got, _, err := f.listings.Browse(context.Background(), query.BrowseFromValues(url.Values{"bedrooms": {"3"}}))
	require.NoError(t, err)
	assert.ElementsMatch(t, []uint{three.ID, five.ID}, ids(got))
	for _, l := range got {
		assert.GreaterOrEqual(t, l.Bedrooms, 3)
	}
}

func TestListingRepository_BrowseStatusCityAndPaging(t *testing.T) {
	f := newFixture(t)
	f.listing(t, func(l *model.Listing) { l.Status = model.ListingStatusSold; l.City = "Berlin" })
	var berlin []*model.Listing
	for i := 0; i < 3; i++ {
		berlin = append(berlin, f.listing(t, func(l *model.Listing) { l.City = "Berlin" }))
	}
	f.listing(t, func(l *model.Listing) { l.City = "Köln" })

	crit := query.BrowseFromValues(url.Values{"city": {"BERL"}, "per_page": {"2"}, "page": {"2"}})
	got, total, err := f.listings.Browse(context.Background(), crit)
	require.NoError(t, err)
	assert.Equal(t, int64(3), total)
	assert.Equal(t, 2, crit.TotalPages(total))
	assert.Equal(t, []uint{berlin[0].ID}, ids(got))

	sold := query.BrowseFromValues(url.Values{"status": {"sold"}})
	got, total, err = f.listings.Browse(context.Background(), sold)
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)
	assert.Equal(t, model.ListingStatusSold, got[0].Status)
}

func TestListingRepository_SearchTextMatchesAnyField(t *testing.T) {
	f := newFixture(t)
	byCity := f.listing(t, func(l *model.Listing) {
		l.Title = "Quiet flat"
		l.Description = "Nice view"
		l.Address = "Parkweg 3"
		l.City = "Berlin"
	})
	byTitle := f.listing(t, func(l *model.Listing) { l.Title = "Berliner Altbau"; l.City = "Potsdam" })
	f.listing(t, func(l *model.Listing) { l.Title = "Elsewhere"; l.City = "Bonn" })
	f.listing(t, func(l *model.Listing) { l.City = "Berlin"; l.Status = model.ListingStatusPending })

	got, err := f.listings.Search(context.Background(), query.SearchFromValues(url.Values{"q": {"berlin"}}))
	require.NoError(t, err)
	assert.Equal(t, []uint{byTitle.ID, byCity.ID}, ids(got))
}

func TestListingRepository_SearchCapsResults(t *testing.T) {
	f := newFixture(t)
	var newest *model.Listing
	for i := 0; i < query.SearchLimit+5; i++ {
		newest = f.listing(t, nil)
	}

	got, err := f.listings.Search(context.Background(), query.SearchFromValues(url.Values{}))
	require.NoError(t, err)
	assert.Len(t, got, query.SearchLimit)
	assert.Equal(t, newest.ID, got[0].ID)
}

func TestListingRepository_UpdateFieldsIsPartial(t *testing.T) {
	f := newFixture(t)
	l := f.listing(t, func(l *model.Listing) { l.Title = "Keep me"; l.City = "Berlin" })
	before, err := f.listings.FindByID(context.Background(), l.ID)
	require.NoError(t, err)

	time.Sleep(5 * time.Millisecond)
	require.NoError(t, f.listings.UpdateFields(context.Background(), l.ID, map[string]interface{}{
		"price": decimal.NewFromInt(500000),
	}))

	after, err := f.listings.FindByID(context.Background(), l.ID)
	require.NoError(t, err)
	assert.True(t, after.Price.Equal(decimal.NewFromInt(500000)))
	assert.Equal(t, "Keep me", after.Title)
	assert.Equal(t, "Berlin", after.City)
	assert.True(t, after.UpdatedAt.After(before.UpdatedAt))
}

func TestListingRepository_DeleteCascades(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	l := f.listing(t, func(l *model.Listing) {
		l.Images = []model.ListingImage{{ImageURL: "https://img.test/1.jpg", IsPrimary: true}}
		l.Features = []model.PropertyFeature{{FeatureName: "Garten", FeatureValue: "Ja"}}
	})
	ctx := context.Background()
	require.NoError(t, f.favs.Create(ctx, &model.Favorite{UserID: buyer.ID, ListingID: l.ID}))
	listingID := l.ID
	msg := &model.Message{SenderID: buyer.ID, ReceiverID: f.owner.ID, ListingID: &listingID, Content: "Hi"}
	require.NoError(t, f.messages.Create(ctx, msg))

	require.NoError(t, f.listings.Delete(ctx, l.ID))

	exists, err := f.listings.Exists(ctx, l.ID)
	require.NoError(t, err)
	assert.False(t, exists)
	favs, err := f.favs.ListByUser(ctx, buyer.ID)
	require.NoError(t, err)
	assert.Empty(t, favs)
	msgs, err := f.messages.ListForUser(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, msgs, 1)
	assert.Nil(t, msgs[0].ListingID)
	assert.Nil(t, msgs[0].Listing)

	assert.ErrorIs(t, f.listings.Delete(ctx, l.ID), gorm.ErrRecordNotFound)
}

func TestFavoriteRepository_UniquePair(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	l := f.listing(t, nil)
	ctx := context.Background()

	require.NoError(t, f.favs.Create(ctx, &model.Favorite{UserID: buyer.ID, ListingID: l.ID}))
	err := f.favs.Create(ctx, &model.Favorite{UserID: buyer.ID, ListingID: l.ID})
	assert.ErrorIs(t, err, gorm.ErrDuplicatedKey)
}

func TestMessageRepository_ListForUserNewestFirst(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	other := f.user(t, "other@example.com")
	ctx := context.Background()

	first := &model.Message{SenderID: buyer.ID, ReceiverID: f.owner.ID, Content: "first", CreatedAt: f.base}
	second := &model.Message{SenderID: f.owner.ID, ReceiverID: buyer.ID, Content: "second", CreatedAt: f.base.Add(time.Minute)}
	unrelated := &model.Message{SenderID: other.ID, ReceiverID: f.owner.ID, Content: "not mine", CreatedAt: f.base.Add(2 * time.Minute)}
	for _, m := range []*model.Message{first, second, unrelated} {
		require.NoError(t, f.messages.Create(ctx, m))
	}

	got, err := f.messages.ListForUser(ctx, buyer.ID)
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "second", got[0].Content)
	assert.Equal(t, f.owner.Name, got[0].Sender.Name)
	assert.Equal(t, buyer.Name, got[0].Receiver.Name)
	assert.False(t, got[0].IsRead)
	assert.Equal(t, "first", got[1].Content)
}

func TestListingRepository_DeleteOrphans(t *testing.T) {
	f := newFixture(t)
	buyer := f.user(t, "buyer@example.com")
	kept := f.listing(t, func(l *model.Listing) {
		l.Images = []model.ListingImage{{ImageURL: "https://img.test/keep.jpg", IsPrimary: true}}
	})
	ctx := context.Background()

	insertOrphanRows(t, f, buyer.ID)

	report, err := f.listings.DeleteOrphans(ctx)
	require.NoError(t, err)
	assert.Equal(t, int64(1), report.Images)
	assert.Equal(t, int64(1), report.Features)
	assert.Equal(t, int64(1), report.Favorites)
	assert.Equal(t, int64(1), report.Messages)
	assert.Equal(t, int64(4), report.Total())

	got, err := f.listings.FindByID(ctx, kept.ID)
	require.NoError(t, err)
	assert.Len(t, got.Images, 1)
}

// insertOrphanRows inserts one row per child table pointing at a listing id that does not exist.
func insertOrphanRows(t *testing.T, f *fixture, userID uint) {
	t.Helper()
	gormDB := f.listings.(*listingRepository).db
	missing := uint(4242)
	require.NoError(t, gormDB.Create(&model.ListingImage{ListingID: missing, ImageURL: "https://img.test/gone.jpg"}).Error)
	require.NoError(t, gormDB.Create(&model.PropertyFeature{ListingID: missing, FeatureName: "Keller"}).Error)
	require.NoError(t, gormDB.Omit("User", "Listing").Create(&model.Favorite{UserID: userID, ListingID: missing}).Error)
	require.NoError(t, gormDB.Omit("Sender", "Receiver", "Listing").
		Create(&model.Message{SenderID: userID, ReceiverID: f.owner.ID, ListingID: &missing, Content: "orphan"}).Error)
}
