package model

import (
	"encoding/json"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestListing_PrimaryImage(t *testing.T) {
	tests := []struct {
		name   string
		images []ListingImage
		want   *string
	}{
		{name: "no images"},
		{
			name:   "flagged image wins",
			images: []ListingImage{{ImageURL: "a.jpg"}, {ImageURL: "b.jpg", IsPrimary: true}},
			want:   strPtr("b.jpg"),
		},
		{
			name:   "falls back to first",
			images: []ListingImage{{ImageURL: "a.jpg"}, {ImageURL: "b.jpg"}},
			want:   strPtr("a.jpg"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			l := &Listing{Images: tt.images}
			assert.Equal(t, tt.want, l.PrimaryImageURL())
		})
	}
}

func TestListing_PriceIsJSONNumber(t *testing.T) {
	raw, err := json.Marshal(Listing{Price: decimal.RequireFromString("650000.50")})
	require.NoError(t, err)
	assert.Contains(t, string(raw), `"price":650000.5`)
}

func TestRoleAndStatusValid(t *testing.T) {
	assert.True(t, RoleAgent.Valid())
	assert.False(t, Role("landlord").Valid())
	assert.True(t, ListingStatusPending.Valid())
	assert.False(t, ListingStatus("rented").Valid())
}

func strPtr(s string) *string { return &s }
