// Package query turns optional listing search parameters into gorm scopes.
//
// Parsing is deliberately lenient: a parameter that cannot be parsed is
// treated as if it had not been sent, so malformed clients still get results.
package query

import (
	"net/url"
	"strconv"
	"strings"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"realestate/internal/model"
)

const (
	DefaultPage    = 1
	DefaultPerPage = 10
	MaxPerPage     = 100
	// SearchLimit caps free-text search to the most recent matches.
	SearchLimit = 20
)

// ListingCriteria is a set of independently optional listing filters.
// Zero values mean "not filtered".
type ListingCriteria struct {
	Status       model.ListingStatus
	PropertyType string
	MinPrice     *decimal.Decimal
	MaxPrice     *decimal.Decimal
	MinBedrooms  *int
	City         string
	Text         string

	Page    int
	PerPage int
	// Limit replaces pagination when > 0.
	Limit int
}

// BrowseFromValues parses the query string of the listing browse endpoint.
func BrowseFromValues(v url.Values) ListingCriteria {
	c := commonFromValues(v)
	c.Status = model.ListingStatusActive
	if s := strings.TrimSpace(v.Get("status")); s != "" {
		c.Status = model.ListingStatus(s)
	}
	c.Page = DefaultPage
	if p, ok := parseInt(v.Get("page")); ok && p > 0 {
		c.Page = p
	}
	c.PerPage = DefaultPerPage
	if pp, ok := parseInt(v.Get("per_page")); ok && pp > 0 {
		c.PerPage = pp
	}
	if c.PerPage > MaxPerPage {
		c.PerPage = MaxPerPage
	}
	return c
}

// SearchFromValues parses the query string of the search endpoint.
// Status is always active and results are capped at SearchLimit.
func SearchFromValues(v url.Values) ListingCriteria {
	c := commonFromValues(v)
	c.Status = model.ListingStatusActive
	c.Text = strings.TrimSpace(v.Get("q"))
	c.Limit = SearchLimit
	return c
}

func commonFromValues(v url.Values) ListingCriteria {
	var c ListingCriteria
	c.PropertyType = strings.TrimSpace(v.Get("property_type"))
	c.City = strings.TrimSpace(v.Get("city"))
	if d, ok := parseDecimal(v.Get("min_price")); ok {
		c.MinPrice = &d
	}
	if d, ok := parseDecimal(v.Get("max_price")); ok {
		c.MaxPrice = &d
	}
	if n, ok := parseInt(v.Get("bedrooms")); ok {
		c.MinBedrooms = &n
	}
	return c
}

func parseInt(s string) (int, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0, false
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0, false
	}
	return n, true
}

func parseDecimal(s string) (decimal.Decimal, bool) {
	s = strings.TrimSpace(s)
	if s == "" {
		return decimal.Zero, false
	}
	d, err := decimal.NewFromString(s)
	if err != nil {
		return decimal.Zero, false
	}
	return d, true
}

// Filter applies every present predicate, AND-combined.
func (c ListingCriteria) Filter(db *gorm.DB) *gorm.DB {
	if c.Status != "" {
		db = db.Where("listings.status = ?", c.Status)
	}
	if c.PropertyType != "" {
		db = db.Where("listings.property_type = ?", c.PropertyType)
	}
	if c.MinPrice != nil {
		db = db.Where("listings.price >= ?", *c.MinPrice)
	}
	if c.MaxPrice != nil {
		db = db.Where("listings.price <= ?", *c.MaxPrice)
	}
	if c.MinBedrooms != nil {
		db = db.Where("listings.bedrooms >= ?", *c.MinBedrooms)
	}
	if c.City != "" {
		db = db.Where("LOWER(listings.city) LIKE ?", containsPattern(c.City))
	}
	if c.Text != "" {
		p := containsPattern(c.Text)
		db = db.Where(
			"(LOWER(listings.title) LIKE ? OR LOWER(listings.description) LIKE ? OR LOWER(listings.address) LIKE ? OR LOWER(listings.city) LIKE ?)",
			p, p, p, p,
		)
	}
	return db
}

// Order sorts newest first; equal timestamps fall back to the later insert first.
func (c ListingCriteria) Order(db *gorm.DB) *gorm.DB {
	return db.Order("listings.created_at DESC").Order("listings.id DESC")
}

// Window applies either the fixed limit or the page offset.
func (c ListingCriteria) Window(db *gorm.DB) *gorm.DB {
	if c.Limit > 0 {
		return db.Limit(c.Limit)
	}
	return db.Offset(c.Offset()).Limit(c.perPage())
}

// Offset is the number of rows skipped for the current page.
func (c ListingCriteria) Offset() int {
	page := c.Page
	if page < 1 {
		page = DefaultPage
	}
	return (page - 1) * c.perPage()
}

// TotalPages is the page count for total filtered rows.
func (c ListingCriteria) TotalPages(total int64) int {
	if total <= 0 {
		return 0
	}
	pp := int64(c.perPage())
	return int((total + pp - 1) / pp)
}

func (c ListingCriteria) perPage() int {
	if c.PerPage < 1 {
		return DefaultPerPage
	}
	return c.PerPage
}

func containsPattern(s string) string {
	return "%" + strings.ToLower(s) + "%"
}
