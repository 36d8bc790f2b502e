package domain

import (
	"context"
	"strings"
	"time"

	"gorm.io/gorm"
)

// MaxListingImages is the number of image slots a listing has.
const MaxListingImages = 5

// Listing is a classified ad.
type Listing struct {
	BaseModel
	OwnerLogin  string   `gorm:"size:100;index;not null" json:"owner_login"`
	OwnerName   string   `gorm:"size:100" json:"owner_name"`
	Title       string   `gorm:"size:200;not null" json:"title"`
	Price       string   `gorm:"size:50" json:"price"`
	Description string   `gorm:"type:text" json:"description"`
	Contact     string   `gorm:"size:200" json:"contact"`
	Category    string   `gorm:"size:100;index" json:"category"`
	Region      string   `gorm:"size:100;index" json:"region"`
	City        string   `gorm:"size:100" json:"city"`
	Images      []string `gorm:"serializer:json" json:"images"`

	// Lowercased copies of Title and City. SQLite's LIKE folds ASCII only,
	// so text search on SQLite matches against these.
	TitleLower string `gorm:"size:200" json:"-"`
	CityLower  string `gorm:"size:100" json:"-"`

	// PromotionExpiry at or before the evaluation time means "not promoted".
	PromotionExpiry time.Time `json:"promotion_expiry"`
	ViewCount       int64     `gorm:"not null;default:0" json:"view_count"`
}

// IsPromoted reports whether the listing is promoted (VIP) at now.
func (l *Listing) IsPromoted(now time.Time) bool {
	return l.PromotionExpiry.After(now)
}

// BeforeSave keeps the lowercased search columns in step with Title and City.
func (l *Listing) BeforeSave(*gorm.DB) error {
	l.TitleLower, l.CityLower = FoldSearchText(l.Title), FoldSearchText(l.City)
	return nil
}

// FoldSearchText lowercases s the way search variants are lowercased.
func FoldSearchText(s string) string {
	return strings.ToLower(s)
}

// Favorite marks a listing as liked by a user.
type Favorite struct {
	UserLogin string    `gorm:"primaryKey;size:100" json:"user_login"`
	ListingID uint      `gorm:"primaryKey" json:"listing_id"`
	CreatedAt time.Time `json:"created_at"`
}

// ListingFilter is the resolved search predicate for the listing store.
// An empty Variants slice means no text filtering; empty Category or Region
// means no equality filter on that column.
type ListingFilter struct {
	Variants []string
	Category string
	Region   string
}

// BrowseRequest is the home feed query as received from the caller.
// Page is 1-indexed; values below 1 must be clamped by the caller.
type BrowseRequest struct {
	Query    string
	Category string
	Region   string
	Page     int
}

// ListingInput carries the editable listing fields. A nil Images leaves the
// stored images untouched on update.
type ListingInput struct {
	Title       string
	Price       string
	Description string
	Contact     string
	Category    string
	Region      string
	City        string
	Images      []string
}

// ListingTotals aggregates marketplace-wide listing counters.
type ListingTotals struct {
	Listings int64 `json:"listings"`
	Views    int64 `json:"views"`
}

// ListingRepository defines the data access interface for listings.
type ListingRepository interface {
	// Search returns every listing matching f, newest (highest id) first.
	Search(ctx context.Context, f ListingFilter) ([]Listing, error)
	// CreateWithinLimit inserts l unless its owner already created limit or more
	// listings since the given time. A limit <= 0 disables the check.
	CreateWithinLimit(ctx context.Context, l *Listing, since time.Time, limit int) error
	GetByID(ctx context.Context, id uint) (*Listing, error)
	// Update writes only the editable fields of in. View count, promotion
	// and ownership are never touched.
	Update(ctx context.Context, id uint, in ListingInput) error
	Delete(ctx context.Context, id uint) error
	IncrementViews(ctx context.Context, id uint) error
	SetPromotionExpiry(ctx context.Context, id uint, expiry time.Time) error
	ListByOwner(ctx context.Context, owner string) ([]Listing, error)
	ToggleFavorite(ctx context.Context, login string, id uint) (bool, error)
	ListFavorites(ctx context.Context, login string) ([]Listing, error)
	Totals(ctx context.Context) (*ListingTotals, error)
}

// ListingService defines the business logic interface for listings.
type ListingService interface {
	Browse(ctx context.Context, req BrowseRequest) (*PageResult[Listing], error)
	Create(ctx context.Context, actor string, in ListingInput) (*Listing, error)
	View(ctx context.Context, id uint) (*Listing, error)
	Update(ctx context.Context, actor string, id uint, in ListingInput) (*Listing, error)
	Delete(ctx context.Context, actor string, id uint) error
	Promote(ctx context.Context, actor string, id uint, days int) (*Listing, error)
	Demote(ctx context.Context, actor string, id uint) (*Listing, error)
	ListByOwner(ctx context.Context, owner string) ([]Listing, error)
	ToggleFavorite(ctx context.Context, actor string, id uint) (bool, error)
	ListFavorites(ctx context.Context, actor string) ([]Listing, error)
}
