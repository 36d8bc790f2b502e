package domain

import "context"

// Review is a buyer's rating of a listing.
type Review struct {
	BaseModel
	ListingID uint   `gorm:"index;not null" json:"listing_id"`
	Author    string `gorm:"size:100;not null" json:"author"`
	Text      string `gorm:"type:text" json:"text"`
	Stars     int    `gorm:"not null" json:"stars"`
}

// SellerRating averages the stars of all reviews left on a seller's listings.
type SellerRating struct {
	Average float64 `json:"average"`
	Count   int64   `json:"count"`
}

// ReviewRepository defines the data access interface for reviews.
type ReviewRepository interface {
	Create(ctx context.Context, review *Review) error
	ListByListing(ctx context.Context, listingID uint) ([]Review, error)
	SellerRating(ctx context.Context, ownerLogin string) (*SellerRating, error)
}

// ReviewService defines the business logic interface for reviews.
type ReviewService interface {
	AddReview(ctx context.Context, actor string, listingID uint, text string, stars int) (*Review, error)
	ListReviews(ctx context.Context, listingID uint) ([]Review, error)
	SellerRating(ctx context.Context, ownerLogin string) (*SellerRating, error)
}
