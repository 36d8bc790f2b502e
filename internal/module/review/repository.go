package review

import (
	"context"
	"math"

	"gorm.io/gorm"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

type reviewRepository struct {
	db *gorm.DB
}

// NewReviewRepository creates a new ReviewRepository backed by the given GORM database.
func NewReviewRepository(db *gorm.DB) domain.ReviewRepository {
	return &reviewRepository{db: db}
}

func (r *reviewRepository) Create(ctx context.Context, review *domain.Review) error {
	return pkg.MapDBError(r.db.WithContext(ctx).Create(review).Error, "review")
}

// ListByListing returns the reviews of a listing, newest first.
func (r *reviewRepository) ListByListing(ctx context.Context, listingID uint) ([]domain.Review, error) {
	reviews := []domain.Review{}
	if err := r.db.WithContext(ctx).
		Where("listing_id = ?", listingID).
		Order("id DESC").
		Find(&reviews).Error; err != nil {
		return nil, pkg.MapDBError(err, "review")
	}
	return reviews, nil
}

// SellerRating averages the stars of every review left on the owner's
// listings in a single aggregate query. The average is rounded to one decimal.
func (r *reviewRepository) SellerRating(ctx context.Context, ownerLogin string) (*domain.SellerRating, error) {
	var rating domain.SellerRating
	if err := r.db.WithContext(ctx).Model(&domain.Review{}).
		Select("COALESCE(AVG(reviews.stars), 0) AS average, COUNT(reviews.id) AS count").
		Joins("JOIN listings ON listings.id = reviews.listing_id").
		Where("listings.owner_login = ?", ownerLogin).
		Scan(&rating).Error; err != nil {
		return nil, pkg.MapDBError(err, "review")
	}
	rating.Average = math.Round(rating.Average*10) / 10
	return &rating, nil
}
