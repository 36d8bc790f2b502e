package review

import (
	"context"
	"log/slog"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/classifieds/internal/domain"
)

const maxReviewLength = 2000

type listingLookup interface {
	GetByID(ctx context.Context, id uint) (*domain.Listing, error)
}

type userLookup interface {
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
}

// reviewService implements domain.ReviewService.
type reviewService struct {
	repo     domain.ReviewRepository
	listings listingLookup
	users    userLookup
}

// NewReviewService creates a new ReviewService.
func NewReviewService(repo domain.ReviewRepository, listings listingLookup, users userLookup) domain.ReviewService {
	return &reviewService{repo: repo, listings: listings, users: users}
}

// AddReview stores a review by actor on a listing. Sellers cannot review
// their own listings.
func (s *reviewService) AddReview(ctx context.Context, actor string, listingID uint, text string, stars int) (*domain.Review, error) {
	text = strings.TrimSpace(text)
	if stars < 1 || stars > 5 {
		return nil, domain.NewAppError(domain.CodeValidation, "stars must be between 1 and 5", nil)
	}
	if text == "" {
		return nil, domain.NewAppError(domain.CodeValidation, "text is required", nil)
	}
	if utf8.RuneCountInString(text) > maxReviewLength {
		return nil, domain.NewAppError(domain.CodeValidation, "text must be at most 2000 characters", nil)
	}

	author, err := s.users.GetByLogin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if author.IsBanned {
		return nil, domain.NewAppError(domain.CodeForbidden, "account is banned", nil)
	}

	listing, err := s.listings.GetByID(ctx, listingID)
	if err != nil {
		return nil, err
	}
	if listing.OwnerLogin == author.Login {
		return nil, domain.NewAppError(domain.CodeForbidden, "cannot review your own listing", nil)
	}

	review := &domain.Review{
		ListingID: listing.ID,
		Author:    author.Login,
		Text:      text,
		Stars:     stars,
	}
	if err := s.repo.Create(ctx, review); err != nil {
		return nil, err
	}

	slog.DebugContext(ctx, "review added", slog.Uint64("listing_id", uint64(listing.ID)), slog.Int("stars", stars))
	return review, nil
}

// ListReviews returns the reviews of an existing listing.
func (s *reviewService) ListReviews(ctx context.Context, listingID uint) ([]domain.Review, error) {
	if _, err := s.listings.GetByID(ctx, listingID); err != nil {
		return nil, err
	}
	return s.repo.ListByListing(ctx, listingID)
}

func (s *reviewService) SellerRating(ctx context.Context, ownerLogin string) (*domain.SellerRating, error) {
	return s.repo.SellerRating(ctx, ownerLogin)
}
