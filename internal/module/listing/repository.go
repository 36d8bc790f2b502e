package listing

import (
	"context"
	"slices"
	"time"

	"gorm.io/gorm"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

// listingRepository implements domain.ListingRepository using GORM.
type listingRepository struct {
	db *gorm.DB
}

// NewListingRepository creates a new ListingRepository backed by the given GORM database.
func NewListingRepository(db *gorm.DB) domain.ListingRepository {
	return &listingRepository{db: db}
}

// Search runs the filter against the listings table. Any datastore failure
// is reported as domain.CodeUnavailable so callers can tell it apart from an
// empty result.
func (r *listingRepository) Search(ctx context.Context, f domain.ListingFilter) ([]domain.Listing, error) {
	var listings []domain.Listing
	if err := r.db.WithContext(ctx).Scopes(SearchScope(f)).Find(&listings).Error; err != nil {
		return nil, domain.NewAppError(domain.CodeUnavailable, "data source unavailable", err)
	}
	return listings, nil
}

// CreateWithinLimit counts the owner's recent listings and inserts l in one
// transaction.
func (r *listingRepository) CreateWithinLimit(ctx context.Context, l *domain.Listing, since time.Time, limit int) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if limit > 0 {
			var recent int64
			if err := tx.Model(&domain.Listing{}).
				Where("owner_login = ? AND created_at >= ?", l.OwnerLogin, since).
				Count(&recent).Error; err != nil {
				return pkg.MapDBError(err, "listing")
			}
			if recent >= int64(limit) {
				return domain.NewAppError(domain.CodeLimitExceeded, "daily listing limit reached", nil)
			}
		}
		return pkg.MapDBError(tx.Create(l).Error, "listing")
	})
}

// GetByID retrieves a listing by its primary key.
func (r *listingRepository) GetByID(ctx context.Context, id uint) (*domain.Listing, error) {
	var l domain.Listing
	if err := r.db.WithContext(ctx).First(&l, id).Error; err != nil {
		return nil, pkg.MapDBError(err, "listing")
	}
	return &l, nil
}

var editableColumns = []string{
	"title", "title_lower", "price", "description", "contact",
	"category", "region", "city", "city_lower",
}

// Update writes the editable columns of listing id in a single statement.
// Images are written only when in.Images is non-nil.
func (r *listingRepository) Update(ctx context.Context, id uint, in domain.ListingInput) error {
	changes := &domain.Listing{
		Title:       in.Title,
		TitleLower:  domain.FoldSearchText(in.Title),
		Price:       in.Price,
		Description: in.Description,
		Contact:     in.Contact,
		Category:    in.Category,
		Region:      in.Region,
		City:        in.City,
		CityLower:   domain.FoldSearchText(in.City),
		Images:      in.Images,
	}
	columns := editableColumns
	if in.Images != nil {
		columns = append(slices.Clone(editableColumns), "images")
	}
	result := r.db.WithContext(ctx).Model(&domain.Listing{}).
		Where("id = ?", id).
		Select(columns).
		Updates(changes)
	return affectedOne(result)
}

// Delete removes a listing together with the favorites pointing at it.
func (r *listingRepository) Delete(ctx context.Context, id uint) error {
	return pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		if err := tx.Where("listing_id = ?", id).Delete(&domain.Favorite{}).Error; err != nil {
			return pkg.MapDBError(err, "favorite")
		}
		result := tx.Delete(&domain.Listing{}, id)
		if result.Error != nil {
			return pkg.MapDBError(result.Error, "listing")
		}
		if result.RowsAffected == 0 {
			return domain.NewAppError(domain.CodeNotFound, "listing not found", nil)
		}
		return nil
	})
}

// IncrementViews bumps view_count in place, leaving updated_at untouched.
func (r *listingRepository) IncrementViews(ctx context.Context, id uint) error {
	result := r.db.WithContext(ctx).Model(&domain.Listing{}).
		Where("id = ?", id).
		UpdateColumn("view_count", gorm.Expr("view_count + ?", 1))
	return affectedOne(result)
}

func (r *listingRepository) SetPromotionExpiry(ctx context.Context, id uint, expiry time.Time) error {
	result := r.db.WithContext(ctx).Model(&domain.Listing{}).
		Where("id = ?", id).
		Update("promotion_expiry", expiry)
	return affectedOne(result)
}

// ListByOwner returns all listings of owner, newest first.
func (r *listingRepository) ListByOwner(ctx context.Context, owner string) ([]domain.Listing, error) {
	listings := []domain.Listing{}
	if err := r.db.WithContext(ctx).
		Where("owner_login = ?", owner).
		Order("id DESC").
		Find(&listings).Error; err != nil {
		return nil, pkg.MapDBError(err, "listing")
	}
	return listings, nil
}

// ToggleFavorite flips the favorite mark of login on listing id and reports
// whether the listing is a favorite afterwards.
func (r *listingRepository) ToggleFavorite(ctx context.Context, login string, id uint) (bool, error) {
	var liked bool
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		var exists int64
		if err := tx.Model(&domain.Listing{}).Where("id = ?", id).Count(&exists).Error; err != nil {
			return pkg.MapDBError(err, "listing")
		}
		if exists == 0 {
			return domain.NewAppError(domain.CodeNotFound, "listing not found", nil)
		}

		result := tx.Where("user_login = ? AND listing_id = ?", login, id).Delete(&domain.Favorite{})
		if result.Error != nil {
			return pkg.MapDBError(result.Error, "favorite")
		}
		if result.RowsAffected > 0 {
			liked = false
			return nil
		}

		liked = true
		return pkg.MapDBError(tx.Create(&domain.Favorite{UserLogin: login, ListingID: id}).Error, "favorite")
	})
	return liked, err
}

// ListFavorites returns the listings login has marked, most recently marked first.
func (r *listingRepository) ListFavorites(ctx context.Context, login string) ([]domain.Listing, error) {
	listings := []domain.Listing{}
	if err := r.db.WithContext(ctx).
		Joins("JOIN favorites ON favorites.listing_id = listings.id").
		Where("favorites.user_login = ?", login).
		Order("favorites.created_at DESC").
		Order("listings.id DESC").
		Find(&listings).Error; err != nil {
		return nil, pkg.MapDBError(err, "listing")
	}
	return listings, nil
}

// Totals counts listings and sums their views.
func (r *listingRepository) Totals(ctx context.Context) (*domain.ListingTotals, error) {
	var totals domain.ListingTotals
	if err := r.db.WithContext(ctx).Model(&domain.Listing{}).
		Select("COUNT(*) AS listings, COALESCE(SUM(view_count), 0) AS views").
		Scan(&totals).Error; err != nil {
		return nil, pkg.MapDBError(err, "listing")
	}
	return &totals, nil
}

func affectedOne(result *gorm.DB) error {
	if result.Error != nil {
		return pkg.MapDBError(result.Error, "listing")
	}
	if result.RowsAffected == 0 {
		return domain.NewAppError(domain.CodeNotFound, "listing not found", nil)
	}
	return nil
}
