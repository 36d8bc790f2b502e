package listing

import (
	"context"
	"log/slog"
	"strings"
	"time"
	"unicode/utf8"

	"github.com/simp-lee/classifieds/internal/domain"
	"github.com/simp-lee/classifieds/internal/pkg"
)

// Options tunes the listing service. Zero values fall back to defaults.
type Options struct {
	PageSize         int
	PromotedEvery    int
	AllCategories    []string
	DailyPostLimit   int
	PlaceholderImage string
}

const (
	defaultPageSize = 15
	maxPromoteDays  = 365
	postLimitWindow = 24 * time.Hour
)

// userLookup is the part of the user store the listing service needs.
type userLookup interface {
	GetByLogin(ctx context.Context, login string) (*domain.User, error)
}

// listingService implements domain.ListingService.
type listingService struct {
	repo  domain.ListingRepository
	users userLookup
	clock domain.Clock
	opts  Options
}

// NewListingService creates a new ListingService.
func NewListingService(repo domain.ListingRepository, users userLookup, clock domain.Clock, opts Options) domain.ListingService {
	if opts.PageSize <= 0 {
		opts.PageSize = defaultPageSize
	}
	if opts.PromotedEvery <= 0 {
		opts.PromotedEvery = DefaultPromotedEvery
	}
	if clock == nil {
		clock = domain.SystemClock{}
	}
	return &listingService{repo: repo, users: users, clock: clock, opts: opts}
}

// Browse runs the home feed pipeline: expand, filter, rank, page.
// req.Page must already be clamped to >= 1.
func (s *listingService) Browse(ctx context.Context, req domain.BrowseRequest) (*domain.PageResult[domain.Listing], error) {
	f := NewSearchFilter(req.Query, req.Category, req.Region, s.opts.AllCategories)

	rows, err := s.repo.Search(ctx, f)
	if err != nil {
		return nil, err
	}

	ranked := Rank(rows, s.clock.Now(), s.opts.PromotedEvery)
	page := pkg.SlicePage(ranked, req.Page, s.opts.PageSize)

	slog.DebugContext(ctx, "browse listings",
		slog.Any("variants", f.Variants),
		slog.String("category", f.Category),
		slog.String("region", f.Region),
		slog.Int("matched", len(rows)),
		slog.Int("page", req.Page),
	)
	return page, nil
}

// Create posts a new listing for actor. Non-admins are held to the daily limit.
func (s *listingService) Create(ctx context.Context, actor string, in domain.ListingInput) (*domain.Listing, error) {
	owner, err := s.activeUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	in, err = s.normalize(in, true)
	if err != nil {
		return nil, err
	}

	now := s.clock.Now()
	l := &domain.Listing{
		OwnerLogin: owner.Login,
		OwnerName:  owner.Nickname,
	}
	l.CreatedAt = now
	apply(l, in)

	limit := s.opts.DailyPostLimit
	if owner.IsAdmin {
		limit = 0
	}
	if err := s.repo.CreateWithinLimit(ctx, l, now.Add(-postLimitWindow), limit); err != nil {
		return nil, err
	}

	slog.InfoContext(ctx, "listing created", slog.Uint64("id", uint64(l.ID)), slog.String("owner", l.OwnerLogin))
	return l, nil
}

// View counts one view and returns the listing.
func (s *listingService) View(ctx context.Context, id uint) (*domain.Listing, error) {
	if err := s.repo.IncrementViews(ctx, id); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Update edits a listing. Only its owner or an admin may do so.
func (s *listingService) Update(ctx context.Context, actor string, id uint, in domain.ListingInput) (*domain.Listing, error) {
	user, err := s.activeUser(ctx, actor)
	if err != nil {
		return nil, err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return nil, err
	}
	if l.OwnerLogin != user.Login && !user.IsAdmin {
		return nil, domain.ErrForbidden
	}

	in, err = s.normalize(in, false)
	if err != nil {
		return nil, err
	}
	if err := s.repo.Update(ctx, l.ID, in); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, l.ID)
}

// Delete removes a listing. Owners, admins and users with the ban right may do so.
func (s *listingService) Delete(ctx context.Context, actor string, id uint) error {
	user, err := s.users.GetByLogin(ctx, actor)
	if err != nil {
		return err
	}

	l, err := s.repo.GetByID(ctx, id)
	if err != nil {
		return err
	}
	if l.OwnerLogin != user.Login && !user.CanBanUsers() {
		return domain.ErrForbidden
	}

	if err := s.repo.Delete(ctx, id); err != nil {
		return err
	}
	slog.InfoContext(ctx, "listing deleted", slog.Uint64("id", uint64(id)), slog.String("by", user.Login))
	return nil
}

// Promote makes a listing VIP for the given number of days from now.
func (s *listingService) Promote(ctx context.Context, actor string, id uint, days int) (*domain.Listing, error) {
	if days < 1 || days > maxPromoteDays {
		return nil, domain.NewAppError(domain.CodeValidation, "days must be between 1 and 365", nil)
	}
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}

	expiry := s.clock.Now().Add(time.Duration(days) * 24 * time.Hour)
	if err := s.repo.SetPromotionExpiry(ctx, id, expiry); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

// Demote ends a listing's promotion immediately.
func (s *listingService) Demote(ctx context.Context, actor string, id uint) (*domain.Listing, error) {
	if err := s.requireAdmin(ctx, actor); err != nil {
		return nil, err
	}
	if err := s.repo.SetPromotionExpiry(ctx, id, time.Time{}); err != nil {
		return nil, err
	}
	return s.repo.GetByID(ctx, id)
}

func (s *listingService) ListByOwner(ctx context.Context, owner string) ([]domain.Listing, error) {
	return s.repo.ListByOwner(ctx, owner)
}

func (s *listingService) ToggleFavorite(ctx context.Context, actor string, id uint) (bool, error) {
	if _, err := s.users.GetByLogin(ctx, actor); err != nil {
		return false, err
	}
	return s.repo.ToggleFavorite(ctx, actor, id)
}

func (s *listingService) ListFavorites(ctx context.Context, actor string) ([]domain.Listing, error) {
	return s.repo.ListFavorites(ctx, actor)
}

// activeUser loads actor and rejects banned accounts.
func (s *listingService) activeUser(ctx context.Context, actor string) (*domain.User, error) {
	user, err := s.users.GetByLogin(ctx, actor)
	if err != nil {
		return nil, err
	}
	if user.IsBanned {
		return nil, domain.NewAppError(domain.CodeForbidden, "account is banned", nil)
	}
	return user, nil
}

func (s *listingService) requireAdmin(ctx context.Context, actor string) error {
	user, err := s.users.GetByLogin(ctx, actor)
	if err != nil {
		return err
	}
	if !user.IsAdmin {
		return domain.ErrForbidden
	}
	return nil
}

// normalize trims the input, checks required fields and pads images to
// MaxListingImages slots. An empty first slot gets the placeholder image.
// On update a nil Images is left nil so the stored images survive.
func (s *listingService) normalize(in domain.ListingInput, create bool) (domain.ListingInput, error) {
	in.Title = strings.TrimSpace(in.Title)
	in.Price = strings.TrimSpace(in.Price)
	in.Description = strings.TrimSpace(in.Description)
	in.Contact = strings.TrimSpace(in.Contact)
	in.Category = strings.TrimSpace(in.Category)
	in.Region = strings.TrimSpace(in.Region)
	in.City = strings.TrimSpace(in.City)

	if in.Title == "" {
		return in, domain.NewAppError(domain.CodeValidation, "title is required", nil)
	}
	if utf8.RuneCountInString(in.Title) > 200 {
		return in, domain.NewAppError(domain.CodeValidation, "title must be at most 200 characters", nil)
	}
	if in.Category == "" {
		return in, domain.NewAppError(domain.CodeValidation, "category is required", nil)
	}
	if isAllCategories(in.Category, s.opts.AllCategories) {
		return in, domain.NewAppError(domain.CodeValidation, "category must name a concrete category", nil)
	}
	if len(in.Images) > domain.MaxListingImages {
		return in, domain.NewAppError(domain.CodeValidation, "too many images", nil)
	}
	if in.Images == nil && !create {
		return in, nil
	}

	images := make([]string, domain.MaxListingImages)
	for i, img := range in.Images {
		images[i] = strings.TrimSpace(img)
	}
	if images[0] == "" {
		images[0] = s.opts.PlaceholderImage
	}
	in.Images = images

	return in, nil
}

func apply(l *domain.Listing, in domain.ListingInput) {
	l.Title = in.Title
	l.Price = in.Price
	l.Description = in.Description
	l.Contact = in.Contact
	l.Category = in.Category
	l.Region = in.Region
	l.City = in.City
	l.Images = in.Images
}
