package user

import (
	"context"
	"log/slog"
	"regexp"
	"strings"
	"unicode/utf8"

	"github.com/simp-lee/classifieds/internal/domain"
)

var validLogin = regexp.MustCompile(`^[a-zA-Z0-9_.-]{3,50}$`)

// listingTotals is the part of the listing store the admin stats need.
type listingTotals interface {
	Totals(ctx context.Context) (*domain.ListingTotals, error)
}

// userService implements domain.UserService.
type userService struct {
	repo     domain.UserRepository
	listings listingTotals
}

// NewUserService creates a new UserService with the given repositories.
func NewUserService(repo domain.UserRepository, listings listingTotals) domain.UserService {
	return &userService{repo: repo, listings: listings}
}

// Register creates a user. The reserved admin login becomes the administrator.
func (s *userService) Register(ctx context.Context, login, nickname string) (*domain.User, error) {
	login = strings.TrimSpace(login)
	nickname = strings.TrimSpace(nickname)

	if err := validateLoginNickname(login, nickname); err != nil {
		return nil, err
	}

	user := &domain.User{
		Login:    login,
		Nickname: nickname,
		IsAdmin:  login == domain.AdminLogin,
	}
	if err := s.repo.Create(ctx, user); err != nil {
		return nil, err
	}

	return user, nil
}

// GetUser retrieves a user by login.
func (s *userService) GetUser(ctx context.Context, login string) (*domain.User, error) {
	return s.repo.GetByLogin(ctx, login)
}

// ListUsers returns a paginated list of users to staff members.
func (s *userService) ListUsers(ctx context.Context, actor string, req domain.PageRequest) (*domain.PageResult[domain.User], error) {
	if _, err := s.authorize(ctx, actor, (*domain.User).CanModerate); err != nil {
		return nil, err
	}
	return s.repo.List(ctx, req)
}

// SetRight grants or revokes a right. Only the administrator may do so, and
// the administrator's own account is fixed.
func (s *userService) SetRight(ctx context.Context, actor, login, right string, value bool) error {
	r, ok := domain.ParseRight(right)
	if !ok {
		return domain.NewAppError(domain.CodeValidation, "unknown right: "+right, nil)
	}
	if _, err := s.authorize(ctx, actor, func(u *domain.User) bool { return u.IsAdmin }); err != nil {
		return err
	}
	if login == domain.AdminLogin {
		return domain.NewAppError(domain.CodeForbidden, "the admin account cannot be changed", nil)
	}

	if err := s.repo.SetRight(ctx, login, r, value); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user right changed",
		slog.String("login", login),
		slog.String("right", string(r)),
		slog.Bool("value", value),
		slog.String("by", actor),
	)
	return nil
}

func (s *userService) Ban(ctx context.Context, actor, login string) error {
	return s.setBanned(ctx, actor, login, true)
}

func (s *userService) Unban(ctx context.Context, actor, login string) error {
	return s.setBanned(ctx, actor, login, false)
}

// Stats summarizes the marketplace for staff members.
func (s *userService) Stats(ctx context.Context, actor string) (*domain.Stats, error) {
	if _, err := s.authorize(ctx, actor, (*domain.User).CanModerate); err != nil {
		return nil, err
	}

	users, err := s.repo.Count(ctx)
	if err != nil {
		return nil, err
	}
	totals, err := s.listings.Totals(ctx)
	if err != nil {
		return nil, err
	}

	return &domain.Stats{Users: users, Listings: totals.Listings, Views: totals.Views}, nil
}

func (s *userService) setBanned(ctx context.Context, actor, login string, banned bool) error {
	if _, err := s.authorize(ctx, actor, (*domain.User).CanBanUsers); err != nil {
		return err
	}
	if login == domain.AdminLogin || login == actor {
		return domain.NewAppError(domain.CodeForbidden, "this account cannot be banned", nil)
	}

	if err := s.repo.SetBanned(ctx, login, banned); err != nil {
		return err
	}
	slog.InfoContext(ctx, "user ban changed", slog.String("login", login), slog.Bool("banned", banned), slog.String("by", actor))
	return nil
}

// authorize loads actor and checks allowed against it. Banned accounts are
// never authorized.
func (s *userService) authorize(ctx context.Context, actor string, allowed func(*domain.User) bool) (*domain.User, error) {
	user, err := s.repo.GetByLogin(ctx, actor)
	if err != nil {
		if domain.IsNotFound(err) {
			return nil, domain.ErrForbidden
		}
		return nil, err
	}
	if user.IsBanned || !allowed(user) {
		return nil, domain.ErrForbidden
	}
	return user, nil
}

// validateLoginNickname checks login format and nickname length.
func validateLoginNickname(login, nickname string) error {
	if login == "" {
		return domain.NewAppError(domain.CodeValidation, "login is required", nil)
	}
	if !validLogin.MatchString(login) {
		return domain.NewAppError(domain.CodeValidation, "login must be 3-50 letters, digits, '_', '.' or '-'", nil)
	}

	if nickname == "" {
		return domain.NewAppError(domain.CodeValidation, "nickname is required", nil)
	}
	if utf8.RuneCountInString(nickname) < 2 {
		return domain.NewAppError(domain.CodeValidation, "nickname must be at least 2 characters", nil)
	}
	if utf8.RuneCountInString(nickname) > 100 {
		return domain.NewAppError(domain.CodeValidation, "nickname must be at most 100 characters", nil)
	}
	return nil
}
